package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
	"base_requests": [
		{"type": "Stop", "name": "A", "latitude": 55.611087, "longitude": 37.208290, "road_distances": {"B": 3900}},
		{"type": "Stop", "name": "B", "latitude": 55.595884, "longitude": 37.209755, "road_distances": {"C": 9900}},
		{"type": "Stop", "name": "C", "latitude": 55.632761, "longitude": 37.333324, "road_distances": {"A": 5950}},
		{"type": "Bus", "name": "256", "stops": ["A", "B", "C"], "is_roundtrip": false},
		{"type": "Bus", "name": "828", "stops": ["A", "B", "C", "A"], "is_roundtrip": true}
	],
	"render_settings": {
		"width": 1200, "height": 500, "padding": 50,
		"line_width": 14, "stop_radius": 5,
		"bus_label_font_size": 20, "bus_label_offset": [7, 15],
		"stop_label_font_size": 20, "stop_label_offset": [7, -3],
		"underlayer_color": [255, 255, 255, 0.85],
		"underlayer_width": 3,
		"color_palette": ["green", [255, 160, 0], "red"]
	},
	"routing_settings": {"bus_wait_time": 6, "bus_velocity": 40},
	"serialization_settings": {"file": "/tmp/base.tcat"}
}`

func TestLoadStdinParsesStopsAndBuses(t *testing.T) {
	req, err := LoadStdin(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	require.Len(t, req.Stops, 3)
	require.Len(t, req.Buses, 2)

	assert.Equal(t, "A", req.Stops[0].Name)
	assert.Equal(t, 3900, req.Stops[0].RoadDistances["B"])

	assert.Equal(t, "256", req.Buses[0].Name)
	assert.False(t, req.Buses[0].IsLoop())
	assert.Equal(t, "828", req.Buses[1].Name)
	assert.True(t, req.Buses[1].IsLoop())
}

func TestLoadStdinParsesRoutingSettings(t *testing.T) {
	req, err := LoadStdin(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, 6, req.Routing.BusWaitTime)
	assert.Equal(t, 40.0, req.Routing.BusVelocity)
	assert.Equal(t, "/tmp/base.tcat", req.SnapshotFile)
}

func TestLoadStdinParsesRenderSettingsColors(t *testing.T) {
	req, err := LoadStdin(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "rgba(255,255,255,0.85)", req.Render.UnderlayerColor)
	assert.Equal(t, []string{"green", "rgb(255,160,0)", "red"}, req.Render.ColorPalette)
	assert.Equal(t, 7.0, req.Render.BusLabelOffsetX)
	assert.Equal(t, -3.0, req.Render.StopLabelOffsetY)
}

func TestLoadStdinRejectsMalformedJSON(t *testing.T) {
	_, err := LoadStdin(strings.NewReader(`{not json`))
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestLoadStdinRejectsUnknownRequestType(t *testing.T) {
	doc := `{"base_requests":[{"type":"Train","name":"x"}],"serialization_settings":{"file":"f"}}`
	_, err := LoadStdin(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestLoadStdinRequiresSnapshotFile(t *testing.T) {
	doc := `{"base_requests":[],"serialization_settings":{"file":""}}`
	_, err := LoadStdin(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrBadInput)
}
