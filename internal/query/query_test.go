package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/geo"
	"github.com/antigravity/transitcat/internal/render"
	"github.com/antigravity/transitcat/internal/routing"
)

func buildAnswerer(t *testing.T) Answerer {
	t.Helper()
	cat := catalogue.New()
	require.NoError(t, cat.AddStop("A", geo.Coordinate{Lat: 55.611087, Lng: 37.208290}))
	require.NoError(t, cat.AddStop("B", geo.Coordinate{Lat: 55.595884, Lng: 37.209755}))
	require.NoError(t, cat.AddStop("C", geo.Coordinate{Lat: 55.632761, Lng: 37.333324}))
	require.NoError(t, cat.AddDistance("A", "B", 3900))
	require.NoError(t, cat.AddDistance("B", "C", 9900))
	require.NoError(t, cat.AddDistance("C", "A", 5950))
	require.NoError(t, cat.AddBus("256", false, []string{"A", "B", "C"}))
	require.NoError(t, cat.Seal())

	router := routing.New(cat)
	router.Build(40, 6)

	return Answerer{Cat: cat, Router: router, Renderer: render.New(render.DefaultSettings())}
}

func TestAnswerBusFound(t *testing.T) {
	a := buildAnswerer(t)
	resp := a.Answer([]Request{{ID: 1, Type: "Bus", Name: "256"}})
	require.Len(t, resp, 1)
	assert.Equal(t, 1, resp[0].RequestID)
	assert.Equal(t, 5, resp[0].StopCount)
	assert.Equal(t, 27600, resp[0].RouteLength)
	assert.Empty(t, resp[0].ErrorMessage)
}

func TestAnswerBusNotFound(t *testing.T) {
	a := buildAnswerer(t)
	resp := a.Answer([]Request{{ID: 2, Type: "Bus", Name: "999"}})
	assert.Equal(t, "not found", resp[0].ErrorMessage)
}

func TestAnswerStopFound(t *testing.T) {
	a := buildAnswerer(t)
	resp := a.Answer([]Request{{ID: 3, Type: "Stop", Name: "A"}})
	assert.Equal(t, []string{"256"}, resp[0].Buses)
}

func TestAnswerMapReturnsSVG(t *testing.T) {
	a := buildAnswerer(t)
	resp := a.Answer([]Request{{ID: 4, Type: "Map"}})
	assert.Contains(t, resp[0].Map, "<svg")
}

func TestAnswerRoutePreservesRequestOrder(t *testing.T) {
	a := buildAnswerer(t)
	resp := a.Answer([]Request{
		{ID: 10, Type: "Route", From: "A", To: "C"},
		{ID: 11, Type: "Bus", Name: "256"},
	})
	require.Len(t, resp, 2)
	assert.Equal(t, 10, resp[0].RequestID)
	assert.Equal(t, 11, resp[1].RequestID)
	assert.InDelta(t, 26.7, resp[0].TotalTime, 0.05)
}

func TestAnswerUnknownRequestTypeIsNotFound(t *testing.T) {
	a := buildAnswerer(t)
	resp := a.Answer([]Request{{ID: 5, Type: "Schedule"}})
	assert.Equal(t, "not found", resp[0].ErrorMessage)
}

// TestAnswerStopWithNoBusesSerializesEmptyBusesArray guards against the
// buses field vanishing from the JSON wire for a stop that exists but
// is served by zero buses, a legal catalogue state (a stop can be
// referenced only in road_distances and never appear in a bus's stop
// list). Asserting on the Go struct alone can't catch this: an
// `omitempty` tag on a slice field suppresses it from JSON whenever its
// length is zero, independent of whether the slice is nil.
func TestAnswerStopWithNoBusesSerializesEmptyBusesArray(t *testing.T) {
	cat := catalogue.New()
	require.NoError(t, cat.AddStop("A", geo.Coordinate{Lat: 55.611087, Lng: 37.208290}))
	require.NoError(t, cat.AddStop("Lonely", geo.Coordinate{Lat: 55.6, Lng: 37.2}))
	require.NoError(t, cat.AddDistance("A", "Lonely", 100))
	require.NoError(t, cat.Seal())

	router := routing.New(cat)
	router.Build(40, 6)
	a := Answerer{Cat: cat, Router: router, Renderer: render.New(render.DefaultSettings())}

	resp := a.Answer([]Request{{ID: 1, Type: "Stop", Name: "Lonely"}})
	require.Len(t, resp, 1)
	assert.Empty(t, resp[0].Buses)

	raw, err := json.Marshal(resp[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	buses, ok := decoded["buses"]
	require.True(t, ok, "buses key must be present in JSON even when the stop has no buses")
	assert.Equal(t, []interface{}{}, buses)
}

// TestAnswerSelfRouteSerializesZeroTimeAndEmptyItems guards the same
// class of bug for a self-route query (from == to): total_time and
// items are both legitimately zero-valued in that case, so omitempty
// on either field would drop it from the wire, leaving only
// {"request_id": N} instead of the documented {total_time, items}
// shape.
func TestAnswerSelfRouteSerializesZeroTimeAndEmptyItems(t *testing.T) {
	a := buildAnswerer(t)
	resp := a.Answer([]Request{{ID: 7, Type: "Route", From: "A", To: "A"}})
	require.Len(t, resp, 1)
	assert.Equal(t, float64(0), resp[0].TotalTime)
	assert.Empty(t, resp[0].Items)

	raw, err := json.Marshal(resp[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	totalTime, hasTotalTime := decoded["total_time"]
	require.True(t, hasTotalTime, "total_time key must be present for a self-route")
	assert.Equal(t, float64(0), totalTime)

	items, hasItems := decoded["items"]
	require.True(t, hasItems, "items key must be present for a self-route")
	assert.Equal(t, []interface{}{}, items)
}
