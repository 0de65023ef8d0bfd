// Package loader turns raw input — a stdin JSON document or a Postgres
// database — into a BuildRequest, the shape internal/catalogue and
// internal/routing need to build a sealed state from.
//
// The JSON path decodes with github.com/goccy/go-json, a drop-in,
// faster encoding/json replacement; the Postgres path queries with
// github.com/jackc/pgx/v5, following the same query/scan shape the
// transit backend this module is adapted from uses for its line/stop
// repository.
package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/antigravity/transitcat/internal/geo"
	"github.com/antigravity/transitcat/internal/render"
)

// ErrBadInput indicates a structurally invalid build document: wrong
// request type, a missing required field, or unparseable JSON.
var ErrBadInput = errors.New("loader: bad input")

// StopRequest is one `type:"Stop"` entry of base_requests.
type StopRequest struct {
	Name          string
	Latitude      float64
	Longitude     float64
	RoadDistances map[string]int
}

// BusRequest is one `type:"Bus"` entry of base_requests.
type BusRequest struct {
	Name        string
	Stops       []string
	IsRoundtrip bool
}

// RoutingSettings is the `routing_settings` block: wait time in minutes,
// velocity in km/h.
type RoutingSettings struct {
	BusWaitTime int
	BusVelocity float64
}

// BuildRequest is everything make_base needs to populate a catalogue,
// configure its renderer, and compile its router, regardless of which
// source (stdin JSON or Postgres) produced it.
type BuildRequest struct {
	Stops           []StopRequest
	Buses           []BusRequest
	Render          render.Settings
	Routing         RoutingSettings
	SnapshotFile    string
}

type jsonColor struct {
	Simple string
	RGB    *[3]int
	RGBA   *[4]float64
}

func (c *jsonColor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Simple = s
		return nil
	}
	var nums []float64
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	switch len(nums) {
	case 3:
		rgb := [3]int{int(nums[0]), int(nums[1]), int(nums[2])}
		c.RGB = &rgb
	case 4:
		rgba := [4]float64{nums[0], nums[1], nums[2], nums[3]}
		c.RGBA = &rgba
	default:
		return fmt.Errorf("loader: color array must have 3 or 4 elements, got %d", len(nums))
	}
	return nil
}

func (c jsonColor) toCSS() string {
	switch {
	case c.RGB != nil:
		return fmt.Sprintf("rgb(%d,%d,%d)", c.RGB[0], c.RGB[1], c.RGB[2])
	case c.RGBA != nil:
		return fmt.Sprintf("rgba(%g,%g,%g,%g)", c.RGBA[0], c.RGBA[1], c.RGBA[2], c.RGBA[3])
	default:
		return c.Simple
	}
}

type jsonPoint struct {
	X, Y float64
}

func (p *jsonPoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

type jsonRenderSettings struct {
	Width             float64     `json:"width"`
	Height            float64     `json:"height"`
	Padding           float64     `json:"padding"`
	LineWidth         float64     `json:"line_width"`
	StopRadius        float64     `json:"stop_radius"`
	BusLabelFontSize  int         `json:"bus_label_font_size"`
	BusLabelOffset    jsonPoint   `json:"bus_label_offset"`
	StopLabelFontSize int         `json:"stop_label_font_size"`
	StopLabelOffset   jsonPoint   `json:"stop_label_offset"`
	UnderlayerColor   jsonColor   `json:"underlayer_color"`
	UnderlayerWidth   float64     `json:"underlayer_width"`
	ColorPalette      []jsonColor `json:"color_palette"`
}

func (s jsonRenderSettings) toRenderSettings() render.Settings {
	palette := make([]string, len(s.ColorPalette))
	for i, c := range s.ColorPalette {
		palette[i] = c.toCSS()
	}
	return render.Settings{
		Width: s.Width, Height: s.Height, Padding: s.Padding,
		LineWidth: s.LineWidth, StopRadius: s.StopRadius,
		BusLabelFontSize: s.BusLabelFontSize, BusLabelOffsetX: s.BusLabelOffset.X, BusLabelOffsetY: s.BusLabelOffset.Y,
		StopLabelFontSize: s.StopLabelFontSize, StopLabelOffsetX: s.StopLabelOffset.X, StopLabelOffsetY: s.StopLabelOffset.Y,
		UnderlayerColor: s.UnderlayerColor.toCSS(), UnderlayerWidth: s.UnderlayerWidth,
		ColorPalette: palette,
	}
}

type jsonBaseRequest struct {
	Type          string         `json:"type"`
	Name          string         `json:"name"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	RoadDistances map[string]int `json:"road_distances"`
	Stops         []string       `json:"stops"`
	IsRoundtrip   bool           `json:"is_roundtrip"`
}

type jsonBuildDocument struct {
	BaseRequests  []jsonBaseRequest  `json:"base_requests"`
	RenderSettings jsonRenderSettings `json:"render_settings"`
	RoutingSettings struct {
		BusWaitTime int     `json:"bus_wait_time"`
		BusVelocity float64 `json:"bus_velocity"`
	} `json:"routing_settings"`
	SerializationSettings struct {
		File string `json:"file"`
	} `json:"serialization_settings"`
}

// LoadStdin decodes a make_base JSON document from r.
func LoadStdin(r io.Reader) (BuildRequest, error) {
	var doc jsonBuildDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return BuildRequest{}, fmt.Errorf("%w: %v", ErrBadInput, err)
	}

	req := BuildRequest{
		Render: doc.RenderSettings.toRenderSettings(),
		Routing: RoutingSettings{
			BusWaitTime: doc.RoutingSettings.BusWaitTime,
			BusVelocity: doc.RoutingSettings.BusVelocity,
		},
		SnapshotFile: doc.SerializationSettings.File,
	}

	for _, br := range doc.BaseRequests {
		switch br.Type {
		case "Stop":
			if br.Name == "" {
				return BuildRequest{}, fmt.Errorf("%w: stop request missing name", ErrBadInput)
			}
			req.Stops = append(req.Stops, StopRequest{
				Name: br.Name, Latitude: br.Latitude, Longitude: br.Longitude,
				RoadDistances: br.RoadDistances,
			})
		case "Bus":
			if br.Name == "" {
				return BuildRequest{}, fmt.Errorf("%w: bus request missing name", ErrBadInput)
			}
			req.Buses = append(req.Buses, BusRequest{
				Name: br.Name, Stops: br.Stops, IsRoundtrip: br.IsRoundtrip,
			})
		default:
			return BuildRequest{}, fmt.Errorf("%w: unknown base_requests type %q", ErrBadInput, br.Type)
		}
	}

	if req.SnapshotFile == "" {
		return BuildRequest{}, fmt.Errorf("%w: serialization_settings.file is required", ErrBadInput)
	}

	return req, nil
}

// StopCoordinate is the geo.Coordinate view of a StopRequest.
func (s StopRequest) StopCoordinate() geo.Coordinate {
	return geo.Coordinate{Lat: s.Latitude, Lng: s.Longitude}
}

// IsLoop reports whether the bus is a closed, circular route (its stops
// list already repeats the first stop as the last). This is exactly the
// request's is_roundtrip flag, named the way the reference JSON reader
// names it.
func (b BusRequest) IsLoop() bool {
	return b.IsRoundtrip
}
