// Package snapshot serializes a sealed catalogue, its render settings,
// and its compiled routing state to a single binary file, and restores
// them without recomputing anything.
//
// The wire format is CBOR (github.com/fxamacker/cbor/v2) under
// cbor.CanonicalEncOptions, which fixes map key and indefinite-length
// ambiguity so two processes serializing the same sealed state produce
// byte-identical output. A small magic+version header guards against
// loading a file this build doesn't understand.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/geo"
	"github.com/antigravity/transitcat/internal/graph"
	"github.com/antigravity/transitcat/internal/render"
	"github.com/antigravity/transitcat/internal/routing"
	"github.com/antigravity/transitcat/internal/shortestpath"
)

// ErrBadSnapshot indicates a file that is not a snapshot this build
// produced: wrong magic, unsupported version, or corrupt CBOR payload.
var ErrBadSnapshot = errors.New("snapshot: bad snapshot file")

const (
	magic          = "TCAT"
	currentVersion = 1
)

var encMode = func() cbor.EncMode {
	m, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("snapshot: invalid cbor encoding options: " + err.Error())
	}
	return m
}()

// wireStop, wireBus, and wireDistance mirror catalogue.Stop/Bus/
// DistanceEntry field-for-field; kept as separate types (rather than
// reusing the catalogue types directly) so this package's wire contract
// never silently changes shape if catalogue's internal types grow a
// field that shouldn't be persisted.
type wireStop struct {
	ID   int32
	Name string
	Lat  float64
	Lng  float64
}

type wireBus struct {
	ID      int32
	Number  string
	IsLoop  bool
	StopIDs []int32
}

type wireDistance struct {
	From   int32
	To     int32
	Meters int
}

type wireRenderSettings struct {
	Width, Height     float64
	Padding           float64
	LineWidth         float64
	StopRadius        float64
	BusLabelFontSize  int
	BusLabelOffsetX   float64
	BusLabelOffsetY   float64
	StopLabelFontSize int
	StopLabelOffsetX  float64
	StopLabelOffsetY  float64
	UnderlayerColor   string
	UnderlayerWidth   float64
	ColorPalette      []string
}

type wireEdgeMeta struct {
	Bus       int32
	SpanCount int
}

type wireGraphEdge struct {
	From   int32
	To     int32
	Weight float64
}

// wireCell mirrors shortestpath.Cell. Present distinguishes "no path"
// from a real zero-weight entry, and HasEdge distinguishes a diagonal
// entry from every other present entry.
type wireCell struct {
	Weight   float64
	PrevEdge int32
	HasEdge  bool
	Present  bool
}

// document is the full on-disk payload. Its fields are declared in the
// order stops, buses, distances, renderer, router settings, router edge
// metadata, graph edges, routes table. Canonical CBOR encodes the struct
// as a map with sorted keys, so the bytes on disk follow the canonical
// key order instead, and Deserialize decodes the whole struct by field
// name in one step before rebuilding the state from it.
type document struct {
	Stops     []wireStop
	Buses     []wireBus
	Distances []wireDistance

	Render wireRenderSettings

	BusVelocityMPerMin float64
	BusWaitTimeMin     float64
	EdgeMetas          []wireEdgeMeta
	GraphEdges         []wireGraphEdge
	RoutesInternal     [][]wireCell
}

// State is everything a sealed build produces and a served process
// needs: the catalogue, the renderer, and the compiled router.
type State struct {
	Catalogue *catalogue.Catalogue
	Render    render.Settings
	Router    *routing.Router
}

// Serialize encodes state canonically, prefixed by the magic+version
// header, and returns the full byte stream ready to write to a file.
func Serialize(state State) ([]byte, error) {
	doc := toDocument(state)

	payload, err := encMode.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}

	var out bytes.Buffer
	out.WriteString(magic)
	out.WriteByte(currentVersion)
	out.Write(payload)
	return out.Bytes(), nil
}

// Deserialize reconstructs a State from bytes previously produced by
// Serialize. Returns ErrBadSnapshot if the header doesn't match or the
// payload doesn't decode.
func Deserialize(data []byte) (State, error) {
	if len(data) < len(magic)+1 || string(data[:len(magic)]) != magic {
		return State{}, ErrBadSnapshot
	}
	version := data[len(magic)]
	if version != currentVersion {
		return State{}, ErrBadSnapshot
	}

	var doc document
	if err := cbor.Unmarshal(data[len(magic)+1:], &doc); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	return fromDocument(doc), nil
}

// WriteFile serializes state and writes it atomically: encode to a
// temporary file in the same directory, then rename over the
// destination, so a concurrent reader never observes a partial write.
func WriteFile(path string, state State) error {
	data, err := Serialize(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("snapshot: rename into place: %w", err)
	}
	return nil
}

// ReadFile reads and deserializes the snapshot at path.
func ReadFile(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("snapshot: read file: %w", err)
	}
	return Deserialize(data)
}

func toDocument(state State) document {
	cat := state.Catalogue

	stops := make([]catalogue.Stop, cat.StopCount())
	for i := range stops {
		stops[i] = cat.StopByID(catalogue.StopID(i))
	}
	wireStops := make([]wireStop, len(stops))
	for i, s := range stops {
		wireStops[i] = wireStop{ID: int32(s.ID), Name: s.Name, Lat: s.Coord.Lat, Lng: s.Coord.Lng}
	}

	buses := make([]catalogue.Bus, cat.BusCount())
	for i := range buses {
		buses[i] = cat.BusByID(catalogue.BusID(i))
	}
	wireBuses := make([]wireBus, len(buses))
	for i, b := range buses {
		ids := make([]int32, len(b.Stops))
		for j, id := range b.Stops {
			ids[j] = int32(id)
		}
		wireBuses[i] = wireBus{ID: int32(b.ID), Number: b.Number, IsLoop: b.IsLoop, StopIDs: ids}
	}

	distances := cat.Distances()
	wireDistances := make([]wireDistance, len(distances))
	for i, d := range distances {
		wireDistances[i] = wireDistance{From: int32(d.From), To: int32(d.To), Meters: d.Meters}
	}

	rs := state.Render
	wireRender := wireRenderSettings{
		Width: rs.Width, Height: rs.Height, Padding: rs.Padding,
		LineWidth: rs.LineWidth, StopRadius: rs.StopRadius,
		BusLabelFontSize: rs.BusLabelFontSize, BusLabelOffsetX: rs.BusLabelOffsetX, BusLabelOffsetY: rs.BusLabelOffsetY,
		StopLabelFontSize: rs.StopLabelFontSize, StopLabelOffsetX: rs.StopLabelOffsetX, StopLabelOffsetY: rs.StopLabelOffsetY,
		UnderlayerColor: rs.UnderlayerColor, UnderlayerWidth: rs.UnderlayerWidth,
		ColorPalette: append([]string(nil), rs.ColorPalette...),
	}

	router := state.Router
	edgeMetas := router.EdgeMetas()
	wireEdgeMetas := make([]wireEdgeMeta, len(edgeMetas))
	for i, m := range edgeMetas {
		wireEdgeMetas[i] = wireEdgeMeta{Bus: int32(m.Bus), SpanCount: m.SpanCount}
	}

	g := router.Graph()
	graphEdges := g.Edges()
	wireEdges := make([]wireGraphEdge, len(graphEdges))
	for i, e := range graphEdges {
		wireEdges[i] = wireGraphEdge{From: int32(e.From), To: int32(e.To), Weight: e.Weight}
	}

	cells := router.Table().Cells()
	wireCells := make([][]wireCell, len(cells))
	for i, row := range cells {
		outRow := make([]wireCell, len(row))
		for j, c := range row {
			outRow[j] = wireCell{Weight: c.Weight, PrevEdge: int32(c.PrevEdge), HasEdge: c.HasEdge, Present: c.Present}
		}
		wireCells[i] = outRow
	}

	return document{
		Stops:              wireStops,
		Buses:              wireBuses,
		Distances:          wireDistances,
		Render:             wireRender,
		BusVelocityMPerMin: router.VelocityMetersPerMinute(),
		BusWaitTimeMin:     router.WaitTimeMinutes(),
		EdgeMetas:          wireEdgeMetas,
		GraphEdges:         wireEdges,
		RoutesInternal:     wireCells,
	}
}

func fromDocument(doc document) State {
	stops := make([]catalogue.Stop, len(doc.Stops))
	for i, s := range doc.Stops {
		stops[i] = catalogue.Stop{ID: catalogue.StopID(s.ID), Name: s.Name, Coord: geo.Coordinate{Lat: s.Lat, Lng: s.Lng}}
	}

	buses := make([]catalogue.Bus, len(doc.Buses))
	for i, b := range doc.Buses {
		ids := make([]catalogue.StopID, len(b.StopIDs))
		for j, id := range b.StopIDs {
			ids[j] = catalogue.StopID(id)
		}
		buses[i] = catalogue.Bus{ID: catalogue.BusID(b.ID), Number: b.Number, IsLoop: b.IsLoop, Stops: ids}
	}

	distances := make([]catalogue.DistanceEntry, len(doc.Distances))
	for i, d := range doc.Distances {
		distances[i] = catalogue.DistanceEntry{From: catalogue.StopID(d.From), To: catalogue.StopID(d.To), Meters: d.Meters}
	}

	cat := catalogue.FromParts(stops, buses, distances)

	rs := doc.Render
	renderSettings := render.Settings{
		Width: rs.Width, Height: rs.Height, Padding: rs.Padding,
		LineWidth: rs.LineWidth, StopRadius: rs.StopRadius,
		BusLabelFontSize: rs.BusLabelFontSize, BusLabelOffsetX: rs.BusLabelOffsetX, BusLabelOffsetY: rs.BusLabelOffsetY,
		StopLabelFontSize: rs.StopLabelFontSize, StopLabelOffsetX: rs.StopLabelOffsetX, StopLabelOffsetY: rs.StopLabelOffsetY,
		UnderlayerColor: rs.UnderlayerColor, UnderlayerWidth: rs.UnderlayerWidth,
		ColorPalette: append([]string(nil), rs.ColorPalette...),
	}

	g := graph.NewGraph(len(stops))
	for _, e := range doc.GraphEdges {
		g.AddEdge(graph.VertexID(e.From), graph.VertexID(e.To), e.Weight)
	}

	edgeMetas := make([]routing.EdgeMeta, len(doc.EdgeMetas))
	for i, m := range doc.EdgeMetas {
		edgeMetas[i] = routing.EdgeMeta{Bus: catalogue.BusID(m.Bus), SpanCount: m.SpanCount}
	}

	cells := make([][]shortestpath.Cell, len(doc.RoutesInternal))
	for i, row := range doc.RoutesInternal {
		outRow := make([]shortestpath.Cell, len(row))
		for j, c := range row {
			outRow[j] = shortestpath.Cell{Weight: c.Weight, PrevEdge: graph.EdgeID(c.PrevEdge), HasEdge: c.HasEdge, Present: c.Present}
		}
		cells[i] = outRow
	}

	router := routing.FromComponents(cat, doc.BusWaitTimeMin, doc.BusVelocityMPerMin, g, edgeMetas, cells)

	return State{Catalogue: cat, Render: renderSettings, Router: router}
}
