// Package render turns a sealed catalogue into a minimal SVG map: one
// polyline per bus route and one circle per stop, projected from
// geographic coordinates onto a flat canvas.
//
// It is carried as an ambient collaborator, not a core component: the
// rest of the system never inspects the SVG it produces, only calls
// Render and stores the resulting string.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/geo"
)

const epsilon = 1e-6

func isZero(v float64) bool { return math.Abs(v) < epsilon }

// Settings is the opaque render-settings block: canvas size, padding,
// line/label geometry, and the color palette buses cycle through.
// Grounded in the reference renderer's RenderSettings; callers pass it
// through as a configuration value, except that make_base checks Width
// and Height to decide whether to fall back to DefaultSettings.
type Settings struct {
	Width, Height float64
	Padding       float64

	LineWidth  float64
	StopRadius float64

	BusLabelFontSize int
	BusLabelOffsetX  float64
	BusLabelOffsetY  float64

	StopLabelFontSize int
	StopLabelOffsetX  float64
	StopLabelOffsetY  float64

	UnderlayerColor string
	UnderlayerWidth float64

	ColorPalette []string
}

// DefaultSettings returns a reasonable render configuration, used when a
// build request omits one.
func DefaultSettings() Settings {
	return Settings{
		Width: 1200, Height: 1200, Padding: 50,
		LineWidth: 14, StopRadius: 5,
		BusLabelFontSize: 20, BusLabelOffsetX: 7, BusLabelOffsetY: 15,
		StopLabelFontSize: 20, StopLabelOffsetX: 7, StopLabelOffsetY: -3,
		UnderlayerColor: "rgba(255,255,255,0.85)", UnderlayerWidth: 3,
		ColorPalette: []string{"green", "rgb(255,160,0)", "red"},
	}
}

// Renderer draws a sealed catalogue's map under a fixed Settings.
type Renderer struct {
	settings Settings
}

// New constructs a Renderer bound to settings.
func New(settings Settings) *Renderer {
	return &Renderer{settings: settings}
}

// Render produces a finished SVG document for cat's routes and stops.
// Buses and stops with no geometry (empty catalogue) still produce a
// valid, empty document.
func (r *Renderer) Render(cat *catalogue.Catalogue) string {
	buses := cat.AllBuses()
	stops := cat.AllStops()

	proj := newSphereProjector(coordsOf(stops), r.settings.Width, r.settings.Height, r.settings.Padding)

	doc := newDocument()
	r.drawRoutes(doc, proj, cat, buses)
	r.drawRouteLabels(doc, proj, cat, buses)
	r.drawStopMarkers(doc, proj, stops)
	r.drawStopLabels(doc, proj, stops)
	return doc.String()
}

func coordsOf(stops []catalogue.Stop) []geo.Coordinate {
	out := make([]geo.Coordinate, len(stops))
	for i, s := range stops {
		out[i] = s.Coord
	}
	return out
}

func (r *Renderer) paletteColor(i int) string {
	if len(r.settings.ColorPalette) == 0 {
		return "black"
	}
	return r.settings.ColorPalette[i%len(r.settings.ColorPalette)]
}

func (r *Renderer) drawRoutes(doc *document, proj *sphereProjector, cat *catalogue.Catalogue, buses []catalogue.Bus) {
	for i, bus := range buses {
		if len(bus.Stops) == 0 {
			continue
		}
		points := make([]point, len(bus.Stops))
		for j, id := range bus.Stops {
			points[j] = proj.project(cat.StopByID(id).Coord)
		}
		doc.addPolyline(points, r.paletteColor(i), r.settings.LineWidth)
	}
}

func (r *Renderer) drawRouteLabels(doc *document, proj *sphereProjector, cat *catalogue.Catalogue, buses []catalogue.Bus) {
	for i, bus := range buses {
		if len(bus.Stops) == 0 {
			continue
		}
		color := r.paletteColor(i)
		first := proj.project(cat.StopByID(bus.Stops[0]).Coord)
		doc.addLabel(first, bus.Number, color, r.settings.BusLabelFontSize, r.settings.BusLabelOffsetX, r.settings.BusLabelOffsetY, r.settings.UnderlayerColor, r.settings.UnderlayerWidth)

		if !bus.IsLoop {
			last := bus.Stops[len(bus.Stops)-1]
			if last != bus.Stops[0] {
				lastPoint := proj.project(cat.StopByID(last).Coord)
				doc.addLabel(lastPoint, bus.Number, color, r.settings.BusLabelFontSize, r.settings.BusLabelOffsetX, r.settings.BusLabelOffsetY, r.settings.UnderlayerColor, r.settings.UnderlayerWidth)
			}
		}
	}
}

func (r *Renderer) drawStopMarkers(doc *document, proj *sphereProjector, stops []catalogue.Stop) {
	for _, s := range stops {
		doc.addCircle(proj.project(s.Coord), r.settings.StopRadius)
	}
}

func (r *Renderer) drawStopLabels(doc *document, proj *sphereProjector, stops []catalogue.Stop) {
	for _, s := range stops {
		doc.addLabel(proj.project(s.Coord), s.Name, "black", r.settings.StopLabelFontSize, r.settings.StopLabelOffsetX, r.settings.StopLabelOffsetY, r.settings.UnderlayerColor, r.settings.UnderlayerWidth)
	}
}

// point is a projected canvas coordinate.
type point struct{ X, Y float64 }

// sphereProjector maps geographic coordinates onto a padded canvas,
// preserving aspect ratio by picking the smaller of the two axis zoom
// factors. A single-point or empty input has zoom 0, so every point
// projects to (padding, padding).
type sphereProjector struct {
	minLon, maxLat float64
	zoom           float64
	padding        float64
}

func newSphereProjector(coords []geo.Coordinate, maxWidth, maxHeight, padding float64) *sphereProjector {
	p := &sphereProjector{padding: padding}
	if len(coords) == 0 {
		return p
	}

	minLon, maxLon := coords[0].Lng, coords[0].Lng
	minLat, maxLat := coords[0].Lat, coords[0].Lat
	for _, c := range coords[1:] {
		minLon = math.Min(minLon, c.Lng)
		maxLon = math.Max(maxLon, c.Lng)
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
	}
	p.minLon = minLon
	p.maxLat = maxLat

	var widthZoom, heightZoom float64
	haveWidth, haveHeight := false, false
	if !isZero(maxLon - minLon) {
		widthZoom = (maxWidth - 2*padding) / (maxLon - minLon)
		haveWidth = true
	}
	if !isZero(maxLat - minLat) {
		heightZoom = (maxHeight - 2*padding) / (maxLat - minLat)
		haveHeight = true
	}

	switch {
	case haveWidth && haveHeight:
		p.zoom = math.Min(widthZoom, heightZoom)
	case haveWidth:
		p.zoom = widthZoom
	case haveHeight:
		p.zoom = heightZoom
	default:
		p.zoom = 0
	}
	return p
}

func (p *sphereProjector) project(c geo.Coordinate) point {
	return point{
		X: (c.Lng - p.minLon) * p.zoom + p.padding,
		Y: (p.maxLat - c.Lat) * p.zoom + p.padding,
	}
}

// document accumulates SVG elements and serializes them on demand. It
// never exposes the elements it has collected, only the finished
// string, so callers can never mutate a document mid-render.
type document struct {
	elements []string
}

func newDocument() *document { return &document{} }

func (d *document) addPolyline(points []point, color string, width float64) {
	var b strings.Builder
	for i, pt := range points {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g,%g", pt.X, pt.Y)
	}
	d.elements = append(d.elements, fmt.Sprintf(
		`<polyline points="%s" fill="none" stroke="%s" stroke-width="%g" stroke-linecap="round" stroke-linejoin="round"/>`,
		b.String(), color, width))
}

func (d *document) addCircle(p point, radius float64) {
	d.elements = append(d.elements, fmt.Sprintf(
		`<circle cx="%g" cy="%g" r="%g" fill="white"/>`, p.X, p.Y, radius))
}

func (d *document) addLabel(p point, text, color string, fontSize int, offsetX, offsetY float64, underlayerColor string, underlayerWidth float64) {
	x, y := p.X+offsetX, p.Y+offsetY
	d.elements = append(d.elements, fmt.Sprintf(
		`<text x="%g" y="%g" font-size="%d" fill="%s" stroke="%s" stroke-width="%g">%s</text>`,
		x, y, fontSize, underlayerColor, underlayerColor, underlayerWidth, escapeText(text)))
	d.elements = append(d.elements, fmt.Sprintf(
		`<text x="%g" y="%g" font-size="%d" fill="%s">%s</text>`,
		x, y, fontSize, color, escapeText(text)))
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

func (d *document) String() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n")
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1">` + "\n")
	for _, e := range d.elements {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteString(`</svg>`)
	return b.String()
}
