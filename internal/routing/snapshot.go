package routing

import (
	"github.com/antigravity/transitcat/internal/catalogue"
	"github.com/antigravity/transitcat/internal/graph"
	"github.com/antigravity/transitcat/internal/shortestpath"
)

// EdgeMeta is the serializable projection of one edge's metadata —
// which bus produced it and how many stop-spans it covers — used by
// package snapshot to persist and restore a Router without recompiling
// it from the catalogue.
type EdgeMeta struct {
	Bus       BusID
	SpanCount int
}

// EdgeMetas exports the router's per-edge metadata in edge-id order.
func (r *Router) EdgeMetas() []EdgeMeta {
	out := make([]EdgeMeta, len(r.edges))
	for i, e := range r.edges {
		out[i] = EdgeMeta{Bus: e.bus, SpanCount: e.spanCount}
	}
	return out
}

// Graph exposes the compiled graph for serialization.
func (r *Router) Graph() *graph.Graph { return r.g }

// Table exposes the compiled shortest-path table for serialization.
func (r *Router) Table() *shortestpath.Table { return r.table }

// FromComponents reconstructs a sealed Router from previously serialized
// pieces, without recompiling the graph or re-running the all-pairs
// engine. cat must already be sealed and must be the same catalogue the
// components were derived from.
func FromComponents(cat *catalogue.Catalogue, waitTimeMin, velocityMPerMin float64, g *graph.Graph, edgeMetas []EdgeMeta, cells [][]shortestpath.Cell) *Router {
	r := &Router{cat: cat, waitTimeMin: waitTimeMin, velocity: velocityMPerMin, g: g}

	sorted := cat.AllStops()
	r.vertexOf = make(map[StopID]graph.VertexID, len(sorted))
	r.stopName = make([]string, len(sorted))
	for i, s := range sorted {
		r.vertexOf[s.ID] = graph.VertexID(i)
		r.stopName[i] = s.Name
	}

	r.edges = make([]edgeInfo, len(edgeMetas))
	for i, m := range edgeMetas {
		r.edges[i] = edgeInfo{bus: m.Bus, spanCount: m.SpanCount}
	}

	r.table = shortestpath.FromCells(g, cells)
	return r
}
