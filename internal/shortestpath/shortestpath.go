// Package shortestpath computes all-pairs shortest paths over a
// non-negative-weight graph.Graph and reconstructs the edge sequence of
// any particular route on demand.
//
// The algorithm is the Floyd–Warshall-style relaxation described by the
// reference transport router: rather than the textbook V×V distance
// matrix, each cell also remembers the last edge of its best known path,
// so a route can be rebuilt by walking predecessors backward without a
// second pass over the graph.
//
// Complexity: O(V^3) time, O(V^2) memory. Acceptable because V is the
// number of stops in one city's network (hundreds to low thousands) and
// the computation happens once, offline, at build time.
package shortestpath

import (
	"fmt"

	"github.com/antigravity/transitcat/internal/graph"
)

// cell holds the best known weight from one vertex to another, and the id
// of the last edge on that path. A zero-value cell (Present == false)
// means "no path found yet".
type cell struct {
	weight   float64
	prevEdge graph.EdgeID
	hasEdge  bool
	present  bool
}

// Table is the sealed V×V shortest-path table for one graph.
type Table struct {
	g        *graph.Graph
	vertices int
	cells    [][]cell
}

// Cell is the serializable projection of one table entry, used by
// package snapshot to persist and restore a Table without re-running
// AllPairs. Present distinguishes "no path" (zero value) from a true
// zero-weight entry; HasEdge distinguishes a diagonal/self entry (no
// predecessor edge) from every other entry.
type Cell struct {
	Weight   float64
	PrevEdge graph.EdgeID
	HasEdge  bool
	Present  bool
}

// Cells exports the table's V×V grid in row-major (from-vertex-major)
// order, for serialization.
func (t *Table) Cells() [][]Cell {
	out := make([][]Cell, t.vertices)
	for i, row := range t.cells {
		outRow := make([]Cell, len(row))
		for j, c := range row {
			outRow[j] = Cell{Weight: c.weight, PrevEdge: c.prevEdge, HasEdge: c.hasEdge, Present: c.present}
		}
		out[i] = outRow
	}
	return out
}

// FromCells reconstructs a Table from a previously exported grid, without
// re-running AllPairs. g must be the same graph the cells were computed
// against (its edges are referenced by PrevEdge ids).
func FromCells(g *graph.Graph, cells [][]Cell) *Table {
	t := &Table{g: g, vertices: g.VertexCount(), cells: make([][]cell, len(cells))}
	for i, row := range cells {
		outRow := make([]cell, len(row))
		for j, c := range row {
			outRow[j] = cell{weight: c.Weight, prevEdge: c.PrevEdge, hasEdge: c.HasEdge, present: c.Present}
		}
		t.cells[i] = outRow
	}
	return t
}

// Route is the answer to a from→to query: total weight and the ordered
// edges composing the path.
type Route struct {
	Weight float64
	Edges  []graph.EdgeID
}

// negativeWeightError is the message used by the panic raised when a
// negative edge weight reaches AllPairs. Weights here are always derived
// from positive road distances and a non-negative wait time, so this
// indicates a bug upstream, not a condition callers should recover from.
func negativeWeightError(e graph.Edge) string {
	return fmt.Sprintf("shortestpath: negative edge weight: %d->%d weight=%v", e.From, e.To, e.Weight)
}

// AllPairs computes the shortest-path table for g.
//
// Initialization: table[v][v] = {0, no edge}; for each outgoing edge
// e = (v->w, wt), table[v][w] is set to {wt, e} if absent or strictly
// better — first edge wins on a tie, since later edges of equal weight
// never satisfy "strictly better".
//
// Relaxation: for each intermediate vertex k in order 0..V, for each
// (i, j), if table[i][k] and table[k][j] are both present, the candidate
// weight replaces table[i][j] only when strictly smaller; the new
// predecessor edge is table[k][j]'s if present, else table[i][k]'s.
//
// Panics if any edge in g has a negative weight — this is a programmer
// error (see negativeWeightError), never a recoverable query-time
// condition.
func AllPairs(g *graph.Graph) *Table {
	v := g.VertexCount()
	t := &Table{g: g, vertices: v, cells: make([][]cell, v)}
	for i := range t.cells {
		t.cells[i] = make([]cell, v)
	}

	for from := graph.VertexID(0); int(from) < v; from++ {
		t.cells[from][from] = cell{weight: 0, present: true}
		for _, eid := range g.IncidentEdges(from) {
			e := g.Edge(eid)
			if e.Weight < 0 {
				panic(negativeWeightError(e))
			}
			c := &t.cells[from][e.To]
			if !c.present || e.Weight < c.weight {
				*c = cell{weight: e.Weight, prevEdge: eid, hasEdge: true, present: true}
			}
		}
	}

	for k := 0; k < v; k++ {
		for i := 0; i < v; i++ {
			through := t.cells[i][k]
			if !through.present {
				continue
			}
			for j := 0; j < v; j++ {
				onward := t.cells[k][j]
				if !onward.present {
					continue
				}
				candidate := through.weight + onward.weight
				cur := &t.cells[i][j]
				if cur.present && candidate >= cur.weight {
					continue
				}
				prev := onward.prevEdge
				hasPrev := onward.hasEdge
				if !hasPrev {
					prev = through.prevEdge
					hasPrev = through.hasEdge
				}
				*cur = cell{weight: candidate, prevEdge: prev, hasEdge: hasPrev, present: true}
			}
		}
	}

	return t
}

// Route returns the shortest route from → to, or ok == false if to is
// unreachable from from. from == to is distinguished from "unreachable":
// it always returns a zero-weight, empty-edge-list route.
func (t *Table) Route(from, to graph.VertexID) (Route, bool) {
	c := t.cells[from][to]
	if !c.present {
		return Route{}, false
	}
	if from == to {
		return Route{Weight: 0, Edges: nil}, true
	}

	var edges []graph.EdgeID
	edgeID := c.prevEdge
	hasEdge := c.hasEdge
	for hasEdge {
		edges = append(edges, edgeID)
		e := t.g.Edge(edgeID)
		step := t.cells[from][e.From]
		edgeID = step.prevEdge
		hasEdge = step.hasEdge
	}

	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return Route{Weight: c.weight, Edges: edges}, true
}
