// Package graph is a minimal directed weighted graph over dense integer
// vertex ids, built once and read many times. Unlike a general-purpose
// graph library it never removes a vertex or edge — the router compiles
// its graph once at build time and only ever queries it afterward, so the
// mutation surface is deliberately small: one constructor, one append-only
// AddEdge, and read accessors.
package graph

// VertexID indexes a vertex. Vertices are always [0, VertexCount).
type VertexID int32

// EdgeID indexes an edge in insertion order.
type EdgeID int32

// Edge is a directed, weighted edge. The graph itself does not check the
// sign of Weight (see AddEdge).
type Edge struct {
	From   VertexID
	To     VertexID
	Weight float64
}

// Graph is a directed weighted graph over [0, vertexCount) vertices.
// Each vertex keeps its outgoing edge ids in insertion order, which is
// what lets the shortest-path engine's "first edge wins" tie-break be
// well defined.
type Graph struct {
	vertexCount int
	edges       []Edge
	outgoing    [][]EdgeID
}

// NewGraph constructs an empty graph over vertexCount vertices.
func NewGraph(vertexCount int) *Graph {
	return &Graph{
		vertexCount: vertexCount,
		outgoing:    make([][]EdgeID, vertexCount),
	}
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return g.vertexCount }

// EdgeCount returns the number of edges added so far.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// AddEdge appends a new directed edge from → to with the given weight and
// returns its id. Negative weights are accepted here — they are only
// rejected, as a programmer-error assertion, when the shortest-path
// engine initializes (see package shortestpath).
func (g *Graph) AddEdge(from, to VertexID, weight float64) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{From: from, To: to, Weight: weight})
	g.outgoing[from] = append(g.outgoing[from], id)
	return id
}

// Edge returns the edge stored under id. Panics if id is out of range,
// since edge ids are only ever produced by this graph itself.
func (g *Graph) Edge(id EdgeID) Edge { return g.edges[id] }

// IncidentEdges returns the ids of edges outgoing from v, in the order
// they were added.
func (g *Graph) IncidentEdges(v VertexID) []EdgeID { return g.outgoing[v] }

// Edges returns every edge in the graph, in insertion (edge-id) order.
func (g *Graph) Edges() []Edge { return g.edges }
