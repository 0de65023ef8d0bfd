package shortestpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/transitcat/internal/graph"
)

func TestSelfRouteZeroWeightEmptyEdges(t *testing.T) {
	g := graph.NewGraph(3)
	g.AddEdge(0, 1, 4)
	g.AddEdge(1, 2, 4)
	table := AllPairs(g)

	r, ok := table.Route(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, r.Weight)
	assert.Empty(t, r.Edges)
}

func TestUnreachableIsNotFound(t *testing.T) {
	g := graph.NewGraph(2)
	// vertex 1 has no outgoing edge back to 0, and 0 has none to 1.
	table := AllPairs(g)
	_, ok := table.Route(0, 1)
	assert.False(t, ok)
}

func TestRouteOptimalityAgainstDirectEdge(t *testing.T) {
	g := graph.NewGraph(3)
	direct := g.AddEdge(0, 2, 100)
	g.AddEdge(0, 1, 10)
	g.AddEdge(1, 2, 10)
	table := AllPairs(g)

	r, ok := table.Route(0, 2)
	require.True(t, ok)
	assert.Equal(t, 20.0, r.Weight)
	assert.Len(t, r.Edges, 2)
	assert.NotContains(t, r.Edges, direct)
}

func TestTieBreakFirstEdgeWins(t *testing.T) {
	g := graph.NewGraph(2)
	first := g.AddEdge(0, 1, 5)
	g.AddEdge(0, 1, 5) // identical weight, added later
	table := AllPairs(g)

	r, ok := table.Route(0, 1)
	require.True(t, ok)
	require.Len(t, r.Edges, 1)
	assert.Equal(t, first, r.Edges[0])
}

func TestNegativeWeightPanics(t *testing.T) {
	g := graph.NewGraph(2)
	g.AddEdge(0, 1, -1)
	assert.Panics(t, func() { AllPairs(g) })
}

func TestMultiHopReconstruction(t *testing.T) {
	g := graph.NewGraph(4)
	e01 := g.AddEdge(0, 1, 1)
	e12 := g.AddEdge(1, 2, 1)
	e23 := g.AddEdge(2, 3, 1)
	table := AllPairs(g)

	r, ok := table.Route(0, 3)
	require.True(t, ok)
	assert.Equal(t, 3.0, r.Weight)
	assert.Equal(t, []graph.EdgeID{e01, e12, e23}, r.Edges)
}
