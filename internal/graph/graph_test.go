package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeAndAccessors(t *testing.T) {
	g := NewGraph(3)
	require.Equal(t, 3, g.VertexCount())

	e0 := g.AddEdge(0, 1, 5.0)
	e1 := g.AddEdge(0, 2, 7.5)
	e2 := g.AddEdge(1, 2, 1.0)

	assert.Equal(t, EdgeID(0), e0)
	assert.Equal(t, EdgeID(1), e1)
	assert.Equal(t, EdgeID(2), e2)
	assert.Equal(t, 3, g.EdgeCount())

	assert.Equal(t, Edge{From: 0, To: 1, Weight: 5.0}, g.Edge(e0))
	assert.Equal(t, []EdgeID{e0, e1}, g.IncidentEdges(0))
	assert.Equal(t, []EdgeID{e2}, g.IncidentEdges(1))
	assert.Empty(t, g.IncidentEdges(2))
}

func TestIncidentEdgesInsertionOrder(t *testing.T) {
	g := NewGraph(2)
	first := g.AddEdge(0, 1, 2.0)
	second := g.AddEdge(0, 1, 1.0) // parallel edge, strictly cheaper
	assert.Equal(t, []EdgeID{first, second}, g.IncidentEdges(0))
}
