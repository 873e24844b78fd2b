package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddEdge(t *testing.T, g *DirectedWeightedGraph, from, to VertexID, weight float64) EdgeID {
	t.Helper()
	id, err := g.AddEdge(Edge{From: from, To: to, Weight: weight})
	require.NoError(t, err)
	return id
}

func TestAddEdge(t *testing.T) {
	g := NewDirectedWeightedGraph(3)

	t.Run("Valid edge", func(t *testing.T) {
		id := mustAddEdge(t, g, 0, 1, 2.5)
		assert.Equal(t, EdgeID(0), id)
		assert.Equal(t, 1, g.EdgeCount())
		assert.Equal(t, []EdgeID{0}, g.IncidentEdges(0))
		assert.Empty(t, g.IncidentEdges(1))
	})

	t.Run("Out of range vertex", func(t *testing.T) {
		_, err := g.AddEdge(Edge{From: 0, To: 3, Weight: 1})
		assert.Error(t, err)
	})

	t.Run("Negative weight", func(t *testing.T) {
		_, err := g.AddEdge(Edge{From: 0, To: 2, Weight: -1})
		assert.Error(t, err)
	})

	assert.Equal(t, 3, g.VertexCount())
}

func TestBuildRoute(t *testing.T) {
	g := NewDirectedWeightedGraph(5)
	e01 := mustAddEdge(t, g, 0, 1, 4)
	e02 := mustAddEdge(t, g, 0, 2, 1)
	e21 := mustAddEdge(t, g, 2, 1, 2)
	e13 := mustAddEdge(t, g, 1, 3, 1)
	_ = e01

	r := NewRouter(g)

	t.Run("Picks cheaper detour", func(t *testing.T) {
		info, ok := r.BuildRoute(0, 3)
		require.True(t, ok)
		assert.InDelta(t, 4.0, info.Weight, 1e-9)
		assert.Equal(t, []EdgeID{e02, e21, e13}, info.Edges)
	})

	t.Run("Same vertex", func(t *testing.T) {
		info, ok := r.BuildRoute(2, 2)
		require.True(t, ok)
		assert.Equal(t, 0.0, info.Weight)
		assert.Empty(t, info.Edges)
	})

	t.Run("Unreachable vertex", func(t *testing.T) {
		_, ok := r.BuildRoute(0, 4)
		assert.False(t, ok)
	})

	t.Run("Direction matters", func(t *testing.T) {
		_, ok := r.BuildRoute(3, 0)
		assert.False(t, ok)
	})

	t.Run("Out of range", func(t *testing.T) {
		_, ok := r.BuildRoute(0, 9)
		assert.False(t, ok)
	})
}
