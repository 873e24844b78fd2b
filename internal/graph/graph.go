package graph

import "fmt"

// VertexID identifies a vertex in a DirectedWeightedGraph
type VertexID int

// EdgeID identifies an edge in a DirectedWeightedGraph, in insertion order
type EdgeID int

// Edge represents a weighted directed connection between two vertices
type Edge struct {
	From   VertexID
	To     VertexID
	Weight float64
}

// DirectedWeightedGraph holds a fixed set of vertices and a growing list of edges.
// Edges are stored once and referenced by id from per-vertex incidence lists.
type DirectedWeightedGraph struct {
	edges     []Edge
	incidence [][]EdgeID // fromVertex -> outgoing edges
}

// NewDirectedWeightedGraph creates a graph with vertexCount vertices and no edges
func NewDirectedWeightedGraph(vertexCount int) *DirectedWeightedGraph {
	return &DirectedWeightedGraph{
		incidence: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends an edge and returns its id
func (g *DirectedWeightedGraph) AddEdge(edge Edge) (EdgeID, error) {
	if !g.validVertex(edge.From) || !g.validVertex(edge.To) {
		return 0, fmt.Errorf("edge %d -> %d out of range for %d vertices", edge.From, edge.To, len(g.incidence))
	}
	if edge.Weight < 0 {
		return 0, fmt.Errorf("edge %d -> %d has negative weight %f", edge.From, edge.To, edge.Weight)
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edge)
	g.incidence[edge.From] = append(g.incidence[edge.From], id)
	return id, nil
}

// VertexCount returns the number of vertices
func (g *DirectedWeightedGraph) VertexCount() int {
	return len(g.incidence)
}

// EdgeCount returns the number of edges
func (g *DirectedWeightedGraph) EdgeCount() int {
	return len(g.edges)
}

// GetEdge returns an edge by id
func (g *DirectedWeightedGraph) GetEdge(id EdgeID) Edge {
	return g.edges[id]
}

// IncidentEdges returns the ids of the edges leaving a vertex
func (g *DirectedWeightedGraph) IncidentEdges(v VertexID) []EdgeID {
	if !g.validVertex(v) {
		return nil
	}
	return g.incidence[v]
}

func (g *DirectedWeightedGraph) validVertex(v VertexID) bool {
	return v >= 0 && int(v) < len(g.incidence)
}
