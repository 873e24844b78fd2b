package graph

import (
	"container/heap"
	"math"
)

// RouteInfo is the result of a shortest-path query
type RouteInfo struct {
	Weight float64
	Edges  []EdgeID
}

// Router answers minimum-weight path queries over a DirectedWeightedGraph.
// It never mutates the graph and keeps no per-query state, so a single Router
// can serve concurrent readers once the graph is complete.
type Router struct {
	graph *DirectedWeightedGraph
}

// NewRouter creates a router over a finished graph
func NewRouter(g *DirectedWeightedGraph) *Router {
	return &Router{graph: g}
}

// BuildRoute finds the minimum-weight path between two vertices using Dijkstra's algorithm.
// Returns false when to is unreachable from from.
func (r *Router) BuildRoute(from, to VertexID) (RouteInfo, bool) {
	n := r.graph.VertexCount()
	if !r.graph.validVertex(from) || !r.graph.validVertex(to) {
		return RouteInfo{}, false
	}

	dist := make([]float64, n)
	prevEdge := make([]EdgeID, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prevEdge[i] = -1
	}
	dist[from] = 0

	openSet := &PriorityQueue{}
	heap.Init(openSet)
	heap.Push(openSet, &queueItem{vertex: from, dist: 0})

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*queueItem)

		// Stale entry, a shorter distance was already settled
		if current.dist > dist[current.vertex] {
			continue
		}
		if current.vertex == to {
			break
		}

		for _, edgeID := range r.graph.IncidentEdges(current.vertex) {
			edge := r.graph.GetEdge(edgeID)
			tentative := current.dist + edge.Weight
			if tentative < dist[edge.To] {
				dist[edge.To] = tentative
				prevEdge[edge.To] = edgeID
				heap.Push(openSet, &queueItem{vertex: edge.To, dist: tentative})
			}
		}
	}

	if math.IsInf(dist[to], 1) {
		return RouteInfo{}, false
	}

	// Walk predecessors back from the target
	var edges []EdgeID
	for v := to; v != from; {
		edgeID := prevEdge[v]
		edges = append(edges, edgeID)
		v = r.graph.GetEdge(edgeID).From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return RouteInfo{Weight: dist[to], Edges: edges}, true
}

// queueItem represents a vertex waiting in the Dijkstra open set
type queueItem struct {
	vertex VertexID
	dist   float64
	index  int // for heap
}

// PriorityQueue implements heap.Interface for the Dijkstra open set
type PriorityQueue []*queueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].dist < pq[j].dist
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*queueItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}
