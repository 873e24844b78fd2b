package routing

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/passbi/transport_catalogue/internal/graph"
	"github.com/passbi/transport_catalogue/internal/metrics"
	"github.com/passbi/transport_catalogue/internal/models"
)

const (
	metersPerKilometer = 1000.0
	minutesPerHour     = 60.0
)

var (
	ErrGraphNotBuilt     = errors.New("routing graph is not built")
	ErrGraphAlreadyBuilt = errors.New("routing graph is already built")
)

// Network is the read-only view of a finished catalogue the router compiles
type Network interface {
	GetSortedAllStops() []models.Stop
	GetSortedAllBuses() []models.Bus
	GetDistance(from, to models.StopID) int
}

// Engine finds minimum-weight paths in a built graph
type Engine interface {
	BuildRoute(from, to graph.VertexID) (graph.RouteInfo, bool)
}

// EngineFactory creates an Engine over a finished graph
type EngineFactory func(g *graph.DirectedWeightedGraph) Engine

// Option configures a Router
type Option func(*Router)

// WithEngine replaces the default Dijkstra engine
func WithEngine(factory EngineFactory) Option {
	return func(r *Router) {
		r.newEngine = factory
	}
}

// edgeLabel describes what a graph edge means for a passenger
type edgeLabel struct {
	itemType models.ItemType
	name     string // stop name for waits, bus number for rides
	span     int
}

// Router compiles a catalogue into a time-weighted graph and answers fastest-route queries.
// Every stop owns two vertices: arrival (even) and departure (arrival + 1), joined by a wait edge.
// The graph is built once; a Router never returns to the unbuilt state.
type Router struct {
	settings  models.RoutingSettings
	newEngine EngineFactory

	graph        *graph.DirectedWeightedGraph
	engine       Engine
	stopVertices map[string]graph.VertexID // stop name -> arrival vertex
	labels       []edgeLabel               // indexed by graph.EdgeID
	built        bool
}

// NewRouter creates an unbuilt router
func NewRouter(settings models.RoutingSettings, opts ...Option) *Router {
	r := &Router{
		settings: settings,
		newEngine: func(g *graph.DirectedWeightedGraph) Engine {
			return graph.NewRouter(g)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Settings returns the routing settings
func (r *Router) Settings() models.RoutingSettings {
	return r.settings
}

// IsBuilt reports whether BuildGraph has completed
func (r *Router) IsBuilt() bool {
	return r.built
}

// Graph returns the built graph, or nil before BuildGraph
func (r *Router) Graph() *graph.DirectedWeightedGraph {
	return r.graph
}

// ArrivalVertex returns the arrival vertex of a stop
func (r *Router) ArrivalVertex(stopName string) (graph.VertexID, bool) {
	v, ok := r.stopVertices[stopName]
	return v, ok
}

// BuildGraph constructs the wait and travel edges of the whole network
func (r *Router) BuildGraph(network Network) error {
	if r.built {
		return ErrGraphAlreadyBuilt
	}
	if r.settings.BusVelocity <= 0 {
		return fmt.Errorf("invalid bus velocity %v", r.settings.BusVelocity)
	}
	if r.settings.BusWaitTime < 0 {
		return fmt.Errorf("invalid bus wait time %d", r.settings.BusWaitTime)
	}

	startTime := time.Now()

	stops := network.GetSortedAllStops()
	g := graph.NewDirectedWeightedGraph(len(stops) * 2)
	r.stopVertices = make(map[string]graph.VertexID, len(stops))
	r.labels = nil

	// 1. Wait edges
	vertexByStop := make(map[models.StopID]graph.VertexID, len(stops))
	waitEdges, err := r.addStopEdges(g, stops, vertexByStop)
	if err != nil {
		return fmt.Errorf("failed to build wait edges: %w", err)
	}

	// 2. Travel edges
	travelEdges, err := r.addBusEdges(g, network, vertexByStop)
	if err != nil {
		return fmt.Errorf("failed to build travel edges: %w", err)
	}

	r.graph = g
	r.engine = r.newEngine(g)
	r.built = true

	duration := time.Since(startTime)
	metrics.ObserveGraphBuild(duration, g.VertexCount(), waitEdges, travelEdges)
	log.Printf("Routing graph built in %v (%d vertices, %d wait edges, %d travel edges)",
		duration, g.VertexCount(), waitEdges, travelEdges)

	return nil
}

// addStopEdges assigns arrival/departure vertices in name order and joins them with wait edges
func (r *Router) addStopEdges(g *graph.DirectedWeightedGraph, stops []models.Stop, vertexByStop map[models.StopID]graph.VertexID) (int, error) {
	vertex := graph.VertexID(0)
	for _, stop := range stops {
		arrival, departure := vertex, vertex+1
		r.stopVertices[stop.Name] = arrival
		vertexByStop[stop.ID] = arrival

		if err := r.addEdge(g, graph.Edge{
			From:   arrival,
			To:     departure,
			Weight: float64(r.settings.BusWaitTime),
		}, edgeLabel{itemType: models.ItemWait, name: stop.Name}); err != nil {
			return 0, err
		}

		vertex += 2
	}
	return len(stops), nil
}

// addBusEdges connects every ordered pair of positions on each bus path with one ride edge
func (r *Router) addBusEdges(g *graph.DirectedWeightedGraph, network Network, vertexByStop map[models.StopID]graph.VertexID) (int, error) {
	count := 0
	for _, bus := range network.GetSortedAllBuses() {
		path := bus.Stops
		for i := 0; i < len(path); i++ {
			fromVertex, ok := vertexByStop[path[i]]
			if !ok {
				log.Printf("Warning: bus %s references unreachable stop id %d, skipping", bus.Number, path[i])
				continue
			}

			forward, backward := 0, 0
			for j := i + 1; j < len(path); j++ {
				forward += network.GetDistance(path[j-1], path[j])
				backward += network.GetDistance(path[j], path[j-1])

				toVertex, ok := vertexByStop[path[j]]
				if !ok {
					continue
				}
				label := edgeLabel{itemType: models.ItemBus, name: bus.Number, span: j - i}

				if err := r.addEdge(g, graph.Edge{
					From:   fromVertex + 1,
					To:     toVertex,
					Weight: r.travelTime(forward),
				}, label); err != nil {
					return 0, err
				}
				count++

				if !bus.IsRoundtrip {
					if err := r.addEdge(g, graph.Edge{
						From:   toVertex + 1,
						To:     fromVertex,
						Weight: r.travelTime(backward),
					}, label); err != nil {
						return 0, err
					}
					count++
				}
			}
		}
	}
	return count, nil
}

func (r *Router) addEdge(g *graph.DirectedWeightedGraph, edge graph.Edge, label edgeLabel) error {
	id, err := g.AddEdge(edge)
	if err != nil {
		return err
	}
	if int(id) != len(r.labels) {
		return fmt.Errorf("edge id %d out of sequence", id)
	}
	r.labels = append(r.labels, label)
	return nil
}

// travelTime converts meters into minutes at the network velocity
func (r *Router) travelTime(meters int) float64 {
	return float64(meters) / (r.settings.BusVelocity * metersPerKilometer / minutesPerHour)
}

// FindRoute finds the fastest journey between two stops.
// Returns nil without error when a stop is unknown or unreachable.
func (r *Router) FindRoute(from, to string) (*models.Route, error) {
	if !r.built {
		return nil, ErrGraphNotBuilt
	}

	fromVertex, ok := r.stopVertices[from]
	if !ok {
		return nil, nil
	}
	toVertex, ok := r.stopVertices[to]
	if !ok {
		return nil, nil
	}

	startTime := time.Now()
	info, found := r.engine.BuildRoute(fromVertex, toVertex)
	metrics.ObserveRouteQuery(time.Since(startTime))
	if !found {
		return nil, nil
	}

	return r.buildRoute(info), nil
}
