package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Graph construction metrics
var (
	graphBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transport_graph_build_duration_seconds",
		Help:    "Time to build the routing graph from the catalogue",
		Buckets: []float64{0.001, 0.01, 0.1, 1, 10},
	})

	graphVertices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transport_graph_vertices",
		Help: "Number of vertices in the routing graph",
	})

	graphEdges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "transport_graph_edges",
		Help: "Number of edges in the routing graph by kind",
	}, []string{"kind"})
)

// Query metrics
var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_queries_total",
		Help: "Stat queries served by type and outcome",
	}, []string{"type", "outcome"})

	routeQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transport_route_query_duration_seconds",
		Help:    "Time to answer a shortest-time route query",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})
)

// HTTP metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_http_requests_total",
		Help: "HTTP requests by method, route, status and cache usage",
	}, []string{"method", "route", "status", "cache_hit"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transport_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// ObserveGraphBuild records the shape and cost of a finished graph build
func ObserveGraphBuild(duration time.Duration, vertices, waitEdges, travelEdges int) {
	graphBuildDuration.Observe(duration.Seconds())
	graphVertices.Set(float64(vertices))
	graphEdges.WithLabelValues("wait").Set(float64(waitEdges))
	graphEdges.WithLabelValues("travel").Set(float64(travelEdges))
}

// ObserveQuery counts a served stat query
func ObserveQuery(queryType string, found bool) {
	outcome := "found"
	if !found {
		outcome = "not_found"
	}
	queriesTotal.WithLabelValues(queryType, outcome).Inc()
}

// ObserveRouteQuery records the latency of a route query
func ObserveRouteQuery(duration time.Duration) {
	routeQueryDuration.Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served HTTP request
func ObserveHTTPRequest(method, route string, status int, cacheHit bool, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status), strconv.FormatBool(cacheHit)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
