package routing

import (
	"testing"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/graph"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSettings = models.RoutingSettings{BusWaitTime: 6, BusVelocity: 40}

// newScenario builds stops A, B, C with asymmetric distances, linear bus "1" over them
// and an isolated stop D
func newScenario(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	c := catalogue.New()

	ids := make(map[string]models.StopID)
	for _, name := range []string{"A", "B", "C", "D"} {
		id, err := c.AddStop(name, geo.Coordinates{})
		require.NoError(t, err)
		ids[name] = id
	}

	c.SetDistance(ids["A"], ids["B"], 1000)
	c.SetDistance(ids["B"], ids["C"], 1200)
	c.SetDistance(ids["B"], ids["A"], 900)
	c.SetDistance(ids["C"], ids["B"], 1100)

	_, err := c.AddRoute("1", []models.StopID{ids["A"], ids["B"], ids["C"]}, false)
	require.NoError(t, err)

	return c
}

func TestBuildGraphSize(t *testing.T) {
	c := newScenario(t)
	r := NewRouter(testSettings)
	require.NoError(t, r.BuildGraph(c))

	g := r.Graph()
	require.NotNil(t, g)
	assert.Equal(t, 8, g.VertexCount())
	// 4 wait edges + 3 position pairs in both directions
	assert.Equal(t, 4+6, g.EdgeCount())
}

func TestBuildGraphVertexScheme(t *testing.T) {
	c := newScenario(t)
	r := NewRouter(testSettings)
	require.NoError(t, r.BuildGraph(c))

	for i, name := range []string{"A", "B", "C", "D"} {
		v, ok := r.ArrivalVertex(name)
		require.True(t, ok)
		assert.Equal(t, graph.VertexID(2*i), v)

		// first edges are the wait edges in name order
		wait := r.Graph().GetEdge(graph.EdgeID(i))
		assert.Equal(t, v, wait.From)
		assert.Equal(t, v+1, wait.To)
		assert.Equal(t, 6.0, wait.Weight)
	}
}

func TestBuildGraphRoundtripEdges(t *testing.T) {
	c := catalogue.New()
	a, _ := c.AddStop("A", geo.Coordinates{})
	b, _ := c.AddStop("B", geo.Coordinates{})
	d, _ := c.AddStop("D", geo.Coordinates{})
	c.SetDistance(a, b, 500)
	c.SetDistance(b, d, 500)
	c.SetDistance(d, a, 500)
	_, err := c.AddRoute("ring", []models.StopID{a, b, d, a}, true)
	require.NoError(t, err)

	r := NewRouter(testSettings)
	require.NoError(t, r.BuildGraph(c))

	// L = 4 gives L(L-1)/2 forward-only ride edges
	assert.Equal(t, 3+6, r.Graph().EdgeCount())
}

func TestFindRoute(t *testing.T) {
	c := newScenario(t)
	r := NewRouter(testSettings)
	require.NoError(t, r.BuildGraph(c))

	t.Run("Direct ride beats transfer", func(t *testing.T) {
		route, err := r.FindRoute("A", "C")
		require.NoError(t, err)
		require.NotNil(t, route)

		assert.InDelta(t, 9.3, route.TotalTime, 1e-9)
		require.Len(t, route.Items, 2)

		assert.Equal(t, models.ItemWait, route.Items[0].Type)
		assert.Equal(t, "A", route.Items[0].StopName)
		assert.Equal(t, 6.0, route.Items[0].Time)

		assert.Equal(t, models.ItemBus, route.Items[1].Type)
		assert.Equal(t, "1", route.Items[1].Bus)
		assert.Equal(t, 2, route.Items[1].SpanCount)
		assert.InDelta(t, 3.3, route.Items[1].Time, 1e-9)
		assert.Len(t, route.Edges, 2)
	})

	t.Run("Reverse direction uses reverse distances", func(t *testing.T) {
		route, err := r.FindRoute("C", "A")
		require.NoError(t, err)
		require.NotNil(t, route)

		// (1100 + 900) m at 40 km/h is 3 minutes
		assert.InDelta(t, 9.0, route.TotalTime, 1e-9)
		assert.Equal(t, 2, route.Items[1].SpanCount)
	})

	t.Run("Single hop", func(t *testing.T) {
		route, err := r.FindRoute("B", "A")
		require.NoError(t, err)
		require.NotNil(t, route)
		assert.InDelta(t, 6+1.35, route.TotalTime, 1e-9)
		assert.Equal(t, 1, route.Items[1].SpanCount)
	})

	t.Run("Same stop", func(t *testing.T) {
		route, err := r.FindRoute("B", "B")
		require.NoError(t, err)
		require.NotNil(t, route)
		assert.Equal(t, 0.0, route.TotalTime)
		assert.Empty(t, route.Items)
	})

	t.Run("Stop without buses is unreachable", func(t *testing.T) {
		route, err := r.FindRoute("A", "D")
		require.NoError(t, err)
		assert.Nil(t, route)

		route, err = r.FindRoute("D", "A")
		require.NoError(t, err)
		assert.Nil(t, route)
	})

	t.Run("Unknown stop", func(t *testing.T) {
		route, err := r.FindRoute("A", "Nowhere")
		require.NoError(t, err)
		assert.Nil(t, route)
	})
}

func TestRouterStates(t *testing.T) {
	c := newScenario(t)
	r := NewRouter(testSettings)

	t.Run("Query before build", func(t *testing.T) {
		assert.False(t, r.IsBuilt())
		assert.Equal(t, testSettings, r.Settings())
		_, err := r.FindRoute("A", "C")
		assert.ErrorIs(t, err, ErrGraphNotBuilt)
	})

	t.Run("Build is one-shot", func(t *testing.T) {
		require.NoError(t, r.BuildGraph(c))
		assert.True(t, r.IsBuilt())
		assert.ErrorIs(t, r.BuildGraph(c), ErrGraphAlreadyBuilt)
	})

	t.Run("Invalid velocity", func(t *testing.T) {
		bad := NewRouter(models.RoutingSettings{BusWaitTime: 6})
		assert.Error(t, bad.BuildGraph(c))
		assert.False(t, bad.IsBuilt())
	})
}

type stubEngine struct {
	calls []graph.VertexID
	info  graph.RouteInfo
	found bool
}

func (s *stubEngine) BuildRoute(from, to graph.VertexID) (graph.RouteInfo, bool) {
	s.calls = append(s.calls, from, to)
	return s.info, s.found
}

func TestFindRouteDelegatesToEngine(t *testing.T) {
	c := newScenario(t)
	stub := &stubEngine{
		info:  graph.RouteInfo{Weight: 6, Edges: []graph.EdgeID{1}},
		found: true,
	}
	r := NewRouter(testSettings, WithEngine(func(*graph.DirectedWeightedGraph) Engine {
		return stub
	}))
	require.NoError(t, r.BuildGraph(c))

	route, err := r.FindRoute("B", "C")
	require.NoError(t, err)
	require.NotNil(t, route)

	assert.Equal(t, []graph.VertexID{2, 4}, stub.calls)
	assert.Equal(t, 6.0, route.TotalTime)
	require.Len(t, route.Items, 1)
	assert.Equal(t, models.ItemWait, route.Items[0].Type)
	assert.Equal(t, "B", route.Items[0].StopName)

	stub.found = false
	route, err = r.FindRoute("B", "C")
	require.NoError(t, err)
	assert.Nil(t, route)
}

func TestBuildGraphSkipsShadowedStops(t *testing.T) {
	c := catalogue.New()
	oldA, _ := c.AddStop("A", geo.Coordinates{})
	b, _ := c.AddStop("B", geo.Coordinates{})
	cStop, _ := c.AddStop("C", geo.Coordinates{})
	c.SetDistance(b, oldA, 1000)
	c.SetDistance(oldA, cStop, 1000)
	_, err := c.AddRoute("1", []models.StopID{b, oldA, cStop}, false)
	require.NoError(t, err)
	_, err = c.AddStop("A", geo.Coordinates{})
	require.NoError(t, err)

	r := NewRouter(testSettings)
	require.NoError(t, r.BuildGraph(c))

	// vertices only for stops reachable by name
	assert.Equal(t, 6, r.Graph().VertexCount())
	// 3 wait edges + B<->C; pairs touching the shadowed entry are skipped
	assert.Equal(t, 3+2, r.Graph().EdgeCount())

	t.Run("Ride passes through the shadowed position", func(t *testing.T) {
		route, err := r.FindRoute("B", "C")
		require.NoError(t, err)
		require.NotNil(t, route)
		// 6 minutes waiting plus 2000 m at 40 km/h
		assert.InDelta(t, 6+3, route.TotalTime, 1e-9)
		require.Len(t, route.Items, 2)
		assert.Equal(t, "1", route.Items[1].Bus)
		assert.Equal(t, 2, route.Items[1].SpanCount)
	})

	t.Run("New entry is not served", func(t *testing.T) {
		route, err := r.FindRoute("A", "C")
		require.NoError(t, err)
		assert.Nil(t, route)
	})
}
