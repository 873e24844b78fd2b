package reader

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/handler"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "base_requests": [
    {"type": "Bus", "name": "1", "stops": ["A", "B", "C"], "is_roundtrip": false},
    {"type": "Stop", "name": "A", "latitude": 55.611087, "longitude": 37.20829, "road_distances": {"B": 1000}},
    {"type": "Stop", "name": "B", "latitude": 55.595884, "longitude": 37.209755, "road_distances": {"C": 1200, "A": 900}},
    {"type": "Stop", "name": "C", "latitude": 55.632761, "longitude": 37.333324, "road_distances": {"B": 1100}},
    {"type": "Stop", "name": "Depot", "latitude": 55.574371, "longitude": 37.6517}
  ],
  "routing_settings": {"bus_wait_time": 6, "bus_velocity": 40},
  "render_settings": {
    "width": 600, "height": 400, "padding": 50,
    "line_width": 14, "stop_radius": 5,
    "bus_label_font_size": 20, "bus_label_offset": [7, 15],
    "stop_label_font_size": 20, "stop_label_offset": [7, -3],
    "underlayer_color": [255, 255, 255, 0.85], "underlayer_width": 3,
    "color_palette": ["green", [255, 160, 0], "red"]
  },
  "stat_requests": [
    {"id": 1, "type": "Bus", "name": "1"},
    {"id": 2, "type": "Stop", "name": "B"},
    {"id": 3, "type": "Stop", "name": "Depot"},
    {"id": 4, "type": "Stop", "name": "Nowhere"},
    {"id": 5, "type": "Bus", "name": "751"},
    {"id": 6, "type": "Route", "from": "A", "to": "C"},
    {"id": 7, "type": "Route", "from": "A", "to": "Depot"},
    {"id": 8, "type": "Map"}
  ]
}`

func loadSample(t *testing.T) (*Document, *handler.Handler) {
	t.Helper()
	doc, err := Decode(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	h, err := Build(doc, nil)
	require.NoError(t, err)
	return doc, h
}

func TestDecode(t *testing.T) {
	doc, _ := loadSample(t)

	assert.Len(t, doc.BaseRequests, 5)
	assert.Len(t, doc.StatRequests, 8)
	require.NotNil(t, doc.RoutingSettings)
	assert.Equal(t, 6, doc.RoutingSettings.BusWaitTime)
	assert.Equal(t, 40.0, doc.RoutingSettings.BusVelocity)
	require.NotNil(t, doc.RenderSettings)
	assert.Equal(t, [2]float64{7, -3}, doc.RenderSettings.StopLabelOffset)
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "Malformed JSON",
			doc:  `{"base_requests": [`,
		},
		{
			name: "Unknown base request type",
			doc:  `{"base_requests": [{"type": "Tram", "name": "T"}]}`,
		},
		{
			name: "Stop without coordinates",
			doc:  `{"base_requests": [{"type": "Stop", "name": "A"}]}`,
		},
		{
			name: "Latitude out of range",
			doc:  `{"base_requests": [{"type": "Stop", "name": "A", "latitude": 91, "longitude": 0}]}`,
		},
		{
			name: "Negative road distance",
			doc:  `{"base_requests": [{"type": "Stop", "name": "A", "latitude": 0, "longitude": 0, "road_distances": {"B": -1}}]}`,
		},
		{
			name: "Bus without roundtrip flag",
			doc:  `{"base_requests": [{"type": "Bus", "name": "1", "stops": ["A"]}]}`,
		},
		{
			name: "Bus without stops",
			doc:  `{"base_requests": [{"type": "Bus", "name": "1", "is_roundtrip": true}]}`,
		},
		{
			name: "Route request without destination",
			doc:  `{"stat_requests": [{"id": 1, "type": "Route", "from": "A"}]}`,
		},
		{
			name: "Bus request without name",
			doc:  `{"stat_requests": [{"id": 1, "type": "Bus"}]}`,
		},
		{
			name: "Zero bus velocity",
			doc:  `{"routing_settings": {"bus_wait_time": 6, "bus_velocity": 0}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	t.Run("Roundtrip flag false is accepted", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"base_requests": [{"type": "Bus", "name": "1", "stops": [], "is_roundtrip": false}]}`))
		assert.NoError(t, err)
	})

	t.Run("Map request needs no name", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"stat_requests": [{"id": 1, "type": "Map"}]}`))
		assert.NoError(t, err)
	})
}

func TestDecodeStatRequests(t *testing.T) {
	requests, err := DecodeStatRequests([]byte(`[{"id": 3, "type": "Stop", "name": "A"}]`))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, 3, requests[0].ID)

	_, err = DecodeStatRequests([]byte(`[{"id": 3, "type": "Stop"}]`))
	assert.Error(t, err)

	t.Run("Single request", func(t *testing.T) {
		req, err := DecodeStatRequest([]byte(`{"id": 4, "type": "Route", "from": "A", "to": "C"}`))
		require.NoError(t, err)
		assert.Equal(t, StatRequest{ID: 4, Type: models.RequestRoute, From: "A", To: "C"}, req)

		_, err = DecodeStatRequest([]byte(`{"id": 4, "type": "Route", "from": "A"}`))
		assert.Error(t, err)
	})
}

func TestFillCatalogue(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	cat := catalogue.New()
	require.NoError(t, FillCatalogue(doc, cat))

	assert.Equal(t, 4, cat.StopCount())
	assert.Equal(t, 1, cat.BusCount())

	a, _ := cat.FindStop("A")
	b, _ := cat.FindStop("B")
	assert.Equal(t, 1000, cat.GetDistance(a.ID, b.ID))
	assert.Equal(t, 900, cat.GetDistance(b.ID, a.ID))

	t.Run("Distance to unknown stop", func(t *testing.T) {
		doc, err := Decode(strings.NewReader(`{"base_requests": [
			{"type": "Stop", "name": "A", "latitude": 0, "longitude": 0, "road_distances": {"Ghost": 10}}
		]}`))
		require.NoError(t, err)
		err = FillCatalogue(doc, catalogue.New())
		assert.ErrorIs(t, err, ErrUnknownStopReference)
	})

	t.Run("Bus through unknown stop", func(t *testing.T) {
		doc, err := Decode(strings.NewReader(`{"base_requests": [
			{"type": "Bus", "name": "1", "stops": ["Ghost"], "is_roundtrip": true}
		]}`))
		require.NoError(t, err)
		err = FillCatalogue(doc, catalogue.New())
		assert.ErrorIs(t, err, ErrUnknownStopReference)
	})

	t.Run("Rejected duplicates", func(t *testing.T) {
		doc, err := Decode(strings.NewReader(`{"base_requests": [
			{"type": "Stop", "name": "A", "latitude": 0, "longitude": 0},
			{"type": "Stop", "name": "A", "latitude": 1, "longitude": 1}
		]}`))
		require.NoError(t, err)
		err = FillCatalogue(doc, catalogue.New(catalogue.WithDuplicatePolicy(catalogue.RejectDuplicates)))
		assert.ErrorIs(t, err, catalogue.ErrDuplicateStop)
	})
}

func TestProcessRequests(t *testing.T) {
	doc, h := loadSample(t)

	node, err := ProcessRequests(h, doc.StatRequests)
	require.NoError(t, err)

	responses, ok := node.([]any)
	require.True(t, ok)
	require.Len(t, responses, 8)

	response := func(i int) map[string]any {
		r, ok := responses[i].(map[string]any)
		require.True(t, ok)
		return r
	}

	t.Run("Bus", func(t *testing.T) {
		r := response(0)
		assert.Equal(t, 1, r["request_id"])
		assert.Equal(t, 4200, r["route_length"])
		assert.Equal(t, 5, r["stop_count"])
		assert.Equal(t, 3, r["unique_stop_count"])
		assert.Greater(t, r["curvature"].(float64), 0.0)
	})

	t.Run("Stop", func(t *testing.T) {
		assert.Equal(t, []any{"1"}, response(1)["buses"])
		assert.Equal(t, []any{}, response(2)["buses"])
	})

	t.Run("Not found", func(t *testing.T) {
		for _, i := range []int{3, 4, 6} {
			r := response(i)
			assert.Equal(t, "not found", r["error_message"])
			assert.Len(t, r, 2)
		}
	})

	t.Run("Route", func(t *testing.T) {
		r := response(5)
		assert.InDelta(t, 9.3, r["total_time"].(float64), 1e-9)

		items := r["items"].([]any)
		require.Len(t, items, 2)

		wait := items[0].(map[string]any)
		assert.Equal(t, "Wait", wait["type"])
		assert.Equal(t, "A", wait["stop_name"])
		assert.Equal(t, 6.0, wait["time"])

		ride := items[1].(map[string]any)
		assert.Equal(t, "Bus", ride["type"])
		assert.Equal(t, "1", ride["bus"])
		assert.Equal(t, 2, ride["span_count"])
		assert.InDelta(t, 3.3, ride["time"].(float64), 1e-9)
	})

	t.Run("Map", func(t *testing.T) {
		m := response(7)["map"].(string)
		assert.True(t, strings.HasPrefix(m, "<?xml"))
		assert.Contains(t, m, `stroke="green"`)
		assert.Contains(t, m, `fill="rgba(255,255,255,0.85)"`)
	})
}

func TestProcessRequestsWithoutSettings(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{
		"base_requests": [{"type": "Stop", "name": "A", "latitude": 0, "longitude": 0}],
		"stat_requests": [{"id": 1, "type": "Map"}]
	}`))
	require.NoError(t, err)

	h, err := Build(doc, nil)
	require.NoError(t, err)

	_, err = ProcessRequests(h, doc.StatRequests)
	assert.ErrorIs(t, err, handler.ErrRenderingDisabled)

	_, err = ProcessRequests(h, []StatRequest{{ID: 2, Type: "Route", From: "A", To: "A"}})
	assert.ErrorIs(t, err, handler.ErrRoutingDisabled)
}

func TestRespond(t *testing.T) {
	_, h := loadSample(t)

	node, err := Respond(h, StatRequest{ID: 42, Type: "Stop", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"request_id": 42, "buses": []any{"1"}}, node)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, []any{map[string]any{"map": "<svg>", "request_id": 1}}))

	out := buf.String()
	assert.Contains(t, out, `"map": "<svg>"`)
	assert.Contains(t, out, "\n    {")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1.0, decoded[0]["request_id"])
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    svg.Color
		wantErr bool
	}{
		{name: "Named", raw: "red", want: "red"},
		{name: "RGB", raw: []any{255.0, 16.0, 12.0}, want: "rgb(255,16,12)"},
		{name: "RGBA", raw: []any{255.0, 200.0, 23.0, 0.85}, want: "rgba(255,200,23,0.85)"},
		{name: "Too few components", raw: []any{1.0, 2.0}, wantErr: true},
		{name: "Component out of range", raw: []any{256.0, 0.0, 0.0}, wantErr: true},
		{name: "Fractional component", raw: []any{1.5, 0.0, 0.0}, wantErr: true},
		{name: "Opacity out of range", raw: []any{0.0, 0.0, 0.0, 2.0}, wantErr: true},
		{name: "Wrong type", raw: 42.0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToRendererSettings(t *testing.T) {
	rs := RenderSettings{
		Width:           100,
		Height:          100,
		Padding:         60,
		UnderlayerColor: "white",
		ColorPalette:    []any{"red"},
	}

	_, err := rs.ToRendererSettings()
	assert.Error(t, err)

	rs.Padding = 10
	rs.BusLabelOffset = [2]float64{1, 2}
	settings, err := rs.ToRendererSettings()
	require.NoError(t, err)
	assert.Equal(t, svg.Point{X: 1, Y: 2}, settings.BusLabelOffset)
	assert.Equal(t, []svg.Color{"red"}, settings.ColorPalette)

	rs.ColorPalette = []any{true}
	_, err = rs.ToRendererSettings()
	assert.ErrorIs(t, err, ErrInvalidColor)
}
