package reader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/passbi/transport_catalogue/internal/handler"
	"github.com/passbi/transport_catalogue/internal/jsonbuilder"
	"github.com/passbi/transport_catalogue/internal/models"
)

const notFoundMessage = "not found"

// ProcessRequests answers every stat request in order and returns the response array
func ProcessRequests(h *handler.Handler, requests []StatRequest) (any, error) {
	b := jsonbuilder.New().StartArray()
	for _, req := range requests {
		if err := writeResponse(b, h, req); err != nil {
			return nil, fmt.Errorf("request %d: %w", req.ID, err)
		}
	}
	return b.EndArray().Build()
}

// Respond answers a single stat request
func Respond(h *handler.Handler, req StatRequest) (any, error) {
	b := jsonbuilder.New()
	if err := writeResponse(b, h, req); err != nil {
		return nil, err
	}
	return b.Build()
}

func writeResponse(b *jsonbuilder.Builder, h *handler.Handler, req StatRequest) error {
	b.StartDict().Key("request_id").Value(req.ID)

	switch req.Type {
	case models.RequestBus:
		stat, ok := h.BusStat(req.Name)
		if !ok {
			writeNotFound(b)
			break
		}
		b.Key("curvature").Value(stat.Curvature).
			Key("route_length").Value(stat.RouteLength).
			Key("stop_count").Value(stat.StopCount).
			Key("unique_stop_count").Value(stat.UniqueStopCount)

	case models.RequestStop:
		buses, ok := h.StopBuses(req.Name)
		if !ok {
			writeNotFound(b)
			break
		}
		b.Key("buses").StartArray()
		for _, number := range buses {
			b.Value(number)
		}
		b.EndArray()

	case models.RequestRoute:
		route, err := h.Route(req.From, req.To)
		if err != nil {
			return err
		}
		if route == nil {
			writeNotFound(b)
			break
		}
		b.Key("total_time").Value(route.TotalTime).Key("items").StartArray()
		for _, item := range route.Items {
			writeRouteItem(b, item)
		}
		b.EndArray()

	case models.RequestMap:
		doc, err := h.RenderMap()
		if err != nil {
			return err
		}
		b.Key("map").Value(doc.String())

	default:
		return fmt.Errorf("unsupported request type %q", req.Type)
	}

	b.EndDict()
	return b.Err()
}

func writeNotFound(b *jsonbuilder.Builder) {
	b.Key("error_message").Value(notFoundMessage)
}

func writeRouteItem(b *jsonbuilder.Builder, item models.RouteItem) {
	b.StartDict().Key("type").Value(string(item.Type))
	switch item.Type {
	case models.ItemWait:
		b.Key("stop_name").Value(item.StopName)
	case models.ItemBus:
		b.Key("bus").Value(item.Bus).Key("span_count").Value(item.SpanCount)
	}
	b.Key("time").Value(item.Time).EndDict()
}

// Print writes a built response as indented JSON
func Print(w io.Writer, node any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
