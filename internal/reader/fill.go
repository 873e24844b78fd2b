package reader

import (
	"errors"
	"fmt"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/handler"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/routing"
)

var ErrUnknownStopReference = errors.New("reference to an unknown stop")

// FillCatalogue applies the base requests: all stops first, then road distances, then buses
func FillCatalogue(doc *Document, cat *catalogue.Catalogue) error {
	for _, req := range doc.BaseRequests {
		if req.Type != models.RequestStop {
			continue
		}
		coords := geo.Coordinates{Lat: *req.Latitude, Lng: *req.Longitude}
		if _, err := cat.AddStop(req.Name, coords); err != nil {
			return fmt.Errorf("stop %q: %w", req.Name, err)
		}
	}

	for _, req := range doc.BaseRequests {
		if req.Type != models.RequestStop {
			continue
		}
		from, _ := cat.FindStop(req.Name)
		for target, meters := range req.RoadDistances {
			to, ok := cat.FindStop(target)
			if !ok {
				return fmt.Errorf("road distance %q -> %q: %w", req.Name, target, ErrUnknownStopReference)
			}
			cat.SetDistance(from.ID, to.ID, meters)
		}
	}

	for _, req := range doc.BaseRequests {
		if req.Type != models.RequestBus {
			continue
		}
		path := make([]models.StopID, 0, len(req.Stops))
		for _, name := range req.Stops {
			stop, ok := cat.FindStop(name)
			if !ok {
				return fmt.Errorf("bus %q stop %q: %w", req.Name, name, ErrUnknownStopReference)
			}
			path = append(path, stop.ID)
		}
		if _, err := cat.AddRoute(req.Name, path, *req.IsRoundtrip); err != nil {
			return fmt.Errorf("bus %q: %w", req.Name, err)
		}
	}

	return nil
}

// Build loads a document into a new catalogue and wraps it in a query handler.
// Routing and rendering are enabled only when their settings sections are present.
func Build(doc *Document, catalogueOpts []catalogue.Option, routingOpts ...routing.Option) (*handler.Handler, error) {
	cat := catalogue.New(catalogueOpts...)
	if err := FillCatalogue(doc, cat); err != nil {
		return nil, err
	}

	var opts []handler.Option
	if doc.RoutingSettings != nil {
		opts = append(opts, handler.WithRouting(*doc.RoutingSettings, routingOpts...))
	}
	if doc.RenderSettings != nil {
		settings, err := doc.RenderSettings.ToRendererSettings()
		if err != nil {
			return nil, fmt.Errorf("invalid render settings: %w", err)
		}
		opts = append(opts, handler.WithRenderer(settings))
	}

	return handler.New(cat, opts...)
}
