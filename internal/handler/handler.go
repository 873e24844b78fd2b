// Package handler answers stat queries over a finished catalogue.
package handler

import (
	"errors"
	"fmt"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/metrics"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/renderer"
	"github.com/passbi/transport_catalogue/internal/routing"
	"github.com/passbi/transport_catalogue/internal/svg"
)

var (
	ErrRoutingDisabled   = errors.New("routing settings are not configured")
	ErrRenderingDisabled = errors.New("render settings are not configured")
)

// Option configures a Handler
type Option func(*Handler)

// WithRouting enables route queries with the given settings
func WithRouting(settings models.RoutingSettings, opts ...routing.Option) Option {
	return func(h *Handler) {
		h.router = routing.NewRouter(settings, opts...)
	}
}

// WithRenderer enables map queries with the given settings
func WithRenderer(settings renderer.Settings) Option {
	return func(h *Handler) {
		h.renderer = renderer.New(settings)
	}
}

// Handler is the query facade over the catalogue, the router and the map renderer
type Handler struct {
	catalogue *catalogue.Catalogue
	router    *routing.Router
	renderer  *renderer.MapRenderer
}

// New creates a handler over a fully loaded catalogue.
// When routing is enabled the graph is built here, so the catalogue must not change afterwards.
func New(cat *catalogue.Catalogue, opts ...Option) (*Handler, error) {
	h := &Handler{catalogue: cat}
	for _, opt := range opts {
		opt(h)
	}

	if h.router != nil {
		if err := h.router.BuildGraph(cat); err != nil {
			return nil, fmt.Errorf("failed to build routing graph: %w", err)
		}
	}

	return h, nil
}

// Catalogue returns the underlying catalogue
func (h *Handler) Catalogue() *catalogue.Catalogue {
	return h.catalogue
}

// Router returns the router, or nil when routing is disabled
func (h *Handler) Router() *routing.Router {
	return h.router
}

// BusStat returns the statistics of a bus
func (h *Handler) BusStat(number string) (models.BusStat, bool) {
	stat, ok := h.catalogue.GetBusStat(number)
	metrics.ObserveQuery(string(models.RequestBus), ok)
	return stat, ok
}

// StopBuses returns the sorted numbers of the buses serving a stop
func (h *Handler) StopBuses(name string) ([]string, bool) {
	buses, ok := h.catalogue.BusesByStop(name)
	metrics.ObserveQuery(string(models.RequestStop), ok)
	return buses, ok
}

// Route returns the fastest journey between two stops, or nil when there is none
func (h *Handler) Route(from, to string) (*models.Route, error) {
	if h.router == nil {
		return nil, ErrRoutingDisabled
	}

	route, err := h.router.FindRoute(from, to)
	if err != nil {
		return nil, err
	}
	metrics.ObserveQuery(string(models.RequestRoute), route != nil)
	return route, nil
}

// RenderMap draws the whole network
func (h *Handler) RenderMap() (*svg.Document, error) {
	if h.renderer == nil {
		return nil, ErrRenderingDisabled
	}

	doc := h.renderer.Render(h.catalogue)
	metrics.ObserveQuery(string(models.RequestMap), true)
	return doc, nil
}
