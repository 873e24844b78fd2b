package routing

import (
	"github.com/passbi/transport_catalogue/internal/graph"
	"github.com/passbi/transport_catalogue/internal/models"
)

// buildRoute turns an engine path into passenger-facing journey items.
// A ride edge already spans every hop it covers, so each edge maps to exactly one item.
func (r *Router) buildRoute(info graph.RouteInfo) *models.Route {
	route := &models.Route{
		TotalTime: info.Weight,
		Items:     make([]models.RouteItem, 0, len(info.Edges)),
		Edges:     make([]int, 0, len(info.Edges)),
	}

	for _, edgeID := range info.Edges {
		edge := r.graph.GetEdge(edgeID)
		label := r.labels[edgeID]

		item := models.RouteItem{
			Type: label.itemType,
			Time: edge.Weight,
		}
		switch label.itemType {
		case models.ItemWait:
			item.StopName = label.name
		case models.ItemBus:
			item.Bus = label.name
			item.SpanCount = label.span
		}

		route.Items = append(route.Items, item)
		route.Edges = append(route.Edges, int(edgeID))
	}

	return route
}
