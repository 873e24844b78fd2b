package renderer

import (
	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/svg"
)

const (
	fontFamily     = "Verdana"
	busLabelWeight = "bold"
	stopFill       = svg.Color("white")
	stopLabelFill  = svg.Color("black")
)

// Settings controls the look of the rendered map
type Settings struct {
	Width             float64     `validate:"gte=0,lte=100000"`
	Height            float64     `validate:"gte=0,lte=100000"`
	Padding           float64     `validate:"gte=0"`
	LineWidth         float64     `validate:"gte=0,lte=100000"`
	StopRadius        float64     `validate:"gte=0,lte=100000"`
	BusLabelFontSize  int         `validate:"gte=0,lte=100000"`
	BusLabelOffset    svg.Point
	StopLabelFontSize int         `validate:"gte=0,lte=100000"`
	StopLabelOffset   svg.Point
	UnderlayerColor   svg.Color
	UnderlayerWidth   float64     `validate:"gte=0,lte=100000"`
	ColorPalette      []svg.Color `validate:"min=1"`
}

// Network is the read-only catalogue view the renderer draws
type Network interface {
	GetSortedAllBuses() []models.Bus
	GetSortedAllStops() []models.Stop
	Stop(id models.StopID) (models.Stop, bool)
}

// MapRenderer draws bus routes and stops as an SVG document
type MapRenderer struct {
	settings Settings
}

// New creates a renderer with the given settings
func New(settings Settings) *MapRenderer {
	return &MapRenderer{settings: settings}
}

// routeLine is a bus with its stops resolved in drawing order
type routeLine struct {
	bus   models.Bus
	stops []models.Stop
	color svg.Color
}

// Render draws the network. Layers, bottom to top: route lines, route names,
// stop circles, stop names. Buses without stops and stops without buses are skipped.
func (r *MapRenderer) Render(network Network) *svg.Document {
	lines := r.resolveLines(network)

	var servedStops []models.Stop
	var points []geo.Coordinates
	for _, stop := range network.GetSortedAllStops() {
		if len(stop.Buses) == 0 {
			continue
		}
		servedStops = append(servedStops, stop)
		points = append(points, stop.Coordinates)
	}
	// paths may hold stops no longer reachable by name
	for _, line := range lines {
		for _, stop := range line.stops {
			points = append(points, stop.Coordinates)
		}
	}

	projector := NewSphereProjector(points, r.settings.Width, r.settings.Height, r.settings.Padding)

	doc := &svg.Document{}
	r.renderLines(doc, projector, lines)
	r.renderBusLabels(doc, projector, lines)
	r.renderStopPoints(doc, projector, servedStops)
	r.renderStopLabels(doc, projector, servedStops)
	return doc
}

func (r *MapRenderer) resolveLines(network Network) []routeLine {
	var lines []routeLine
	colorIndex := 0
	for _, bus := range network.GetSortedAllBuses() {
		if len(bus.Stops) == 0 {
			continue
		}

		line := routeLine{bus: bus}
		for _, id := range bus.Stops {
			if stop, ok := network.Stop(id); ok {
				line.stops = append(line.stops, stop)
			}
		}
		if len(r.settings.ColorPalette) > 0 {
			line.color = r.settings.ColorPalette[colorIndex%len(r.settings.ColorPalette)]
		}
		colorIndex++

		lines = append(lines, line)
	}
	return lines
}

func (r *MapRenderer) renderLines(doc *svg.Document, projector SphereProjector, lines []routeLine) {
	for _, line := range lines {
		polyline := svg.Polyline{
			PathProps: svg.PathProps{
				Fill:        svg.NoneColor,
				Stroke:      line.color,
				StrokeWidth: r.settings.LineWidth,
				LineCap:     svg.LineCapRound,
				LineJoin:    svg.LineJoinRound,
			},
		}
		for _, stop := range line.stops {
			polyline.Points = append(polyline.Points, projector.Project(stop.Coordinates))
		}
		// A linear route is drawn there and back
		if !line.bus.IsRoundtrip {
			for i := len(line.stops) - 2; i >= 0; i-- {
				polyline.Points = append(polyline.Points, projector.Project(line.stops[i].Coordinates))
			}
		}
		doc.Add(polyline)
	}
}

func (r *MapRenderer) renderBusLabels(doc *svg.Document, projector SphereProjector, lines []routeLine) {
	for _, line := range lines {
		if len(line.stops) == 0 {
			continue
		}
		first := line.stops[0]
		last := line.stops[len(line.stops)-1]

		r.addBusLabel(doc, projector.Project(first.Coordinates), line)
		if !line.bus.IsRoundtrip && first.ID != last.ID {
			r.addBusLabel(doc, projector.Project(last.Coordinates), line)
		}
	}
}

func (r *MapRenderer) addBusLabel(doc *svg.Document, pos svg.Point, line routeLine) {
	base := svg.Text{
		Position:   pos,
		Offset:     r.settings.BusLabelOffset,
		FontSize:   r.settings.BusLabelFontSize,
		FontFamily: fontFamily,
		FontWeight: busLabelWeight,
		Data:       line.bus.Number,
	}
	doc.Add(r.underlayer(base))

	base.Fill = line.color
	doc.Add(base)
}

func (r *MapRenderer) renderStopPoints(doc *svg.Document, projector SphereProjector, stops []models.Stop) {
	for _, stop := range stops {
		doc.Add(svg.Circle{
			PathProps: svg.PathProps{Fill: stopFill},
			Center:    projector.Project(stop.Coordinates),
			Radius:    r.settings.StopRadius,
		})
	}
}

func (r *MapRenderer) renderStopLabels(doc *svg.Document, projector SphereProjector, stops []models.Stop) {
	for _, stop := range stops {
		base := svg.Text{
			Position:   projector.Project(stop.Coordinates),
			Offset:     r.settings.StopLabelOffset,
			FontSize:   r.settings.StopLabelFontSize,
			FontFamily: fontFamily,
			Data:       stop.Name,
		}
		doc.Add(r.underlayer(base))

		base.Fill = stopLabelFill
		doc.Add(base)
	}
}

// underlayer returns the halo drawn under a label
func (r *MapRenderer) underlayer(text svg.Text) svg.Text {
	text.PathProps = svg.PathProps{
		Fill:        r.settings.UnderlayerColor,
		Stroke:      r.settings.UnderlayerColor,
		StrokeWidth: r.settings.UnderlayerWidth,
		LineCap:     svg.LineCapRound,
		LineJoin:    svg.LineJoinRound,
	}
	return text
}
