package renderer

import (
	"math"

	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/svg"
)

const epsilon = 1e-6

func isZero(v float64) bool {
	return math.Abs(v) < epsilon
}

// SphereProjector maps geographic coordinates onto a padded canvas, preserving aspect ratio
type SphereProjector struct {
	padding float64
	minLng  float64
	maxLat  float64
	zoom    float64
}

// NewSphereProjector fits the given points into a width x height canvas
func NewSphereProjector(points []geo.Coordinates, width, height, padding float64) SphereProjector {
	p := SphereProjector{padding: padding}
	if len(points) == 0 {
		return p
	}

	minLng, maxLng := points[0].Lng, points[0].Lng
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, pt := range points[1:] {
		minLng = math.Min(minLng, pt.Lng)
		maxLng = math.Max(maxLng, pt.Lng)
		minLat = math.Min(minLat, pt.Lat)
		maxLat = math.Max(maxLat, pt.Lat)
	}
	p.minLng = minLng
	p.maxLat = maxLat

	var widthZoom, heightZoom *float64
	if !isZero(maxLng - minLng) {
		z := (width - 2*padding) / (maxLng - minLng)
		widthZoom = &z
	}
	if !isZero(maxLat - minLat) {
		z := (height - 2*padding) / (maxLat - minLat)
		heightZoom = &z
	}

	switch {
	case widthZoom != nil && heightZoom != nil:
		p.zoom = math.Min(*widthZoom, *heightZoom)
	case widthZoom != nil:
		p.zoom = *widthZoom
	case heightZoom != nil:
		p.zoom = *heightZoom
	}

	return p
}

// Project converts coordinates into a canvas point
func (p SphereProjector) Project(c geo.Coordinates) svg.Point {
	return svg.Point{
		X: (c.Lng-p.minLng)*p.zoom + p.padding,
		Y: (p.maxLat-c.Lat)*p.zoom + p.padding,
	}
}
