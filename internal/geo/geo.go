package geo

import "math"

// EarthRadius is the mean Earth radius in meters
const EarthRadius = 6371000

// Coordinates is a geographic point in degrees
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// ComputeDistance calculates the great-circle distance between two coordinates in meters
func ComputeDistance(from, to Coordinates) float64 {
	if from == to {
		return 0
	}

	lat1Rad := from.Lat * math.Pi / 180
	lat2Rad := to.Lat * math.Pi / 180
	deltaLat := (to.Lat - from.Lat) * math.Pi / 180
	deltaLng := (to.Lng - from.Lng) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}
