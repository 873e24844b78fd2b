package models

import "github.com/passbi/transport_catalogue/internal/geo"

// StopID is the stable identity of a stop inside a catalogue
type StopID int

// BusID is the stable identity of a bus inside a catalogue
type BusID int

// ItemType represents the kind of a journey step
type ItemType string

const (
	ItemWait ItemType = "Wait"
	ItemBus  ItemType = "Bus"
)

// RequestType represents the kind of a base or stat request
type RequestType string

const (
	RequestStop  RequestType = "Stop"
	RequestBus   RequestType = "Bus"
	RequestMap   RequestType = "Map"
	RequestRoute RequestType = "Route"
)

// Stop represents a named transit stop
type Stop struct {
	ID          StopID
	Name        string
	Coordinates geo.Coordinates
	// Buses holds the numbers of the buses serving this stop
	Buses map[string]struct{}
}

// Bus represents a bus route driven along an ordered list of stops
type Bus struct {
	ID          BusID
	Number      string
	Stops       []StopID
	IsRoundtrip bool
}

// BusStat holds aggregate statistics of a single bus route
type BusStat struct {
	StopCount        int     `json:"stop_count"`
	UniqueStopCount  int     `json:"unique_stop_count"`
	RouteLength      int     `json:"route_length"` // meters
	GeographicLength float64 `json:"-"`            // meters
	Curvature        float64 `json:"curvature"`
}

// RoutingSettings configures the time-weighted routing graph
type RoutingSettings struct {
	BusWaitTime int     `json:"bus_wait_time" yaml:"bus_wait_time" validate:"gte=1,lte=1000"` // minutes
	BusVelocity float64 `json:"bus_velocity" yaml:"bus_velocity" validate:"gte=1,lte=1000"`   // km/h
}

// RouteItem represents one step of a journey
// Wait items carry StopName, Bus items carry Bus and SpanCount
type RouteItem struct {
	Type      ItemType `json:"type"`
	StopName  string   `json:"stop_name,omitempty"`
	Bus       string   `json:"bus,omitempty"`
	SpanCount int      `json:"span_count,omitempty"`
	Time      float64  `json:"time"` // minutes
}

// Route represents the fastest journey between two stops
type Route struct {
	TotalTime float64     `json:"total_time"` // minutes
	Items     []RouteItem `json:"items"`
	Edges     []int       `json:"-"`
}
