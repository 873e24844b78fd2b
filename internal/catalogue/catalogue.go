package catalogue

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/models"
)

var (
	ErrDuplicateStop = errors.New("duplicate stop")
	ErrDuplicateBus  = errors.New("duplicate bus")
	ErrUnknownStop   = errors.New("unknown stop")
)

// DuplicatePolicy decides what happens when a stop name or bus number is registered twice
type DuplicatePolicy int

const (
	// ShadowDuplicates makes the newest entry reachable by lookup.
	// The older entry stays stored under its id but can no longer be found by name.
	ShadowDuplicates DuplicatePolicy = iota
	// RejectDuplicates refuses the second registration with an error
	RejectDuplicates
)

// Option configures a Catalogue
type Option func(*Catalogue)

// WithDuplicatePolicy sets the duplicate registration policy
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(c *Catalogue) {
		c.policy = p
	}
}

type stopPair struct {
	from, to models.StopID
}

// Catalogue is the authoritative store of stops, buses and road distances.
// Entities live in slices indexed by their ids; names resolve to ids through maps.
// A Catalogue is filled once (stops, distances, routes) and is read-only afterwards.
type Catalogue struct {
	stops     []models.Stop
	buses     []models.Bus
	stopIndex map[string]models.StopID
	busIndex  map[string]models.BusID
	distances map[stopPair]int
	policy    DuplicatePolicy
}

// New creates an empty catalogue
func New(opts ...Option) *Catalogue {
	c := &Catalogue{
		stopIndex: make(map[string]models.StopID),
		busIndex:  make(map[string]models.BusID),
		distances: make(map[stopPair]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddStop registers a stop and returns its id
func (c *Catalogue) AddStop(name string, coordinates geo.Coordinates) (models.StopID, error) {
	if _, exists := c.stopIndex[name]; exists && c.policy == RejectDuplicates {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateStop, name)
	}

	id := models.StopID(len(c.stops))
	c.stops = append(c.stops, models.Stop{
		ID:          id,
		Name:        name,
		Coordinates: coordinates,
		Buses:       make(map[string]struct{}),
	})
	c.stopIndex[name] = id

	return id, nil
}

// AddRoute registers a bus driving along the given stops
func (c *Catalogue) AddRoute(number string, stops []models.StopID, isRoundtrip bool) (models.BusID, error) {
	if _, exists := c.busIndex[number]; exists && c.policy == RejectDuplicates {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateBus, number)
	}
	for _, stopID := range stops {
		if !c.validStop(stopID) {
			return 0, fmt.Errorf("%w: id %d on bus %s", ErrUnknownStop, stopID, number)
		}
	}

	id := models.BusID(len(c.buses))
	c.buses = append(c.buses, models.Bus{
		ID:          id,
		Number:      number,
		Stops:       append([]models.StopID(nil), stops...),
		IsRoundtrip: isRoundtrip,
	})
	c.busIndex[number] = id

	for _, stopID := range stops {
		c.stops[stopID].Buses[number] = struct{}{}
	}

	return id, nil
}

// FindStop looks up a stop by name
func (c *Catalogue) FindStop(name string) (models.Stop, bool) {
	id, ok := c.stopIndex[name]
	if !ok {
		return models.Stop{}, false
	}
	return c.stopView(id), true
}

// FindRoute looks up a bus by number
func (c *Catalogue) FindRoute(number string) (models.Bus, bool) {
	id, ok := c.busIndex[number]
	if !ok {
		return models.Bus{}, false
	}
	return c.busView(id), true
}

// Stop returns the stop stored under id, including shadowed stops
func (c *Catalogue) Stop(id models.StopID) (models.Stop, bool) {
	if !c.validStop(id) {
		return models.Stop{}, false
	}
	return c.stopView(id), true
}

// SetDistance stores the road distance from one stop to another in meters
func (c *Catalogue) SetDistance(from, to models.StopID, meters int) {
	c.distances[stopPair{from: from, to: to}] = meters
}

// GetDistance returns the road distance from one stop to another.
// A missing pair falls back to the reverse direction, then to zero.
func (c *Catalogue) GetDistance(from, to models.StopID) int {
	if d, ok := c.distances[stopPair{from: from, to: to}]; ok {
		return d
	}
	return c.distances[stopPair{from: to, to: from}]
}

// UniqueStopsCount returns the number of distinct stops on a bus route
func (c *Catalogue) UniqueStopsCount(number string) int {
	bus, ok := c.storedBus(number)
	if !ok {
		return 0
	}

	unique := make(map[models.StopID]struct{}, len(bus.Stops))
	for _, id := range bus.Stops {
		unique[id] = struct{}{}
	}
	return len(unique)
}

// GetBusStat computes route statistics for a bus
func (c *Catalogue) GetBusStat(number string) (models.BusStat, bool) {
	bus, ok := c.storedBus(number)
	if !ok {
		return models.BusStat{}, false
	}

	stat := models.BusStat{
		UniqueStopCount: c.UniqueStopsCount(number),
	}
	if bus.IsRoundtrip || len(bus.Stops) == 0 {
		stat.StopCount = len(bus.Stops)
	} else {
		stat.StopCount = len(bus.Stops)*2 - 1
	}

	for i := 1; i < len(bus.Stops); i++ {
		from, to := bus.Stops[i-1], bus.Stops[i]
		geoDist := geo.ComputeDistance(c.stops[from].Coordinates, c.stops[to].Coordinates)

		if bus.IsRoundtrip {
			stat.RouteLength += c.GetDistance(from, to)
			stat.GeographicLength += geoDist
		} else {
			stat.RouteLength += c.GetDistance(from, to) + c.GetDistance(to, from)
			stat.GeographicLength += geoDist * 2
		}
	}

	// Curvature is undefined when every stop shares one point
	if stat.GeographicLength > 0 {
		stat.Curvature = float64(stat.RouteLength) / stat.GeographicLength
	}

	return stat, true
}

// BusesByStop returns the sorted numbers of the buses serving a stop
func (c *Catalogue) BusesByStop(name string) ([]string, bool) {
	id, ok := c.stopIndex[name]
	if !ok {
		return nil, false
	}
	stop := c.stops[id]

	buses := make([]string, 0, len(stop.Buses))
	for number := range stop.Buses {
		buses = append(buses, number)
	}
	sort.Strings(buses)

	return buses, true
}

// GetSortedAllStops returns every reachable stop ordered by name
func (c *Catalogue) GetSortedAllStops() []models.Stop {
	result := make([]models.Stop, 0, len(c.stopIndex))
	for _, id := range c.stopIndex {
		result = append(result, c.stopView(id))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// GetSortedAllBuses returns every reachable bus ordered by number
func (c *Catalogue) GetSortedAllBuses() []models.Bus {
	result := make([]models.Bus, 0, len(c.busIndex))
	for _, id := range c.busIndex {
		result = append(result, c.busView(id))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result
}

// StopCount returns the number of stops reachable by name
func (c *Catalogue) StopCount() int {
	return len(c.stopIndex)
}

// BusCount returns the number of buses reachable by number
func (c *Catalogue) BusCount() int {
	return len(c.busIndex)
}

// stopView copies a stored stop so callers cannot grow its bus-set
func (c *Catalogue) stopView(id models.StopID) models.Stop {
	stop := c.stops[id]
	stop.Buses = maps.Clone(stop.Buses)
	return stop
}

func (c *Catalogue) storedBus(number string) (models.Bus, bool) {
	id, ok := c.busIndex[number]
	if !ok {
		return models.Bus{}, false
	}
	return c.buses[id], true
}

// busView copies a stored bus so callers cannot rewrite its path
func (c *Catalogue) busView(id models.BusID) models.Bus {
	bus := c.buses[id]
	bus.Stops = slices.Clone(bus.Stops)
	return bus
}

func (c *Catalogue) validStop(id models.StopID) bool {
	return id >= 0 && int(id) < len(c.stops)
}
