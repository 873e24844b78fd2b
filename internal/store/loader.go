package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/geo"
	"github.com/passbi/transport_catalogue/internal/models"
)

const (
	selectStops = `
		SELECT name, lat, lon
		FROM stop
		ORDER BY id`

	selectDistances = `
		SELECT from_stop, to_stop, meters
		FROM road_distance`

	selectBusStops = `
		SELECT b.name, b.is_roundtrip, bs.stop_name
		FROM bus b
		LEFT JOIN bus_stop bs ON bs.bus_id = b.id
		ORDER BY b.id, bs.seq`
)

// Querier runs a query returning rows. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Summary counts what was read or written
type Summary struct {
	Stops     int
	Distances int
	Buses     int
}

// LoadCatalogue fills cat from the database: stops, then road distances, then buses
func LoadCatalogue(ctx context.Context, q Querier, cat *catalogue.Catalogue) (Summary, error) {
	var summary Summary
	startTime := time.Now()
	log.Println("Loading network from database...")

	// 1. Stops
	stopRows, err := q.Query(ctx, selectStops)
	if err != nil {
		return summary, fmt.Errorf("failed to load stops: %w", err)
	}
	defer stopRows.Close()

	for stopRows.Next() {
		var name string
		var coords geo.Coordinates
		if err := stopRows.Scan(&name, &coords.Lat, &coords.Lng); err != nil {
			return summary, fmt.Errorf("failed to scan stop: %w", err)
		}
		if _, err := cat.AddStop(name, coords); err != nil {
			return summary, fmt.Errorf("stop %q: %w", name, err)
		}
		summary.Stops++
	}
	if err := stopRows.Err(); err != nil {
		return summary, fmt.Errorf("failed to read stops: %w", err)
	}
	log.Printf("  Loaded %d stops", summary.Stops)

	// 2. Road distances
	distanceRows, err := q.Query(ctx, selectDistances)
	if err != nil {
		return summary, fmt.Errorf("failed to load road distances: %w", err)
	}
	defer distanceRows.Close()

	for distanceRows.Next() {
		var from, to string
		var meters int
		if err := distanceRows.Scan(&from, &to, &meters); err != nil {
			return summary, fmt.Errorf("failed to scan road distance: %w", err)
		}
		fromStop, ok := cat.FindStop(from)
		if !ok {
			return summary, fmt.Errorf("road distance from unknown stop %q", from)
		}
		toStop, ok := cat.FindStop(to)
		if !ok {
			return summary, fmt.Errorf("road distance to unknown stop %q", to)
		}
		cat.SetDistance(fromStop.ID, toStop.ID, meters)
		summary.Distances++
	}
	if err := distanceRows.Err(); err != nil {
		return summary, fmt.Errorf("failed to read road distances: %w", err)
	}
	log.Printf("  Loaded %d road distances", summary.Distances)

	// 3. Buses, one row per path position
	busRows, err := q.Query(ctx, selectBusStops)
	if err != nil {
		return summary, fmt.Errorf("failed to load buses: %w", err)
	}
	defer busRows.Close()

	var current *pendingBus
	flush := func() error {
		if current == nil {
			return nil
		}
		if _, err := cat.AddRoute(current.name, current.stops, current.isRoundtrip); err != nil {
			return fmt.Errorf("bus %q: %w", current.name, err)
		}
		summary.Buses++
		return nil
	}

	for busRows.Next() {
		var name string
		var isRoundtrip bool
		var stopName *string
		if err := busRows.Scan(&name, &isRoundtrip, &stopName); err != nil {
			return summary, fmt.Errorf("failed to scan bus stop: %w", err)
		}

		if current == nil || current.name != name {
			if err := flush(); err != nil {
				return summary, err
			}
			current = &pendingBus{name: name, isRoundtrip: isRoundtrip}
		}

		// buses without stops come back as a single row with a NULL stop
		if stopName == nil {
			continue
		}
		stop, ok := cat.FindStop(*stopName)
		if !ok {
			return summary, fmt.Errorf("bus %q passes unknown stop %q", name, *stopName)
		}
		current.stops = append(current.stops, stop.ID)
	}
	if err := busRows.Err(); err != nil {
		return summary, fmt.Errorf("failed to read buses: %w", err)
	}
	if err := flush(); err != nil {
		return summary, err
	}
	log.Printf("  Loaded %d buses", summary.Buses)

	log.Printf("Network loaded in %v (%d stops, %d distances, %d buses)",
		time.Since(startTime), summary.Stops, summary.Distances, summary.Buses)

	return summary, nil
}

type pendingBus struct {
	name        string
	isRoundtrip bool
	stops       []models.StopID
}
