package store

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/reader"
)

const (
	upsertStop = `
		INSERT INTO stop (name, lat, lon)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET lat = EXCLUDED.lat,
		    lon = EXCLUDED.lon`

	upsertDistance = `
		INSERT INTO road_distance (from_stop, to_stop, meters)
		VALUES ($1, $2, $3)
		ON CONFLICT (from_stop, to_stop) DO UPDATE
		SET meters = EXCLUDED.meters`

	upsertBus = `
		INSERT INTO bus (name, is_roundtrip)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET is_roundtrip = EXCLUDED.is_roundtrip`

	clearBusStops = `
		DELETE FROM bus_stop
		WHERE bus_id = (SELECT id FROM bus WHERE name = $1)`

	insertBusStop = `
		INSERT INTO bus_stop (bus_id, seq, stop_name)
		SELECT id, $2, $3 FROM bus WHERE name = $1`
)

// BatchSender sends a batch of queries. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ImportBatch queues upserts for a document's base requests.
// Stops come first, then road distances, then buses with their paths replaced.
func ImportBatch(doc *reader.Document) (*pgx.Batch, Summary) {
	batch := &pgx.Batch{}
	var summary Summary

	for _, req := range doc.BaseRequests {
		if req.Type != models.RequestStop {
			continue
		}
		batch.Queue(upsertStop, req.Name, *req.Latitude, *req.Longitude)
		summary.Stops++
	}

	for _, req := range doc.BaseRequests {
		if req.Type != models.RequestStop {
			continue
		}
		targets := make([]string, 0, len(req.RoadDistances))
		for target := range req.RoadDistances {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		for _, target := range targets {
			batch.Queue(upsertDistance, req.Name, target, req.RoadDistances[target])
			summary.Distances++
		}
	}

	for _, req := range doc.BaseRequests {
		if req.Type != models.RequestBus {
			continue
		}
		batch.Queue(upsertBus, req.Name, *req.IsRoundtrip)
		batch.Queue(clearBusStops, req.Name)
		for seq, stopName := range req.Stops {
			batch.Queue(insertBusStop, req.Name, seq, stopName)
		}
		summary.Buses++
	}

	return batch, summary
}

// Import writes a document's base requests in one batch
func Import(ctx context.Context, tx BatchSender, doc *reader.Document) (Summary, error) {
	batch, summary := ImportBatch(doc)

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return Summary{}, fmt.Errorf("failed to execute statement %d: %w", i, err)
		}
	}

	log.Printf("Imported %d stops, %d road distances, %d buses", summary.Stops, summary.Distances, summary.Buses)
	return summary, nil
}
