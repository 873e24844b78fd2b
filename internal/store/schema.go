// Package store reads and seeds the transit network kept in PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Schema creates the network tables. Road distances and bus paths refer to stops by name.
const Schema = `
CREATE TABLE IF NOT EXISTS stop (
	id   SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	lat  DOUBLE PRECISION NOT NULL CHECK (lat BETWEEN -90 AND 90),
	lon  DOUBLE PRECISION NOT NULL CHECK (lon BETWEEN -180 AND 180)
);

CREATE TABLE IF NOT EXISTS road_distance (
	from_stop TEXT NOT NULL REFERENCES stop (name) ON DELETE CASCADE,
	to_stop   TEXT NOT NULL REFERENCES stop (name) ON DELETE CASCADE,
	meters    INTEGER NOT NULL CHECK (meters >= 0),
	PRIMARY KEY (from_stop, to_stop)
);

CREATE TABLE IF NOT EXISTS bus (
	id           SERIAL PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	is_roundtrip BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS bus_stop (
	bus_id    INTEGER NOT NULL REFERENCES bus (id) ON DELETE CASCADE,
	seq       INTEGER NOT NULL,
	stop_name TEXT NOT NULL REFERENCES stop (name) ON DELETE CASCADE,
	PRIMARY KEY (bus_id, seq)
);
`

// Execer runs statements without returning rows
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates missing network tables
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
