package repositories

import (
	"context"
	"database/sql"
	"earthwork-route-service/internal/adapters/textio"
	"earthwork-route-service/internal/ports"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createFieldsQuery := `
	CREATE TABLE IF NOT EXISTS fields (
		field_id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createFieldCellsQuery := `
	CREATE TABLE IF NOT EXISTS field_cells (
		field_id BIGINT NOT NULL REFERENCES fields(field_id) ON DELETE CASCADE,
		ordinal INTEGER NOT NULL,
		x DOUBLE PRECISION NOT NULL,
		y DOUBLE PRECISION NOT NULL,
		quantity BIGINT NOT NULL,
		PRIMARY KEY (field_id, ordinal)
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		strategy TEXT NOT NULL,
		alpha DOUBLE PRECISION NOT NULL,
		chains INTEGER NOT NULL,
		lower_bound DOUBLE PRECISION NOT NULL,
		cycle_cost DOUBLE PRECISION NOT NULL,
		distance DOUBLE PRECISION NOT NULL,
		solved_at TIMESTAMPTZ NOT NULL,
		search JSONB
	);
	`

	// Tables created before restart statistics were stored.
	addRouteSearchQuery := `
	ALTER TABLE routes ADD COLUMN IF NOT EXISTS search JSONB;
	`

	createRouteStopoversQuery := `
	CREATE TABLE IF NOT EXISTS route_stopovers (
		route_id TEXT NOT NULL REFERENCES routes(route_id) ON DELETE CASCADE,
		ordinal INTEGER NOT NULL,
		x DOUBLE PRECISION NOT NULL,
		y DOUBLE PRECISION NOT NULL,
		quantity BIGINT NOT NULL,
		PRIMARY KEY (route_id, ordinal)
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		plan BYTEA NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_cache_expires_at
	ON route_cache(expires_at);
	`

	statements := []string{
		createFieldsQuery,
		createFieldCellsQuery,
		createRoutesQuery,
		addRouteSearchQuery,
		createRouteStopoversQuery,
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Store the field described by a text file, named after the file.
func SeedFieldFromFile(ctx context.Context, repo ports.FieldRepository, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("seed field: open %q: %w", path, err)
	}
	defer f.Close()

	cells, err := textio.ReadCells(f)
	if err != nil {
		return 0, fmt.Errorf("seed field: parse %q: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id, err := repo.SaveField(ctx, name, cells)
	if err != nil {
		return 0, fmt.Errorf("seed field: %w", err)
	}

	return id, nil
}
