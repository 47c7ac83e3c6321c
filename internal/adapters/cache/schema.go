package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the cache tables. Both statements are valid for SQLite
// and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        origin_key TEXT NOT NULL,
        destination_key TEXT NOT NULL,
        duration_seconds DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (origin_key, destination_key)
    );
	`

	createPlaceLabelCacheQuery := `
	CREATE TABLE IF NOT EXISTS place_label_cache (
        coord_key TEXT PRIMARY KEY,
        label TEXT NOT NULL
    );
	`

	statements := []string{
		createRouteCacheQuery,
		createPlaceLabelCacheQuery,
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
