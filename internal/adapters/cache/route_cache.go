package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mandi-profit-service/internal/platform/obs"
	"strings"

	"go.uber.org/zap"
)

// SQLRouteCache stores routing durations in seconds per (origin, destination)
// coordinate key. Keys are expected to be normalized by the caller.
type SQLRouteCache struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  *zap.Logger
}

func NewSQLRouteCache(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLRouteCache {
	return &SQLRouteCache{DB: db, Dialect: dialect, Logger: logger}
}

// Fetch cached durations for one origin and multiple destinations. Missing
// destinations are absent from the result.
func (s *SQLRouteCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, s.Logger, "route.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("route cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get route cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	args := make([]any, 0, 1+len(uniq))
	args = append(args, origin)
	for _, d := range uniq {
		args = append(args, d)
	}

	q := fmt.Sprintf(`
	SELECT destination_key, duration_seconds
    FROM route_cache
    WHERE origin_key = %s
        AND destination_key IN (%s);
	`, s.Dialect.Placeholder(1), s.Dialect.List(2, len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(uniq))
	for rows.Next() {
		var dest string
		var seconds float64
		if err := rows.Scan(&dest, &seconds); err != nil {
			return nil, fmt.Errorf("get route cache: scan rows: %w", err)
		}
		out[dest] = seconds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get route cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many durations for a single origin.
func (s *SQLRouteCache) PutMany(ctx context.Context, origin string, durations map[string]float64) (err error) {
	defer obs.Time(ctx, s.Logger, "route.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert route cache: origin must not be empty")
	}

	if len(durations) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert route cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO route_cache (origin_key, destination_key, duration_seconds)
    VALUES (%s)
	ON CONFLICT (origin_key, destination_key) DO UPDATE
	SET duration_seconds = EXCLUDED.duration_seconds;
	`, s.Dialect.List(1, 3)))
	if err != nil {
		return fmt.Errorf("insert route cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, seconds := range durations {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert route cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, seconds); err != nil {
			return fmt.Errorf("insert route cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert route cache commit: %w", err)
	}

	return nil
}

// uniqueKeys trims keys and drops blanks and repeats, keeping first-seen order.
func uniqueKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
