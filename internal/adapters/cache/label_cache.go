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

// SQLLabelCache maps a coordinate key to a human-readable place label.
type SQLLabelCache struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  *zap.Logger
}

func NewSQLLabelCache(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLLabelCache {
	return &SQLLabelCache{DB: db, Dialect: dialect, Logger: logger}
}

func (s *SQLLabelCache) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, s.Logger, "label.cache.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("label cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, nil
	}

	q := fmt.Sprintf(`
	SELECT label
    FROM place_label_cache
    WHERE coord_key = %s;
	`, s.Dialect.Placeholder(1))

	var label string
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get label cache: query place_label_cache table: %w", err)
	}

	return label, true, nil
}

func (s *SQLLabelCache) Put(ctx context.Context, key, label string) (err error) {
	defer obs.Time(ctx, s.Logger, "label.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("label cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert label cache: empty coordinate key")
	}

	q := fmt.Sprintf(`
	INSERT INTO place_label_cache (coord_key, label)
    VALUES (%s)
	ON CONFLICT (coord_key) DO UPDATE
	SET label = EXCLUDED.label;
	`, s.Dialect.List(1, 2))

	if _, err := s.DB.ExecContext(ctx, q, key, label); err != nil {
		return fmt.Errorf("insert label cache coord=%q: %w", key, err)
	}

	return nil
}
