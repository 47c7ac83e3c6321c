package cache

import (
	"fmt"
	"strings"
)

// Dialect covers the SQL differences between the supported drivers.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DialectFor maps a database/sql driver name to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return SQLite, nil
	case "pgx", "postgres":
		return Postgres, nil
	}
	return 0, fmt.Errorf("cache dialect: unsupported driver %q", driver)
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// List returns count comma-separated placeholders starting at position from.
// Neither driver binds slices into IN (...), so only the placeholder structure
// is interpolated; all values remain parameterized.
func (d Dialect) List(from, count int) string {
	ph := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ph = append(ph, d.Placeholder(from+i))
	}
	return strings.Join(ph, ",")
}
