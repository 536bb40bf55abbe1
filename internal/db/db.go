package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"ditroboticstw/internal/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB with the driver it was opened with, so queries written
// with '?' placeholders run on both SQLite and Postgres.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects and pings the database.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping %s: %w", driver, err)
	}

	return &DB{DB: sqlDB, Driver: driver}, nil
}

// Rebind rewrites '?' placeholders to '$n' for Postgres.
func (d *DB) Rebind(query string) string {
	if d.Driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
