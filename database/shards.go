package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const driverName = "postgres"

// ErrNoShards is returned when no shard DSNs are supplied.
var ErrNoShards = errors.New("at least one shard DSN is required")

// Open opens and pings one PostgreSQL pool per DSN, in order, so that pool i serves real node i.
// If any shard fails, every pool opened so far is closed.
func Open(ctx context.Context, dsns []string) ([]*sql.DB, error) {
	if len(dsns) == 0 {
		return nil, ErrNoShards
	}

	var shards = make([]*sql.DB, 0, len(dsns))
	for i, dsn := range dsns {
		db, err := sql.Open(driverName, dsn)
		if err != nil {
			_ = CloseAll(shards)
			return nil, fmt.Errorf("failed to open shard %d: %w", i, err)
		}
		shards = append(shards, db)

		if err := db.PingContext(ctx); err != nil {
			_ = CloseAll(shards)
			return nil, fmt.Errorf("failed to ping shard %d: %w", i, err)
		}
	}

	return shards, nil
}

// CloseAll closes every pool and returns the joined errors.
func CloseAll(shards []*sql.DB) error {
	var errs []error
	for i, db := range shards {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close shard %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
