package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB is the Postgres handle shared by the SQL-backed stores.
type DB struct {
	*sql.DB
}

// Open connects to dsn, checks the connection and applies the schema.
func Open(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := RunUsersMigration(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate users: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}
