package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
        id BIGSERIAL PRIMARY KEY,
        name VARCHAR(100) NOT NULL,
        email VARCHAR(320) NOT NULL,
        phone VARCHAR(20),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CONSTRAINT customers_email_key UNIQUE (email)
    )`,
	`CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        username VARCHAR(50) NOT NULL,
        email VARCHAR(320) NOT NULL,
        full_name VARCHAR(100),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CONSTRAINT users_username_key UNIQUE (username),
        CONSTRAINT users_email_key UNIQUE (email)
    )`,
}

// EnsureSchema creates the record tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db Querier, logger *slog.Logger) error {
	start := time.Now()
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			observe("EnsureSchema", start, err)
			logger.ErrorContext(ctx, "Failed to apply schema statement", slog.Any("error", err))
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	observe("EnsureSchema", start, nil)
	logger.InfoContext(ctx, "Database schema is up to date", slog.Int("statements", len(schemaStatements)))
	return nil
}
