// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Timestamps are unix nanoseconds so ordering is identical on both dialects.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS poll_archive (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    kind TEXT NOT NULL,
    class_size INTEGER NOT NULL,
    total_responses INTEGER NOT NULL,
    created_at BIGINT NOT NULL,
    closed_at BIGINT NOT NULL,
    payload TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_archive_closed_at ON poll_archive(closed_at)`,

	// One row per option; never anything per participant.
	`CREATE TABLE IF NOT EXISTS poll_tally (
    poll_id TEXT NOT NULL REFERENCES poll_archive(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    count INTEGER NOT NULL,
    percentage INTEGER NOT NULL,
    role TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (poll_id, position)
)`,
}
