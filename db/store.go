// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/class-pulse/models"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Open connects to the archive database and verifies the connection.
func Open(ctx context.Context, dialect, url string) (*sql.DB, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported database type %q", dialect)
	}
	conn, err := sql.Open(dialect, url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if dialect == DialectSQLite {
		// database/sql would otherwise hand out connections that each see
		// their own in-memory database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

// Store archives closed polls. It implements poll.Archive.
type Store struct {
	db      *sql.DB
	dialect string
}

func NewStore(db *sql.DB, dialect string) *Store {
	return &Store{db: db, dialect: dialect}
}

// SaveClosedPoll writes the final snapshot and its tallies in one
// transaction. Saving the same poll twice is a no-op.
func (s *Store) SaveClosedPoll(ctx context.Context, snap models.PollSnapshot) error {
	if snap.ClosedAt == nil {
		return fmt.Errorf("poll %s is not closed", snap.ID)
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO poll_archive (id, question, kind, class_size, total_responses, created_at, closed_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`), snap.ID, snap.Question, snap.Kind, snap.ClassSize, snap.TotalResponses,
		snap.CreatedAt.UnixNano(), snap.ClosedAt.UnixNano(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to archive poll: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	for i, tl := range snap.Tallies {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO poll_tally (poll_id, position, label, count, percentage, role)
			VALUES ($1, $2, $3, $4, $5, $6)
		`), snap.ID, i, tl.Option, tl.Count, tl.Percentage, tl.Role)
		if err != nil {
			return fmt.Errorf("failed to archive tally: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadHistory returns up to limit archived polls, most recently closed first.
func (s *Store) LoadHistory(ctx context.Context, limit int) ([]models.PollSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT payload FROM poll_archive
		ORDER BY closed_at DESC
		LIMIT $1
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []models.PollSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		var snap models.PollSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return out, nil
}

// rebind rewrites $N placeholders to ? for sqlite. Queries must not reuse a
// placeholder.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectSQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if _, err := strconv.Atoi(query[i+1 : j]); err == nil {
				b.WriteByte('?')
				i = j - 1
				continue
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
