// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db archives closed polls so history survives restarts.

# Connecting

Open accepts the sqlite (modernc.org/sqlite, pure Go) or postgres
(github.com/lib/pq) dialect:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}
	store := db.NewStore(conn, cfg.DatabaseType)

CreateSchema is safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - poll_archive: one row per closed poll, with the final snapshot as JSON
  - poll_tally: one row per option of an archived poll

	poll_archive 1──* poll_tally

No table holds participant tokens. The live ledger exists only in memory
and is discarded with the poll's in-memory state.

# Queries

Queries are written with $N placeholders and rewritten to ? for sqlite.
Timestamps are stored as unix nanoseconds.
*/
package db
