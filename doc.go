// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the class-pulse API server.

class-pulse runs live classroom polls: an instructor opens one short question
at a time, students each answer once under an opaque token, and the
dashboard sees anonymized tallies, participation, and threshold-based
insights (for example "7% of students need clarification") as they update.

# Starting the Server

	DATABASE_URL=classpulse.db ADMIN_KEY_SALT=change-me go run .

Or with flags:

	go run . -p 3318 -d classpulse.db -admin-salt change-me

The instructor key for the session is logged once at startup.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): secret for the instructor key HMAC

See package cliparse for the rest, including the optional Kafka and Redis
event sinks.

# Architecture

  - poll: the aggregation engine (ledger, tallies, insights, lifecycle)
  - handlers, router, middleware: the HTTP API on chi
  - pubsub: websocket push of poll events at /ws
  - event: Kafka and Redis event sinks
  - metrics: Prometheus collectors behind /metrics
  - db: archive of closed polls (sqlite or postgres)
  - auth: instructor key and participant tokens
  - cliparse: configuration parsing
  - models: shared request/response types

Every background component runs under one errgroup; Ctrl-C or SIGTERM
shuts the HTTP server down gracefully.
*/
package main
