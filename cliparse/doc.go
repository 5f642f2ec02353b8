// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

Values come from three layers, last one wins:

 1. struct tag defaults (envDefault)
 2. environment variables, optionally seeded from a .env file
 3. CLI flags

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Environment Variables

	PORT                             server port (3318)
	DATABASE_URL                     archive database (required)
	DATABASE_TYPE                    sqlite or postgres (sqlite)
	ADMIN_KEY_SALT                   secret for the instructor key (required)
	SESSION_ID                       classroom session id (classroom)
	DEFAULT_CLASS_SIZE               class size when a poll omits one (28)
	HISTORY_LOAD_LIMIT               archived polls reloaded at start (50)
	INSIGHT_CLARIFICATION_THRESHOLD  NeedsClarification threshold (7)
	INSIGHT_MISCONCEPTION_THRESHOLD  CommonMisconception threshold (30)
	KAFKA_BROKERS, KAFKA_TOPIC       optional Kafka event sink
	REDIS_URL, REDIS_CHANNEL         optional Redis pub/sub event sink
	ARCHIVE_TIMEOUT                  bound on archiving a closed poll (5s)
	NOTIFY_TIMEOUT, NOTIFY_BUFFER    per-sink delivery bound and queue size
	WS_ORIGINS                       extra origins allowed on /ws

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-session      Classroom session id
	-class-size   Default class size
	-admin-salt   Admin key salt

# Validation

ParseFlags returns an error if DATABASE_URL or ADMIN_KEY_SALT is missing,
the database type is unknown, or a numeric setting is out of range.
*/
package cliparse
