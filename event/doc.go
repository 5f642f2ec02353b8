// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package event forwards poll events to external systems.
//
// KafkaPublisher and RedisPublisher are optional poll.Notifier sinks enabled
// by KAFKA_BROKERS and REDIS_URL. Payloads are the JSON encoding of
// models.Event, which never contains participant tokens.
package event
