// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/class-pulse/models"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher publishes poll events on a Redis pub/sub channel, letting
// other processes (a projector display, a TA dashboard) follow the session.
// It implements poll.Notifier.
type RedisPublisher struct {
	client  publisher
	channel string
}

func NewRedisPublisher(ctx context.Context, url, channel string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return &RedisPublisher{client: c, channel: channel}, nil
}

func (rp *RedisPublisher) Notify(ctx context.Context, ev models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := rp.client.Publish(ctx, rp.channel, data).Err(); err != nil {
		return fmt.Errorf("error publishing to redis: %w", err)
	}
	return nil
}

func (rp *RedisPublisher) Close() error {
	if err := rp.client.Close(); err != nil {
		return fmt.Errorf("error closing redis client: %w", err)
	}
	return nil
}
