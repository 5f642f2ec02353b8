// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package pubsub pushes poll events to browsers over websocket.
//
// Hub is both an http.Handler (mounted at /ws) and a poll.Notifier, so the
// engine's broadcaster can hand it every event. Each message is the JSON
// encoding of models.Event. Clients that fall behind are disconnected.
package pubsub
