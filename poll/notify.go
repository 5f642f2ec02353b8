// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/class-pulse/models"
)

// ErrQueueFull is returned by Broadcaster.Notify when the event was dropped.
var ErrQueueFull = errors.New("notification queue full")

// Notifier receives change events after every accepted mutation. The
// engine calls Notify with its locks held, in mutation order, so Notify must
// return promptly; wrap slow sinks in a Broadcaster.
type Notifier interface {
	Notify(ctx context.Context, ev models.Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev models.Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev models.Event) error {
	return f(ctx, ev)
}

// Recorder collects engine metrics. See package metrics.
type Recorder interface {
	PollCreated()
	PollClosed(totalResponses int)
	ResponseAccepted()
	ResponseRejected(code Code)
	InsightRaised(kind string)
	ObserveSubmit(d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) PollCreated()                {}
func (noopRecorder) PollClosed(int)              {}
func (noopRecorder) ResponseAccepted()           {}
func (noopRecorder) ResponseRejected(Code)       {}
func (noopRecorder) InsightRaised(string)        {}
func (noopRecorder) ObserveSubmit(time.Duration) {}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, models.Event) error { return nil }

// Broadcaster queues events and delivers them to every sink from a single
// goroutine, so Notify never blocks the engine. Each sink call is bounded
// by timeout.
type Broadcaster struct {
	sinks   []Notifier
	queue   chan models.Event
	timeout time.Duration
}

func NewBroadcaster(buffer int, timeout time.Duration, sinks ...Notifier) *Broadcaster {
	if buffer <= 0 {
		buffer = 256
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Broadcaster{
		sinks:   sinks,
		queue:   make(chan models.Event, buffer),
		timeout: timeout,
	}
}

// Notify enqueues ev. When the queue is full the event is dropped.
func (b *Broadcaster) Notify(ctx context.Context, ev models.Event) error {
	select {
	case b.queue <- ev:
		return nil
	default:
		slog.Warn("dropping poll event", "type", ev.Type, "poll_id", ev.Poll.ID)
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-b.queue:
			b.deliver(ctx, ev)
		}
	}
}

func (b *Broadcaster) deliver(ctx context.Context, ev models.Event) {
	for _, sink := range b.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, b.timeout)
		if err := sink.Notify(sinkCtx, ev); err != nil {
			slog.Error("failed to deliver poll event", "type", ev.Type, "poll_id", ev.Poll.ID, "error", err)
		}
		cancel()
	}
}
