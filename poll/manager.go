// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/class-pulse/models"
)

// Archive persists closed polls. See package db.
type Archive interface {
	SaveClosedPoll(ctx context.Context, snap models.PollSnapshot) error
}

// Manager owns the session's single active-poll slot, the index of every
// poll created in the session, and the closed-poll history.
//
// Lock order is Manager.mu, then Poll.mu.
type Manager struct {
	notifier       Notifier
	recorder       Recorder
	archive        Archive
	archiveTimeout time.Duration
	evaluator      *Evaluator
	now            func() time.Time
	newID          func() string

	// inFlight is held for the whole of CreatePoll/ClosePoll.
	inFlight atomic.Bool

	mu      sync.RWMutex
	active  *Poll
	polls   map[string]*Poll
	history []models.PollSnapshot
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

func WithArchive(a Archive, timeout time.Duration) Option {
	return func(m *Manager) {
		m.archive = a
		m.archiveTimeout = timeout
	}
}

func WithRules(rules []models.InsightRule) Option {
	return func(m *Manager) { m.evaluator = NewEvaluator(rules) }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// WithHistory seeds history with previously archived polls, most recent first.
func WithHistory(snaps []models.PollSnapshot) Option {
	return func(m *Manager) {
		for _, snap := range snaps {
			m.history = append(m.history, cloneSnapshot(snap))
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		notifier:       noopNotifier{},
		recorder:       noopRecorder{},
		archiveTimeout: 5 * time.Second,
		evaluator:      NewEvaluator(DefaultRules(DefaultClarificationThreshold, DefaultMisconceptionThreshold)),
		now:            time.Now,
		newID:          uuid.NewString,
		polls:          make(map[string]*Poll),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreatePoll validates def and opens a new poll. It fails with
// PollAlreadyActive while another poll is open; the caller must close that
// poll first.
func (m *Manager) CreatePoll(ctx context.Context, def models.PollDefinition) (models.PollSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.PollSnapshot{}, err
	}
	normalized, err := normalizeDefinition(def)
	if err != nil {
		return models.PollSnapshot{}, err
	}

	if !m.inFlight.CompareAndSwap(false, true) {
		return models.PollSnapshot{}, ErrConflictingLifecycleOperation
	}
	defer m.inFlight.Store(false)

	m.mu.Lock()
	if m.active != nil {
		activeID := m.active.ID()
		m.mu.Unlock()
		return models.PollSnapshot{}, newError(CodePollAlreadyActive, "a poll is already active", map[string]string{"active_poll_id": activeID})
	}
	p := newPoll(m.newID(), normalized, m.now(), m.evaluator)
	m.active = p
	m.polls[p.ID()] = p
	snap := p.snapshot()
	// Emitted before unlocking so no submission event can precede it.
	m.emit(ctx, models.EventPollCreated, snap, nil)
	m.mu.Unlock()

	slog.Info("poll created", "poll_id", snap.ID, "kind", snap.Kind, "options", len(snap.Options))
	m.recorder.PollCreated()
	return snap, nil
}

// ClosePoll freezes the poll, prepends its final snapshot to history, and
// clears the active slot.
func (m *Manager) ClosePoll(ctx context.Context, pollID string) (models.PollSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.PollSnapshot{}, err
	}
	if !m.inFlight.CompareAndSwap(false, true) {
		return models.PollSnapshot{}, ErrConflictingLifecycleOperation
	}
	defer m.inFlight.Store(false)

	m.mu.Lock()
	p, ok := m.polls[pollID]
	if !ok {
		archived := m.historyContainsLocked(pollID)
		m.mu.Unlock()
		if archived {
			return models.PollSnapshot{}, ErrAlreadyClosed
		}
		return models.PollSnapshot{}, ErrNotFound
	}
	snap, err := p.close(m.now())
	if err != nil {
		m.mu.Unlock()
		return models.PollSnapshot{}, err
	}
	m.history = append([]models.PollSnapshot{cloneSnapshot(snap)}, m.history...)
	if m.active == p {
		m.active = nil
	}
	m.mu.Unlock()

	slog.Info("poll closed", "poll_id", snap.ID, "total_responses", snap.TotalResponses)
	m.recorder.PollClosed(snap.TotalResponses)

	if m.archive != nil {
		archiveCtx, cancel := context.WithTimeout(ctx, m.archiveTimeout)
		if err := m.archive.SaveClosedPoll(archiveCtx, snap); err != nil {
			// The poll stays closed in memory; only durability is lost.
			slog.Error("failed to archive poll", "poll_id", snap.ID, "error", err)
		}
		cancel()
	}

	m.emit(ctx, models.EventPollClosed, snap, nil)
	return snap, nil
}

// ActivePoll returns the currently open poll, if any.
func (m *Manager) ActivePoll() (models.PollSnapshot, bool) {
	m.mu.RLock()
	p := m.active
	m.mu.RUnlock()
	if p == nil {
		return models.PollSnapshot{}, false
	}
	return p.snapshot(), true
}

// History returns closed polls, most recently closed first. A limit of zero
// or less returns everything. The result is a fresh slice on every call.
func (m *Manager) History(limit int) []models.PollSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.PollSnapshot, n)
	for i := range out {
		out[i] = cloneSnapshot(m.history[i])
	}
	return out
}

// Poll returns the current snapshot of an open or closed poll.
func (m *Manager) Poll(pollID string) (models.PollSnapshot, error) {
	m.mu.RLock()
	p, ok := m.polls[pollID]
	archived, found := m.findHistoryLocked(pollID)
	m.mu.RUnlock()

	switch {
	case ok:
		return p.snapshot(), nil
	case found:
		return cloneSnapshot(archived), nil
	default:
		return models.PollSnapshot{}, ErrNotFound
	}
}

// Submit records one participant's response. The returned snapshot already
// includes the response.
func (m *Manager) Submit(ctx context.Context, pollID, token, option string) (models.PollSnapshot, error) {
	start := time.Now()
	defer func() { m.recorder.ObserveSubmit(time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return models.PollSnapshot{}, err
	}

	m.mu.RLock()
	p, ok := m.polls[pollID]
	archived := !ok && m.historyContainsLocked(pollID)
	m.mu.RUnlock()

	if !ok {
		err := ErrNotFound
		if archived {
			err = ErrPollClosed
		}
		m.recorder.ResponseRejected(err.Code)
		return models.PollSnapshot{}, err
	}

	snap, fresh, err := p.submit(token, option, m.now(), func(snap models.PollSnapshot, fresh []models.Insight) {
		m.emit(ctx, models.EventTallyUpdated, snap, nil)
		if len(fresh) > 0 {
			m.emit(ctx, models.EventInsightRaised, snap, fresh)
		}
	})
	if err != nil {
		m.recorder.ResponseRejected(CodeOf(err))
		return models.PollSnapshot{}, err
	}
	m.recorder.ResponseAccepted()

	for _, in := range fresh {
		slog.Info("insight raised", "poll_id", snap.ID, "kind", in.Kind, "option", in.TriggeringOption, "percentage", in.Percentage)
		m.recorder.InsightRaised(in.Kind)
	}
	return snap, nil
}

// HasResponded reports whether token already responded to the poll. It is a
// UI hint; Submit is the enforcement point. Polls reloaded from the archive
// keep no tokens, so they always report false; check the snapshot status to
// know whether the poll still accepts responses.
func (m *Manager) HasResponded(pollID, token string) bool {
	m.mu.RLock()
	p, ok := m.polls[pollID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return p.hasResponded(token)
}

func (m *Manager) findHistoryLocked(pollID string) (models.PollSnapshot, bool) {
	for _, snap := range m.history {
		if snap.ID == pollID {
			return snap, true
		}
	}
	return models.PollSnapshot{}, false
}

func (m *Manager) historyContainsLocked(pollID string) bool {
	_, ok := m.findHistoryLocked(pollID)
	return ok
}

// emit may run with Manager.mu or Poll.mu held, so the notifier must not
// block; Broadcaster only enqueues.
func (m *Manager) emit(ctx context.Context, eventType string, snap models.PollSnapshot, insights []models.Insight) {
	ev := models.Event{
		Type:       eventType,
		Poll:       cloneSnapshot(snap),
		Insights:   insights,
		OccurredAt: m.now(),
	}
	if err := m.notifier.Notify(ctx, ev); err != nil {
		slog.Warn("poll event not delivered", "type", eventType, "poll_id", snap.ID, "error", err)
	}
}
