// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/class-pulse/models"
)

// TestConcurrentDistinctSubmissions verifies that simultaneous submissions
// from different participants are neither lost nor double counted
func TestConcurrentDistinctSubmissions(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	snap, _ := m.CreatePoll(ctx, understandingDef())

	numStudents := 200
	var accepted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numStudents; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			option := snap.Options[idx%len(snap.Options)]
			if _, err := m.Submit(ctx, snap.ID, fmt.Sprintf("student-%d", idx), option); err == nil {
				accepted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(accepted.Load()) != numStudents {
		t.Errorf("Expected %d accepted submissions, got %d", numStudents, accepted.Load())
	}

	got, _ := m.Poll(snap.ID)
	if got.TotalResponses != numStudents {
		t.Errorf("Expected %d total responses, got %d", numStudents, got.TotalResponses)
	}
	sum := 0
	for _, tl := range got.Tallies {
		sum += tl.Count
		if tl.Percentage != RoundPercent(tl.Count, got.TotalResponses) {
			t.Errorf("%s: percentage %d inconsistent with count %d", tl.Option, tl.Percentage, tl.Count)
		}
	}
	if sum != got.TotalResponses {
		t.Errorf("Expected counts to sum to %d, got %d", got.TotalResponses, sum)
	}
}

// TestConcurrentSameTokenSubmissions verifies that when many goroutines submit
// with the same token, exactly one is accepted
func TestConcurrentSameTokenSubmissions(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	snap, _ := m.CreatePoll(ctx, understandingDef())

	numAttempts := 50
	var accepted, duplicates atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := m.Submit(ctx, snap.ID, "same-token", snap.Options[idx%len(snap.Options)])
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrDuplicateSubmission):
				duplicates.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted submission, got %d", accepted.Load())
	}
	if int(duplicates.Load()) != numAttempts-1 {
		t.Errorf("Expected %d duplicates, got %d", numAttempts-1, duplicates.Load())
	}
	if got, _ := m.Poll(snap.ID); got.TotalResponses != 1 {
		t.Errorf("Expected 1 total response, got %d", got.TotalResponses)
	}
}

// TestConcurrentCreatePoll verifies that racing instructors get exactly one
// success and an explicit error for every other attempt
func TestConcurrentCreatePoll(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	numAttempts := 20
	var created atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := m.CreatePoll(ctx, models.PollDefinition{
				Question:  fmt.Sprintf("Question %d", idx),
				Options:   []string{"A", "B"},
				ClassSize: 10,
			})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrPollAlreadyActive), errors.Is(err, ErrConflictingLifecycleOperation):
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 created poll, got %d", created.Load())
	}
}

// TestConcurrentClosePoll verifies that only one of several simultaneous
// closes succeeds and history gains exactly one entry
func TestConcurrentClosePoll(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	snap, _ := m.CreatePoll(ctx, understandingDef())

	numAttempts := 10
	var closed atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ClosePoll(ctx, snap.ID)
			switch {
			case err == nil:
				closed.Add(1)
			case errors.Is(err, ErrAlreadyClosed), errors.Is(err, ErrConflictingLifecycleOperation):
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if closed.Load() != 1 {
		t.Errorf("Expected exactly 1 successful close, got %d", closed.Load())
	}
	if len(m.History(0)) != 1 {
		t.Errorf("Expected 1 poll in history, got %d", len(m.History(0)))
	}
}

// blockingArchive holds SaveClosedPoll until release is closed.
type blockingArchive struct {
	entered chan struct{}
	release chan struct{}
}

func (a *blockingArchive) SaveClosedPoll(ctx context.Context, _ models.PollSnapshot) error {
	close(a.entered)
	select {
	case <-a.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TestLifecycleConflictDuringClose verifies that a create issued while a
// close is still in flight fails fast with ConflictingLifecycleOperation
func TestLifecycleConflictDuringClose(t *testing.T) {
	ctx := context.Background()
	archive := &blockingArchive{entered: make(chan struct{}), release: make(chan struct{})}
	m := newTestManager(WithArchive(archive, 5*time.Second))

	snap, _ := m.CreatePoll(ctx, understandingDef())

	closeErr := make(chan error, 1)
	go func() {
		_, err := m.ClosePoll(ctx, snap.ID)
		closeErr <- err
	}()
	<-archive.entered

	next := models.PollDefinition{Question: "Next", Options: []string{"A", "B"}, ClassSize: 10}
	if _, err := m.CreatePoll(ctx, next); !errors.Is(err, ErrConflictingLifecycleOperation) {
		t.Errorf("Expected ConflictingLifecycleOperation, got %v", err)
	}
	if _, err := m.ClosePoll(ctx, snap.ID); !errors.Is(err, ErrConflictingLifecycleOperation) {
		t.Errorf("Expected ConflictingLifecycleOperation, got %v", err)
	}

	// Submissions are not lifecycle operations and see the poll as closed.
	if _, err := m.Submit(ctx, snap.ID, "late", "Yes"); !errors.Is(err, ErrPollClosed) {
		t.Errorf("Expected PollClosed, got %v", err)
	}

	close(archive.release)
	if err := <-closeErr; err != nil {
		t.Fatalf("ClosePoll failed: %v", err)
	}

	// After re-fetching state the losing caller can retry.
	if _, ok := m.ActivePoll(); ok {
		t.Fatal("Expected no active poll")
	}
	if _, err := m.CreatePoll(ctx, next); err != nil {
		t.Errorf("Expected retry to succeed, got %v", err)
	}
}

// TestSubmitRacingClose verifies that every submission racing a close is
// either counted in the final snapshot or rejected with PollClosed
func TestSubmitRacingClose(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	snap, _ := m.CreatePoll(ctx, understandingDef())

	var accepted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			_, err := m.Submit(ctx, snap.ID, fmt.Sprintf("s-%d", idx), "Yes")
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrPollClosed):
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}(i)
	}

	close(start)
	final, err := m.ClosePoll(ctx, snap.ID)
	if err != nil {
		t.Fatalf("ClosePoll failed: %v", err)
	}
	wg.Wait()

	if final.TotalResponses != int(accepted.Load()) {
		t.Errorf("Expected final snapshot to count %d accepted responses, got %d", accepted.Load(), final.TotalResponses)
	}
}

// gatedClock blocks the call numbered pauseAt until resume is closed.
type gatedClock struct {
	mu      sync.Mutex
	calls   int
	pauseAt int
	paused  chan struct{}
	resume  chan struct{}
}

func newGatedClock() *gatedClock {
	return &gatedClock{paused: make(chan struct{}), resume: make(chan struct{})}
}

func (c *gatedClock) now() time.Time {
	c.mu.Lock()
	c.calls++
	hit := c.pauseAt > 0 && c.calls == c.pauseAt
	c.mu.Unlock()
	if hit {
		close(c.paused)
		<-c.resume
	}
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
}

// pauseAfter arms the clock to block on the nth call from now.
func (c *gatedClock) pauseAfter(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseAt = c.calls + n
}

func tallyTotals(n *recordingNotifier) []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	var totals []int
	for _, ev := range n.events {
		if ev.Type == models.EventTallyUpdated {
			totals = append(totals, ev.Poll.TotalResponses)
		}
	}
	return totals
}

// TestTallyEventsFollowLedgerOrder stalls the first submitter while it
// publishes its event and checks that a second submitter cannot overtake it
func TestTallyEventsFollowLedgerOrder(t *testing.T) {
	ctx := context.Background()
	clock := newGatedClock()
	n := &recordingNotifier{}
	m := newTestManager(WithNotifier(n), WithClock(clock.now))
	snap, _ := m.CreatePoll(ctx, understandingDef())

	// Call 1 stamps the response, call 2 stamps its event.
	clock.pauseAfter(2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := m.Submit(ctx, snap.ID, "first", "Yes"); err != nil {
			t.Errorf("First submit failed: %v", err)
		}
	}()
	<-clock.paused

	go func() {
		defer wg.Done()
		if _, err := m.Submit(ctx, snap.ID, "second", "Yes"); err != nil {
			t.Errorf("Second submit failed: %v", err)
		}
	}()
	time.Sleep(20 * time.Millisecond)
	close(clock.resume)
	wg.Wait()

	totals := tallyTotals(n)
	if len(totals) != 2 || totals[0] != 1 || totals[1] != 2 {
		t.Errorf("Expected tally totals [1 2] in delivery order, got %v", totals)
	}
}

// TestConcurrentTallyEventsAreMonotonic verifies that under load the
// delivered snapshots only move forward and the last one is current
func TestConcurrentTallyEventsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	m := newTestManager(WithNotifier(n))
	snap, _ := m.CreatePoll(ctx, understandingDef())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			m.Submit(ctx, snap.ID, fmt.Sprintf("s-%d", idx), snap.Options[idx%len(snap.Options)])
		}(i)
	}
	wg.Wait()
	m.ClosePoll(ctx, snap.ID)

	n.mu.Lock()
	events := append([]models.Event(nil), n.events...)
	n.mu.Unlock()

	var last int64
	for i, ev := range events {
		// An insight event repeats the snapshot of the tally event before it.
		if ev.Poll.Version < last || (ev.Poll.Version == last && ev.Type != models.EventInsightRaised) {
			t.Fatalf("Event %d (%s): version %d does not follow %d", i, ev.Type, ev.Poll.Version, last)
		}
		last = ev.Poll.Version
	}
	if events[len(events)-1].Type != models.EventPollClosed {
		t.Errorf("Expected poll_closed last, got %s", events[len(events)-1].Type)
	}

	totals := tallyTotals(n)
	if len(totals) != 100 || totals[99] != 100 {
		t.Errorf("Expected 100 tally events ending at 100, got %v", totals)
	}
}
