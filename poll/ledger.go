// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"time"

	"github.com/danielhkuo/class-pulse/models"
)

// entry is one accepted choice. It deliberately has no token field.
type entry struct {
	option      int
	submittedAt time.Time
}

// Ledger records accepted responses for a single poll and enforces one
// response per participant token.
//
// Tokens and choices live in separate structures: the token set answers
// "has this participant responded?" and the choice list feeds the tally,
// and nothing joins the two.
//
// A Ledger is not safe for concurrent use; the owning Poll serializes access.
type Ledger struct {
	index   map[string]int
	tokens  map[string]struct{}
	entries []entry
	frozen  bool
}

func newLedger(options []string) *Ledger {
	index := make(map[string]int, len(options))
	for i, opt := range options {
		index[opt] = i
	}
	return &Ledger{
		index:  index,
		tokens: make(map[string]struct{}),
	}
}

// Record accepts a response or returns PollClosed, DuplicateSubmission or
// InvalidOption. A rejected call leaves the ledger unchanged.
func (l *Ledger) Record(r models.Response) error {
	if l.frozen {
		return ErrPollClosed
	}
	if _, seen := l.tokens[r.ParticipantToken]; seen {
		return ErrDuplicateSubmission
	}
	idx, ok := l.index[r.Option]
	if !ok {
		return newError(CodeInvalidOption, "option is not part of this poll", map[string]string{"option": r.Option})
	}

	l.tokens[r.ParticipantToken] = struct{}{}
	l.entries = append(l.entries, entry{option: idx, submittedAt: r.SubmittedAt})
	return nil
}

// HasResponded reports whether token already has an accepted response.
func (l *Ledger) HasResponded(token string) bool {
	_, ok := l.tokens[token]
	return ok
}

// Len returns the number of accepted responses.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Choices returns the accepted option indices in arrival order.
func (l *Ledger) Choices() []int {
	choices := make([]int, len(l.entries))
	for i, e := range l.entries {
		choices[i] = e.option
	}
	return choices
}

// Freeze stops the ledger from accepting further responses.
func (l *Ledger) Freeze() {
	l.frozen = true
}
