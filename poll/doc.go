// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll is the aggregation engine behind classroom live polls.

# Components

  - Poll: immutable question/options plus live tally state, one mutex per poll
  - Ledger: one response per participant token; tokens are never joined to choices
  - Recompute / RoundPercent: tallies derived from the full ledger every time
  - Evaluator: configurable threshold rules that emit insights
  - Manager: create, close, active slot, history, and submission routing

# Lifecycle

A poll is open when created and closed by an explicit instructor action:

	snap, err := manager.CreatePoll(ctx, def)   // PollAlreadyActive while one is open
	snap, err = manager.Submit(ctx, snap.ID, token, "Yes")
	snap, err = manager.ClosePoll(ctx, snap.ID) // AlreadyClosed on repeat

Closed polls are immutable and kept in history, most recently closed first.

# Concurrency

Submissions for one poll are serialized by that poll's mutex, so the
duplicate check, the tally recompute and insight evaluation are one atomic
step, and the snapshot returned to the submitter includes their response.
CreatePoll and ClosePoll hold an in-flight guard; a lifecycle call that
overlaps another fails with ConflictingLifecycleOperation instead of waiting.

# Notifications

After every accepted mutation the Manager calls its Notifier with a fresh
snapshot. Broadcaster queues events and fans them out to sinks (websocket
hub, Kafka, Redis) without blocking the engine.

# Errors

Every rejection is a *Error carrying a Code. Compare with errors.Is against
the sentinels (ErrDuplicateSubmission, ErrPollClosed, ...) or read the code
with CodeOf.
*/
package poll
