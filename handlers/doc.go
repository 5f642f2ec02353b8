// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the class-pulse API.

# Handler Types

Each handler is a thin struct over the shared *poll.Manager:

  - PollHandler: instructor lifecycle (create, close)
  - VotingHandler: participant tokens, submissions, has-responded checks
  - ResultsHandler: active poll, single poll, and history views

	pollHandler := handlers.NewPollHandler(manager, cfg)

Authentication happens in middleware before a handler runs, so handlers
only see requests that already carry a valid admin key or participant
token.

# Poll Lifecycle

One poll is open at a time: open → closed

	POST /polls            → CreatePoll (409 POLL_ALREADY_ACTIVE while one is open)
	POST /polls/{id}/close → ClosePoll (archives the final snapshot)

# Responding

	POST /participants          → Join (returns participant_token)
	POST /polls/{id}/responses  → SubmitResponse (one per token per poll)
	GET  /polls/{id}/responded  → HasResponded

# Errors

Engine errors are written as {error, code, message}. INVALID_DEFINITION and
INVALID_OPTION are 400, NOT_FOUND is 404, every other engine code is 409.
*/
package handlers
