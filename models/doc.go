// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - PollDefinition: question, options, kind, correct_option, class_size, option_roles
  - SubmitResponseRequest: option

# Response Types

Types for JSON responses:

  - JoinResponse: participant_token
  - SubmitResponseResponse: status, poll
  - HasRespondedResponse: poll_id, has_responded, accepting_responses
  - ActivePollResponse: poll (null when no poll is open)
  - HistoryResponse: polls with a short human summary
  - ErrorResponse: error, code, message

# Domain Types

  - Response: one participant submission (token never serialized)
  - Tally: per-option count, percentage, and role
  - Insight: advisory signal derived from tallies
  - InsightRule: threshold configuration for an insight
  - PollSnapshot: immutable view of a poll with a monotonic version
  - Event: change notification carrying a fresh snapshot

# Constants

Status values:

	StatusOpen   = "open"
	StatusClosed = "closed"

Poll kinds:

	KindMultipleChoice     = "multiple_choice"
	KindUnderstandingCheck = "understanding_check"
	KindFactBased          = "fact_based"

Option roles:

	RoleLowUnderstanding = "low-understanding"
	RoleIncorrectFact    = "incorrect-fact"

Event types:

	EventPollCreated, EventTallyUpdated, EventInsightRaised, EventPollClosed
*/
package models
