// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Poll kind constants
const (
	KindMultipleChoice     = "multiple_choice"
	KindUnderstandingCheck = "understanding_check"
	KindFactBased          = "fact_based"
)

// Option role constants used by insight rules
const (
	RoleLowUnderstanding = "low-understanding"
	RoleIncorrectFact    = "incorrect-fact"
)

// Insight kind constants
const (
	InsightNeedsClarification  = "NeedsClarification"
	InsightCommonMisconception = "CommonMisconception"
)

// Event type constants
const (
	EventPollCreated   = "poll_created"
	EventTallyUpdated  = "tally_updated"
	EventInsightRaised = "insight_raised"
	EventPollClosed    = "poll_closed"
)

// Request types

// PollDefinition is the instructor's description of a new poll.
type PollDefinition struct {
	Question      string            `json:"question"`
	Options       []string          `json:"options"`
	Kind          string            `json:"kind"`
	CorrectOption string            `json:"correct_option,omitempty"`
	ClassSize     int               `json:"class_size"`
	OptionRoles   map[string]string `json:"option_roles,omitempty"`
}

type SubmitResponseRequest struct {
	Option string `json:"option"`
}

// Response types

type JoinResponse struct {
	ParticipantToken string `json:"participant_token"`
}

type SubmitResponseResponse struct {
	Status string       `json:"status"`
	Poll   PollSnapshot `json:"poll"`
}

// HasRespondedResponse tells the student UI whether to offer the form:
// only when the poll is accepting responses and the token has none yet.
type HasRespondedResponse struct {
	PollID             string `json:"poll_id"`
	HasResponded       bool   `json:"has_responded"`
	AcceptingResponses bool   `json:"accepting_responses"`
}

type ActivePollResponse struct {
	Poll *PollSnapshot `json:"poll"`
}

type HistoryEntry struct {
	Poll    PollSnapshot `json:"poll"`
	Summary string       `json:"summary"`
}

type HistoryResponse struct {
	Polls []HistoryEntry `json:"polls"`
}

// Domain types

// Response is one participant's submission as it enters the ledger. The
// token is used for deduplication only and is never serialized.
type Response struct {
	PollID           string    `json:"poll_id"`
	ParticipantToken string    `json:"-"`
	Option           string    `json:"option"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

type Tally struct {
	Option     string `json:"option"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
	Role       string `json:"role,omitempty"`
}

type Insight struct {
	Kind             string `json:"kind"`
	Message          string `json:"message"`
	TriggeringOption string `json:"triggering_option,omitempty"`
	Percentage       int    `json:"percentage"`
}

// InsightRule fires when an option tagged with TargetRole reaches
// ThresholdPercent. Message may contain {percentage} and {option}.
type InsightRule struct {
	Kind             string  `json:"kind"`
	ThresholdPercent float64 `json:"threshold_percent"`
	TargetRole       string  `json:"target_role"`
	Message          string  `json:"message"`
}

// PollSnapshot is a read-only view of a poll at one instant. Version grows
// by one with every accepted response and on close; observers keep the
// snapshot with the highest version.
type PollSnapshot struct {
	ID                string     `json:"id"`
	Version           int64      `json:"version"`
	Question          string     `json:"question"`
	Options           []string   `json:"options"`
	Kind              string     `json:"kind"`
	CorrectOption     string     `json:"correct_option,omitempty"`
	ClassSize         int        `json:"class_size"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
	Tallies           []Tally    `json:"tallies"`
	TotalResponses    int        `json:"total_responses"`
	ParticipationRate int        `json:"participation_rate"`
	Insights          []Insight  `json:"insights"`
}

// Event is a change notification relayed to connected clients.
type Event struct {
	Type       string       `json:"type"`
	Poll       PollSnapshot `json:"poll"`
	Insights   []Insight    `json:"insights,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
