// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import "errors"

// Code is a machine-readable error code surfaced to clients.
type Code string

const (
	CodeUnknown                       Code = "UNKNOWN"
	CodeInvalidDefinition             Code = "INVALID_DEFINITION"
	CodePollAlreadyActive             Code = "POLL_ALREADY_ACTIVE"
	CodeNotFound                      Code = "NOT_FOUND"
	CodeAlreadyClosed                 Code = "ALREADY_CLOSED"
	CodePollClosed                    Code = "POLL_CLOSED"
	CodeInvalidOption                 Code = "INVALID_OPTION"
	CodeDuplicateSubmission           Code = "DUPLICATE_SUBMISSION"
	CodeConflictingLifecycleOperation Code = "CONFLICTING_LIFECYCLE_OPERATION"
)

// Error is the engine error type. Two errors are equal under errors.Is
// when their codes match, so callers compare against the sentinels below.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrInvalidDefinition             = &Error{Code: CodeInvalidDefinition, Message: "invalid poll definition"}
	ErrPollAlreadyActive             = &Error{Code: CodePollAlreadyActive, Message: "a poll is already active"}
	ErrNotFound                      = &Error{Code: CodeNotFound, Message: "poll not found"}
	ErrAlreadyClosed                 = &Error{Code: CodeAlreadyClosed, Message: "poll is already closed"}
	ErrPollClosed                    = &Error{Code: CodePollClosed, Message: "poll is closed"}
	ErrInvalidOption                 = &Error{Code: CodeInvalidOption, Message: "option is not part of this poll"}
	ErrDuplicateSubmission           = &Error{Code: CodeDuplicateSubmission, Message: "participant has already responded"}
	ErrConflictingLifecycleOperation = &Error{Code: CodeConflictingLifecycleOperation, Message: "another lifecycle operation is in progress"}
)

func newError(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

func invalidDefinition(message string) *Error {
	return newError(CodeInvalidDefinition, "invalid poll definition: "+message, nil)
}

// CodeOf returns the engine code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
