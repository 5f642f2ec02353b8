// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/class-pulse/middleware"
	"github.com/danielhkuo/class-pulse/poll"
)

// statusFor maps engine codes onto HTTP statuses.
func statusFor(code poll.Code) int {
	switch code {
	case poll.CodeInvalidDefinition, poll.CodeInvalidOption:
		return http.StatusBadRequest
	case poll.CodeNotFound:
		return http.StatusNotFound
	case poll.CodePollAlreadyActive, poll.CodeAlreadyClosed, poll.CodePollClosed,
		poll.CodeDuplicateSubmission, poll.CodeConflictingLifecycleOperation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeEngineError writes err as a JSON error body.
func writeEngineError(w http.ResponseWriter, err error) {
	var pe *poll.Error
	if !errors.As(err, &pe) {
		slog.Error("unexpected engine error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, string(poll.CodeUnknown), "Internal error")
		return
	}
	middleware.ErrorResponse(w, statusFor(pe.Code), string(pe.Code), pe.Message)
}
