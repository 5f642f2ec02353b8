// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/class-pulse/cliparse"
	"github.com/danielhkuo/class-pulse/middleware"
	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/poll"
)

// PollHandler serves the instructor's lifecycle operations. Routes are
// mounted behind middleware.RequireAdminKey.
type PollHandler struct {
	manager *poll.Manager
	cfg     cliparse.Config
}

func NewPollHandler(manager *poll.Manager, cfg cliparse.Config) *PollHandler {
	return &PollHandler{manager: manager, cfg: cfg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var def models.PollDefinition
	if err := middleware.ParseJSONBody(r, &def); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.CodeBadRequest, "Invalid JSON")
		return
	}

	// The original form had no class size field; the session default applies.
	if def.ClassSize == 0 {
		def.ClassSize = h.cfg.DefaultClassSize
	}

	snap, err := h.manager.CreatePoll(r.Context(), def)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, snap)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	// Archiving must finish even if the instructor's browser goes away.
	snap, err := h.manager.ClosePoll(context.WithoutCancel(r.Context()), pollID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}
