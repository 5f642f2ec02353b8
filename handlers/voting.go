// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/class-pulse/auth"
	"github.com/danielhkuo/class-pulse/middleware"
	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/poll"
)

type VotingHandler struct {
	manager *poll.Manager
}

func NewVotingHandler(manager *poll.Manager) *VotingHandler {
	return &VotingHandler{manager: manager}
}

// Join handles POST /participants
// Issues an opaque token; the server keeps no record of who holds it.
func (h *VotingHandler) Join(w http.ResponseWriter, r *http.Request) {
	token, err := auth.GenerateParticipantToken()
	if err != nil {
		slog.Error("failed to generate participant token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, string(poll.CodeUnknown), "Failed to join")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.JoinResponse{ParticipantToken: token})
}

// SubmitResponse handles POST /polls/{id}/responses
func (h *VotingHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	token := middleware.ParticipantToken(r.Context())

	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.CodeBadRequest, "Invalid JSON")
		return
	}

	snap, err := h.manager.Submit(r.Context(), pollID, token, req.Option)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponseResponse{
		Status: "accepted",
		Poll:   snap,
	})
}

// HasResponded handles GET /polls/{id}/responded
func (h *VotingHandler) HasResponded(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	token := middleware.ParticipantToken(r.Context())

	snap, err := h.manager.Poll(pollID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasRespondedResponse{
		PollID:             pollID,
		HasResponded:       h.manager.HasResponded(pollID, token),
		AcceptingResponses: snap.Status == models.StatusOpen,
	})
}
