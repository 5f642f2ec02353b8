// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/class-pulse/middleware"
	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/poll"
)

// DefaultHistoryLimit matches the "Recent Polls" panel of the dashboard.
const DefaultHistoryLimit = 3

type ResultsHandler struct {
	manager *poll.Manager
	now     func() time.Time
}

func NewResultsHandler(manager *poll.Manager) *ResultsHandler {
	return &ResultsHandler{manager: manager, now: time.Now}
}

// GetActivePoll handles GET /polls/active
// A null poll means nothing is open.
func (h *ResultsHandler) GetActivePoll(w http.ResponseWriter, r *http.Request) {
	var resp models.ActivePollResponse
	if snap, ok := h.manager.ActivePoll(); ok {
		resp.Poll = &snap
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetPoll handles GET /polls/{id}
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	snap, err := h.manager.Poll(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, snap)
}

// GetHistory handles GET /polls/history?limit=N
// limit=0 returns every closed poll.
func (h *ResultsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, middleware.CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	now := h.now()
	polls := h.manager.History(limit)
	entries := make([]models.HistoryEntry, 0, len(polls))
	for _, snap := range polls {
		entries = append(entries, models.HistoryEntry{
			Poll:    snap,
			Summary: summarize(snap, now),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{Polls: entries})
}

// summarize renders e.g. "28 responses • 3 minutes ago".
func summarize(snap models.PollSnapshot, now time.Time) string {
	noun := "responses"
	if snap.TotalResponses == 1 {
		noun = "response"
	}
	at := snap.CreatedAt
	if snap.ClosedAt != nil {
		at = *snap.ClosedAt
	}
	return fmt.Sprintf("%s %s • %s", humanize.Comma(int64(snap.TotalResponses)), noun, humanize.RelTime(at, now, "ago", "from now"))
}
