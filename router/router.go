// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/class-pulse/cliparse"
	"github.com/danielhkuo/class-pulse/handlers"
	"github.com/danielhkuo/class-pulse/middleware"
	"github.com/danielhkuo/class-pulse/poll"
)

// Deps are the long-lived components the HTTP layer serves.
type Deps struct {
	Manager *poll.Manager
	// Live is mounted at /ws when set.
	Live http.Handler
	// Gatherer backs /metrics when set.
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps, cfg cliparse.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.CORS)

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(deps.Manager, cfg)
	votingHandler := handlers.NewVotingHandler(deps.Manager)
	resultsHandler := handlers.NewResultsHandler(deps.Manager)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	if deps.Live != nil {
		r.Method(http.MethodGet, "/ws", deps.Live)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithLogging)

		r.Post("/participants", votingHandler.Join)

		// Instructor operations
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminKey(cfg.SessionID, cfg.AdminKeySalt))
			r.Post("/polls", pollHandler.CreatePoll)
			r.Post("/polls/{id}/close", pollHandler.ClosePoll)
		})

		// Static segments win over {id} in chi.
		r.Get("/polls/active", resultsHandler.GetActivePoll)
		r.Get("/polls/history", resultsHandler.GetHistory)
		r.Get("/polls/{id}", resultsHandler.GetPoll)

		// Student operations
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireParticipantToken)
			r.Post("/polls/{id}/responses", votingHandler.SubmitResponse)
			r.Get("/polls/{id}/responded", votingHandler.HasResponded)
		})
	})

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("class-pulse API v1"))
	})

	return r
}
