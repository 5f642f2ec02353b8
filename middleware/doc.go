// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

WithLogging logs one line per request (method, path, status, remote,
request_id, duration_ms). It never logs headers or bodies:

	r.Use(chimw.RequestID, middleware.WithLogging)

# Authentication

	r.With(middleware.RequireAdminKey(cfg.SessionID, cfg.AdminKeySalt)).Post("/polls", ...)
	r.With(middleware.RequireParticipantToken).Post("/polls/{id}/responses", ...)

RequireParticipantToken stores the token in the request context; handlers
read it back with ParticipantToken(r.Context()).

# CORS Middleware

Allows methods GET, POST, OPTIONS with headers Content-Type, X-Admin-Key and
X-Participant-Token.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusConflict, "POLL_CLOSED", "poll is closed")

ParseJSONBody decodes at most 64 KiB of the request body.
*/
package middleware
