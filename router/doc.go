// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires HTTP routes to handlers on a chi router.

# Routes

	GET  /health                   liveness
	GET  /metrics                  Prometheus scrape (when Deps.Gatherer is set)
	GET  /ws                       live poll events (when Deps.Live is set)
	POST /participants             issue a participant token
	POST /polls                    open a poll            (X-Admin-Key)
	POST /polls/{id}/close         close a poll           (X-Admin-Key)
	GET  /polls/active             the open poll, or null
	GET  /polls/history?limit=N    closed polls, newest first
	GET  /polls/{id}               one poll
	POST /polls/{id}/responses     submit a response      (X-Participant-Token)
	GET  /polls/{id}/responded     has this token responded (X-Participant-Token)

# Middleware

Every route gets chi's RequestID and Recoverer plus CORS. API routes are
logged with middleware.WithLogging; /metrics and /ws are not.

# Usage

	mux := router.NewRouter(router.Deps{
		Manager:  manager,
		Live:     hub,
		Gatherer: registry,
	}, cfg)
	server := http.Server{Handler: mux, Addr: ":3318"}
*/
package router
