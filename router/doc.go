// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Party Council API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health
	GET /

Motto consensus (bearer session required):

	GET  /parties/{code}           - Party, proposal tallies, my vote
	POST /parties/{code}/proposals - Propose a motto
	POST /parties/{code}/votes     - Cast, move or withdraw a vote
	POST /parties/{code}/finalize  - Leader override

Morale:

	GET /parties/{code}/morale - Current score and level
	GET /settings/morale       - Thresholds (defaults when unset)
	PUT /settings/morale       - Update thresholds (admin only)

Assessment:

	GET  /questions                        - Question catalog
	POST /parties/{code}/answers           - Append answers
	POST /parties/{code}/assessment/finish - Finish; derives sheets when all are done
	GET  /parties/{code}/sheets            - Character sheets

Every route except health goes through middleware.WithLogging and
middleware.RequireUser.
*/
package router
