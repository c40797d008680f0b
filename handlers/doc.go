// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Party Council API.

# Handler Types

Each handler is a thin struct over *service.Service:

  - MottoHandler: party state, proposals, votes and the leader override
  - MoraleHandler: party morale and the global morale thresholds
  - AssessmentHandler: question catalog, answers, sheets

Handlers are created via constructor functions:

	motto := handlers.NewMottoHandler(svc)

All party routes run behind middleware.RequireUser, so the caller's user id
is always available through middleware.UserID.

# Motto Consensus

	GET  /parties/{code}          → GetParty (tallies and my_vote)
	POST /parties/{code}/proposals → Propose
	POST /parties/{code}/votes     → Vote (proposal_id null withdraws)
	POST /parties/{code}/finalize  → Finalize (leader only)

A vote that gives a proposal the majority, or settles a tie through the
leader, returns the decided motto in the same response.

# Assessment

	GET  /questions                         → GetQuestions
	POST /parties/{code}/answers            → SubmitAnswers
	POST /parties/{code}/assessment/finish  → FinishAssessment
	GET  /parties/{code}/sheets             → GetSheets

Answers are append-only. A batch is validated as a whole and either stored
entirely or rejected.

# Errors

writeError maps service errors onto status codes:

	ErrPartyNotFound                    → 404
	ErrNotMember, ErrNotLeader, ...     → 403
	invalid input, closed proposals     → 400
	ErrDuplicateAnswer, finished        → 409
	*service.FinalizeError              → 500 naming the failed step

Finalize is the exception for missing members, which it reports as 404.
*/
package handlers
