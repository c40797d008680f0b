// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/party-council/middleware"
	"github.com/danielhkuo/party-council/morale"
	"github.com/danielhkuo/party-council/service"
)

var statusByError = []struct {
	err    error
	status int
}{
	{service.ErrPartyNotFound, http.StatusNotFound},
	{service.ErrNotMember, http.StatusForbidden},
	{service.ErrNotLeader, http.StatusForbidden},
	{service.ErrNotEligible, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrEmptyText, http.StatusBadRequest},
	{service.ErrInvalidProposal, http.StatusBadRequest},
	{service.ErrProposalNotFound, http.StatusBadRequest},
	{service.ErrProposalClosed, http.StatusBadRequest},
	{service.ErrAmbiguousProposal, http.StatusBadRequest},
	{service.ErrPartyResolved, http.StatusBadRequest},
	{service.ErrInvalidAnswer, http.StatusBadRequest},
	{service.ErrDuplicateAnswer, http.StatusConflict},
	{service.ErrAssessmentFinished, http.StatusConflict},
}

var finalizeMessages = map[string]string{
	service.StepSetMotto:       "Failed to set party motto",
	service.StepMarkFinalized:  "Failed to mark proposal finalized",
	service.StepCloseProposals: "Failed to close proposals",
}

// writeError maps a service error to a status and JSON body. Unknown
// errors are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, op string, err error) {
	var ve *morale.ValidationError
	if errors.As(err, &ve) {
		middleware.ErrorDetails(w, http.StatusBadRequest, "Invalid morale settings", ve.Violations)
		return
	}

	var fe *service.FinalizeError
	if errors.As(err, &fe) {
		slog.Error("finalize failed", "op", op, "step", fe.Step, "error", fe.Err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, finalizeMessages[fe.Step])
		return
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			middleware.ErrorResponse(w, m.status, err.Error())
			return
		}
	}

	slog.Error("request failed", "op", op, "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
}
