// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/party-council/middleware"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/service"
)

type MottoHandler struct {
	svc *service.Service
}

func NewMottoHandler(svc *service.Service) *MottoHandler {
	return &MottoHandler{svc: svc}
}

// GetParty handles GET /parties/{code}
func (h *MottoHandler) GetParty(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.PartyState(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, "party_state", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, state)
}

// Propose handles POST /parties/{code}/proposals
func (h *MottoHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req models.ProposeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	p, err := h.svc.Propose(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"), req.Text)
	if err != nil {
		writeError(w, "propose", err)
		return
	}

	slog.Info("motto proposed", "party_id", p.PartyID, "proposal_id", p.ID)
	middleware.JSONResponse(w, http.StatusCreated, models.ProposeResponse{Proposal: p})
}

// Vote handles POST /parties/{code}/votes
// A null proposal_id without proposal_text withdraws the caller's vote.
func (h *MottoHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ProposalID != nil && strings.TrimSpace(*req.ProposalID) == "" && strings.TrimSpace(req.ProposalText) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal_id must not be empty")
		return
	}

	res, err := h.svc.Vote(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"), service.VoteInput{
		ProposalID:   req.ProposalID,
		ProposalText: req.ProposalText,
	})
	if err != nil {
		writeError(w, "vote", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		ProposalID: res.ProposalID,
		Motto:      res.Motto,
	})
}

// Finalize handles POST /parties/{code}/finalize
func (h *MottoHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req models.FinalizeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.ProposalID) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal_id is required")
		return
	}

	resp, err := h.svc.Finalize(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"), req.ProposalID)
	if errors.Is(err, service.ErrNotMember) {
		// Finalize reports a missing roster entry as not found
		middleware.ErrorResponse(w, http.StatusNotFound, "Member not found")
		return
	}
	if err != nil {
		writeError(w, "finalize", err)
		return
	}

	slog.Info("motto finalized by leader", "proposal_id", resp.ProposalID)
	middleware.JSONResponse(w, http.StatusOK, resp)
}
