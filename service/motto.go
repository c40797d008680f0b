// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/party-council/consensus"
	"github.com/danielhkuo/party-council/db"
	"github.com/danielhkuo/party-council/models"
)

// Propose adds an active proposal authored by the caller.
func (s *Service) Propose(ctx context.Context, userID, code, text string) (models.Proposal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Proposal{}, ErrEmptyText
	}

	party, member, _, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return models.Proposal{}, err
	}
	if party.Resolved() {
		return models.Proposal{}, ErrPartyResolved
	}

	p := models.Proposal{
		ID:        uuid.NewString(),
		PartyID:   party.ID,
		MemberID:  member.ID,
		Text:      text,
		Active:    true,
		CreatedAt: s.opts.Now(),
	}
	if err := s.store.CreateProposal(ctx, p); err != nil {
		return models.Proposal{}, fmt.Errorf("create proposal: %w", err)
	}

	s.refreshMorale(ctx, party.ID)
	return p, nil
}

type VoteInput struct {
	ProposalID   *string
	ProposalText string
}

// VoteResult carries the caller's vote after the call (nil when withdrawn)
// and the motto if this vote decided it.
type VoteResult struct {
	ProposalID *string
	Motto      *string
}

// Vote places, moves or withdraws the caller's vote, then runs the
// auto-finalize check and recomputes morale.
func (s *Service) Vote(ctx context.Context, userID, code string, in VoteInput) (VoteResult, error) {
	party, member, _, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return VoteResult{}, err
	}
	if !member.Eligible() {
		return VoteResult{}, ErrNotEligible
	}
	if party.Resolved() {
		return VoteResult{}, ErrPartyResolved
	}

	var result VoteResult
	if in.ProposalID == nil && strings.TrimSpace(in.ProposalText) == "" {
		if _, err := s.store.RemoveVote(ctx, member.ID); err != nil {
			return VoteResult{}, fmt.Errorf("remove vote: %w", err)
		}
	} else {
		target, err := s.resolveTarget(ctx, party.ID, in)
		if err != nil {
			return VoteResult{}, err
		}
		if !target.Active || target.IsFinalized {
			return VoteResult{}, ErrProposalClosed
		}

		applied, err := s.store.CastVote(ctx, models.Vote{
			ID:         uuid.NewString(),
			PartyID:    party.ID,
			ProposalID: target.ID,
			VoterID:    member.ID,
		})
		if err != nil {
			return VoteResult{}, fmt.Errorf("cast vote: %w", err)
		}
		if !applied {
			// Closed between the read above and the write.
			return VoteResult{}, ErrProposalClosed
		}
		result.ProposalID = &target.ID
	}

	// The vote is stored. A failed finalize pass is retried by the next mutation.
	if _, err := s.AutoFinalize(ctx, party.ID); err != nil {
		slog.Error("auto-finalize failed", "party_id", party.ID, "error", err)
	}
	s.refreshMorale(ctx, party.ID)

	if current, err := s.store.PartyByID(ctx, party.ID); err == nil {
		result.Motto = current.Motto
	}
	return result, nil
}

// resolveTarget finds the proposal by id and falls back to its exact
// trimmed text, so a client holding a stale id can still vote.
func (s *Service) resolveTarget(ctx context.Context, partyID string, in VoteInput) (models.Proposal, error) {
	if in.ProposalID != nil && *in.ProposalID != "" {
		p, err := s.store.Proposal(ctx, *in.ProposalID)
		switch {
		case err == nil && p.PartyID == partyID:
			return p, nil
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return models.Proposal{}, fmt.Errorf("load proposal: %w", err)
		}
	}

	text := strings.TrimSpace(in.ProposalText)
	if text == "" {
		return models.Proposal{}, ErrProposalNotFound
	}

	proposals, err := s.store.Proposals(ctx, partyID)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("load proposals: %w", err)
	}
	var matches []models.Proposal
	for _, p := range consensus.Open(proposals) {
		if p.Text == text {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return models.Proposal{}, ErrProposalNotFound
	case 1:
		return matches[0], nil
	default:
		return models.Proposal{}, ErrAmbiguousProposal
	}
}

// Finalize is the leader override: the chosen proposal wins regardless of
// votes, provided it is still open.
func (s *Service) Finalize(ctx context.Context, userID, code, proposalID string) (models.FinalizeResponse, error) {
	if strings.TrimSpace(proposalID) == "" {
		return models.FinalizeResponse{}, ErrInvalidProposal
	}

	party, member, _, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return models.FinalizeResponse{}, err
	}
	if !member.IsLeader {
		return models.FinalizeResponse{}, ErrNotLeader
	}

	p, err := s.store.Proposal(ctx, proposalID)
	if errors.Is(err, db.ErrNotFound) {
		return models.FinalizeResponse{}, ErrProposalNotFound
	}
	if err != nil {
		return models.FinalizeResponse{}, fmt.Errorf("load proposal: %w", err)
	}
	if p.PartyID != party.ID {
		return models.FinalizeResponse{}, ErrProposalNotFound
	}
	if !p.Active || p.IsFinalized {
		return models.FinalizeResponse{}, ErrProposalClosed
	}

	won, err := s.finalize(ctx, party.ID, p)
	if err != nil {
		return models.FinalizeResponse{}, err
	}
	if !won {
		return models.FinalizeResponse{}, ErrPartyResolved
	}

	s.refreshMorale(ctx, party.ID)
	return models.FinalizeResponse{Motto: p.Text, ProposalID: p.ID}, nil
}

// AutoFinalize checks the party's proposals for a winner and finalizes it.
// It reports whether this call set the motto. Losing a race to another
// finalize is not an error.
func (s *Service) AutoFinalize(ctx context.Context, partyID string) (bool, error) {
	party, err := s.store.PartyByID(ctx, partyID)
	if err != nil {
		return false, fmt.Errorf("load party: %w", err)
	}
	proposals, err := s.store.Proposals(ctx, partyID)
	if err != nil {
		return false, fmt.Errorf("load proposals: %w", err)
	}

	if party.Resolved() {
		return false, s.repair(ctx, party, proposals)
	}

	members, err := s.store.Members(ctx, partyID)
	if err != nil {
		return false, fmt.Errorf("load members: %w", err)
	}
	votes, err := s.store.Votes(ctx, partyID)
	if err != nil {
		return false, fmt.Errorf("load votes: %w", err)
	}

	in := consensus.Input{
		Proposals: proposals,
		Votes:     votes,
		Eligible:  eligibleCount(members),
		Morale:    participationScore(members, proposals, votes),
		Settings:  s.MoraleSettings(ctx),
	}
	if leader, ok := leaderOf(members); ok {
		for _, v := range votes {
			if v.VoterID == leader.ID {
				in.LeaderVote = v.ProposalID
				break
			}
		}
	}

	out := consensus.Decide(in)
	if out.Winner == nil {
		return false, nil
	}

	slog.Info("motto decided",
		"party_id", partyID,
		"proposal_id", out.Winner.ID,
		"reason", out.Reason,
		"votes", out.MaxVotes,
		"threshold", out.Threshold,
	)
	return s.finalize(ctx, partyID, *out.Winner)
}

// finalize runs set-motto, mark-finalized and close-all. Each write is
// guarded, so it reports false without error when another caller already
// set the motto.
func (s *Service) finalize(ctx context.Context, partyID string, p models.Proposal) (bool, error) {
	applied, err := s.store.SetMotto(ctx, partyID, p.Text)
	if err != nil {
		return false, &FinalizeError{Step: StepSetMotto, Err: err}
	}
	if !applied {
		return false, nil
	}

	if _, err := s.store.MarkFinalized(ctx, partyID, p.ID); err != nil {
		return true, &FinalizeError{Step: StepMarkFinalized, Err: err}
	}
	if _, err := s.store.CloseProposals(ctx, partyID); err != nil {
		return true, &FinalizeError{Step: StepCloseProposals, Err: err}
	}
	return true, nil
}

// repair completes a finalize sequence that stopped after the motto was
// set. It is a no-op for a fully finalized party.
func (s *Service) repair(ctx context.Context, party models.Party, proposals []models.Proposal) error {
	var winner *models.Proposal
	hasFinalized, hasActive := false, false
	for i := range proposals {
		p := &proposals[i]
		if p.IsFinalized {
			hasFinalized = true
		}
		if p.Active {
			hasActive = true
			if winner == nil && party.Motto != nil && p.Text == *party.Motto {
				winner = p
			}
		}
	}
	if !hasActive {
		return nil
	}

	slog.Warn("repairing partial finalize", "party_id", party.ID)
	if !hasFinalized && winner != nil {
		if _, err := s.store.MarkFinalized(ctx, party.ID, winner.ID); err != nil {
			return &FinalizeError{Step: StepMarkFinalized, Err: err}
		}
	}
	if _, err := s.store.CloseProposals(ctx, party.ID); err != nil {
		return &FinalizeError{Step: StepCloseProposals, Err: err}
	}
	return nil
}

// PartyState returns the party with every proposal's vote count and the
// caller's current vote.
func (s *Service) PartyState(ctx context.Context, userID, code string) (models.PartyStateResponse, error) {
	party, member, _, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return models.PartyStateResponse{}, err
	}

	proposals, err := s.store.Proposals(ctx, party.ID)
	if err != nil {
		return models.PartyStateResponse{}, fmt.Errorf("load proposals: %w", err)
	}
	votes, err := s.store.Votes(ctx, party.ID)
	if err != nil {
		return models.PartyStateResponse{}, fmt.Errorf("load votes: %w", err)
	}

	counts := consensus.Tally(votes)
	resp := models.PartyStateResponse{
		Party:     party,
		Proposals: make([]models.ProposalTally, 0, len(proposals)),
	}
	for _, p := range proposals {
		resp.Proposals = append(resp.Proposals, models.ProposalTally{Proposal: p, Votes: counts[p.ID]})
	}
	for _, v := range votes {
		if v.VoterID == member.ID {
			id := v.ProposalID
			resp.MyVote = &id
			break
		}
	}
	return resp, nil
}
