// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/danielhkuo/party-council/auth"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/morale"
)

// Setting keys for the morale thresholds.
const (
	SettingMoraleHigh       = "morale.high"
	SettingMoraleLow        = "morale.low"
	SettingMoraleHysteresis = "morale.hysteresis"
)

// participationScore averages the completion, voting and proposal rates
// over eligible members. Only active proposals and votes on them count.
func participationScore(members []models.Member, proposals []models.Proposal, votes []models.Vote) float64 {
	eligible := make(map[string]bool, len(members))
	finished := 0
	for _, m := range members {
		if !m.Eligible() {
			continue
		}
		eligible[m.ID] = true
		if m.AssessmentStatus == models.AssessmentFinished {
			finished++
		}
	}

	active := make(map[string]bool, len(proposals))
	proposers := make(map[string]bool)
	for _, p := range proposals {
		if !p.Active {
			continue
		}
		active[p.ID] = true
		if eligible[p.MemberID] {
			proposers[p.MemberID] = true
		}
	}

	voters := make(map[string]bool)
	for _, v := range votes {
		if active[v.ProposalID] && eligible[v.VoterID] {
			voters[v.VoterID] = true
		}
	}

	n := len(eligible)
	return morale.ComputeScore(
		morale.Rate(finished, n),
		morale.Rate(len(voters), n),
		morale.Rate(len(proposers), n),
	)
}

// RecomputeMorale derives the party's morale from current participation
// and persists it. The previous level feeds the hysteresis band.
func (s *Service) RecomputeMorale(ctx context.Context, partyID string) (models.MoraleResponse, error) {
	party, err := s.store.PartyByID(ctx, partyID)
	if err != nil {
		return models.MoraleResponse{}, fmt.Errorf("load party: %w", err)
	}
	members, err := s.store.Members(ctx, partyID)
	if err != nil {
		return models.MoraleResponse{}, fmt.Errorf("load members: %w", err)
	}
	proposals, err := s.store.Proposals(ctx, partyID)
	if err != nil {
		return models.MoraleResponse{}, fmt.Errorf("load proposals: %w", err)
	}
	votes, err := s.store.Votes(ctx, partyID)
	if err != nil {
		return models.MoraleResponse{}, fmt.Errorf("load votes: %w", err)
	}

	score := participationScore(members, proposals, votes)
	level := morale.ResolveLevel(score, party.MoraleLevel, s.MoraleSettings(ctx))
	if err := s.store.SaveMorale(ctx, partyID, score, level); err != nil {
		return models.MoraleResponse{}, fmt.Errorf("save morale: %w", err)
	}
	return models.MoraleResponse{Score: score, Level: level}, nil
}

// refreshMorale is RecomputeMorale for side-effect use: failures are logged.
func (s *Service) refreshMorale(ctx context.Context, partyID string) {
	if _, err := s.RecomputeMorale(ctx, partyID); err != nil {
		slog.Warn("morale recompute failed", "party_id", partyID, "error", err)
	}
}

// Morale returns the party's stored morale.
func (s *Service) Morale(ctx context.Context, userID, code string) (models.MoraleResponse, error) {
	party, _, _, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return models.MoraleResponse{}, err
	}
	return models.MoraleResponse{Score: party.MoraleScore, Level: party.MoraleLevel}, nil
}

// MoraleSettings returns the stored thresholds, or the defaults when they
// are missing, unreadable or invalid. It never fails.
func (s *Service) MoraleSettings(ctx context.Context) morale.Settings {
	values, err := s.store.Settings(ctx, SettingMoraleHigh, SettingMoraleLow, SettingMoraleHysteresis)
	if err != nil {
		slog.Warn("morale settings unreadable, using defaults", "error", err)
		return morale.DefaultSettings()
	}
	if len(values) == 0 {
		return morale.DefaultSettings()
	}

	var st morale.Settings
	fields := []struct {
		key string
		dst *float64
	}{
		{SettingMoraleHigh, &st.High},
		{SettingMoraleLow, &st.Low},
		{SettingMoraleHysteresis, &st.Hysteresis},
	}
	for _, f := range fields {
		raw, ok := values[f.key]
		if !ok {
			slog.Warn("morale setting missing, using defaults", "key", f.key)
			return morale.DefaultSettings()
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			slog.Warn("morale setting malformed, using defaults", "key", f.key, "value", raw)
			return morale.DefaultSettings()
		}
		*f.dst = v
	}
	return st.OrDefault()
}

// RequireAdmin returns ErrForbidden unless userID is the admin identity.
func (s *Service) RequireAdmin(userID string) error {
	if !auth.IsAdmin(userID, s.opts.AdminUserID) {
		return ErrForbidden
	}
	return nil
}

// SetMoraleSettings validates and stores new thresholds. Only the admin may
// call it. Violations come back as *morale.ValidationError.
func (s *Service) SetMoraleSettings(ctx context.Context, userID string, st morale.Settings) (morale.Settings, error) {
	if err := s.RequireAdmin(userID); err != nil {
		return morale.Settings{}, err
	}
	if err := st.Validate(); err != nil {
		return morale.Settings{}, err
	}

	err := s.store.PutSettings(ctx, map[string]string{
		SettingMoraleHigh:       strconv.FormatFloat(st.High, 'g', -1, 64),
		SettingMoraleLow:        strconv.FormatFloat(st.Low, 'g', -1, 64),
		SettingMoraleHysteresis: strconv.FormatFloat(st.Hysteresis, 'g', -1, 64),
	})
	if err != nil {
		return morale.Settings{}, fmt.Errorf("save morale settings: %w", err)
	}
	slog.Info("morale settings updated", "high", st.High, "low", st.Low, "hysteresis", st.Hysteresis)
	return st, nil
}
