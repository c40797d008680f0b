// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/party-council/db"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/stats"
)

// Store is the persistence the service needs. db.Store implements it.
type Store interface {
	PartyByCode(ctx context.Context, code string) (models.Party, error)
	PartyByID(ctx context.Context, id string) (models.Party, error)
	Members(ctx context.Context, partyID string) ([]models.Member, error)
	SetAssessmentStatus(ctx context.Context, memberID, status string) error

	CreateProposal(ctx context.Context, p models.Proposal) error
	Proposal(ctx context.Context, id string) (models.Proposal, error)
	Proposals(ctx context.Context, partyID string) ([]models.Proposal, error)
	Votes(ctx context.Context, partyID string) ([]models.Vote, error)
	CastVote(ctx context.Context, v models.Vote) (bool, error)
	RemoveVote(ctx context.Context, voterID string) (bool, error)

	SetMotto(ctx context.Context, partyID, motto string) (bool, error)
	MarkFinalized(ctx context.Context, partyID, proposalID string) (bool, error)
	CloseProposals(ctx context.Context, partyID string) (int64, error)
	SaveMorale(ctx context.Context, partyID string, score float64, level models.MoraleLevel) error

	Settings(ctx context.Context, keys ...string) (map[string]string, error)
	PutSettings(ctx context.Context, values map[string]string) error

	Questions(ctx context.Context) ([]models.Question, error)
	AppendAnswers(ctx context.Context, answers []models.Answer) error
	Answers(ctx context.Context, partyID string) ([]models.Answer, error)
	SaveSheets(ctx context.Context, partyID string, sheets []models.CharacterSheet) error
	Sheets(ctx context.Context, partyID string) ([]models.CharacterSheet, error)
}

var _ Store = (*db.Store)(nil)

type Options struct {
	AdminUserID string
	Stats       stats.Options
	// Now stamps new proposals. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Service runs the party operations. It keeps no state between calls.
type Service struct {
	store Store
	opts  Options
}

func New(store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Stats.Scale <= 0 || opts.Stats.Clamp <= 0 {
		opts.Stats = stats.DefaultOptions()
	}
	return &Service{store: store, opts: opts}
}

// partyMember loads the party by join code and the caller's roster entry.
func (s *Service) partyMember(ctx context.Context, userID, code string) (models.Party, models.Member, []models.Member, error) {
	party, err := s.store.PartyByCode(ctx, code)
	if errors.Is(err, db.ErrNotFound) {
		return models.Party{}, models.Member{}, nil, ErrPartyNotFound
	}
	if err != nil {
		return models.Party{}, models.Member{}, nil, fmt.Errorf("load party: %w", err)
	}

	members, err := s.store.Members(ctx, party.ID)
	if err != nil {
		return models.Party{}, models.Member{}, nil, fmt.Errorf("load members: %w", err)
	}
	for _, m := range members {
		if userID != "" && m.UserID == userID {
			return party, m, members, nil
		}
	}
	return party, models.Member{}, nil, ErrNotMember
}

func eligibleCount(members []models.Member) int {
	n := 0
	for _, m := range members {
		if m.Eligible() {
			n++
		}
	}
	return n
}

func leaderOf(members []models.Member) (models.Member, bool) {
	for _, m := range members {
		if m.IsLeader {
			return m, true
		}
	}
	return models.Member{}, false
}
