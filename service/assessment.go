// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/party-council/db"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/stats"
)

func (s *Service) Questions(ctx context.Context) ([]models.Question, error) {
	qs, err := s.store.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return qs, nil
}

// SubmitAnswers appends a batch of the caller's answers. The batch is
// validated in full before anything is written and is stored atomically.
func (s *Service) SubmitAnswers(ctx context.Context, userID, code string, inputs []models.AnswerInput) (int, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: no answers given", ErrInvalidAnswer)
	}

	party, member, members, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return 0, err
	}
	if !member.Eligible() {
		return 0, ErrNotEligible
	}
	if member.AssessmentStatus == models.AssessmentFinished {
		return 0, ErrAssessmentFinished
	}

	questions, err := s.store.Questions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load questions: %w", err)
	}
	qs := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		qs[q.ID] = q
	}
	roster := make(map[string]bool, len(members))
	for _, m := range members {
		roster[m.ID] = true
	}

	answers := make([]models.Answer, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		a, err := buildAnswer(in, member, qs, roster)
		if err != nil {
			return 0, fmt.Errorf("%w: answer %d: %v", ErrInvalidAnswer, i, err)
		}
		key := a.SubjectID + "/" + a.QuestionID
		if seen[key] {
			return 0, fmt.Errorf("%w: answer %d: repeated in batch", ErrInvalidAnswer, i)
		}
		seen[key] = true

		a.ID = uuid.NewString()
		a.PartyID = party.ID
		answers = append(answers, a)
	}

	if err := s.store.AppendAnswers(ctx, answers); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return 0, ErrDuplicateAnswer
		}
		return 0, fmt.Errorf("append answers: %w", err)
	}

	if member.AssessmentStatus == models.AssessmentNotStarted {
		if err := s.store.SetAssessmentStatus(ctx, member.ID, models.AssessmentInProgress); err != nil {
			slog.Warn("failed to mark assessment in progress", "member_id", member.ID, "error", err)
		}
	}
	return len(answers), nil
}

func buildAnswer(in models.AnswerInput, voter models.Member, qs map[string]models.Question, roster map[string]bool) (models.Answer, error) {
	q, ok := qs[in.QuestionID]
	if !ok {
		return models.Answer{}, fmt.Errorf("unknown question %q", in.QuestionID)
	}

	subject := strings.TrimSpace(in.SubjectID)
	a := models.Answer{VoterID: voter.ID, QuestionID: q.ID}

	switch q.Kind {
	case models.QuestionSelf:
		if subject != "" && subject != voter.ID {
			return models.Answer{}, errors.New("self questions must be about yourself")
		}
		ability, ok := models.ParseAbility(in.Ability)
		if !ok {
			return models.Answer{}, fmt.Errorf("unknown ability %q", in.Ability)
		}
		a.SubjectID = voter.ID
		a.Value = string(ability)

	case models.QuestionPeer:
		if subject == "" || subject == voter.ID {
			return models.Answer{}, errors.New("peer questions must be about another member")
		}
		if !roster[subject] {
			return models.Answer{}, fmt.Errorf("subject %q is not in this party", subject)
		}
		if in.Points == nil {
			return models.Answer{}, errors.New("points are required")
		}
		p := *in.Points
		if math.IsNaN(p) || math.IsInf(p, 0) || p < -1 || p > 1 {
			return models.Answer{}, errors.New("points must be between -1 and 1")
		}
		a.SubjectID = subject
		a.Value = strconv.FormatFloat(p, 'g', -1, 64)

	default:
		return models.Answer{}, fmt.Errorf("question %q has unknown kind %q", q.ID, q.Kind)
	}
	return a, nil
}

// FinishAssessment closes the caller's assessment. Once every eligible
// member has finished, character sheets are derived. Calling it again is
// safe and retries a derivation that previously failed.
func (s *Service) FinishAssessment(ctx context.Context, userID, code string) (models.FinishAssessmentResponse, error) {
	party, member, members, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return models.FinishAssessmentResponse{}, err
	}
	if !member.Eligible() {
		return models.FinishAssessmentResponse{}, ErrNotEligible
	}

	if member.AssessmentStatus != models.AssessmentFinished {
		if err := s.store.SetAssessmentStatus(ctx, member.ID, models.AssessmentFinished); err != nil {
			return models.FinishAssessmentResponse{}, fmt.Errorf("finish assessment: %w", err)
		}
		s.refreshMorale(ctx, party.ID)

		// Others may have finished since the roster above was read.
		members, err = s.store.Members(ctx, party.ID)
		if err != nil {
			return models.FinishAssessmentResponse{}, fmt.Errorf("load members: %w", err)
		}
	}

	resp := models.FinishAssessmentResponse{Status: models.AssessmentFinished}
	if !allFinished(members) {
		return resp, nil
	}

	if _, err := s.DeriveStats(ctx, party.ID); err != nil {
		return models.FinishAssessmentResponse{}, err
	}
	resp.Derived = true
	return resp, nil
}

func allFinished(members []models.Member) bool {
	for _, m := range members {
		if m.Eligible() && m.AssessmentStatus != models.AssessmentFinished {
			return false
		}
	}
	return true
}

// DeriveStats computes and stores a character sheet for every member of
// the party from the answer log. Re-running it rewrites identical sheets.
func (s *Service) DeriveStats(ctx context.Context, partyID string) ([]models.CharacterSheet, error) {
	members, err := s.store.Members(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	questions, err := s.store.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	answers, err := s.store.Answers(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	sheets := stats.Derive(members, questions, answers, s.opts.Stats)
	if err := s.store.SaveSheets(ctx, partyID, sheets); err != nil {
		return nil, fmt.Errorf("save sheets: %w", err)
	}
	slog.Info("character sheets derived", "party_id", partyID, "members", len(sheets), "answers", len(answers))
	return sheets, nil
}

// Sheets returns the party's stored character sheets.
func (s *Service) Sheets(ctx context.Context, userID, code string) ([]models.CharacterSheet, error) {
	party, _, _, err := s.partyMember(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	sheets, err := s.store.Sheets(ctx, party.ID)
	if err != nil {
		return nil, fmt.Errorf("load sheets: %w", err)
	}
	return sheets, nil
}
