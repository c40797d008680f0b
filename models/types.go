// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"time"
)

// Assessment status constants
const (
	AssessmentNotStarted = "not_started"
	AssessmentInProgress = "in_progress"
	AssessmentFinished   = "finished"
)

// Question kind constants
const (
	QuestionSelf = "self"
	QuestionPeer = "peer"
)

type MoraleLevel string

const (
	MoraleHigh    MoraleLevel = "high"
	MoraleNeutral MoraleLevel = "neutral"
	MoraleLow     MoraleLevel = "low"
)

// Ability is one of the six ability score tags.
type Ability string

const (
	STR Ability = "STR"
	DEX Ability = "DEX"
	CON Ability = "CON"
	INT Ability = "INT"
	WIS Ability = "WIS"
	CHA Ability = "CHA"
)

// Abilities lists the tags in canonical order. Ranking ties fall back to this order.
var Abilities = [6]Ability{STR, DEX, CON, INT, WIS, CHA}

// ParseAbility returns the ability for a tag, accepting lower case.
func ParseAbility(s string) (Ability, bool) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	for _, a := range Abilities {
		if string(a) == tag {
			return a, true
		}
	}
	return "", false
}

// Request types

type ProposeRequest struct {
	Text string `json:"text"`
}

// A nil ProposalID with an empty ProposalText withdraws the caller's vote.
type VoteRequest struct {
	ProposalID   *string `json:"proposal_id"`
	ProposalText string  `json:"proposal_text,omitempty"`
}

type FinalizeRequest struct {
	ProposalID string `json:"proposal_id"`
}

// Pointers let the handler tell a missing field from an explicit zero.
type MoraleSettingsRequest struct {
	High       *float64 `json:"high"`
	Low        *float64 `json:"low"`
	Hysteresis *float64 `json:"hysteresis"`
}

// Self answers carry Ability, peer answers carry Points.
type AnswerInput struct {
	QuestionID string   `json:"question_id"`
	SubjectID  string   `json:"subject_id"`
	Ability    string   `json:"ability,omitempty"`
	Points     *float64 `json:"points,omitempty"`
}

type SubmitAnswersRequest struct {
	Answers []AnswerInput `json:"answers"`
}

// Response types

type ProposeResponse struct {
	Proposal Proposal `json:"proposal"`
}

type VoteResponse struct {
	ProposalID *string `json:"proposal_id"`
	Motto      *string `json:"motto,omitempty"`
}

type FinalizeResponse struct {
	Motto      string `json:"motto"`
	ProposalID string `json:"proposal_id"`
}

type MoraleSettingsResponse struct {
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Hysteresis float64 `json:"hysteresis"`
}

type MoraleResponse struct {
	Score float64     `json:"score"`
	Level MoraleLevel `json:"level"`
}

type SubmitAnswersResponse struct {
	Accepted int `json:"accepted"`
}

type FinishAssessmentResponse struct {
	Status  string `json:"status"`
	Derived bool   `json:"derived"`
}

type PartyStateResponse struct {
	Party     Party           `json:"party"`
	Proposals []ProposalTally `json:"proposals"`
	MyVote    *string         `json:"my_vote,omitempty"`
}

type QuestionsResponse struct {
	Questions []Question `json:"questions"`
}

type SheetsResponse struct {
	Sheets []CharacterSheet `json:"sheets"`
}

// Domain types

type Party struct {
	ID          string      `json:"id"`
	JoinCode    string      `json:"join_code"`
	Name        string      `json:"name"`
	Motto       *string     `json:"motto,omitempty"`
	MoraleScore float64     `json:"morale_score"`
	MoraleLevel MoraleLevel `json:"morale_level"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Resolved reports whether the party's motto has been decided.
func (p Party) Resolved() bool {
	return p.Motto != nil
}

type Member struct {
	ID               string `json:"id"`
	PartyID          string `json:"party_id"`
	UserID           string `json:"-"` // Empty for NPCs
	DisplayName      string `json:"display_name"`
	IsNPC            bool   `json:"is_npc"`
	IsLeader         bool   `json:"is_leader"`
	AssessmentStatus string `json:"assessment_status"`
}

// Eligible reports whether the member counts toward quorum and rates.
func (m Member) Eligible() bool {
	return !m.IsNPC
}

type Proposal struct {
	ID          string    `json:"id"`
	PartyID     string    `json:"party_id"`
	MemberID    string    `json:"member_id"`
	Text        string    `json:"text"`
	Active      bool      `json:"active"`
	IsFinalized bool      `json:"is_finalized"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProposalTally struct {
	Proposal
	Votes int `json:"votes"`
}

type Vote struct {
	ID         string    `json:"id"`
	PartyID    string    `json:"party_id"`
	ProposalID string    `json:"proposal_id"`
	VoterID    string    `json:"voter_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Question struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Ability  Ability `json:"ability,omitempty"` // Peer questions only
	Prompt   string  `json:"prompt"`
	Position int     `json:"position"`
}

// Answer value is an ability tag for self questions and a point value for peer questions.
type Answer struct {
	ID         string    `json:"id"`
	PartyID    string    `json:"party_id"`
	VoterID    string    `json:"voter_id"`
	SubjectID  string    `json:"subject_id"`
	QuestionID string    `json:"question_id"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}

type AbilityScores struct {
	STR int `json:"str"`
	DEX int `json:"dex"`
	CON int `json:"con"`
	INT int `json:"int"`
	WIS int `json:"wis"`
	CHA int `json:"cha"`
}

func (s AbilityScores) Get(a Ability) int {
	switch a {
	case STR:
		return s.STR
	case DEX:
		return s.DEX
	case CON:
		return s.CON
	case INT:
		return s.INT
	case WIS:
		return s.WIS
	case CHA:
		return s.CHA
	}
	return 0
}

func (s *AbilityScores) Set(a Ability, v int) {
	switch a {
	case STR:
		s.STR = v
	case DEX:
		s.DEX = v
	case CON:
		s.CON = v
	case INT:
		s.INT = v
	case WIS:
		s.WIS = v
	case CHA:
		s.CHA = v
	}
}

// Flat returns scores with every ability set to v.
func Flat(v int) AbilityScores {
	return AbilityScores{STR: v, DEX: v, CON: v, INT: v, WIS: v, CHA: v}
}

type CharacterSheet struct {
	MemberID   string        `json:"member_id"`
	PartyID    string        `json:"party_id"`
	Scores     AbilityScores `json:"scores"`
	Class      string        `json:"class"`
	Experience int           `json:"experience"`
}

// Error response

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}
