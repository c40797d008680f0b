// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"sort"

	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/morale"
)

// Reason explains how an Outcome was reached.
type Reason string

const (
	ReasonNone     Reason = "none"
	ReasonMajority Reason = "majority"
	// The leader's tied choice wins when morale is high.
	ReasonLeaderChoice Reason = "leader_choice"
	// A tied proposal other than the leader's wins when morale is low.
	ReasonDissent Reason = "dissent"
)

// Input is everything Decide needs. It holds no storage handles.
type Input struct {
	Proposals []models.Proposal
	Votes     []models.Vote
	// Eligible is the number of non-NPC members.
	Eligible int
	// LeaderVote is the proposal the leader currently votes for, or "".
	LeaderVote string
	Morale     float64
	Settings   morale.Settings
	// Resolved is true once the party motto is set.
	Resolved bool
}

// Outcome is the result of Decide. Winner is nil when the vote stays open.
type Outcome struct {
	Winner    *models.Proposal
	Reason    Reason
	Threshold int
	MaxVotes  int
	Tied      []string
}

// Threshold is the majority needed for a proposal to win outright.
func Threshold(eligible int) int {
	if eligible < 0 {
		eligible = 0
	}
	return eligible/2 + 1
}

// Tally counts votes per proposal id.
func Tally(votes []models.Vote) map[string]int {
	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.ProposalID]++
	}
	return counts
}

// Open returns the active, unfinalized proposals ordered by creation time,
// then id, so "first found" is stable across runs.
func Open(proposals []models.Proposal) []models.Proposal {
	open := make([]models.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if p.Active && !p.IsFinalized {
			open = append(open, p)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if !open[i].CreatedAt.Equal(open[j].CreatedAt) {
			return open[i].CreatedAt.Before(open[j].CreatedAt)
		}
		return open[i].ID < open[j].ID
	})
	return open
}

// Decide applies the majority rule and, failing that, the leader-mediated
// tie-break. It is pure: the same input always yields the same outcome.
func Decide(in Input) Outcome {
	out := Outcome{Reason: ReasonNone, Threshold: Threshold(in.Eligible)}
	if in.Resolved {
		return out
	}

	open := Open(in.Proposals)
	if len(open) == 0 {
		return out
	}
	counts := Tally(in.Votes)

	for i := range open {
		if counts[open[i].ID] >= out.Threshold {
			out.Winner = &open[i]
			out.Reason = ReasonMajority
			out.MaxVotes = counts[open[i].ID]
			return out
		}
	}

	for _, p := range open {
		if counts[p.ID] > out.MaxVotes {
			out.MaxVotes = counts[p.ID]
		}
	}
	if out.MaxVotes == 0 {
		return out
	}

	var tied []int
	for i, p := range open {
		if counts[p.ID] == out.MaxVotes {
			tied = append(tied, i)
			out.Tied = append(out.Tied, p.ID)
		}
	}
	if len(tied) < 2 {
		return out
	}

	leader := -1
	for _, i := range tied {
		if open[i].ID == in.LeaderVote {
			leader = i
			break
		}
	}
	if leader < 0 {
		return out
	}

	switch {
	case in.Morale >= in.Settings.High:
		out.Winner = &open[leader]
		out.Reason = ReasonLeaderChoice
	case in.Morale < in.Settings.Low:
		for _, i := range tied {
			if i != leader {
				out.Winner = &open[i]
				out.Reason = ReasonDissent
				break
			}
		}
	}
	return out
}
