// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/morale"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func proposal(id string, minute int) models.Proposal {
	return models.Proposal{
		ID:        id,
		PartyID:   "party",
		Text:      "motto " + id,
		Active:    true,
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func votes(counts map[string]int) []models.Vote {
	var out []models.Vote
	n := 0
	for _, id := range []string{"A", "B", "C", "D"} {
		for i := 0; i < counts[id]; i++ {
			out = append(out, models.Vote{ProposalID: id, VoterID: fmt.Sprintf("m%d", n)})
			n++
		}
	}
	return out
}

func TestThreshold(t *testing.T) {
	tests := []struct{ eligible, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {5, 3}, {6, 4}, {-1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Threshold(tt.eligible), "eligible=%d", tt.eligible)
	}
}

func TestDecide_Majority(t *testing.T) {
	in := Input{
		Proposals: []models.Proposal{proposal("A", 0), proposal("B", 1)},
		Votes:     votes(map[string]int{"A": 3, "B": 1}),
		Eligible:  5,
		Settings:  morale.DefaultSettings(),
	}

	out := Decide(in)
	require.NotNil(t, out.Winner)
	assert.Equal(t, "A", out.Winner.ID)
	assert.Equal(t, ReasonMajority, out.Reason)
	assert.Equal(t, 3, out.Threshold)
}

func TestDecide_BelowThreshold(t *testing.T) {
	in := Input{
		Proposals: []models.Proposal{proposal("A", 0), proposal("B", 1)},
		Votes:     votes(map[string]int{"A": 2, "B": 1}),
		Eligible:  5,
		Settings:  morale.DefaultSettings(),
	}

	out := Decide(in)
	assert.Nil(t, out.Winner)
	assert.Equal(t, ReasonNone, out.Reason)
	assert.Equal(t, 2, out.MaxVotes)
}

func TestDecide_TieBreak(t *testing.T) {
	s := morale.Settings{High: 0.66, Low: 0.33, Hysteresis: 0.05}

	tests := []struct {
		name       string
		morale     float64
		leaderVote string
		wantWinner string
		wantReason Reason
	}{
		{"high morale backs leader", 0.80, "A", "A", ReasonLeaderChoice},
		{"high morale backs leader on B", 0.80, "B", "B", ReasonLeaderChoice},
		{"low morale picks the other", 0.10, "A", "B", ReasonDissent},
		{"low morale picks the other from B", 0.10, "B", "A", ReasonDissent},
		{"neutral morale stays open", 0.50, "A", "", ReasonNone},
		{"exactly high counts as high", 0.66, "A", "A", ReasonLeaderChoice},
		{"exactly low is neutral", 0.33, "A", "", ReasonNone},
		{"leader did not vote", 0.80, "", "", ReasonNone},
		{"leader voted outside the tie", 0.80, "C", "", ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Proposals:  []models.Proposal{proposal("A", 0), proposal("B", 1), proposal("C", 2)},
				Votes:      votes(map[string]int{"A": 2, "B": 2}),
				Eligible:   4,
				LeaderVote: tt.leaderVote,
				Morale:     tt.morale,
				Settings:   s,
			}
			out := Decide(in)
			if tt.wantWinner == "" {
				assert.Nil(t, out.Winner)
			} else {
				require.NotNil(t, out.Winner)
				assert.Equal(t, tt.wantWinner, out.Winner.ID)
			}
			assert.Equal(t, tt.wantReason, out.Reason)
			assert.Equal(t, []string{"A", "B"}, out.Tied)
		})
	}
}

func TestDecide_DissentPicksFirstOtherByCreation(t *testing.T) {
	in := Input{
		// C was created before B, so it comes first among the others.
		Proposals:  []models.Proposal{proposal("A", 0), proposal("B", 5), proposal("C", 3)},
		Votes:      votes(map[string]int{"A": 1, "B": 1, "C": 1}),
		Eligible:   6,
		LeaderVote: "A",
		Morale:     0.0,
		Settings:   morale.DefaultSettings(),
	}

	out := Decide(in)
	require.NotNil(t, out.Winner)
	assert.Equal(t, "C", out.Winner.ID)
}

func TestDecide_NoVotesNoTie(t *testing.T) {
	in := Input{
		Proposals:  []models.Proposal{proposal("A", 0), proposal("B", 1)},
		Eligible:   4,
		LeaderVote: "A",
		Morale:     1,
		Settings:   morale.DefaultSettings(),
	}
	out := Decide(in)
	assert.Nil(t, out.Winner)
	assert.Empty(t, out.Tied)
}

func TestDecide_IgnoresClosedProposals(t *testing.T) {
	closed := proposal("A", 0)
	closed.Active = false
	finalized := proposal("B", 1)
	finalized.IsFinalized = true

	in := Input{
		Proposals: []models.Proposal{closed, finalized, proposal("C", 2)},
		Votes:     votes(map[string]int{"A": 3, "B": 3, "C": 1}),
		Eligible:  4,
		Settings:  morale.DefaultSettings(),
	}
	out := Decide(in)
	assert.Nil(t, out.Winner)
	assert.Equal(t, 1, out.MaxVotes)
}

func TestDecide_ResolvedIsNoop(t *testing.T) {
	in := Input{
		Proposals: []models.Proposal{proposal("A", 0)},
		Votes:     votes(map[string]int{"A": 4}),
		Eligible:  4,
		Settings:  morale.DefaultSettings(),
		Resolved:  true,
	}
	out := Decide(in)
	assert.Nil(t, out.Winner)
	assert.Equal(t, ReasonNone, out.Reason)
}

func TestDecide_Deterministic(t *testing.T) {
	in := Input{
		Proposals:  []models.Proposal{proposal("B", 0), proposal("A", 0), proposal("C", 0)},
		Votes:      votes(map[string]int{"A": 1, "B": 1, "C": 1}),
		Eligible:   8,
		LeaderVote: "C",
		Morale:     0.1,
		Settings:   morale.DefaultSettings(),
	}

	first := Decide(in)
	require.NotNil(t, first.Winner)
	// Same timestamp: id order decides, so A is the first non-leader proposal.
	assert.Equal(t, "A", first.Winner.ID)
	for i := 0; i < 20; i++ {
		again := Decide(in)
		require.NotNil(t, again.Winner)
		assert.Equal(t, first.Winner.ID, again.Winner.ID)
	}
}
