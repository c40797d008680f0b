// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package consensus decides when a party's motto vote is over.

Decide is the only place the auto-finalize and tie-break rules live:

	out := consensus.Decide(consensus.Input{
		Proposals:  proposals,
		Votes:      votes,
		Eligible:   eligible,
		LeaderVote: leaderProposalID,
		Morale:     score,
		Settings:   settings,
	})
	if out.Winner != nil {
		// finalize out.Winner
	}

# Rules

A proposal with at least floor(eligible/2)+1 votes wins outright. Otherwise,
when two or more proposals tie at the highest non-zero count and the leader
voted for one of them, morale breaks the tie: high morale (score >= high)
backs the leader's choice, low morale (score < low) picks the first other
tied proposal, and anything in between leaves the vote open.

Only active, unfinalized proposals count. They are ordered by creation time
and id, which makes "first" deterministic.
*/
package consensus
