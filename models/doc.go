// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON. Each is decoded once and validated before
anything is written:

  - ProposeRequest: text
  - VoteRequest: proposal_id (null withdraws), proposal_text
  - FinalizeRequest: proposal_id
  - MoraleSettingsRequest: high, low, hysteresis (all required)
  - SubmitAnswersRequest: answers

# Response Types

  - ProposeResponse, VoteResponse, FinalizeResponse
  - PartyStateResponse: party, proposal tallies, my_vote
  - MoraleResponse, MoraleSettingsResponse
  - QuestionsResponse, SubmitAnswersResponse, FinishAssessmentResponse
  - SheetsResponse
  - ErrorResponse: error, message, details

# Domain Types

  - Party: join code, motto once decided, stored morale
  - Member: roster entry; NPCs have no user id and never vote
  - Proposal, Vote: motto candidates and the one vote per member
  - Question, Answer: the assessment catalog and the append-only answer log
  - AbilityScores, CharacterSheet: derived stats

# Constants

Assessment status:

	AssessmentNotStarted = "not_started"
	AssessmentInProgress = "in_progress"
	AssessmentFinished   = "finished"

Morale levels:

	MoraleHigh    = "high"
	MoraleNeutral = "neutral"
	MoraleLow     = "low"

Abilities, in canonical tie order: STR, DEX, CON, INT, WIS, CHA.
*/
package models
