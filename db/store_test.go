// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/party-council/db"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/testutil"
)

func TestCreateSchemaIdempotent(t *testing.T) {
	store := testutil.SetupTestDB(t)

	require.NoError(t, db.CreateSchema(store.DB()))
	require.NoError(t, store.SeedQuestions(context.Background()))

	qs, err := store.Questions(context.Background())
	require.NoError(t, err)
	assert.Len(t, qs, len(db.DefaultQuestions))
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	_, err := db.Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestPartyLookup(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "The Fellowship")

	got, err := store.PartyByCode(ctx, party.JoinCode)
	require.NoError(t, err)
	assert.Equal(t, party.ID, got.ID)
	assert.Equal(t, "The Fellowship", got.Name)
	assert.Nil(t, got.Motto)
	assert.Equal(t, models.MoraleNeutral, got.MoraleLevel)

	_, err = store.PartyByCode(ctx, "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = store.PartyByID(ctx, "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestMembersOrderAndNPC(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "p")

	leader := testutil.AddTestMember(t, store, party.ID, "alice", true)
	npc := testutil.AddTestMember(t, store, party.ID, "", false)
	bob := testutil.AddTestMember(t, store, party.ID, "bob", false)

	members, err := store.Members(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []string{leader.ID, npc.ID, bob.ID}, []string{members[0].ID, members[1].ID, members[2].ID})
	assert.True(t, members[0].IsLeader)
	assert.True(t, members[1].IsNPC)
	assert.Empty(t, members[1].UserID)
	assert.Equal(t, "bob", members[2].UserID)

	err = store.AddMember(ctx, models.Member{ID: "dup", PartyID: party.ID, UserID: "alice"})
	assert.ErrorIs(t, err, db.ErrDuplicate)
}

func TestCastVoteMovesAndGuards(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "p")
	alice := testutil.AddTestMember(t, store, party.ID, "alice", true)

	now := time.Now()
	a := testutil.AddTestProposal(t, store, party.ID, alice.ID, "A", now)
	b := testutil.AddTestProposal(t, store, party.ID, alice.ID, "B", now.Add(time.Second))

	testutil.CastTestVote(t, store, party.ID, a.ID, alice.ID)
	testutil.CastTestVote(t, store, party.ID, b.ID, alice.ID)

	votes, err := store.Votes(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1, "a second vote must move, not duplicate")
	assert.Equal(t, b.ID, votes[0].ProposalID)

	// Closed proposals refuse votes
	_, err = store.CloseProposals(ctx, party.ID)
	require.NoError(t, err)
	applied, err := store.CastVote(ctx, models.Vote{ID: "v2", PartyID: party.ID, ProposalID: a.ID, VoterID: alice.ID})
	require.NoError(t, err)
	assert.False(t, applied)

	votes, err = store.Votes(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, b.ID, votes[0].ProposalID, "a refused vote leaves the old one in place")

	removed, err := store.RemoveVote(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.RemoveVote(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFinalizeWritesAreGuarded(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "p")
	alice := testutil.AddTestMember(t, store, party.ID, "alice", true)

	now := time.Now()
	a := testutil.AddTestProposal(t, store, party.ID, alice.ID, "A", now)
	b := testutil.AddTestProposal(t, store, party.ID, alice.ID, "B", now.Add(time.Second))

	applied, err := store.SetMotto(ctx, party.ID, "A")
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = store.SetMotto(ctx, party.ID, "B")
	require.NoError(t, err)
	assert.False(t, applied, "motto is written once")

	applied, err = store.MarkFinalized(ctx, party.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = store.MarkFinalized(ctx, party.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, applied, "only one proposal per party is finalized")
	applied, err = store.MarkFinalized(ctx, party.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	n, err := store.CloseProposals(ctx, party.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	n, err = store.CloseProposals(ctx, party.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := store.PartyByID(ctx, party.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Motto)
	assert.Equal(t, "A", *got.Motto)

	proposals, err := store.Proposals(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.True(t, proposals[0].IsFinalized)
	assert.False(t, proposals[0].Active)
	assert.False(t, proposals[1].IsFinalized)
	assert.False(t, proposals[1].Active)
}

func TestSaveMorale(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "p")

	require.NoError(t, store.SaveMorale(ctx, party.ID, 0.75, models.MoraleHigh))

	got, err := store.PartyByID(ctx, party.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got.MoraleScore, 1e-9)
	assert.Equal(t, models.MoraleHigh, got.MoraleLevel)
}

func TestSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)

	values, err := store.Settings(ctx, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, store.PutSettings(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, store.PutSettings(ctx, map[string]string{"a": "3"}))

	values, err = store.Settings(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, values)
}

func TestAppendAnswersIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "p")
	alice := testutil.AddTestMember(t, store, party.ID, "alice", true)
	bob := testutil.AddTestMember(t, store, party.ID, "bob", false)

	first := []models.Answer{
		{ID: "a1", PartyID: party.ID, VoterID: alice.ID, SubjectID: alice.ID, QuestionID: "self-strength", Value: "STR"},
	}
	require.NoError(t, store.AppendAnswers(ctx, first))

	batch := []models.Answer{
		{ID: "a2", PartyID: party.ID, VoterID: alice.ID, SubjectID: bob.ID, QuestionID: "peer-str-carry", Value: "1"},
		{ID: "a3", PartyID: party.ID, VoterID: alice.ID, SubjectID: alice.ID, QuestionID: "self-strength", Value: "DEX"},
	}
	err := store.AppendAnswers(ctx, batch)
	assert.ErrorIs(t, err, db.ErrDuplicate)

	answers, err := store.Answers(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1, "a failed batch writes nothing")
	assert.Equal(t, "STR", answers[0].Value)
}

func TestSheetsUpsert(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "p")
	alice := testutil.AddTestMember(t, store, party.ID, "alice", true)
	npc := testutil.AddTestMember(t, store, party.ID, "", false)

	sheets := []models.CharacterSheet{
		{MemberID: alice.ID, PartyID: party.ID, Scores: models.Flat(10), Class: "Adventurer"},
		{MemberID: npc.ID, PartyID: party.ID, Scores: models.Flat(9), Class: "Adventurer"},
	}
	require.NoError(t, store.SaveSheets(ctx, party.ID, sheets))

	sheets[0].Scores.STR = 14
	sheets[0].Class = "Fighter"
	sheets[0].Experience = 300
	require.NoError(t, store.SaveSheets(ctx, party.ID, sheets))

	got, err := store.Sheets(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, sheets, got)
}

func TestAssessmentStatus(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)
	party := testutil.CreateTestParty(t, store, "p")
	alice := testutil.AddTestMember(t, store, party.ID, "alice", true)

	require.NoError(t, store.SetAssessmentStatus(ctx, alice.ID, models.AssessmentFinished))
	members, err := store.Members(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentFinished, members[0].AssessmentStatus)

	assert.ErrorIs(t, store.SetAssessmentStatus(ctx, "ghost", models.AssessmentFinished), db.ErrNotFound)
}
