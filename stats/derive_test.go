// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/party-council/models"
)

func testQuestions() []models.Question {
	qs := []models.Question{
		{ID: "self-1", Kind: models.QuestionSelf, Prompt: "In a fight you..."},
		{ID: "self-2", Kind: models.QuestionSelf, Prompt: "On a long road you..."},
		{ID: "self-3", Kind: models.QuestionSelf, Prompt: "At a feast you..."},
		{ID: "self-4", Kind: models.QuestionSelf, Prompt: "In a library you..."},
	}
	for i, a := range models.Abilities {
		qs = append(qs, models.Question{ID: "peer-" + string(a), Kind: models.QuestionPeer, Ability: a, Position: i})
	}
	return qs
}

func selfAnswer(member, question string, a models.Ability) models.Answer {
	return models.Answer{VoterID: member, SubjectID: member, QuestionID: question, Value: string(a)}
}

func peerAnswer(voter, subject string, a models.Ability, points float64) models.Answer {
	return models.Answer{
		VoterID:    voter,
		SubjectID:  subject,
		QuestionID: "peer-" + string(a),
		Value:      strconv.FormatFloat(points, 'f', -1, 64),
	}
}

func TestDerive_SelfTallyExample(t *testing.T) {
	members := []models.Member{{ID: "m1", PartyID: "p"}}
	answers := []models.Answer{
		selfAnswer("m1", "self-1", models.STR),
		selfAnswer("m1", "self-2", models.STR),
		selfAnswer("m1", "self-3", models.STR),
		selfAnswer("m1", "self-4", models.DEX),
	}

	sheets := Derive(members, testQuestions(), answers, DefaultOptions())
	require.Len(t, sheets, 1)

	want := models.AbilityScores{STR: 13, DEX: 12, CON: 11, INT: 10, WIS: 8, CHA: 6}
	if diff := cmp.Diff(want, sheets[0].Scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Fighter", sheets[0].Class)
	assert.Equal(t, 0, sheets[0].Experience)
}

func TestDerive_Baselines(t *testing.T) {
	members := []models.Member{
		{ID: "npc", IsNPC: true},
		{ID: "quiet"},
	}
	answers := []models.Answer{
		// NPC self answers are ignored.
		selfAnswer("npc", "self-1", models.CHA),
		// Unknown tags do not count as answers.
		{VoterID: "quiet", SubjectID: "quiet", QuestionID: "self-1", Value: "LUCK"},
	}

	sheets := Derive(members, testQuestions(), answers, DefaultOptions())
	require.Len(t, sheets, 2)
	assert.Equal(t, models.Flat(9), sheets[0].Scores)
	assert.Equal(t, models.Flat(10), sheets[1].Scores)
}

func TestDerive_PeerAdjustment(t *testing.T) {
	members := []models.Member{
		{ID: "s"},
		{ID: "r1"},
		{ID: "r2"},
		{ID: "npc", IsNPC: true},
	}
	answers := []models.Answer{
		peerAnswer("r1", "s", models.STR, 1),
		peerAnswer("r2", "s", models.STR, 1),
		peerAnswer("r1", "s", models.DEX, -1),
		peerAnswer("r2", "s", models.DEX, 0),
		// Ignored: NPC voter and self rating.
		peerAnswer("npc", "s", models.WIS, 1),
		peerAnswer("s", "s", models.CHA, 1),
	}

	sheets := Derive(members, testQuestions(), answers, DefaultOptions())
	s := sheets[0]

	// Baseline 10; STR: 2/(2*1)*5 = +5; DEX: -1/(2*1)*5 = -2.5 -> -3.
	assert.Equal(t, 15, s.Scores.STR)
	assert.Equal(t, 7, s.Scores.DEX)
	assert.Equal(t, 10, s.Scores.WIS)
	assert.Equal(t, 10, s.Scores.CHA)
	assert.Equal(t, "Fighter", s.Class)

	assert.Equal(t, 200, sheets[1].Experience)
	assert.Equal(t, 200, sheets[2].Experience)
	assert.Equal(t, 0, sheets[3].Experience, "NPC authors earn nothing")
	assert.Equal(t, 0, s.Experience, "rating yourself earns nothing")
}

func TestDerive_SharedRaterDenominator(t *testing.T) {
	members := []models.Member{{ID: "s"}, {ID: "r1"}, {ID: "r2"}}
	answers := []models.Answer{
		// r2 rated s on WIS only, but still counts as a rater for STR.
		peerAnswer("r1", "s", models.STR, 1),
		peerAnswer("r2", "s", models.WIS, 1),
	}

	sheets := Derive(members, testQuestions(), answers, DefaultOptions())
	// STR: 1/(2*1)*5 = 2.5 -> 3
	assert.Equal(t, 13, sheets[0].Scores.STR)
	assert.Equal(t, 13, sheets[0].Scores.WIS)
}

func TestDerive_ClampsExtremePeerOpinion(t *testing.T) {
	members := []models.Member{{ID: "s"}, {ID: "r"}}
	answers := []models.Answer{
		peerAnswer("r", "s", models.CON, 40),
		peerAnswer("r", "s", models.INT, -40),
		{VoterID: "r", SubjectID: "s", QuestionID: "peer-WIS", Value: "NaN"},
	}

	sheets := Derive(members, testQuestions(), answers, DefaultOptions())
	assert.Equal(t, 15, sheets[0].Scores.CON)
	assert.Equal(t, 5, sheets[0].Scores.INT)
	assert.Equal(t, 10, sheets[0].Scores.WIS)
	assert.Equal(t, "Barbarian", sheets[0].Class)
}

func TestDerive_FractionalClampIsHardBound(t *testing.T) {
	members := []models.Member{{ID: "s"}, {ID: "r"}}
	answers := []models.Answer{
		// 1/(1*1)*5 = 5 and -0.5*5 = -2.5, both beyond a 2.5 clamp once rounded
		peerAnswer("r", "s", models.STR, 1),
		peerAnswer("r", "s", models.DEX, -0.5),
	}

	sheets := Derive(members, testQuestions(), answers, Options{Scale: 5, Clamp: 2.5})
	assert.Equal(t, 12, sheets[0].Scores.STR)
	assert.Equal(t, 8, sheets[0].Scores.DEX)
}

func TestAssignClass(t *testing.T) {
	tests := []struct {
		name   string
		scores models.AbilityScores
		want   string
	}{
		{"single STR", models.AbilityScores{STR: 14, DEX: 10, CON: 10, INT: 10, WIS: 10, CHA: 10}, "Fighter"},
		{"single DEX", models.AbilityScores{STR: 8, DEX: 14, CON: 10, INT: 10, WIS: 10, CHA: 10}, "Rogue"},
		{"single CHA", models.AbilityScores{STR: 8, DEX: 10, CON: 10, INT: 10, WIS: 10, CHA: 15}, "Bard"},
		{"tie CHA DEX", models.AbilityScores{STR: 8, DEX: 14, CON: 10, INT: 10, WIS: 10, CHA: 14}, "Bard"},
		{"tie WIS CON", models.AbilityScores{STR: 8, DEX: 10, CON: 14, INT: 10, WIS: 14, CHA: 10}, "Druid"},
		{"tie without pair", models.AbilityScores{STR: 14, DEX: 10, CON: 10, INT: 10, WIS: 14, CHA: 10}, FallbackClass},
		{"all equal", models.Flat(10), "Fighter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignClass(tt.scores))
		})
	}
}

func randomParty(r *rand.Rand) ([]models.Member, []models.Answer) {
	n := 2 + r.Intn(5)
	members := make([]models.Member, n)
	for i := range members {
		members[i] = models.Member{ID: fmt.Sprintf("m%d", i), IsNPC: r.Intn(4) == 0}
	}

	var answers []models.Answer
	for _, m := range members {
		k := r.Intn(5)
		for i := 0; i < k; i++ {
			a := models.Abilities[r.Intn(6)]
			answers = append(answers, selfAnswer(m.ID, fmt.Sprintf("self-%d", 1+r.Intn(4)), a))
		}
		for _, other := range members {
			for _, a := range models.Abilities {
				if r.Intn(2) == 0 {
					answers = append(answers, peerAnswer(m.ID, other.ID, a, float64(r.Intn(41)-20)/10))
				}
			}
		}
	}
	return members, answers
}

func TestDerive_DeterministicAndBounded(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	opts := DefaultOptions()

	for i := 0; i < 200; i++ {
		members, answers := randomParty(r)

		first := Derive(members, testQuestions(), answers, opts)
		second := Derive(members, testQuestions(), answers, opts)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		require.Equal(t, string(a), string(b))

		for _, sheet := range first {
			for _, ab := range models.Abilities {
				v := sheet.Scores.Get(ab)
				require.GreaterOrEqual(t, v, 6-int(opts.Clamp), "member %s %s", sheet.MemberID, ab)
				require.LessOrEqual(t, v, 13+int(opts.Clamp), "member %s %s", sheet.MemberID, ab)
			}
		}
	}
}
