// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"math"
	"sort"
	"strconv"

	"github.com/danielhkuo/party-council/models"
)

const (
	npcBaseline     = 9
	neutralBaseline = 10
	xpPerPeerAnswer = 100
)

// pointSchedule is handed out to abilities ranked by self-assessment tally.
var pointSchedule = [6]int{13, 12, 11, 10, 8, 6}

// Options bounds how far peer opinion can move a baseline stat.
type Options struct {
	Scale float64
	Clamp float64
}

func DefaultOptions() Options {
	return Options{Scale: 5, Clamp: 5}
}

// Derive builds one character sheet per member, in roster order. It reads
// nothing but its arguments, so identical input gives identical sheets.
func Derive(members []models.Member, questions []models.Question, answers []models.Answer, opts Options) []models.CharacterSheet {
	byID := make(map[string]models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	qs := make(map[string]models.Question, len(questions))
	perAbility := make(map[models.Ability]int)
	for _, q := range questions {
		qs[q.ID] = q
		if q.Kind == models.QuestionPeer && q.Ability != "" {
			perAbility[q.Ability]++
		}
	}

	sheets := make([]models.CharacterSheet, 0, len(members))
	for _, m := range members {
		base := Baseline(m, SelfTally(m.ID, qs, answers))
		adj := PeerAdjustment(m.ID, byID, qs, perAbility, answers, opts)

		var final models.AbilityScores
		for _, a := range models.Abilities {
			final.Set(a, base.Get(a)+adj.Get(a))
		}

		sheets = append(sheets, models.CharacterSheet{
			MemberID:   m.ID,
			PartyID:    m.PartyID,
			Scores:     final,
			Class:      AssignClass(final),
			Experience: Experience(m, qs, answers),
		})
	}
	return sheets
}

// SelfTally counts the ability tags a member picked about themselves.
func SelfTally(memberID string, qs map[string]models.Question, answers []models.Answer) map[models.Ability]int {
	tally := make(map[models.Ability]int)
	for _, ans := range answers {
		if ans.VoterID != memberID || ans.SubjectID != memberID {
			continue
		}
		if q, ok := qs[ans.QuestionID]; !ok || q.Kind != models.QuestionSelf {
			continue
		}
		if a, ok := models.ParseAbility(ans.Value); ok {
			tally[a]++
		}
	}
	return tally
}

// Baseline is flat 9 for NPCs, flat 10 without self answers, and the point
// schedule over abilities ranked by tally otherwise.
func Baseline(m models.Member, tally map[models.Ability]int) models.AbilityScores {
	if m.IsNPC {
		return models.Flat(npcBaseline)
	}

	answered := false
	for _, n := range tally {
		if n != 0 {
			answered = true
			break
		}
	}
	if !answered {
		return models.Flat(neutralBaseline)
	}

	ranked := models.Abilities
	// Stable sort keeps canonical order among equal tallies.
	sort.SliceStable(ranked[:], func(i, j int) bool {
		return tally[ranked[i]] > tally[ranked[j]]
	})

	var scores models.AbilityScores
	for i, a := range ranked {
		scores.Set(a, pointSchedule[i])
	}
	return scores
}

// PeerAdjustment averages what other players said about the subject per
// ability, scales it and clamps it to ±opts.Clamp. The rater count is shared
// across abilities.
func PeerAdjustment(subjectID string, members map[string]models.Member, qs map[string]models.Question, perAbility map[models.Ability]int, answers []models.Answer, opts Options) models.AbilityScores {
	sums := make(map[models.Ability]float64)
	raters := make(map[string]bool)

	for _, ans := range answers {
		if ans.SubjectID != subjectID || ans.VoterID == subjectID {
			continue
		}
		voter, ok := members[ans.VoterID]
		if !ok || voter.IsNPC {
			continue
		}
		q, ok := qs[ans.QuestionID]
		if !ok || q.Kind != models.QuestionPeer || q.Ability == "" {
			continue
		}
		points, ok := parsePoints(ans.Value)
		if !ok {
			continue
		}
		sums[q.Ability] += points
		raters[ans.VoterID] = true
	}

	var adj models.AbilityScores
	for _, a := range models.Abilities {
		denom := len(raters) * perAbility[a]
		if denom < 1 {
			denom = 1
		}
		v := math.Round(sums[a] / float64(denom) * opts.Scale)
		// Clamp after rounding; truncation keeps a fractional clamp a hard bound.
		v = math.Max(-opts.Clamp, math.Min(opts.Clamp, v))
		adj.Set(a, int(v))
	}
	return adj
}

// Experience rewards rating others, not being rated.
func Experience(m models.Member, qs map[string]models.Question, answers []models.Answer) int {
	if m.IsNPC {
		return 0
	}
	n := 0
	for _, ans := range answers {
		if ans.VoterID != m.ID || ans.SubjectID == m.ID {
			continue
		}
		if q, ok := qs[ans.QuestionID]; ok && q.Kind == models.QuestionPeer {
			n++
		}
	}
	return n * xpPerPeerAnswer
}

func parsePoints(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
