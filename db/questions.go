// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	"github.com/danielhkuo/party-council/models"
)

// DefaultQuestions is the built-in assessment catalog. Self questions are
// answered with an ability tag, peer questions with points in [-1, 1].
var DefaultQuestions = []models.Question{
	{ID: "self-strength", Kind: models.QuestionSelf, Prompt: "When the plan falls apart, what do you lean on first?", Position: 1},
	{ID: "self-crisis", Kind: models.QuestionSelf, Prompt: "Which of your traits gets the group out of trouble most often?", Position: 2},
	{ID: "self-free-day", Kind: models.QuestionSelf, Prompt: "On a free afternoon, which kind of challenge do you pick?", Position: 3},
	{ID: "self-praise", Kind: models.QuestionSelf, Prompt: "What do friends usually compliment you on?", Position: 4},

	{ID: "peer-str-carry", Kind: models.QuestionPeer, Ability: models.STR, Prompt: "Would carry the whole party's gear without complaint.", Position: 10},
	{ID: "peer-str-push", Kind: models.QuestionPeer, Ability: models.STR, Prompt: "Pushes through physical effort when others give up.", Position: 11},
	{ID: "peer-dex-quick", Kind: models.QuestionPeer, Ability: models.DEX, Prompt: "Reacts quickly when something goes sideways.", Position: 12},
	{ID: "peer-dex-craft", Kind: models.QuestionPeer, Ability: models.DEX, Prompt: "Has steady hands for fiddly work.", Position: 13},
	{ID: "peer-con-endure", Kind: models.QuestionPeer, Ability: models.CON, Prompt: "Still going strong at the end of a long day.", Position: 14},
	{ID: "peer-con-steady", Kind: models.QuestionPeer, Ability: models.CON, Prompt: "Rarely rattled by stress or setbacks.", Position: 15},
	{ID: "peer-int-plan", Kind: models.QuestionPeer, Ability: models.INT, Prompt: "The one who works out how things actually work.", Position: 16},
	{ID: "peer-int-recall", Kind: models.QuestionPeer, Ability: models.INT, Prompt: "Remembers obscure facts at exactly the right moment.", Position: 17},
	{ID: "peer-wis-read", Kind: models.QuestionPeer, Ability: models.WIS, Prompt: "Reads the room before anyone else does.", Position: 18},
	{ID: "peer-wis-advice", Kind: models.QuestionPeer, Ability: models.WIS, Prompt: "Gives advice you end up glad you took.", Position: 19},
	{ID: "peer-cha-rally", Kind: models.QuestionPeer, Ability: models.CHA, Prompt: "Can rally the group when morale dips.", Position: 20},
	{ID: "peer-cha-talk", Kind: models.QuestionPeer, Ability: models.CHA, Prompt: "Talks strangers into helping out.", Position: 21},
}

// SeedQuestions inserts the default catalog. Existing questions are left untouched.
func (s *Store) SeedQuestions(ctx context.Context) error {
	for _, q := range DefaultQuestions {
		if err := s.PutQuestion(ctx, q); err != nil {
			return fmt.Errorf("failed to seed question %s: %w", q.ID, err)
		}
	}
	return nil
}
