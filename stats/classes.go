// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import "github.com/danielhkuo/party-council/models"

// Class pairs a class name with the abilities it leans on.
type Class struct {
	Name      string
	Primary   models.Ability
	Secondary models.Ability
}

// FallbackClass is assigned when no class in the table matches.
const FallbackClass = "Adventurer"

// Classes is searched in order; earlier entries win.
var Classes = []Class{
	{"Fighter", models.STR, models.CON},
	{"Paladin", models.STR, models.CHA},
	{"Rogue", models.DEX, models.INT},
	{"Ranger", models.DEX, models.WIS},
	{"Barbarian", models.CON, models.STR},
	{"Artificer", models.CON, models.INT},
	{"Wizard", models.INT, models.WIS},
	{"Cleric", models.WIS, models.CHA},
	{"Monk", models.WIS, models.DEX},
	{"Druid", models.WIS, models.CON},
	{"Bard", models.CHA, models.DEX},
	{"Sorcerer", models.CHA, models.CON},
	{"Warlock", models.CHA, models.INT},
}

// AssignClass picks a class from the highest final scores. A single top
// ability matches on primary; a tie needs both primary and secondary inside
// the tied set.
func AssignClass(scores models.AbilityScores) string {
	top := topAbilities(scores)

	if len(top) == 1 {
		for _, c := range Classes {
			if c.Primary == top[0] {
				return c.Name
			}
		}
		return FallbackClass
	}

	in := make(map[models.Ability]bool, len(top))
	for _, a := range top {
		in[a] = true
	}
	for _, c := range Classes {
		if in[c.Primary] && in[c.Secondary] {
			return c.Name
		}
	}
	return FallbackClass
}

func topAbilities(scores models.AbilityScores) []models.Ability {
	best := scores.Get(models.Abilities[0])
	for _, a := range models.Abilities[1:] {
		if v := scores.Get(a); v > best {
			best = v
		}
	}

	var top []models.Ability
	for _, a := range models.Abilities {
		if scores.Get(a) == best {
			top = append(top, a)
		}
	}
	return top
}
