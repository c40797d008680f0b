// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stats derives ability scores and a class for every party member from
the assessment answer log.

	sheets := stats.Derive(members, questions, answers, stats.DefaultOptions())

# Baseline

NPCs get a flat 9 in every ability. A player without self-assessment answers
gets a flat 10. Otherwise abilities are ranked by how often the player tagged
themselves with them (ties in canonical order STR, DEX, CON, INT, WIS, CHA)
and receive 13, 12, 11, 10, 8 and 6.

# Peer Adjustment

Peer answers about a member from other players are summed per ability and
divided by max(1, raters × questions for that ability), where raters is the
number of distinct players who rated the member at all. The average is
multiplied by Options.Scale, clamped to ±Options.Clamp and rounded.

# Class and Experience

The class comes from the Classes table using the highest final scores.
Experience is 100 per peer answer the member wrote about someone else.

Derive has no clock and no randomness; re-running it on the same input gives
the same sheets.
*/
package stats
