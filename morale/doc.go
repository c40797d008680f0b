// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package morale turns party participation into a bounded score and a sticky level.

# Score

Three participation rates, each the share of eligible (non-NPC) members who
did something, are averaged:

	score := morale.ComputeScore(completionRate, votingRate, proposalRate)

Inputs are clamped into [0, 1] first, so the score is always in [0, 1].

# Levels

ResolveLevel compares the score against the configured thresholds. A level
that was already reached is kept while the score stays inside the hysteresis
band, which stops the level from flapping when participation hovers near a
threshold:

	level := morale.ResolveLevel(0.62, models.MoraleHigh, settings) // still high

# Settings

Settings are validated on every write. Readers that find an invalid stored
combination fall back to DefaultSettings.
*/
package morale
