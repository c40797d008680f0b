// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package morale

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielhkuo/party-council/models"
)

// MaxHysteresis is the widest sticky band a configuration may request.
const MaxHysteresis = 0.2

// Settings holds the admin-tunable thresholds for level resolution.
type Settings struct {
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Hysteresis float64 `json:"hysteresis"`
}

// DefaultSettings is used whenever no valid configuration is stored.
func DefaultSettings() Settings {
	return Settings{High: 0.66, Low: 0.33, Hysteresis: 0.05}
}

// ValidationError lists every constraint a Settings value violates.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid morale settings: " + strings.Join(e.Violations, "; ")
}

// Validate checks 0 <= low < high <= 1, 0 <= h <= MaxHysteresis and that
// the two sticky bands (low+h and high-h) never overlap.
func (s Settings) Validate() error {
	var v []string

	fields := []struct {
		name  string
		value float64
	}{{"high", s.High}, {"low", s.Low}, {"hysteresis", s.Hysteresis}}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			v = append(v, f.name+" must be a finite number")
		}
	}
	if len(v) > 0 {
		return &ValidationError{Violations: v}
	}

	if s.Low < 0 {
		v = append(v, "low must be >= 0")
	}
	if s.High > 1 {
		v = append(v, "high must be <= 1")
	}
	if s.Low >= s.High {
		v = append(v, "low must be < high")
	}
	if s.Hysteresis < 0 || s.Hysteresis > MaxHysteresis {
		v = append(v, fmt.Sprintf("hysteresis must be between 0 and %.1f", MaxHysteresis))
	}
	if s.Low+s.Hysteresis >= s.High-s.Hysteresis {
		v = append(v, "low + hysteresis must be < high - hysteresis")
	}

	if len(v) > 0 {
		return &ValidationError{Violations: v}
	}
	return nil
}

// OrDefault returns s when valid and DefaultSettings otherwise.
func (s Settings) OrDefault() Settings {
	if s.Validate() != nil {
		return DefaultSettings()
	}
	return s
}

// Clamp01 maps x into [0, 1]; NaN and infinities become 0.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

// ComputeScore averages the three participation rates.
func ComputeScore(completionRate, votingRate, proposalRate float64) float64 {
	sum := Clamp01(completionRate) + Clamp01(votingRate) + Clamp01(proposalRate)
	return Clamp01(sum / 3)
}

// Rate returns part/whole, or 0 when whole is not positive.
func Rate(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return Clamp01(float64(part) / float64(whole))
}

// ResolveLevel maps a score to a level. A level previously reached is kept
// while the score stays within the hysteresis band around its threshold.
func ResolveLevel(score float64, previous models.MoraleLevel, s Settings) models.MoraleLevel {
	score = Clamp01(score)

	switch {
	case previous == models.MoraleHigh && score >= s.High-s.Hysteresis:
		return models.MoraleHigh
	case previous == models.MoraleLow && score <= s.Low+s.Hysteresis:
		return models.MoraleLow
	case score >= s.High:
		return models.MoraleHigh
	case score < s.Low:
		return models.MoraleLow
	default:
		return models.MoraleNeutral
	}
}
