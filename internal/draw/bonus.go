package draw

import (
	"math"
	"time"

	"competition-service/internal/domain"
)

// DefaultBonusWindow is used when a bonus config does not set its own window.
const DefaultBonusWindow = 30 * 24 * time.Hour

const exponentialDecayRate = 2.0

// CalculateEarlyBonus returns the entry multiplier for a submission made at
// submittedAt in a competition ending at competitionEndAt. The result is in
// [1.0, cfg.MaxMultiplier]. Unknown decay functions decay linearly.
func CalculateEarlyBonus(submittedAt, competitionEndAt time.Time, cfg domain.EarlyBonusConfig) float64 {
	maxMultiplier := cfg.MaxMultiplier
	if maxMultiplier < 1 {
		maxMultiplier = 1
	}

	window := cfg.Window
	if window <= 0 {
		window = DefaultBonusWindow
	}
	windowStart := competitionEndAt.Add(-window)

	t := float64(submittedAt.Sub(windowStart)) / float64(window)
	t = clamp(t, 0, 1)

	var weight float64
	switch cfg.DecayFunction {
	case domain.DecayExponential:
		weight = 1 + (maxMultiplier-1)*math.Exp(-exponentialDecayRate*t)
	default:
		weight = maxMultiplier - t*(maxMultiplier-1)
	}
	return clamp(weight, 1, maxMultiplier)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
