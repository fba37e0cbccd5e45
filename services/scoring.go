package services

import (
	"math"

	"fitness-arena-system/models"
)

// Streak bonus caps at 50 points so long streaks reward consistency without
// drowning out the work actually done in the session.
const (
	streakBonusPerDay = 4
	streakBonusCap    = 50
	weightBonusFactor = 0.1
)

// ScorePoints is the scoring function: (exercise, reps, weight, streak) → points.
// Pure and deterministic — every stored PointValue must be re-derivable from
// the workout's stored inputs for auditing.
func ScorePoints(exerciseCode string, reps int, weightKg float64, currentStreak int) int64 {
	base := float64(reps) * models.IntensityFor(exerciseCode)

	weightBonus := math.Round(weightBonusFactor * weightKg)
	if weightBonus < 0 {
		weightBonus = 0
	}

	streakBonus := float64(streakBonusPerDay * currentStreak)
	if streakBonus > streakBonusCap {
		streakBonus = streakBonusCap
	}
	if streakBonus < 0 {
		streakBonus = 0
	}

	total := math.Round(base + weightBonus + streakBonus)
	if total < 1 {
		total = 1
	}
	return int64(total)
}
