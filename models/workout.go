package models

import (
	"time"
)

// WorkoutEntry records a single logged exercise session.
// PointValue is computed once at creation from the scoring formula and is
// immutable afterwards — recomputation requires the explicit admin endpoint.
type WorkoutEntry struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	AthleteID    string  `gorm:"index;not null" json:"athlete_id"`
	ExerciseCode string  `gorm:"type:varchar(32);not null" json:"exercise_code"`
	Reps         int     `json:"reps"`
	WeightKg     float64 `json:"weight_kg" gorm:"default:0"`
	DurationSec  int     `json:"duration_sec" gorm:"default:0"`

	// StreakAtLog is the athlete's streak when the entry was created, stored so
	// PointValue stays re-derivable from the row alone.
	StreakAtLog int       `json:"streak_at_log"`
	PointValue  int64     `json:"point_value"`
	OccurredAt  time.Time `gorm:"index" json:"occurred_at"`

	Timestamps
}
