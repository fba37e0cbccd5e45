package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fitness-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxWeightKg      = 600
	streakWindowDays = 400 // history horizon when rebuilding a streak
)

type WorkoutService struct {
	DB *gorm.DB
}

func NewWorkoutService(db *gorm.DB) *WorkoutService {
	return &WorkoutService{DB: db}
}

type LogWorkoutInput struct {
	ExerciseCode string    `json:"exercise_code"`
	Reps         int       `json:"reps"`
	WeightKg     float64   `json:"weight_kg"`
	DurationSec  int       `json:"duration_sec"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// LogWorkout validates the entry, prices it once with the scoring function
// and refreshes the athlete's streak, all in one transaction. The entry
// affects no standing until its evidence is submitted and approved.
func (s *WorkoutService) LogWorkout(athleteID string, in LogWorkoutInput) (*models.WorkoutEntry, error) {
	ex := models.FindExercise(in.ExerciseCode)
	if ex == nil {
		return nil, errValidation("unknown exercise %q", in.ExerciseCode)
	}
	if in.Reps <= 0 {
		return nil, errValidation("reps must be positive")
	}
	if in.WeightKg < 0 || in.WeightKg > maxWeightKg {
		return nil, errValidation("weight_kg must be between 0 and %d", maxWeightKg)
	}
	if !ex.Weighted && in.WeightKg > 0 {
		return nil, errValidation("%s is a bodyweight exercise and takes no working weight", ex.Name)
	}
	if in.DurationSec < 0 {
		return nil, errValidation("duration_sec must not be negative")
	}

	now := time.Now()
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}
	if occurredAt.After(now.Add(time.Minute)) {
		return nil, errValidation("occurred_at must not be in the future")
	}

	var entry *models.WorkoutEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var athlete models.Athlete
		if err := lockForUpdate(tx).Where("id = ?", athleteID).First(&athlete).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("athlete %s not found", athleteID)
			}
			return err
		}

		// Priced against the streak at log time; both stay on the row so the
		// value is auditable later.
		entry = &models.WorkoutEntry{
			ID:           uuid.NewString(),
			AthleteID:    athleteID,
			ExerciseCode: in.ExerciseCode,
			Reps:         in.Reps,
			WeightKg:     in.WeightKg,
			DurationSec:  in.DurationSec,
			StreakAtLog:  athlete.Streak,
			PointValue:   ScorePoints(in.ExerciseCode, in.Reps, in.WeightKg, athlete.Streak),
			OccurredAt:   occurredAt,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create workout entry: %w", err)
		}

		// Bounded by time, not row count, so multi-session days cannot shrink
		// the window.
		var history []time.Time
		if err := tx.Model(&models.WorkoutEntry{}).
			Where("athlete_id = ? AND occurred_at >= ?", athleteID, now.AddDate(0, 0, -streakWindowDays)).
			Order("occurred_at DESC").
			Pluck("occurred_at", &history).Error; err != nil {
			return err
		}

		streak := ComputeStreak(history, now)
		athlete.Streak = streak.Current
		if streak.Best > athlete.BestStreak {
			athlete.BestStreak = streak.Best
		}
		athlete.LastActivityDate = &occurredAt
		return tx.Save(&athlete).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🏋️ Workout logged: %s %s ×%d → %d pts (streak %d)",
		athleteID, in.ExerciseCode, in.Reps, entry.PointValue, entry.StreakAtLog)
	return entry, nil
}

func (s *WorkoutService) ListWorkouts(athleteID string, limit int) ([]models.WorkoutEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.WorkoutEntry
	err := s.DB.Where("athlete_id = ?", athleteID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// RecomputePointValue is the explicit admin action that re-derives an
// entry's point value from its stored inputs (e.g. after an intensity table
// correction). A still-pending submission for the entry is repriced with it;
// already-approved score is left to the report/appeal machinery.
func (s *WorkoutService) RecomputePointValue(entryID string) (*models.WorkoutEntry, error) {
	var entry models.WorkoutEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", entryID).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("workout %s not found", entryID)
			}
			return err
		}

		recomputed := ScorePoints(entry.ExerciseCode, entry.Reps, entry.WeightKg, entry.StreakAtLog)
		if recomputed == entry.PointValue {
			return nil
		}
		entry.PointValue = recomputed
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).
			Where("context_type = ? AND context_id = ? AND status = ?",
				models.ContextWorkout, entryID, models.SubmissionPending).
			Update("score_value", recomputed).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
