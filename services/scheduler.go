// services/scheduler.go
package services

import (
	"log"
	"time"

	"fitness-arena-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartChallengeScheduler runs the two housekeeping jobs: the minute sweep
// that walks challenges through their window (scheduled→active→ended) and
// the Monday reset of the weekly window score. The engine itself stays
// request-driven; these only move lifecycle flags and the reporting window.
func (s *ChallengeService) StartChallengeScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.SweepChallengeWindows(time.Now())
		}),
	)

	// Monday 00:00 UTC: new scoring window.
	_, _ = sched.NewJob(
		gocron.CronJob("0 0 * * 1", false),
		gocron.NewTask(func() {
			s.ResetWindowScores()
		}),
	)
}

// SweepChallengeWindows activates scheduled challenges whose window has
// opened and ends active ones whose window has closed.
func (s *ChallengeService) SweepChallengeWindows(now time.Time) {
	res := s.DB.Model(&models.Challenge{}).
		Where("status = ? AND window_start <= ?", models.ChallengeScheduled, now).
		Update("status", models.ChallengeActive)
	if res.Error != nil {
		log.Printf("[Scheduler] activate sweep failed: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("✅ Activated %d challenge(s)", res.RowsAffected)
	}

	res = s.DB.Model(&models.Challenge{}).
		Where("status = ? AND window_end <= ?", models.ChallengeActive, now).
		Update("status", models.ChallengeEnded)
	if res.Error != nil {
		log.Printf("[Scheduler] end sweep failed: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("🏁 Ended %d challenge(s)", res.RowsAffected)
	}
}

// ResetWindowScores zeroes every athlete's weekly score.
func (s *ChallengeService) ResetWindowScores() {
	res := s.DB.Model(&models.Athlete{}).
		Where("window_score <> 0").
		Update("window_score", 0)
	if res.Error != nil {
		log.Printf("[Scheduler] window score reset failed: %v", res.Error)
	} else {
		log.Printf("🔄 Weekly window scores reset (%d athletes)", res.RowsAffected)
	}
}
