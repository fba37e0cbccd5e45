package services

import (
	"time"
)

// StreakResult is the derived consecutive-day training streak.
type StreakResult struct {
	Current int
	Best    int
}

// ComputeStreak derives the streak from workout times ordered most recent
// first. Pure over its input and re-runnable idempotently after every log.
//
// The run only counts as live when the most recent training day is today or
// yesterday relative to now; otherwise the current streak is 0. Best is the
// larger of the live run and the total distinct-day count, which makes it an
// upper-bound approximation for history that predates this service.
func ComputeStreak(history []time.Time, now time.Time) StreakResult {
	days := distinctDaysDescending(history)
	if len(days) == 0 {
		return StreakResult{}
	}

	today := civilDay(now)
	gapToNow := int(today.Sub(days[0]).Hours() / 24)

	run := 0
	if gapToNow <= 1 {
		run = 1
		for i := 1; i < len(days); i++ {
			if int(days[i-1].Sub(days[i]).Hours()/24) != 1 {
				break
			}
			run++
		}
	}

	best := len(days)
	if run > best {
		best = run
	}
	return StreakResult{Current: run, Best: best}
}

// distinctDaysDescending collapses timestamps to unique calendar days,
// preserving most-recent-first order.
func distinctDaysDescending(history []time.Time) []time.Time {
	var days []time.Time
	for _, t := range history {
		d := civilDay(t)
		if len(days) == 0 || !days[len(days)-1].Equal(d) {
			days = append(days, d)
		}
	}
	return days
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
