package models

import (
	"time"

	"gorm.io/gorm"
)

// Athlete is the denormalized competitive standing for one user.
// Score fields are written only by the verification service; streak fields
// only by the streak tracker. Identity (credentials, profile data) lives in
// the profile service — we only carry the external UUID.
type Athlete struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"` // external UUID from profile service
	Username string `gorm:"index;not null" json:"username"` // denormalized for leaderboard display
	Region   string `gorm:"index;type:varchar(64);default:'global'" json:"region"`

	// Optional — used only for the derived relative-strength view.
	BodyweightKg *float64 `json:"bodyweight_kg,omitempty"`

	// Canonical additive scores. CumulativeScore must equal the sum of
	// ScoreValue over this athlete's currently approved submissions plus
	// one-time challenge completion bonuses.
	CumulativeScore int64 `json:"cumulative_score" gorm:"default:0"`
	WindowScore     int64 `json:"window_score" gorm:"default:0"` // current week, reset by scheduler

	// Consecutive-day training streak.
	Streak     int `json:"streak" gorm:"default:0"`
	BestStreak int `json:"best_streak" gorm:"default:0"`

	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
