package models

import (
	"time"
)

// AccumulationPolicy is how repeated approved values fold into progress.
type AccumulationPolicy string

const (
	PolicyCumulative    AccumulationPolicy = "cumulative"     // progress += value
	PolicyBestEffort    AccumulationPolicy = "best_effort"    // progress = max(progress, value)
	PolicySingleSession AccumulationPolicy = "single_session" // progress = value
)

type ChallengeStatus string

const (
	ChallengeDraft     ChallengeStatus = "draft"
	ChallengeScheduled ChallengeStatus = "scheduled"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeEnded     ChallengeStatus = "ended"
	ChallengeCancelled ChallengeStatus = "cancelled"
)

// Challenge is a time-boxed competition. Once participants exist it is
// immutable except through the privileged admin update endpoint.
type Challenge struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	MetricType         string             `gorm:"type:varchar(32);not null" json:"metric_type"` // reps, kg, seconds, points
	Target             int64              `gorm:"not null" json:"target"`
	AccumulationPolicy AccumulationPolicy `gorm:"type:varchar(16);not null;default:'cumulative'" json:"accumulation_policy"`
	CompletionBonus    int64              `json:"completion_bonus" gorm:"default:0"`

	RegionScope      string `gorm:"type:varchar(64);default:'global'" json:"region_scope"`
	RequiresEvidence bool   `gorm:"default:true" json:"requires_evidence"`

	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Status      ChallengeStatus `gorm:"type:varchar(16);default:'draft';index" json:"status"`

	ParticipantsCount int64 `json:"participants_count,omitempty" gorm:"-"`

	Timestamps
}

// ChallengeParticipation: one row per (athlete, challenge). Progress advances
// only through approved submissions. BonusAwarded guards the one-time
// completion bonus against double payment.
type ChallengeParticipation struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	AthleteID   string `gorm:"not null;uniqueIndex:idx_participation_once" json:"athlete_id"`
	ChallengeID string `gorm:"not null;uniqueIndex:idx_participation_once" json:"challenge_id"`

	Progress     int64      `json:"progress" gorm:"default:0"`
	Completed    bool       `json:"completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	BonusAwarded bool       `json:"bonus_awarded" gorm:"default:false"`

	JoinedAt time.Time `json:"joined_at"`

	Timestamps
}
