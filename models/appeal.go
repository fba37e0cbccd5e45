package models

import (
	"time"
)

type AppealStatus string

const (
	AppealPending  AppealStatus = "pending"
	AppealApproved AppealStatus = "approved"
	AppealDenied   AppealStatus = "denied"
)

// Appeal is the owner's request to re-review a rejected submission.
// The unique index on SubmissionID allows exactly one appeal per submission —
// a denied appeal is final, there is no re-appeal.
type Appeal struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	SubmissionID string `gorm:"not null;uniqueIndex" json:"submission_id"`
	AthleteID    string `gorm:"index;not null" json:"athlete_id"`
	Reason       string `gorm:"type:text;not null" json:"reason"`

	Status     AppealStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	ReviewerID *string      `json:"reviewer_id,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`

	Timestamps
}
