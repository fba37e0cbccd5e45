package models

import (
	"time"
)

// SubmissionStatus is the verdict state of one piece of evidence.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// SubmissionContext says what kind of record the evidence backs.
type SubmissionContext string

const (
	ContextWorkout   SubmissionContext = "workout"
	ContextChallenge SubmissionContext = "challenge"
)

// Submission is one piece of video evidence tied to a scoring context.
// ScoreValue is the point delta the submission carries; it is applied to the
// athlete's scores only when the submission enters (or re-enters) approved.
//
// PendingKey is "<athlete_id>:<context_id>" while the submission is pending
// and NULL once a verdict lands. The unique index on it makes the
// one-open-submission-per-context invariant a property of the insert itself,
// so concurrent duplicate submits race on the constraint, not on a read.
type Submission struct {
	ID          string            `gorm:"primaryKey;type:uuid" json:"id"`
	AthleteID   string            `gorm:"index;not null" json:"athlete_id"`
	ContextType SubmissionContext `gorm:"type:varchar(16);not null" json:"context_type"`
	ContextID   string            `gorm:"index;not null" json:"context_id"` // workout entry ID or challenge ID

	EvidenceRef string `gorm:"type:text;not null" json:"evidence_ref"` // opaque, binary never inspected here

	Status     SubmissionStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	ScoreValue int64            `json:"score_value"`

	ReviewerID      *string    `json:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	PendingKey *string `gorm:"uniqueIndex" json:"-"`

	Timestamps
}

// OpenKey builds the PendingKey value for an athlete+context pair.
func OpenKey(athleteID, contextID string) *string {
	k := athleteID + ":" + contextID
	return &k
}
