package models

import (
	"time"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// ReportAction is what a moderator does when resolving a report.
type ReportAction string

const (
	ReportActionDismiss        ReportAction = "dismiss"
	ReportActionRemoveEvidence ReportAction = "remove_evidence"
)

// Report is a third-party request to re-review an approved submission.
// The composite unique index keeps each reporter to one report per submission.
type Report struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	SubmissionID string `gorm:"not null;uniqueIndex:idx_report_once" json:"submission_id"`
	ReporterID   string `gorm:"not null;uniqueIndex:idx_report_once" json:"reporter_id"`
	Reason       string `gorm:"type:text;not null" json:"reason"`

	Status     ReportStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	Action     ReportAction `gorm:"type:varchar(32)" json:"action,omitempty"`
	ResolverID *string      `json:"resolver_id,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`

	Timestamps
}
