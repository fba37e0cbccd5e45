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

// VerificationService owns the evidence lifecycle: submit → verdict →
// appeal/report → resolution. It is the only writer of athlete score fields;
// every score mutation happens inside the same transaction as the status
// transition that caused it.
type VerificationService struct {
	DB     *gorm.DB
	Events *EventBus

	// RemoveEvidence is the deletion callback of the evidence transport
	// collaborator. Called after a remove-evidence report resolution commits;
	// failures are logged, never rolled back.
	RemoveEvidence func(ref string) error
}

func NewVerificationService(db *gorm.DB, events *EventBus) *VerificationService {
	return &VerificationService{DB: db, Events: events}
}

// submissionTransitions is the closed transition table. rejected→approved is
// reachable only through an approved appeal, approved→rejected only through
// a resolved remove-evidence report.
var submissionTransitions = map[models.SubmissionStatus][]models.SubmissionStatus{
	models.SubmissionPending:  {models.SubmissionApproved, models.SubmissionRejected},
	models.SubmissionRejected: {models.SubmissionApproved},
	models.SubmissionApproved: {models.SubmissionRejected},
}

func canTransition(from, to models.SubmissionStatus) bool {
	for _, t := range submissionTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// SubmitWorkoutEvidence opens a pending submission for a logged workout.
// The uniqueness of PendingKey makes the duplicate check atomic with the
// insert, so concurrent double submits fail cleanly with a conflict.
func (s *VerificationService) SubmitWorkoutEvidence(athleteID, workoutID, evidenceRef string) (*models.Submission, error) {
	if evidenceRef == "" {
		return nil, errValidation("evidence is required for competitive scoring")
	}

	var entry models.WorkoutEntry
	if err := s.DB.Where("id = ?", workoutID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("workout %s not found", workoutID)
		}
		return nil, err
	}
	if entry.AthleteID != athleteID {
		return nil, errPrecondition("workout %s does not belong to athlete %s", workoutID, athleteID)
	}

	var approved int64
	s.DB.Model(&models.Submission{}).
		Where("athlete_id = ? AND context_id = ? AND status = ?", athleteID, workoutID, models.SubmissionApproved).
		Count(&approved)
	if approved > 0 {
		return nil, errConflict("workout %s already has approved evidence", workoutID)
	}

	sub := &models.Submission{
		ID:          uuid.NewString(),
		AthleteID:   athleteID,
		ContextType: models.ContextWorkout,
		ContextID:   workoutID,
		EvidenceRef: evidenceRef,
		Status:      models.SubmissionPending,
		ScoreValue:  entry.PointValue,
		PendingKey:  models.OpenKey(athleteID, workoutID),
	}
	if err := s.DB.Create(sub).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, errConflict("a pending submission already exists for workout %s", workoutID)
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

// SubmitChallengeEvidence opens a pending submission carrying a measured
// value toward a challenge the athlete has joined.
func (s *VerificationService) SubmitChallengeEvidence(athleteID, challengeID string, value int64, evidenceRef string) (*models.Submission, error) {
	if value <= 0 {
		return nil, errValidation("value must be positive")
	}

	var ch models.Challenge
	if err := s.DB.Where("id = ?", challengeID).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("challenge %s not found", challengeID)
		}
		return nil, err
	}
	if ch.RequiresEvidence && evidenceRef == "" {
		return nil, errValidation("challenge %s requires video evidence", challengeID)
	}
	if ch.Status != models.ChallengeActive {
		return nil, errPrecondition("challenge %s is %s and does not accept submissions", challengeID, ch.Status)
	}

	var joined int64
	s.DB.Model(&models.ChallengeParticipation{}).
		Where("athlete_id = ? AND challenge_id = ?", athleteID, challengeID).
		Count(&joined)
	if joined == 0 {
		return nil, errPrecondition("athlete %s has not joined challenge %s", athleteID, challengeID)
	}

	sub := &models.Submission{
		ID:          uuid.NewString(),
		AthleteID:   athleteID,
		ContextType: models.ContextChallenge,
		ContextID:   challengeID,
		EvidenceRef: evidenceRef,
		Status:      models.SubmissionPending,
		ScoreValue:  value,
		PendingKey:  models.OpenKey(athleteID, challengeID),
	}
	if err := s.DB.Create(sub).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, errConflict("a pending submission already exists for challenge %s", challengeID)
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

func (s *VerificationService) GetSubmission(id string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.DB.Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("submission %s not found", id)
		}
		return nil, err
	}
	return &sub, nil
}

// PendingQueue lists submissions awaiting review, oldest first.
func (s *VerificationService) PendingQueue(limit int) ([]models.Submission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var subs []models.Submission
	err := s.DB.Where("status = ?", models.SubmissionPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// ReviewSubmission records the reviewer's verdict on a pending submission.
// Approval applies the score delta (and challenge progress) atomically with
// the transition; rejection records the reason and applies nothing.
func (s *VerificationService) ReviewSubmission(reviewerID, submissionID string, approve bool, reason string) (*models.Submission, error) {
	if !approve && reason == "" {
		return nil, errValidation("a rejection reason is required")
	}

	var sub models.Submission
	var pending []DomainEvent

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", submissionID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("submission %s not found", submissionID)
			}
			return err
		}
		if sub.Status != models.SubmissionPending {
			return errPrecondition("submission %s is %s, only pending submissions can be reviewed", submissionID, sub.Status)
		}
		if sub.AthleteID == reviewerID {
			return errConflict("reviewers cannot verify their own submissions")
		}

		now := time.Now()
		sub.ReviewerID = &reviewerID
		sub.ReviewedAt = &now
		sub.PendingKey = nil

		if !approve {
			sub.Status = models.SubmissionRejected
			sub.RejectionReason = reason
			if err := tx.Save(&sub).Error; err != nil {
				return err
			}
			pending = append(pending, verdictEvent(&sub))
			return nil
		}

		if !canTransition(sub.Status, models.SubmissionApproved) {
			return errPrecondition("submission %s cannot move from %s to approved", sub.ID, sub.Status)
		}
		sub.Status = models.SubmissionApproved

		events, err := s.applyApproval(tx, &sub)
		if err != nil {
			return err
		}
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		pending = append(pending, verdictEvent(&sub))
		pending = append(pending, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, evt := range pending {
		s.Events.Publish(evt)
	}
	log.Printf("🏅 Submission %s → %s by reviewer %s", sub.ID, sub.Status, reviewerID)
	return &sub, nil
}

// applyApproval applies the score effect of an approval (first verdict or
// appeal reinstatement) inside tx. Caller saves the submission.
func (s *VerificationService) applyApproval(tx *gorm.DB, sub *models.Submission) ([]DomainEvent, error) {
	delta := sub.ScoreValue
	var events []DomainEvent

	if sub.ContextType == models.ContextChallenge {
		chSvc := NewChallengeService(s.DB, s.Events)
		outcome, err := chSvc.applyApprovedSubmission(tx, sub)
		if err != nil {
			return nil, err
		}
		delta += outcome.BonusDelta
		if outcome.Completed {
			events = append(events, DomainEvent{
				AthleteID: sub.AthleteID,
				Type:      EventChallengeCompleted,
				Payload: map[string]interface{}{
					"challenge_id":   outcome.ChallengeID,
					"challenge_name": outcome.ChallengeName,
					"progress":       outcome.Progress,
					"bonus":          outcome.BonusDelta,
				},
			})
		}
	}

	tierEvt, err := s.applyScoreDelta(tx, sub.AthleteID, delta)
	if err != nil {
		return nil, err
	}
	if tierEvt != nil {
		events = append(events, *tierEvt)
	}
	return events, nil
}

// applyScoreDelta mutates the athlete's scores under a row lock and reports
// a tier-change event when the delta crossed a threshold.
func (s *VerificationService) applyScoreDelta(tx *gorm.DB, athleteID string, delta int64) (*DomainEvent, error) {
	if delta == 0 {
		return nil, nil
	}

	var athlete models.Athlete
	if err := lockForUpdate(tx).Where("id = ?", athleteID).First(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("athlete %s not found", athleteID)
		}
		return nil, err
	}

	before := ResolveTier(athlete.CumulativeScore)
	athlete.CumulativeScore += delta
	athlete.WindowScore += delta
	if athlete.WindowScore < 0 {
		// The reversed approval may have landed in an earlier window.
		athlete.WindowScore = 0
	}
	after := ResolveTier(athlete.CumulativeScore)

	if err := tx.Save(&athlete).Error; err != nil {
		return nil, fmt.Errorf("save athlete score: %w", err)
	}

	if before.Name != after.Name {
		return &DomainEvent{
			AthleteID: athleteID,
			Type:      EventTierChanged,
			Payload: map[string]interface{}{
				"from":  before.Name,
				"to":    after.Name,
				"score": athlete.CumulativeScore,
			},
		}, nil
	}
	return nil, nil
}

// FileAppeal opens the one allowed appeal on a rejected submission.
func (s *VerificationService) FileAppeal(athleteID, submissionID, reason string) (*models.Appeal, error) {
	if reason == "" {
		return nil, errValidation("an appeal reason is required")
	}

	var sub models.Submission
	if err := s.DB.Where("id = ?", submissionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("submission %s not found", submissionID)
		}
		return nil, err
	}
	if sub.AthleteID != athleteID {
		return nil, errPrecondition("only the submission owner may appeal")
	}
	if sub.Status != models.SubmissionRejected {
		return nil, errPrecondition("submission %s is %s, only rejected submissions can be appealed", submissionID, sub.Status)
	}

	appeal := &models.Appeal{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		AthleteID:    athleteID,
		Reason:       reason,
		Status:       models.AppealPending,
	}
	if err := s.DB.Create(appeal).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, errConflict("submission %s has already been appealed", submissionID)
		}
		return nil, fmt.Errorf("create appeal: %w", err)
	}
	return appeal, nil
}

// ReviewAppeal resolves a pending appeal. Approval reinstates the submission
// (rejected→approved), re-applies its score effect and clears the rejection
// reason; denial leaves the submission rejected for good.
func (s *VerificationService) ReviewAppeal(reviewerID, appealID string, approve bool) (*models.Appeal, error) {
	var appeal models.Appeal
	var pending []DomainEvent

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", appealID).First(&appeal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("appeal %s not found", appealID)
			}
			return err
		}
		if appeal.Status != models.AppealPending {
			return errPrecondition("appeal %s is %s, only pending appeals can be reviewed", appealID, appeal.Status)
		}
		if appeal.AthleteID == reviewerID {
			return errConflict("reviewers cannot rule on their own appeals")
		}

		now := time.Now()
		appeal.ReviewerID = &reviewerID
		appeal.ReviewedAt = &now

		if !approve {
			appeal.Status = models.AppealDenied
			return tx.Save(&appeal).Error
		}

		var sub models.Submission
		if err := lockForUpdate(tx).Where("id = ?", appeal.SubmissionID).First(&sub).Error; err != nil {
			return fmt.Errorf("load submission %s: %w", appeal.SubmissionID, err)
		}
		if !canTransition(sub.Status, models.SubmissionApproved) {
			return errPrecondition("submission %s cannot move from %s to approved", sub.ID, sub.Status)
		}

		sub.Status = models.SubmissionApproved
		sub.RejectionReason = ""
		sub.ReviewerID = &reviewerID
		sub.ReviewedAt = &now

		events, err := s.applyApproval(tx, &sub)
		if err != nil {
			return err
		}
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		appeal.Status = models.AppealApproved
		if err := tx.Save(&appeal).Error; err != nil {
			return err
		}
		pending = append(pending, verdictEvent(&sub))
		pending = append(pending, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, evt := range pending {
		s.Events.Publish(evt)
	}
	log.Printf("⚖️ Appeal %s → %s by reviewer %s", appeal.ID, appeal.Status, reviewerID)
	return &appeal, nil
}

// FileReport flags an approved submission for re-review. One report per
// (reporter, submission), enforced by the composite unique index.
func (s *VerificationService) FileReport(reporterID, submissionID, reason string) (*models.Report, error) {
	if reason == "" {
		return nil, errValidation("a report reason is required")
	}

	var sub models.Submission
	if err := s.DB.Where("id = ?", submissionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("submission %s not found", submissionID)
		}
		return nil, err
	}
	if sub.Status != models.SubmissionApproved {
		return nil, errPrecondition("submission %s is %s, only approved submissions can be reported", submissionID, sub.Status)
	}

	report := &models.Report{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		ReporterID:   reporterID,
		Reason:       reason,
		Status:       models.ReportPending,
	}
	if err := s.DB.Create(report).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, errConflict("reporter %s already reported submission %s", reporterID, submissionID)
		}
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

// OpenReports lists unresolved reports, oldest first.
func (s *VerificationService) OpenReports(limit int) ([]models.Report, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var reports []models.Report
	err := s.DB.Where("status = ?", models.ReportPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&reports).Error
	return reports, err
}

// ResolveReport closes a pending report. The remove_evidence action demotes
// the approved submission back to rejected, subtracts exactly the score it
// had applied, reverses challenge progress (including a completion-bonus
// clawback when progress drops below target) and fires the evidence
// deletion callback after commit.
func (s *VerificationService) ResolveReport(resolverID, reportID string, action models.ReportAction) (*models.Report, error) {
	if action != models.ReportActionDismiss && action != models.ReportActionRemoveEvidence {
		return nil, errValidation("action must be dismiss or remove_evidence")
	}

	var report models.Report
	var evidenceRef string
	var pending []DomainEvent

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", reportID).First(&report).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound("report %s not found", reportID)
			}
			return err
		}
		if report.Status != models.ReportPending {
			return errPrecondition("report %s is %s, only pending reports can be resolved", reportID, report.Status)
		}

		now := time.Now()
		report.ResolverID = &resolverID
		report.ResolvedAt = &now
		report.Action = action

		if action == models.ReportActionDismiss {
			report.Status = models.ReportDismissed
			return tx.Save(&report).Error
		}

		var sub models.Submission
		if err := lockForUpdate(tx).Where("id = ?", report.SubmissionID).First(&sub).Error; err != nil {
			return fmt.Errorf("load submission %s: %w", report.SubmissionID, err)
		}
		if sub.Status != models.SubmissionApproved {
			return errPrecondition("submission %s is %s, evidence can only be removed from approved submissions", sub.ID, sub.Status)
		}
		if !canTransition(sub.Status, models.SubmissionRejected) {
			return errPrecondition("submission %s cannot move from %s to rejected", sub.ID, sub.Status)
		}

		sub.Status = models.SubmissionRejected
		sub.RejectionReason = "evidence removed: " + report.Reason
		evidenceRef = sub.EvidenceRef

		reversal := sub.ScoreValue
		if sub.ContextType == models.ContextChallenge {
			chSvc := NewChallengeService(s.DB, s.Events)
			outcome, err := chSvc.reverseApprovedSubmission(tx, &sub)
			if err != nil {
				return err
			}
			reversal -= outcome.BonusDelta // BonusDelta is negative on clawback
			if outcome.Reopened {
				pending = append(pending, DomainEvent{
					AthleteID: sub.AthleteID,
					Type:      EventChallengeReopened,
					Payload: map[string]interface{}{
						"challenge_id":   outcome.ChallengeID,
						"challenge_name": outcome.ChallengeName,
						"progress":       outcome.Progress,
					},
				})
			}
		}

		tierEvt, err := s.applyScoreDelta(tx, sub.AthleteID, -reversal)
		if err != nil {
			return err
		}
		if tierEvt != nil {
			pending = append(pending, *tierEvt)
		}

		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		pending = append(pending, verdictEvent(&sub))

		report.Status = models.ReportResolved
		return tx.Save(&report).Error
	})
	if err != nil {
		return nil, err
	}

	if report.Action == models.ReportActionRemoveEvidence && evidenceRef != "" && s.RemoveEvidence != nil {
		if err := s.RemoveEvidence(evidenceRef); err != nil {
			log.Printf("⚠️ failed to delete evidence %s: %v", evidenceRef, err)
		}
	}
	for _, evt := range pending {
		s.Events.Publish(evt)
	}
	log.Printf("🚨 Report %s → %s (%s) by %s", report.ID, report.Status, action, resolverID)
	return &report, nil
}

func verdictEvent(sub *models.Submission) DomainEvent {
	return DomainEvent{
		AthleteID: sub.AthleteID,
		Type:      EventSubmissionVerdict,
		Payload: map[string]interface{}{
			"submission_id":    sub.ID,
			"context_type":     string(sub.ContextType),
			"context_id":       sub.ContextID,
			"status":           string(sub.Status),
			"score_value":      sub.ScoreValue,
			"rejection_reason": sub.RejectionReason,
		},
	}
}
