package services

import (
	"errors"
	"fmt"
	"time"

	"fitness-arena-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB     *gorm.DB
	Events *EventBus
}

func NewChallengeService(db *gorm.DB, events *EventBus) *ChallengeService {
	return &ChallengeService{DB: db, Events: events}
}

var validPolicies = map[models.AccumulationPolicy]bool{
	models.PolicyCumulative:    true,
	models.PolicyBestEffort:    true,
	models.PolicySingleSession: true,
}

// ChallengeInput carries the admin-settable fields.
type ChallengeInput struct {
	Name               string                    `json:"name"`
	Description        string                    `json:"description"`
	MetricType         string                    `json:"metric_type"`
	Target             int64                     `json:"target"`
	AccumulationPolicy models.AccumulationPolicy `json:"accumulation_policy"`
	CompletionBonus    int64                     `json:"completion_bonus"`
	RegionScope        string                    `json:"region_scope"`
	RequiresEvidence   *bool                     `json:"requires_evidence"`
	WindowStart        time.Time                 `json:"window_start"`
	WindowEnd          time.Time                 `json:"window_end"`
}

func (s *ChallengeService) CreateChallenge(in ChallengeInput) (*models.Challenge, error) {
	if in.Name == "" {
		return nil, errValidation("name is required")
	}
	if in.Target <= 0 {
		return nil, errValidation("target must be positive")
	}
	if in.CompletionBonus < 0 {
		return nil, errValidation("completion_bonus must not be negative")
	}
	if !validPolicies[in.AccumulationPolicy] {
		return nil, errValidation("accumulation_policy must be cumulative, best_effort or single_session")
	}
	if !in.WindowEnd.After(in.WindowStart) {
		return nil, errValidation("window_end must be after window_start")
	}

	requiresEvidence := true
	if in.RequiresEvidence != nil {
		requiresEvidence = *in.RequiresEvidence
	}
	region := in.RegionScope
	if region == "" {
		region = "global"
	}

	ch := &models.Challenge{
		ID:                 uuid.NewString(),
		Slug:               slug.Make(in.Name),
		Name:               in.Name,
		Description:        in.Description,
		MetricType:         in.MetricType,
		Target:             in.Target,
		AccumulationPolicy: in.AccumulationPolicy,
		CompletionBonus:    in.CompletionBonus,
		RegionScope:        region,
		RequiresEvidence:   requiresEvidence,
		WindowStart:        in.WindowStart,
		WindowEnd:          in.WindowEnd,
		Status:             models.ChallengeDraft,
	}

	if err := s.DB.Create(ch).Error; err != nil {
		if isDuplicateErr(err) {
			// Slug collision — disambiguate and retry once.
			ch.Slug = ch.Slug + "-" + ch.ID[:8]
			if err := s.DB.Create(ch).Error; err != nil {
				return nil, fmt.Errorf("create challenge: %w", err)
			}
			return ch, nil
		}
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	return ch, nil
}

// UpdateChallenge is the privileged edit — the only way to change a
// challenge once participants exist.
func (s *ChallengeService) UpdateChallenge(id string, in ChallengeInput) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.Where("id = ?", id).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("challenge %s not found", id)
		}
		return nil, err
	}
	if in.Target <= 0 {
		return nil, errValidation("target must be positive")
	}
	if !validPolicies[in.AccumulationPolicy] {
		return nil, errValidation("accumulation_policy must be cumulative, best_effort or single_session")
	}
	if !in.WindowEnd.After(in.WindowStart) {
		return nil, errValidation("window_end must be after window_start")
	}

	updates := map[string]interface{}{
		"name":                in.Name,
		"description":         in.Description,
		"metric_type":         in.MetricType,
		"target":              in.Target,
		"accumulation_policy": in.AccumulationPolicy,
		"completion_bonus":    in.CompletionBonus,
		"window_start":        in.WindowStart,
		"window_end":          in.WindowEnd,
	}
	if in.RegionScope != "" {
		updates["region_scope"] = in.RegionScope
	}
	if in.RequiresEvidence != nil {
		updates["requires_evidence"] = *in.RequiresEvidence
	}
	if err := s.DB.Model(&ch).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.DB.First(&ch, "id = ?", id)
	return &ch, nil
}

// PublishChallenge moves a draft into the live lifecycle: scheduled when the
// window has not opened yet, active when it already has.
func (s *ChallengeService) PublishChallenge(id string, now time.Time) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.Where("id = ?", id).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("challenge %s not found", id)
		}
		return nil, err
	}
	if ch.Status != models.ChallengeDraft {
		return nil, errPrecondition("challenge %s is %s, only drafts can be published", id, ch.Status)
	}

	status := models.ChallengeScheduled
	switch {
	case !now.Before(ch.WindowEnd):
		status = models.ChallengeEnded
	case !now.Before(ch.WindowStart):
		status = models.ChallengeActive
	}
	if err := s.DB.Model(&ch).Update("status", status).Error; err != nil {
		return nil, err
	}
	ch.Status = status
	return &ch, nil
}

// CancelChallenge withdraws a challenge from competition.
func (s *ChallengeService) CancelChallenge(id string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.Where("id = ?", id).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("challenge %s not found", id)
		}
		return nil, err
	}
	if ch.Status == models.ChallengeEnded {
		return nil, errPrecondition("challenge %s has already ended", id)
	}
	if err := s.DB.Model(&ch).Update("status", models.ChallengeCancelled).Error; err != nil {
		return nil, err
	}
	ch.Status = models.ChallengeCancelled
	return &ch, nil
}

func (s *ChallengeService) ListChallenges(region string, status models.ChallengeStatus) ([]models.Challenge, error) {
	q := s.DB.Model(&models.Challenge{}).Order("window_start DESC")
	if scoped(region) {
		q = q.Where("region_scope IN ?", []string{region, "global"})
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var challenges []models.Challenge
	if err := q.Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (s *ChallengeService) GetChallenge(idOrSlug string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.Where("id = ? OR slug = ?", idOrSlug, idOrSlug).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("challenge %s not found", idOrSlug)
		}
		return nil, err
	}
	s.DB.Model(&models.ChallengeParticipation{}).
		Where("challenge_id = ?", ch.ID).
		Count(&ch.ParticipantsCount)
	return &ch, nil
}

// JoinChallenge creates the participation row; athletes must join before any
// submission can move their progress.
func (s *ChallengeService) JoinChallenge(athleteID, challengeID string) (*models.ChallengeParticipation, error) {
	var ch models.Challenge
	if err := s.DB.Where("id = ?", challengeID).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("challenge %s not found", challengeID)
		}
		return nil, err
	}
	if ch.Status != models.ChallengeScheduled && ch.Status != models.ChallengeActive {
		return nil, errPrecondition("challenge %s is %s and cannot be joined", challengeID, ch.Status)
	}

	var athlete models.Athlete
	if err := s.DB.Where("id = ?", athleteID).First(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("athlete %s not found", athleteID)
		}
		return nil, err
	}
	if scoped(ch.RegionScope) && athlete.Region != ch.RegionScope {
		return nil, errPrecondition("challenge %s is scoped to region %s", challengeID, ch.RegionScope)
	}

	participation := &models.ChallengeParticipation{
		ID:          uuid.NewString(),
		AthleteID:   athleteID,
		ChallengeID: challengeID,
		JoinedAt:    time.Now(),
	}
	if err := s.DB.Create(participation).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, errConflict("athlete %s already joined challenge %s", athleteID, challengeID)
		}
		return nil, fmt.Errorf("join challenge: %w", err)
	}
	return participation, nil
}

// ChallengeStandings lists participants ordered by progress.
func (s *ChallengeService) ChallengeStandings(challengeID string, limit int) ([]models.ChallengeParticipation, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	var rows []models.ChallengeParticipation
	err := s.DB.Where("challenge_id = ?", challengeID).
		Order("progress DESC, completed_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Participation fetches one athlete's row for a challenge.
func (s *ChallengeService) Participation(athleteID, challengeID string) (*models.ChallengeParticipation, error) {
	var p models.ChallengeParticipation
	err := s.DB.Where("athlete_id = ? AND challenge_id = ?", athleteID, challengeID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound("athlete %s has not joined challenge %s", athleteID, challengeID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// progressOutcome reports what an aggregation step did, so the caller can
// apply the bonus inside the same transaction and emit events after commit.
type progressOutcome struct {
	Progress      int64
	Completed     bool // flipped true in this step
	Reopened      bool // flipped false in this step (report reversal)
	BonusDelta    int64
	ChallengeID   string
	ChallengeName string
}

// applyApprovedSubmission folds one freshly approved challenge submission
// into the athlete's participation under the challenge's accumulation
// policy. Runs inside the verification transaction; the participation row is
// locked for the duration.
func (s *ChallengeService) applyApprovedSubmission(tx *gorm.DB, sub *models.Submission) (*progressOutcome, error) {
	var participation models.ChallengeParticipation
	err := lockForUpdate(tx).
		Where("athlete_id = ? AND challenge_id = ?", sub.AthleteID, sub.ContextID).
		First(&participation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errPrecondition("athlete %s has not joined challenge %s", sub.AthleteID, sub.ContextID)
	}
	if err != nil {
		return nil, err
	}

	var ch models.Challenge
	if err := tx.Where("id = ?", sub.ContextID).First(&ch).Error; err != nil {
		return nil, fmt.Errorf("load challenge %s: %w", sub.ContextID, err)
	}
	if ch.Status != models.ChallengeActive {
		return nil, errPrecondition("challenge %s is %s, progress can no longer change", ch.ID, ch.Status)
	}

	switch ch.AccumulationPolicy {
	case models.PolicyCumulative:
		participation.Progress += sub.ScoreValue
	case models.PolicyBestEffort:
		if sub.ScoreValue > participation.Progress {
			participation.Progress = sub.ScoreValue
		}
	case models.PolicySingleSession:
		participation.Progress = sub.ScoreValue
	default:
		return nil, fmt.Errorf("challenge %s has unknown policy %q", ch.ID, ch.AccumulationPolicy)
	}

	outcome := &progressOutcome{
		Progress:      participation.Progress,
		ChallengeID:   ch.ID,
		ChallengeName: ch.Name,
	}

	if participation.Progress >= ch.Target && !participation.Completed {
		now := time.Now()
		participation.Completed = true
		participation.CompletedAt = &now
		outcome.Completed = true
		if !participation.BonusAwarded {
			participation.BonusAwarded = true
			outcome.BonusDelta = ch.CompletionBonus
		}
	}

	if err := tx.Save(&participation).Error; err != nil {
		return nil, fmt.Errorf("save participation: %w", err)
	}
	return outcome, nil
}

// reverseApprovedSubmission undoes one submission's contribution after a
// report flipped it back to rejected. Progress is recomputed from the
// surviving approved submissions rather than decremented, which keeps
// best_effort and single_session correct too. When the recomputed progress
// falls below target, completion is reopened and the one-time bonus clawed
// back.
func (s *ChallengeService) reverseApprovedSubmission(tx *gorm.DB, sub *models.Submission) (*progressOutcome, error) {
	var participation models.ChallengeParticipation
	err := lockForUpdate(tx).
		Where("athlete_id = ? AND challenge_id = ?", sub.AthleteID, sub.ContextID).
		First(&participation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Nothing to reverse — the participation never existed.
		return &progressOutcome{ChallengeID: sub.ContextID}, nil
	}
	if err != nil {
		return nil, err
	}

	var ch models.Challenge
	if err := tx.Where("id = ?", sub.ContextID).First(&ch).Error; err != nil {
		return nil, fmt.Errorf("load challenge %s: %w", sub.ContextID, err)
	}

	var survivors []models.Submission
	if err := tx.Where(
		"athlete_id = ? AND context_type = ? AND context_id = ? AND status = ? AND id <> ?",
		sub.AthleteID, models.ContextChallenge, sub.ContextID, models.SubmissionApproved, sub.ID,
	).Order("reviewed_at ASC").Find(&survivors).Error; err != nil {
		return nil, err
	}

	var progress int64
	switch ch.AccumulationPolicy {
	case models.PolicyCumulative:
		for _, sv := range survivors {
			progress += sv.ScoreValue
		}
	case models.PolicyBestEffort:
		for _, sv := range survivors {
			if sv.ScoreValue > progress {
				progress = sv.ScoreValue
			}
		}
	case models.PolicySingleSession:
		if len(survivors) > 0 {
			progress = survivors[len(survivors)-1].ScoreValue
		}
	}
	participation.Progress = progress

	outcome := &progressOutcome{
		Progress:      progress,
		ChallengeID:   ch.ID,
		ChallengeName: ch.Name,
	}

	if participation.Completed && progress < ch.Target {
		participation.Completed = false
		participation.CompletedAt = nil
		outcome.Reopened = true
		if participation.BonusAwarded {
			participation.BonusAwarded = false
			outcome.BonusDelta = -ch.CompletionBonus
		}
	}

	if err := tx.Save(&participation).Error; err != nil {
		return nil, fmt.Errorf("save participation: %w", err)
	}
	return outcome, nil
}
