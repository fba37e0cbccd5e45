package services

import (
	"errors"
	"fmt"

	"fitness-arena-system/models"

	"gorm.io/gorm"
)

type AthleteService struct {
	DB *gorm.DB
}

func NewAthleteService(db *gorm.DB) *AthleteService {
	return &AthleteService{DB: db}
}

// EnsureAthlete creates the standing row on first touch (idempotent).
// id is the already-authenticated external UUID from the profile service.
func (s *AthleteService) EnsureAthlete(id, username, region string) (*models.Athlete, error) {
	var athlete models.Athlete
	err := s.DB.Where("id = ?", id).First(&athlete).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if region == "" {
			region = "global"
		}
		athlete = models.Athlete{
			ID:       id,
			Username: username,
			Region:   region,
		}
		if err := s.DB.Create(&athlete).Error; err != nil {
			if isDuplicateErr(err) {
				// Lost a create race with a concurrent first request — reread.
				if err := s.DB.Where("id = ?", id).First(&athlete).Error; err != nil {
					return nil, err
				}
				return &athlete, nil
			}
			return nil, fmt.Errorf("create athlete %s: %w", id, err)
		}
		return &athlete, nil
	}
	if err != nil {
		return nil, err
	}
	return &athlete, nil
}

// AthleteProfile is the read view of a standing: tier and relative strength
// are derived on read, never stored. The additive cumulative score is
// canonical; the bodyweight-normalized score is reporting only.
type AthleteProfile struct {
	Athlete       models.Athlete `json:"athlete"`
	Tier          TierStanding   `json:"tier"`
	RelativeScore *float64       `json:"relative_score,omitempty"`
}

func (s *AthleteService) Profile(id string) (*AthleteProfile, error) {
	var athlete models.Athlete
	if err := s.DB.Where("id = ?", id).First(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("athlete %s not found", id)
		}
		return nil, err
	}

	profile := &AthleteProfile{
		Athlete: athlete,
		Tier:    ResolveTier(athlete.CumulativeScore),
	}
	if athlete.BodyweightKg != nil && *athlete.BodyweightKg > 0 {
		rel := float64(athlete.CumulativeScore) / *athlete.BodyweightKg
		profile.RelativeScore = &rel
	}
	return profile, nil
}

// UpdateBodyweight sets the optional bodyweight used by the relative view.
func (s *AthleteService) UpdateBodyweight(id string, kg float64) (*models.Athlete, error) {
	if kg < 20 || kg > 400 {
		return nil, errValidation("bodyweight_kg must be between 20 and 400")
	}
	var athlete models.Athlete
	if err := s.DB.Where("id = ?", id).First(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("athlete %s not found", id)
		}
		return nil, err
	}
	athlete.BodyweightKg = &kg
	if err := s.DB.Save(&athlete).Error; err != nil {
		return nil, err
	}
	return &athlete, nil
}
