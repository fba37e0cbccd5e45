package services

import (
	"errors"
	"strings"

	"fitness-arena-system/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// scoreColumns whitelists the rankable fields; anything else is a
// validation error, never interpolated into SQL.
var scoreColumns = map[string]string{
	"cumulative": "cumulative_score",
	"window":     "window_score",
}

var regionTitler = cases.Title(language.English)

// RankedEntry is one leaderboard row.
type RankedEntry struct {
	Rank        int    `json:"rank"`
	AthleteID   string `json:"athlete_id"`
	Username    string `json:"username"`
	Region      string `json:"region"`
	RegionLabel string `json:"region_label"`
	Score       int64  `json:"score"`
	Tier        string `json:"tier"`
}

// Position returns the 1-based position of one athlete without materializing
// the ordering: count(strictly greater scores in scope) + 1. Reads run
// against whatever snapshot the store gives us — staleness is acceptable.
func (s *LeaderboardService) Position(athleteID, field, region string) (int, error) {
	column, ok := scoreColumns[field]
	if !ok {
		return 0, errValidation("unknown score field %q (want cumulative or window)", field)
	}

	var athlete models.Athlete
	if err := s.DB.Where("id = ?", athleteID).First(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errNotFound("athlete %s not found", athleteID)
		}
		return 0, err
	}

	score := athlete.CumulativeScore
	if column == "window_score" {
		score = athlete.WindowScore
	}

	q := s.DB.Model(&models.Athlete{}).Where(column+" > ?", score)
	if scoped(region) {
		q = q.Where("region = ?", region)
	}

	var ahead int64
	if err := q.Count(&ahead).Error; err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

// Top returns the first limit entries for a scope, sort-and-slice.
func (s *LeaderboardService) Top(field, region string, limit int) ([]RankedEntry, error) {
	column, ok := scoreColumns[field]
	if !ok {
		return nil, errValidation("unknown score field %q (want cumulative or window)", field)
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := s.DB.Model(&models.Athlete{}).Order(column + " DESC").Limit(limit)
	if scoped(region) {
		q = q.Where("region = ?", region)
	}

	var athletes []models.Athlete
	if err := q.Find(&athletes).Error; err != nil {
		return nil, err
	}

	entries := make([]RankedEntry, 0, len(athletes))
	for i, a := range athletes {
		score := a.CumulativeScore
		if column == "window_score" {
			score = a.WindowScore
		}
		entries = append(entries, RankedEntry{
			Rank:        i + 1,
			AthleteID:   a.ID,
			Username:    a.Username,
			Region:      a.Region,
			RegionLabel: RegionLabel(a.Region),
			Score:       score,
			Tier:        ResolveTier(a.CumulativeScore).Name,
		})
	}
	return entries, nil
}

// scoped reports whether region narrows the query; "global" means no filter.
func scoped(region string) bool {
	return region != "" && region != "global"
}

// RegionLabel turns a region key like "north-america" into "North America".
func RegionLabel(region string) string {
	if region == "" || region == "global" {
		return "Global"
	}
	return regionTitler.String(strings.ReplaceAll(region, "-", " "))
}
