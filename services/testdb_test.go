package services

import (
	"fmt"
	"testing"

	"fitness-arena-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test. cache=shared keeps
// the database alive across the pooled connections GORM opens.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// sqlite allows a single writer; one pooled connection serializes
	// concurrent access on the pool instead of surfacing busy errors.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Athlete{},
		&models.WorkoutEntry{},
		&models.Submission{},
		&models.Appeal{},
		&models.Report{},
		&models.Challenge{},
		&models.ChallengeParticipation{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedAthlete(t *testing.T, db *gorm.DB, username, region string, cumulative, window int64) *models.Athlete {
	t.Helper()
	a := &models.Athlete{
		ID:              uuid.NewString(),
		Username:        username,
		Region:          region,
		CumulativeScore: cumulative,
		WindowScore:     window,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed athlete %s: %v", username, err)
	}
	return a
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error, got nil", kind)
	}
	ee, ok := err.(*EngineError)
	if !ok {
		t.Fatalf("want *EngineError(%s), got %T: %v", kind, err, err)
	}
	if ee.Kind != kind {
		t.Fatalf("want error kind %s, got %s (%s)", kind, ee.Kind, ee.Message)
	}
}
