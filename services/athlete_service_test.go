package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestEnsureAthleteIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewAthleteService(db)
	id := uuid.NewString()

	first, err := svc.EnsureAthlete(id, "runa", "europe")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if first.Region != "europe" || first.CumulativeScore != 0 {
		t.Errorf("fresh athlete = %+v", first)
	}

	// Second touch returns the existing row, ignoring new attributes.
	again, err := svc.EnsureAthlete(id, "someone-else", "north-america")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if again.Username != "runa" || again.Region != "europe" {
		t.Errorf("existing row overwritten: %+v", again)
	}

	// Empty region defaults to global.
	other, err := svc.EnsureAthlete(uuid.NewString(), "finn", "")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if other.Region != "global" {
		t.Errorf("region = %q, want global", other.Region)
	}
}

func TestProfileRelativeScore(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewAthleteService(db)

	a := seedAthlete(t, db, "runa", "global", 1600, 0)

	profile, err := svc.Profile(a.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Tier.Name != "Gold" {
		t.Errorf("tier = %s, want Gold", profile.Tier.Name)
	}
	// No bodyweight on record, no relative view.
	if profile.RelativeScore != nil {
		t.Errorf("relative score = %v, want nil", *profile.RelativeScore)
	}

	if _, err := svc.UpdateBodyweight(a.ID, 80); err != nil {
		t.Fatalf("set bodyweight: %v", err)
	}
	profile, err = svc.Profile(a.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.RelativeScore == nil || *profile.RelativeScore != 20 {
		t.Errorf("relative score = %v, want 20", profile.RelativeScore)
	}

	_, err = svc.Profile("missing")
	wantKind(t, err, ErrNotFound)
}

func TestUpdateBodyweightBounds(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewAthleteService(db)
	a := seedAthlete(t, db, "runa", "global", 0, 0)

	for _, kg := range []float64{0, 19.9, 400.1, -80} {
		_, err := svc.UpdateBodyweight(a.ID, kg)
		wantKind(t, err, ErrValidation)
	}

	_, err := svc.UpdateBodyweight("missing", 80)
	wantKind(t, err, ErrNotFound)
}
