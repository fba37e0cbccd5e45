package services

import "testing"

func TestLeaderboardTop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	seedAthlete(t, db, "ada", "north-america", 5000, 300)
	seedAthlete(t, db, "bo", "europe", 8000, 100)
	seedAthlete(t, db, "cat", "north-america", 200, 900)

	top, err := svc.Top("cumulative", "", 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("got %d entries, want 3", len(top))
	}
	if top[0].Username != "bo" || top[1].Username != "ada" || top[2].Username != "cat" {
		t.Errorf("wrong order: %s, %s, %s", top[0].Username, top[1].Username, top[2].Username)
	}
	if top[0].Rank != 1 || top[2].Rank != 3 {
		t.Errorf("ranks not sequential: %d...%d", top[0].Rank, top[2].Rank)
	}
	if top[0].Tier != "Diamond" {
		t.Errorf("top tier = %s, want Diamond", top[0].Tier)
	}
	if top[1].RegionLabel != "North America" {
		t.Errorf("region label = %q, want %q", top[1].RegionLabel, "North America")
	}

	window, err := svc.Top("window", "", 10)
	if err != nil {
		t.Fatalf("Top window: %v", err)
	}
	if window[0].Username != "cat" || window[0].Score != 900 {
		t.Errorf("window leader = %s (%d), want cat (900)", window[0].Username, window[0].Score)
	}

	regional, err := svc.Top("cumulative", "north-america", 10)
	if err != nil {
		t.Fatalf("Top regional: %v", err)
	}
	if len(regional) != 2 || regional[0].Username != "ada" {
		t.Errorf("regional scope wrong: %+v", regional)
	}

	if _, err := svc.Top("vibes", "", 10); err == nil {
		t.Error("unknown field accepted")
	} else {
		wantKind(t, err, ErrValidation)
	}
}

func TestLeaderboardPosition(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	a := seedAthlete(t, db, "ada", "europe", 5000, 0)
	seedAthlete(t, db, "bo", "europe", 8000, 0)
	seedAthlete(t, db, "cat", "north-america", 9000, 0)
	seedAthlete(t, db, "dee", "europe", 5000, 0) // tie with ada

	pos, err := svc.Position(a.ID, "cumulative", "")
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	// Two strictly ahead, tie does not push down.
	if pos != 3 {
		t.Errorf("global position = %d, want 3", pos)
	}

	pos, err = svc.Position(a.ID, "cumulative", "europe")
	if err != nil {
		t.Fatalf("Position regional: %v", err)
	}
	if pos != 2 {
		t.Errorf("regional position = %d, want 2", pos)
	}

	_, err = svc.Position("missing", "cumulative", "")
	wantKind(t, err, ErrNotFound)

	_, err = svc.Position(a.ID, "nonsense", "")
	wantKind(t, err, ErrValidation)
}

func TestRegionLabel(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"", "Global"},
		{"global", "Global"},
		{"europe", "Europe"},
		{"north-america", "North America"},
		{"south-east-asia", "South East Asia"},
	}
	for _, tt := range tests {
		if got := RegionLabel(tt.in); got != tt.want {
			t.Errorf("RegionLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
