package services

import "testing"

func TestResolveTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		score        int64
		wantTier     string
		wantProgress float64
		wantTarget   int64 // 0 means nil expected
	}{
		{name: "zero score", score: 0, wantTier: "Iron", wantProgress: 0, wantTarget: 150},
		{name: "negative score clamps to bottom", score: -50, wantTier: "Iron", wantProgress: 0, wantTarget: 150},
		{name: "bronze threshold", score: 150, wantTier: "Bronze", wantProgress: 0, wantTarget: 600},
		{name: "mid bronze", score: 375, wantTier: "Bronze", wantProgress: 50, wantTarget: 600},
		{name: "silver threshold", score: 600, wantTier: "Silver", wantProgress: 0, wantTarget: 1500},
		{name: "gold threshold", score: 1500, wantTier: "Gold", wantProgress: 0, wantTarget: 3000},
		{name: "platinum threshold", score: 3000, wantTier: "Platinum", wantProgress: 0, wantTarget: 6000},
		{name: "diamond threshold", score: 6000, wantTier: "Diamond", wantProgress: 0, wantTarget: 12000},
		{name: "titan threshold", score: 12000, wantTier: "Titan", wantProgress: 100},
		{name: "beyond titan stays pinned", score: 1000000, wantTier: "Titan", wantProgress: 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveTier(tt.score)
			if got.Name != tt.wantTier {
				t.Fatalf("ResolveTier(%d).Name = %s, want %s", tt.score, got.Name, tt.wantTier)
			}
			if tt.wantTarget == 0 {
				if got.NextTierTarget != nil {
					t.Errorf("ResolveTier(%d).NextTierTarget = %d, want nil", tt.score, *got.NextTierTarget)
				}
			} else if got.NextTierTarget == nil || *got.NextTierTarget != tt.wantTarget {
				t.Errorf("ResolveTier(%d).NextTierTarget = %v, want %d", tt.score, got.NextTierTarget, tt.wantTarget)
			}
			if got.ProgressPercent != tt.wantProgress {
				t.Errorf("ResolveTier(%d).ProgressPercent = %.2f, want %.2f", tt.score, got.ProgressPercent, tt.wantProgress)
			}
		})
	}
}

func TestResolveTierMonotonic(t *testing.T) {
	t.Parallel()

	tierIndex := func(name string) int {
		for i, tier := range TierTable {
			if tier.Name == name {
				return len(TierTable) - i // higher is better
			}
		}
		t.Fatalf("unknown tier %s", name)
		return 0
	}

	prev := ResolveTier(-100)
	for score := int64(-99); score <= 15000; score += 7 {
		cur := ResolveTier(score)
		if tierIndex(cur.Name) < tierIndex(prev.Name) {
			t.Fatalf("tier regressed from %s to %s at score %d", prev.Name, cur.Name, score)
		}
		if cur.ProgressPercent < 0 || cur.ProgressPercent > 100 {
			t.Fatalf("progress %.2f out of bounds at score %d", cur.ProgressPercent, score)
		}
		prev = cur
	}
}
