package services

// Tier is a named rank bracket keyed by a minimum cumulative score.
type Tier struct {
	Name     string
	MinScore int64
}

// TierTable is scanned from the highest threshold down; the lowest entry must
// stay at 0 so every score resolves to some tier.
var TierTable = []Tier{
	{Name: "Titan", MinScore: 12000},
	{Name: "Diamond", MinScore: 6000},
	{Name: "Platinum", MinScore: 3000},
	{Name: "Gold", MinScore: 1500},
	{Name: "Silver", MinScore: 600},
	{Name: "Bronze", MinScore: 150},
	{Name: "Iron", MinScore: 0},
}

// TierStanding is the resolved bracket plus progress toward the next one.
// NextTierTarget is nil at the top tier.
type TierStanding struct {
	Name            string  `json:"tier"`
	ProgressPercent float64 `json:"progress_percent"`
	NextTierTarget  *int64  `json:"next_tier_target,omitempty"`
}

// ResolveTier maps a cumulative score onto the tier table.
func ResolveTier(cumulativeScore int64) TierStanding {
	for i, tier := range TierTable {
		if cumulativeScore < tier.MinScore {
			continue
		}
		if i == 0 {
			return TierStanding{Name: tier.Name, ProgressPercent: 100}
		}
		next := TierTable[i-1]
		span := next.MinScore - tier.MinScore
		progress := float64(cumulativeScore-tier.MinScore) / float64(span) * 100
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		target := next.MinScore
		return TierStanding{Name: tier.Name, ProgressPercent: progress, NextTierTarget: &target}
	}

	// Below the lowest threshold (negative scores included): lowest tier at 0%.
	bottom := TierTable[len(TierTable)-1]
	var target *int64
	if len(TierTable) > 1 {
		t := TierTable[len(TierTable)-2].MinScore
		target = &t
	}
	return TierStanding{Name: bottom.Name, ProgressPercent: 0, NextTierTarget: target}
}
