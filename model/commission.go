package model

// CommissionRates is the rate row of one user level. Rates are fractions
// (0.05 = 5%), LevelBonus is a flat monthly amount.
type CommissionRates struct {
	Personal   float64   `mapstructure:"personal" json:"personal"`
	Direct     float64   `mapstructure:"direct" json:"direct"`
	Indirect   []float64 `mapstructure:"indirect" json:"indirect"`
	TeamBonus  float64   `mapstructure:"team_bonus" json:"team_bonus"`
	LevelBonus float64   `mapstructure:"level_bonus" json:"level_bonus"`
}

// IndirectAt returns the indirect rate for a referral sitting depth levels
// below the user. Depth 1 is the direct tier and uses the Direct rate, the
// indirect table starts at depth 2. Depths past the tabulated tiers earn
// zero rather than repeating the last tier.
func (r CommissionRates) IndirectAt(depth int) float64 {
	if depth < 2 {
		return 0
	}
	idx := depth - 2
	if idx >= len(r.Indirect) {
		return 0
	}
	return r.Indirect[idx]
}

// CommissionPlan maps each user level to its rate row
type CommissionPlan map[UserLevel]CommissionRates

// RatesFor returns the rates of the given level, a zero row when the level
// has no entry in the plan
func (p CommissionPlan) RatesFor(level UserLevel) CommissionRates {
	return p[level]
}

// LevelRequirement is the static threshold row a user must clear to reach
// a level. A zero field means the level has no such requirement.
type LevelRequirement struct {
	TeamSize        int       `mapstructure:"team_size" json:"team_size"`
	TeamSales       float64   `mapstructure:"team_sales" json:"team_sales"`
	DirectReferrals int       `mapstructure:"direct_referrals" json:"direct_referrals"`
	DirectOfLevel   UserLevel `mapstructure:"direct_of_level" json:"direct_of_level"`
}

// LevelRequirements keyed by target level
type LevelRequirements map[UserLevel]LevelRequirement

// UpgradeMetrics is the snapshot of a user's numbers fed into the
// progression comparison
type UpgradeMetrics struct {
	TeamSize         int
	TeamSales        float64
	DirectReferrals  int
	QualifiedDirects int
}

// ComputeUpgradeProgress compares the metrics against the next level's
// requirement row. Each requirement completes at 100 and the overall
// percentage is the mean, so it reaches 100 only when every row is met.
func ComputeUpgradeProgress(userID uint64, current UserLevel, metrics UpgradeMetrics, reqs LevelRequirements) UpgradeProgress {
	progress := UpgradeProgress{
		UserID:       userID,
		CurrentLevel: current,
		TargetLevel:  current,
	}

	target, ok := current.Next()
	if !ok {
		// already at the top of the progression
		progress.ProgressPercentage = 100
		return progress
	}
	progress.TargetLevel = target

	req := reqs[target]
	if req.TeamSize > 0 {
		progress.Requirements = append(progress.Requirements,
			requirementProgress("team_size", float64(req.TeamSize), float64(metrics.TeamSize)))
	}
	if req.TeamSales > 0 {
		progress.Requirements = append(progress.Requirements,
			requirementProgress("team_sales", req.TeamSales, metrics.TeamSales))
	}
	if req.DirectReferrals > 0 {
		current := float64(metrics.DirectReferrals)
		name := "direct_referrals"
		if req.DirectOfLevel != "" {
			current = float64(metrics.QualifiedDirects)
			name = "direct_referrals_" + req.DirectOfLevel.String()
		}
		progress.Requirements = append(progress.Requirements,
			requirementProgress(name, float64(req.DirectReferrals), current))
	}

	if len(progress.Requirements) == 0 {
		progress.ProgressPercentage = 100
		progress.Eligible = true
		return progress
	}

	total := 0.0
	eligible := true
	for _, r := range progress.Requirements {
		total += r.Percentage
		if !r.Met {
			eligible = false
		}
	}
	progress.ProgressPercentage = total / float64(len(progress.Requirements))
	progress.Eligible = eligible
	return progress
}

func requirementProgress(name string, required, current float64) RequirementProgress {
	pct := 100.0
	if required > 0 {
		pct = current / required * 100
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
	}
	return RequirementProgress{
		Name:       name,
		Required:   required,
		Current:    current,
		Percentage: pct,
		Met:        current >= required,
	}
}

// DefaultCommissionPlan is the rate matrix used when the configuration
// file does not override it
func DefaultCommissionPlan() CommissionPlan {
	tenTiers := func(first float64) []float64 {
		rates := make([]float64, 10)
		for i := range rates {
			rate := first - float64(i)*0.002
			if rate < 0 {
				rate = 0
			}
			rates[i] = rate
		}
		return rates
	}
	return CommissionPlan{
		UserLevel_Normal:   {Personal: 0.05},
		UserLevel_VIP:      {Personal: 0.08, Direct: 0.03, Indirect: tenTiers(0.01)},
		UserLevel_Star1:    {Personal: 0.10, Direct: 0.04, Indirect: tenTiers(0.012), TeamBonus: 0.01, LevelBonus: 100},
		UserLevel_Star2:    {Personal: 0.12, Direct: 0.05, Indirect: tenTiers(0.014), TeamBonus: 0.015, LevelBonus: 300},
		UserLevel_Star3:    {Personal: 0.14, Direct: 0.06, Indirect: tenTiers(0.016), TeamBonus: 0.02, LevelBonus: 800},
		UserLevel_Star4:    {Personal: 0.16, Direct: 0.07, Indirect: tenTiers(0.018), TeamBonus: 0.025, LevelBonus: 2000},
		UserLevel_Star5:    {Personal: 0.18, Direct: 0.08, Indirect: tenTiers(0.02), TeamBonus: 0.03, LevelBonus: 5000},
		UserLevel_Director: {Personal: 0.20, Direct: 0.10, Indirect: tenTiers(0.022), TeamBonus: 0.04, LevelBonus: 12000},
	}
}

// DefaultLevelRequirements is the progression table used when the
// configuration file does not override it
func DefaultLevelRequirements() LevelRequirements {
	return LevelRequirements{
		UserLevel_VIP:      {DirectReferrals: 3, TeamSales: 5000},
		UserLevel_Star1:    {TeamSize: 10, TeamSales: 30000, DirectReferrals: 3, DirectOfLevel: UserLevel_VIP},
		UserLevel_Star2:    {TeamSize: 30, TeamSales: 100000, DirectReferrals: 3, DirectOfLevel: UserLevel_Star1},
		UserLevel_Star3:    {TeamSize: 100, TeamSales: 300000, DirectReferrals: 3, DirectOfLevel: UserLevel_Star2},
		UserLevel_Star4:    {TeamSize: 300, TeamSales: 1000000, DirectReferrals: 3, DirectOfLevel: UserLevel_Star3},
		UserLevel_Star5:    {TeamSize: 1000, TeamSales: 3000000, DirectReferrals: 3, DirectOfLevel: UserLevel_Star4},
		UserLevel_Director: {TeamSize: 3000, TeamSales: 10000000, DirectReferrals: 2, DirectOfLevel: UserLevel_Star5},
	}
}
