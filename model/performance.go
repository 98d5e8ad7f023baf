package model

// Derived reporting views. None of these are persisted, they are computed
// from users and orders on demand and only live in the performance cache.

// PersonalPerformance aggregates one seller's activity over a period window
type PersonalPerformance struct {
	UserID            uint64      `json:"user_id"`
	Period            string      `json:"period"`
	SalesAmount       JSONDecimal `json:"sales_amount"`
	OrderCount        int64       `json:"order_count"`
	NewCustomers      int64       `json:"new_customers"`
	RepeatRate        float64     `json:"repeat_rate"`
	AverageOrderValue JSONDecimal `json:"average_order_value"`
	MonthToDate       JSONDecimal `json:"month_to_date"`
	YearToDate        JSONDecimal `json:"year_to_date"`
}

// LevelBucket is one slice of the team level distribution
type LevelBucket struct {
	Level   UserLevel   `gorm:"column:user_level" json:"user_level"`
	Members int64       `gorm:"column:members" json:"members"`
	Sales   JSONDecimal `gorm:"column:sales" json:"sales"`
}

// TeamPerformance aggregates a user's whole downstream team. Sales totals
// include the subject's own qualifying orders, so team sales never drop
// below personal sales. The member list and member count exclude the subject.
type TeamPerformance struct {
	UserID        uint64        `json:"user_id"`
	Period        string        `json:"period"`
	TeamSales     JSONDecimal   `json:"team_sales"`
	OrderCount    int64         `json:"order_count"`
	MemberCount   int           `json:"member_count"`
	ActiveMembers int64         `json:"active_members"`
	ActiveRate    float64       `json:"active_rate"`
	Productivity  JSONDecimal   `json:"productivity"`
	Distribution  []LevelBucket `json:"level_distribution"`
}

// ReferralPerformance splits referral driven revenue into the direct set
// (parent_id = user) and the indirect remainder of the team tree
type ReferralPerformance struct {
	UserID             uint64      `json:"user_id"`
	Period             string      `json:"period"`
	DirectCount        int64       `json:"direct_count"`
	IndirectCount      int64       `json:"indirect_count"`
	DirectRevenue      JSONDecimal `json:"direct_revenue"`
	IndirectRevenue    JSONDecimal `json:"indirect_revenue"`
	DirectCommission   JSONDecimal `json:"direct_commission"`
	IndirectCommission JSONDecimal `json:"indirect_commission"`
	TotalCommission    JSONDecimal `json:"total_commission"`
}

// LeaderboardType godoc
type LeaderboardType string

const (
	LeaderboardType_Personal LeaderboardType = "personal"
	LeaderboardType_Team     LeaderboardType = "team"
	LeaderboardType_Referral LeaderboardType = "referral"
)

func (t LeaderboardType) IsValid() bool {
	switch t {
	case LeaderboardType_Personal, LeaderboardType_Team, LeaderboardType_Referral:
		return true
	default:
		return false
	}
}

func (t LeaderboardType) String() string {
	return string(t)
}

// LeaderboardEntry is one ranked row. Delta is the position change against
// the previous period, 0 for a new entrant.
type LeaderboardEntry struct {
	UserID   uint64      `json:"user_id"`
	Nickname string      `json:"nickname"`
	Level    UserLevel   `json:"user_level"`
	Value    JSONDecimal `json:"value"`
	Rank     int         `json:"rank"`
	Delta    int         `json:"delta"`
}

// Leaderboard godoc
type Leaderboard struct {
	Type    LeaderboardType    `json:"type"`
	Period  string             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

// RequirementProgress is the completion state of a single upgrade requirement
type RequirementProgress struct {
	Name       string  `json:"name"`
	Required   float64 `json:"required"`
	Current    float64 `json:"current"`
	Percentage float64 `json:"percentage"`
	Met        bool    `json:"met"`
}

// UpgradeProgress compares a user against the next level's requirement table.
// It never mutates the user's level, actual upgrades happen elsewhere.
type UpgradeProgress struct {
	UserID             uint64                `json:"user_id"`
	CurrentLevel       UserLevel             `json:"current_level"`
	TargetLevel        UserLevel             `json:"target_level"`
	Requirements       []RequirementProgress `json:"requirements"`
	ProgressPercentage float64               `json:"progress_percentage"`
	Eligible           bool                  `json:"eligible"`
}

// MonthlyCommission is one point of the stored commissionable history
type MonthlyCommission struct {
	Month  string      `gorm:"column:month" json:"month"`
	Amount JSONDecimal `gorm:"column:amount" json:"amount"`
}

// CommissionForecast projects the next period's commission from a linear
// trend over the monthly history blended with the current rate table
type CommissionForecast struct {
	UserID     uint64              `json:"user_id"`
	Period     string              `json:"period"`
	Projected  JSONDecimal         `json:"projected_commission"`
	TrendSlope float64             `json:"trend_slope"`
	Confidence float64             `json:"confidence"`
	History    []MonthlyCommission `json:"history"`
}
