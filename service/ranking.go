package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ericlagergren/decimal/sql/postgres"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
)

// GetPerformanceLeaderboard builds the ranked board for the requested type
// and period, then diffs positions against the previous period's board for
// the rank delta. Both boards go through the cache, so a warmed previous
// period costs nothing extra. A user absent from the previous board is a
// new entrant and carries a delta of 0.
func (service *Service) GetPerformanceLeaderboard(ctx context.Context, typ model.LeaderboardType, period model.Period, limit int) (*model.Leaderboard, error) {
	if !typ.IsValid() {
		return nil, model.ErrLeaderboardTypeInvalid
	}
	if limit <= 0 {
		limit = service.cfg.Leaderboard.DefaultLimit
	}
	if max := service.cfg.Leaderboard.MaxLimit; max > 0 && limit > max {
		limit = max
	}

	current, err := service.leaderboardForPeriod(ctx, typ, period, limit)
	if err != nil {
		return nil, err
	}
	previous, err := service.leaderboardForPeriod(ctx, typ, period.Prev(), limit)
	if err != nil {
		return nil, err
	}

	prevRanks := make(map[uint64]int, len(previous))
	for _, entry := range previous {
		prevRanks[entry.UserID] = entry.Rank
	}
	for i := range current {
		if prevRank, ok := prevRanks[current[i].UserID]; ok {
			current[i].Delta = prevRank - current[i].Rank
		}
	}

	return &model.Leaderboard{
		Type:    typ,
		Period:  period.String(),
		Entries: current,
	}, nil
}

func (service *Service) leaderboardForPeriod(ctx context.Context, typ model.LeaderboardType, period model.Period, limit int) ([]model.LeaderboardEntry, error) {
	entries := make([]model.LeaderboardEntry, 0)
	key := service.cache.Key("leaderboard:"+typ.String(), 0, fmt.Sprintf("%s:%d", period, limit))
	tags := []string{service.cache.TagPeriod(period.String())}

	err := service.cache.Remember("leaderboard", key, service.cfg.Cache.LeaderboardTTL, tags, &entries, func() (interface{}, error) {
		return service.buildLeaderboard(ctx, typ, period, limit)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (service *Service) buildLeaderboard(ctx context.Context, typ model.LeaderboardType, period model.Period, limit int) ([]model.LeaderboardEntry, error) {
	defer func(start time.Time) {
		monitor.LeaderboardBuildDuration.WithLabelValues(typ.String()).Observe(time.Since(start).Seconds())
	}(time.Now())

	from, to := period.Window()

	var entries []model.LeaderboardEntry
	var err error
	switch typ {
	case model.LeaderboardType_Personal:
		entries, err = service.buildPersonalBoard(ctx, from, to, limit)
	case model.LeaderboardType_Team:
		entries, err = service.buildTeamBoard(ctx, from, to, limit)
	case model.LeaderboardType_Referral:
		entries, err = service.buildReferralBoard(ctx, from, to, limit)
	default:
		return nil, model.ErrLeaderboardTypeInvalid
	}
	if err != nil {
		return nil, err
	}

	sortEntriesDesc(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// buildPersonalBoard is a single grouped aggregation sorted and limited in SQL
func (service *Service) buildPersonalBoard(ctx context.Context, from, to time.Time, limit int) ([]model.LeaderboardEntry, error) {
	totals, err := service.repo.TopSellers(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(totals))
	for _, total := range totals {
		if total.Total == nil || total.Total.V == nil || total.Total.V.Sign() <= 0 {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID:   total.UserID,
			Nickname: total.Nickname,
			Level:    total.Level,
			Value:    model.JSONDecimal{Decimal: *total.Total},
		})
	}
	return entries, nil
}

// buildTeamBoard walks every team leader's subtree individually; the
// per-leader subtree query is cheap thanks to the path prefix index but
// the board cost still grows with the number of leaders, which is why the
// result is cached and warmed by a cron
func (service *Service) buildTeamBoard(ctx context.Context, from, to time.Time, limit int) ([]model.LeaderboardEntry, error) {
	leaders, err := service.repo.GetTeamLeaders(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(leaders))
	for _, leader := range leaders {
		teamSales, _, err := service.repo.SubtreeSales(ctx, leader.TeamPath, from, to)
		if err != nil {
			return nil, err
		}
		if teamSales == nil || teamSales.Sign() <= 0 {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID:   leader.ID,
			Nickname: leader.Nickname,
			Level:    leader.Level,
			Value:    model.JSONDecimal{Decimal: postgres.Decimal{V: teamSales}},
		})
	}
	return entries, nil
}

// buildReferralBoard takes the candidates with the highest stored direct
// counts and values them by their downstream qualifying sales
func (service *Service) buildReferralBoard(ctx context.Context, from, to time.Time, limit int) ([]model.LeaderboardEntry, error) {
	referrers, err := service.repo.GetTopReferrers(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(referrers))
	for _, referrer := range referrers {
		downstream, err := service.repo.DownstreamSales(ctx, referrer.TeamPath, from, to)
		if err != nil {
			return nil, err
		}
		if downstream == nil || downstream.Sign() <= 0 {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID:   referrer.ID,
			Nickname: referrer.Nickname,
			Level:    referrer.Level,
			Value:    model.JSONDecimal{Decimal: postgres.Decimal{V: downstream}},
		})
	}
	return entries, nil
}

func sortEntriesDesc(entries []model.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		vi, vj := entries[i].Value.V, entries[j].Value.V
		cmp := vi.Cmp(vj)
		if cmp != 0 {
			return cmp > 0
		}
		return entries[i].UserID < entries[j].UserID
	})
}
