package service

import (
	"context"
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/ericlagergren/decimal/sql/postgres"
	"golang.org/x/sync/errgroup"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
)

// GetAllTeamMembers resolves the user's whole downstream team through a
// single prefix match on the materialized team path. The subject is not
// part of their own team set.
func (service *Service) GetAllTeamMembers(ctx context.Context, userID uint64) ([]model.TeamMember, error) {
	user, err := service.ValidatePerformanceData(ctx, userID)
	if err != nil {
		return nil, err
	}
	return service.repo.GetTeamMembers(ctx, user.TeamPath)
}

// GetTeamPerformance aggregates the subject's subtree over the period.
// Sales and order totals include the subject's own qualifying orders, so
// team sales never drop below personal sales; member count, active rate
// and the level distribution cover the downstream members only.
func (service *Service) GetTeamPerformance(ctx context.Context, userID uint64, period model.Period) (*model.TeamPerformance, error) {
	user, err := service.ValidatePerformanceData(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &model.TeamPerformance{}
	key := service.cache.Key("team", user.ID, period.String())
	tags := []string{service.cache.TagUser(user.ID), service.cache.TagPeriod(period.String())}

	err = service.cache.Remember("team", key, service.cfg.Cache.TeamTTL, tags, result, func() (interface{}, error) {
		return service.computeTeamPerformance(ctx, user, period)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (service *Service) computeTeamPerformance(ctx context.Context, user *model.User, period model.Period) (*model.TeamPerformance, error) {
	defer func(start time.Time) {
		monitor.CalculatorDuration.WithLabelValues("team").Observe(time.Since(start).Seconds())
	}(time.Now())

	members, err := service.repo.GetTeamMembers(ctx, user.TeamPath)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]uint64, 0, len(members))
	for _, member := range members {
		memberIDs = append(memberIDs, member.UserID)
	}

	from, to := period.Window()

	var (
		teamSales     *decimal.Big
		orderCount    int64
		activeMembers int64
		distribution  []model.LevelBucket
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		// the subtree query includes the subject's own sales
		teamSales, orderCount, err = service.repo.SubtreeSales(gctx, user.TeamPath, from, to)
		return err
	})
	g.Go(func() (err error) {
		activeMembers, err = service.repo.ActiveSellerCount(gctx, memberIDs, from, to)
		return err
	})
	g.Go(func() (err error) {
		distribution, err = service.repo.LevelDistribution(gctx, user.TeamPath, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	activeRate := 0.0
	productivity := conv.NewDecimalWithPrecision()
	if len(members) > 0 {
		activeRate = float64(activeMembers) / float64(len(members))
		productivity.Quo(teamSales, new(decimal.Big).SetUint64(uint64(len(members))))
	}

	return &model.TeamPerformance{
		UserID:        user.ID,
		Period:        period.String(),
		TeamSales:     model.JSONDecimal{Decimal: postgres.Decimal{V: teamSales}},
		OrderCount:    orderCount,
		MemberCount:   len(members),
		ActiveMembers: activeMembers,
		ActiveRate:    activeRate,
		Productivity:  model.JSONDecimal{Decimal: postgres.Decimal{V: productivity}},
		Distribution:  distribution,
	}, nil
}
