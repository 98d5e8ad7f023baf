package service

import (
	"context"
	"sync"
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/ericlagergren/decimal/sql/postgres"
	"golang.org/x/sync/errgroup"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
)

// GetReferralPerformance splits the subject's team into the direct set
// (depth 1 below them) and the indirect remainder, attributes qualifying
// revenue to each set and prices it at the subject's commission rates.
// Indirect depths past the tabulated tiers earn a zero rate, so their
// revenue still shows up in the totals but never in the commission.
func (service *Service) GetReferralPerformance(ctx context.Context, userID uint64, period model.Period) (*model.ReferralPerformance, error) {
	user, err := service.ValidatePerformanceData(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &model.ReferralPerformance{}
	key := service.cache.Key("referral", user.ID, period.String())
	tags := []string{service.cache.TagUser(user.ID), service.cache.TagPeriod(period.String())}

	err = service.cache.Remember("referral", key, service.cfg.Cache.ReferralTTL, tags, result, func() (interface{}, error) {
		return service.computeReferralPerformance(ctx, user, period)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (service *Service) computeReferralPerformance(ctx context.Context, user *model.User, period model.Period) (*model.ReferralPerformance, error) {
	defer func(start time.Time) {
		monitor.CalculatorDuration.WithLabelValues("referral").Observe(time.Since(start).Seconds())
	}(time.Now())

	members, err := service.repo.GetTeamMembers(ctx, user.TeamPath)
	if err != nil {
		return nil, err
	}

	// bucket the team by depth below the subject; depth 1 is the direct set
	byDepth := map[int][]uint64{}
	for _, member := range members {
		depth := member.Path.DepthBelow(user.TeamPath)
		byDepth[depth] = append(byDepth[depth], member.UserID)
	}

	directIDs := byDepth[1]
	indirectIDs := make([]uint64, 0, len(members)-len(directIDs))
	for depth, ids := range byDepth {
		if depth > 1 {
			indirectIDs = append(indirectIDs, ids...)
		}
	}

	from, to := period.Window()
	rates := service.cfg.Commission.RatesFor(user.Level)

	var (
		directRevenue   *decimal.Big
		indirectRevenue *decimal.Big
		mu              sync.Mutex
		depthRevenue    = map[int]*decimal.Big{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		directRevenue, _, err = service.repo.SalesSummary(gctx, directIDs, from, to)
		return err
	})
	g.Go(func() (err error) {
		indirectRevenue, _, err = service.repo.SalesSummary(gctx, indirectIDs, from, to)
		return err
	})
	// per-depth revenue is only needed for the depths that carry a rate
	for depth := range byDepth {
		depth := depth
		if rates.IndirectAt(depth) == 0 {
			continue
		}
		ids := byDepth[depth]
		g.Go(func() error {
			revenue, _, err := service.repo.SalesSummary(gctx, ids, from, to)
			if err != nil {
				return err
			}
			mu.Lock()
			depthRevenue[depth] = revenue
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	directCommission := mulRate(directRevenue, rates.Direct)
	indirectCommission := conv.NewDecimalWithPrecision()
	for depth, revenue := range depthRevenue {
		indirectCommission.Add(indirectCommission, mulRate(revenue, rates.IndirectAt(depth)))
	}
	totalCommission := conv.NewDecimalWithPrecision().Add(directCommission, indirectCommission)

	return &model.ReferralPerformance{
		UserID:             user.ID,
		Period:             period.String(),
		DirectCount:        int64(len(directIDs)),
		IndirectCount:      int64(len(indirectIDs)),
		DirectRevenue:      model.JSONDecimal{Decimal: postgres.Decimal{V: directRevenue}},
		IndirectRevenue:    model.JSONDecimal{Decimal: postgres.Decimal{V: indirectRevenue}},
		DirectCommission:   model.JSONDecimal{Decimal: postgres.Decimal{V: directCommission}},
		IndirectCommission: model.JSONDecimal{Decimal: postgres.Decimal{V: indirectCommission}},
		TotalCommission:    model.JSONDecimal{Decimal: postgres.Decimal{V: totalCommission}},
	}, nil
}

// mulRate prices an amount at a fractional rate, truncated to the money scale
func mulRate(amount *decimal.Big, rate float64) *decimal.Big {
	if amount == nil || rate == 0 {
		return conv.NewDecimalWithPrecision()
	}
	factor := conv.NewDecimalWithPrecision().SetFloat64(rate)
	product := conv.NewDecimalWithPrecision().Mul(amount, factor)
	return conv.CloneToPrecision(product)
}
