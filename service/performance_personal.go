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

// GetPersonalPerformance aggregates one seller's qualifying orders over the
// period window. The independent fetches run concurrently and the first
// failure cancels the rest and propagates, there is no partial result.
func (service *Service) GetPersonalPerformance(ctx context.Context, userID uint64, period model.Period) (*model.PersonalPerformance, error) {
	user, err := service.ValidatePerformanceData(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &model.PersonalPerformance{}
	key := service.cache.Key("personal", user.ID, period.String())
	tags := []string{service.cache.TagUser(user.ID), service.cache.TagPeriod(period.String())}

	err = service.cache.Remember("personal", key, service.cfg.Cache.PersonalTTL, tags, result, func() (interface{}, error) {
		return service.computePersonalPerformance(ctx, user.ID, period)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (service *Service) computePersonalPerformance(ctx context.Context, userID uint64, period model.Period) (*model.PersonalPerformance, error) {
	defer func(start time.Time) {
		monitor.CalculatorDuration.WithLabelValues("personal").Observe(time.Since(start).Seconds())
	}(time.Now())

	from, to := period.Window()
	now := service.now().UTC()
	mtdFrom, _ := model.MonthOf(now).Window()
	ytdFrom, _ := model.YearOf(now).Window()

	var (
		sales          *decimal.Big
		orderCount     int64
		newCustomers   int64
		repeatBuyers   int64
		distinctBuyers int64
		monthToDate    *decimal.Big
		yearToDate     *decimal.Big
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, orderCount, err = service.repo.SellerSales(gctx, userID, from, to)
		return err
	})
	g.Go(func() (err error) {
		newCustomers, err = service.repo.NewBuyerCount(gctx, userID, from, to)
		return err
	})
	g.Go(func() (err error) {
		repeatBuyers, err = service.repo.RepeatBuyerCount(gctx, userID, from, to)
		return err
	})
	g.Go(func() (err error) {
		distinctBuyers, err = service.repo.DistinctBuyerCount(gctx, userID, from, to)
		return err
	})
	g.Go(func() (err error) {
		monthToDate, _, err = service.repo.SellerSales(gctx, userID, mtdFrom, now)
		if err != nil {
			return err
		}
		yearToDate, _, err = service.repo.SellerSales(gctx, userID, ytdFrom, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	average := conv.NewDecimalWithPrecision()
	if orderCount > 0 {
		average.Quo(sales, new(decimal.Big).SetUint64(uint64(orderCount)))
	}
	repeatRate := 0.0
	if distinctBuyers > 0 {
		repeatRate = float64(repeatBuyers) / float64(distinctBuyers)
	}

	return &model.PersonalPerformance{
		UserID:            userID,
		Period:            period.String(),
		SalesAmount:       model.JSONDecimal{Decimal: postgres.Decimal{V: sales}},
		OrderCount:        orderCount,
		NewCustomers:      newCustomers,
		RepeatRate:        repeatRate,
		AverageOrderValue: model.JSONDecimal{Decimal: postgres.Decimal{V: average}},
		MonthToDate:       model.JSONDecimal{Decimal: postgres.Decimal{V: monthToDate}},
		YearToDate:        model.JSONDecimal{Decimal: postgres.Decimal{V: yearToDate}},
	}, nil
}
