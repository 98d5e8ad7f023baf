package service

import (
	"context"
	"time"

	"github.com/ericlagergren/decimal/sql/postgres"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
)

// GetCommissionForecast projects the next month's personal commission from a
// linear trend over the user's monthly commissionable sales. The projection
// prices sales at the user's current rate row, so a recent level change is
// reflected immediately even though the history predates it.
func (service *Service) GetCommissionForecast(ctx context.Context, userID uint64) (*model.CommissionForecast, error) {
	user, err := service.ValidatePerformanceData(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := service.now().UTC()
	period := model.MonthOf(now)

	result := &model.CommissionForecast{}
	key := service.cache.Key("forecast", user.ID, period.String())
	tags := []string{service.cache.TagUser(user.ID), service.cache.TagPeriod(period.String())}

	err = service.cache.Remember("forecast", key, service.cfg.Cache.ForecastTTL, tags, result, func() (interface{}, error) {
		return service.computeCommissionForecast(ctx, user, now, period)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (service *Service) computeCommissionForecast(ctx context.Context, user *model.User, now time.Time, period model.Period) (*model.CommissionForecast, error) {
	defer func(start time.Time) {
		monitor.CalculatorDuration.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	}(time.Now())

	months := service.cfg.Forecast.HistoryMonths
	if months < 2 {
		months = 2
	}
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months, 0)

	series, err := service.repo.MonthlySalesSeries(ctx, user.ID, since)
	if err != nil {
		return nil, err
	}

	rates := service.cfg.Commission.RatesFor(user.Level)
	history := make([]model.MonthlyCommission, 0, len(series))
	points := make([]float64, 0, len(series))
	for _, row := range series {
		commission := mulRate(row.Amount.V, rates.Personal)
		history = append(history, model.MonthlyCommission{
			Month:  row.Month,
			Amount: model.JSONDecimal{Decimal: postgres.Decimal{V: commission}},
		})
		points = append(points, conv.ToFloat64(commission))
	}

	slope, intercept, r2 := linearTrend(points)

	// project the point one step past the series end
	projectedValue := intercept + slope*float64(len(points))
	if projectedValue < 0 {
		projectedValue = 0
	}
	projectedValue += rates.LevelBonus

	projected := conv.NewDecimalWithPrecision().SetFloat64(projectedValue)
	projected.Quantize(2)

	return &model.CommissionForecast{
		UserID:     user.ID,
		Period:     period.String(),
		Projected:  model.JSONDecimal{Decimal: postgres.Decimal{V: projected}},
		TrendSlope: slope,
		Confidence: trendConfidence(r2, len(points)),
		History:    history,
	}, nil
}

// linearTrend fits y = intercept + slope*x over x = 0..n-1 by ordinary least
// squares and reports the coefficient of determination of the fit. Fewer than
// two points give a flat line with zero confidence.
func linearTrend(points []float64) (slope, intercept, r2 float64) {
	n := float64(len(points))
	if len(points) == 0 {
		return 0, 0, 0
	}
	if len(points) == 1 {
		return 0, points[0], 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range points {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssTot, ssRes float64
	for i, y := range points {
		fit := intercept + slope*float64(i)
		ssTot += (y - meanY) * (y - meanY)
		ssRes += (y - fit) * (y - fit)
	}
	if ssTot == 0 {
		// constant history fits itself perfectly
		return slope, intercept, 1
	}
	r2 = 1 - ssRes/ssTot
	if r2 < 0 {
		r2 = 0
	}
	return slope, intercept, r2
}

// trendConfidence dampens the fit quality when the history is too short to
// trust the trend
func trendConfidence(r2 float64, points int) float64 {
	if points < 2 {
		return 0
	}
	if points < 4 {
		r2 *= 0.5
	}
	if r2 > 1 {
		r2 = 1
	}
	return r2
}
