package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

func TestLinearTrend(t *testing.T) {
	Convey("Given a strictly increasing series", t, func() {
		slope, intercept, r2 := linearTrend([]float64{1, 2, 3})

		So(slope, ShouldAlmostEqual, 1, 0.0001)
		So(intercept, ShouldAlmostEqual, 1, 0.0001)
		So(r2, ShouldAlmostEqual, 1, 0.0001)
	})

	Convey("Given a flat series", t, func() {
		slope, intercept, r2 := linearTrend([]float64{5, 5, 5, 5})

		So(slope, ShouldAlmostEqual, 0, 0.0001)
		So(intercept, ShouldAlmostEqual, 5, 0.0001)
		So(r2, ShouldAlmostEqual, 1, 0.0001)
	})

	Convey("Given a noisy series", t, func() {
		slope, _, r2 := linearTrend([]float64{10, 2, 9, 1, 8})

		So(slope, ShouldAlmostEqual, -0.5, 0.0001)
		So(r2, ShouldBeBetween, 0, 0.5)
	})

	Convey("Given too few points", t, func() {
		slope, intercept, r2 := linearTrend(nil)
		So(slope, ShouldAlmostEqual, 0, 0.0001)
		So(intercept, ShouldAlmostEqual, 0, 0.0001)
		So(r2, ShouldAlmostEqual, 0, 0.0001)

		slope, intercept, r2 = linearTrend([]float64{4})
		So(slope, ShouldAlmostEqual, 0, 0.0001)
		So(intercept, ShouldAlmostEqual, 4, 0.0001)
		So(r2, ShouldAlmostEqual, 0, 0.0001)
	})
}

func TestGetCommissionForecast(t *testing.T) {
	since := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a vip seller with three months of growing sales", t, func() {
		svc, mock := setupService()

		expectUser(mock, 5, model.UserLevel_VIP, model.UserStatusActive, "/5/")
		mock.ExpectQuery(regexp.QuoteMeta(`to_char(created_at, 'YYYY-MM')`)).
			WithArgs(uint64(5), "paid", "shipped", "delivered", since).
			WillReturnRows(sqlmock.NewRows([]string{"month", "amount"}).
				AddRow("2023-12", "10000").
				AddRow("2024-01", "12000").
				AddRow("2024-02", "14000"))

		Convey("it should extrapolate the commission trend one month out", func() {
			result, err := svc.GetCommissionForecast(context.Background(), 5)

			So(err, ShouldBeNil)
			So(result.UserID, ShouldEqual, 5)
			So(result.Period, ShouldEqual, "2024-03")
			So(result.History, ShouldHaveLength, 3)
			// vip personal rate is 8%, sales grow by 2000 a month
			So(conv.ToFloat64(result.History[0].Amount.V), ShouldAlmostEqual, 800, 0.01)
			So(result.TrendSlope, ShouldAlmostEqual, 160, 0.01)
			So(conv.ToFloat64(result.Projected.V), ShouldAlmostEqual, 1280, 0.01)
			// a perfect fit over a short history only earns half confidence
			So(result.Confidence, ShouldAlmostEqual, 0.5, 0.001)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given a seller without any sales history", t, func() {
		svc, mock := setupService()

		expectUser(mock, 5, model.UserLevel_Normal, model.UserStatusActive, "/5/")
		mock.ExpectQuery(regexp.QuoteMeta(`to_char(created_at, 'YYYY-MM')`)).
			WithArgs(uint64(5), "paid", "shipped", "delivered", since).
			WillReturnRows(sqlmock.NewRows([]string{"month", "amount"}))

		Convey("it should project zero with zero confidence", func() {
			result, err := svc.GetCommissionForecast(context.Background(), 5)

			So(err, ShouldBeNil)
			So(result.History, ShouldHaveLength, 0)
			So(conv.ToFloat64(result.Projected.V), ShouldAlmostEqual, 0, 0.0001)
			So(result.Confidence, ShouldAlmostEqual, 0, 0.0001)
		})
	})
}
