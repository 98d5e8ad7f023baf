package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

func TestGetPersonalPerformance(t *testing.T) {
	period, _ := model.ParsePeriod("2024-01")
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mtdFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ytdFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sumQuery := regexp.QuoteMeta(`coalesce(sum(total_amount), 0) as total, count(*) as cnt`)

	Convey("Given a seller with two paid orders of 100 and 150 in the period", t, func() {
		svc, mock := setupService()
		// the calculator fans out over a worker group, arrival order varies
		mock.MatchExpectationsInOrder(false)

		expectUser(mock, 7, model.UserLevel_VIP, model.UserStatusActive, "/7/")

		mock.ExpectQuery(sumQuery).
			WithArgs(uint64(7), "paid", "shipped", "delivered", from, to).
			WillReturnRows(salesRows("250", 2))
		mock.ExpectQuery(regexp.QuoteMeta(`NOT IN`)).
			WithArgs(
				uint64(7), "paid", "shipped", "delivered", from, to,
				uint64(7), "paid", "shipped", "delivered", from,
			).
			WillReturnRows(countRows(1))
		mock.ExpectQuery("repeat_buyers").
			WithArgs(uint64(7), "paid", "shipped", "delivered", from, to).
			WillReturnRows(countRows(1))
		mock.ExpectQuery(regexp.QuoteMeta(`count(distinct buyer_id)`)).
			WithArgs(uint64(7), "paid", "shipped", "delivered", from, to).
			WillReturnRows(countRows(2))
		mock.ExpectQuery(sumQuery).
			WithArgs(uint64(7), "paid", "shipped", "delivered", mtdFrom, testNow).
			WillReturnRows(salesRows("400", 3))
		mock.ExpectQuery(sumQuery).
			WithArgs(uint64(7), "paid", "shipped", "delivered", ytdFrom, testNow).
			WillReturnRows(salesRows("1200", 9))

		Convey("it should aggregate sales, averages and customer counts", func() {
			result, err := svc.GetPersonalPerformance(context.Background(), 7, period)

			So(err, ShouldBeNil)
			So(result.UserID, ShouldEqual, 7)
			So(result.Period, ShouldEqual, "2024-01")
			So(conv.FmtDecimal(&result.SalesAmount.Decimal), ShouldEqual, "250")
			So(result.OrderCount, ShouldEqual, 2)
			So(conv.FmtDecimal(&result.AverageOrderValue.Decimal), ShouldEqual, "125")
			So(result.NewCustomers, ShouldEqual, 1)
			So(result.RepeatRate, ShouldAlmostEqual, 0.5, 0.0001)
			So(conv.FmtDecimal(&result.MonthToDate.Decimal), ShouldEqual, "400")
			So(conv.FmtDecimal(&result.YearToDate.Decimal), ShouldEqual, "1200")
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given a failing order query", t, func() {
		svc, mock := setupService()
		mock.MatchExpectationsInOrder(false)

		expectUser(mock, 7, model.UserLevel_VIP, model.UserStatusActive, "/7/")
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(sumQuery).WillReturnError(dbErr)

		Convey("it should propagate the failure instead of a partial result", func() {
			result, err := svc.GetPersonalPerformance(context.Background(), 7, period)

			So(result, ShouldBeNil)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a caller that already gave up", t, func() {
		svc, _ := setupService()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("the cancellation reaches the database layer and nothing runs", func() {
			result, err := svc.GetPersonalPerformance(ctx, 7, period)

			So(result, ShouldBeNil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
