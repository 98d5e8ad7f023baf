package service

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

func TestGetReferralPerformance(t *testing.T) {
	period, _ := model.ParsePeriod("2024-01")
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	sumQuery := regexp.QuoteMeta(`coalesce(sum(total_amount), 0) as total, count(*) as cnt`)

	Convey("Given a vip with one direct and one second level referral", t, func() {
		svc, mock := setupService()
		mock.MatchExpectationsInOrder(false)

		expectUser(mock, 7, model.UserLevel_VIP, model.UserStatusActive, "/7/")

		mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" WHERE team_path LIKE $1 AND id <> $2`)).
			WithArgs("/7/%", uint64(7), "deleted").
			WillReturnRows(memberRows(
				[]driver.Value{8, "normal", "/7/8/"},
				[]driver.Value{9, "normal", "/7/8/9/"},
			))
		// direct set revenue
		mock.ExpectQuery(sumQuery).
			WithArgs(uint64(8), "paid", "shipped", "delivered", from, to).
			WillReturnRows(salesRows("1000", 4))
		// indirect remainder, fetched once for the totals and once for the
		// depth 2 commission tier
		mock.ExpectQuery(sumQuery).
			WithArgs(uint64(9), "paid", "shipped", "delivered", from, to).
			WillReturnRows(salesRows("500", 2))
		mock.ExpectQuery(sumQuery).
			WithArgs(uint64(9), "paid", "shipped", "delivered", from, to).
			WillReturnRows(salesRows("500", 2))

		Convey("it should price each depth at its own rate", func() {
			result, err := svc.GetReferralPerformance(context.Background(), 7, period)

			So(err, ShouldBeNil)
			So(result.DirectCount, ShouldEqual, 1)
			So(result.IndirectCount, ShouldEqual, 1)
			So(conv.ToFloat64(result.DirectRevenue.V), ShouldAlmostEqual, 1000, 0.01)
			So(conv.ToFloat64(result.IndirectRevenue.V), ShouldAlmostEqual, 500, 0.01)
			// 3% of 1000 direct, 1% of 500 at depth 2
			So(conv.ToFloat64(result.DirectCommission.V), ShouldAlmostEqual, 30, 0.01)
			So(conv.ToFloat64(result.IndirectCommission.V), ShouldAlmostEqual, 5, 0.01)
			So(conv.ToFloat64(result.TotalCommission.V), ShouldAlmostEqual, 35, 0.01)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given a user without referrals", t, func() {
		svc, mock := setupService()
		mock.MatchExpectationsInOrder(false)

		expectUser(mock, 5, model.UserLevel_Normal, model.UserStatusActive, "/5/")
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" WHERE team_path LIKE $1 AND id <> $2`)).
			WithArgs("/5/%", uint64(5), "deleted").
			WillReturnRows(memberRows())

		Convey("it should report zero counts and zero commission", func() {
			result, err := svc.GetReferralPerformance(context.Background(), 5, period)

			So(err, ShouldBeNil)
			So(result.DirectCount, ShouldEqual, 0)
			So(result.IndirectCount, ShouldEqual, 0)
			So(conv.ToFloat64(result.TotalCommission.V), ShouldAlmostEqual, 0, 0.0001)
		})
	})
}
