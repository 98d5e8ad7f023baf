package service

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

func memberRows(members ...[]driver.Value) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_level", "team_path"})
	for _, m := range members {
		rows.AddRow(m...)
	}
	return rows
}

func TestGetTeamPerformance(t *testing.T) {
	period, _ := model.ParsePeriod("2024-02")
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a leader with two downstream members", t, func() {
		svc, mock := setupService()
		mock.MatchExpectationsInOrder(false)

		expectUser(mock, 7, model.UserLevel_Star1, model.UserStatusActive, "/7/")

		mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" WHERE team_path LIKE $1 AND id <> $2`)).
			WithArgs("/7/%", uint64(7), "deleted").
			WillReturnRows(memberRows(
				[]driver.Value{8, "vip", "/7/8/"},
				[]driver.Value{9, "normal", "/7/9/"},
			))
		// the subtree total includes the leader's own orders
		mock.ExpectQuery(regexp.QuoteMeta(`coalesce(sum(total_amount), 0) as total, count(*) as cnt`)).
			WithArgs("/7/%", "paid", "shipped", "delivered", from, to).
			WillReturnRows(salesRows("300", 3))
		mock.ExpectQuery(regexp.QuoteMeta(`count(distinct seller_id)`)).
			WithArgs(uint64(8), uint64(9), "paid", "shipped", "delivered", from, to).
			WillReturnRows(countRows(2))
		mock.ExpectQuery("left join orders o").
			WithArgs("paid", "shipped", "delivered", from, to, "/7/%", uint64(7), "deleted").
			WillReturnRows(sqlmock.NewRows([]string{"user_level", "members", "sales"}).
				AddRow("normal", 1, "120").
				AddRow("vip", 1, "180"))

		Convey("it should aggregate the subtree and the member stats", func() {
			result, err := svc.GetTeamPerformance(context.Background(), 7, period)

			So(err, ShouldBeNil)
			So(result.UserID, ShouldEqual, 7)
			So(result.Period, ShouldEqual, "2024-02")
			So(conv.FmtDecimal(&result.TeamSales.Decimal), ShouldEqual, "300")
			So(result.OrderCount, ShouldEqual, 3)
			So(result.MemberCount, ShouldEqual, 2)
			So(result.ActiveMembers, ShouldEqual, 2)
			So(result.ActiveRate, ShouldAlmostEqual, 1.0, 0.0001)
			So(conv.FmtDecimal(&result.Productivity.Decimal), ShouldEqual, "150")
			So(result.Distribution, ShouldHaveLength, 2)
			So(result.Distribution[0].Level, ShouldEqual, model.UserLevel_Normal)
			So(result.Distribution[0].Members, ShouldEqual, 1)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given a user with no downstream members", t, func() {
		svc, mock := setupService()
		mock.MatchExpectationsInOrder(false)

		expectUser(mock, 5, model.UserLevel_Normal, model.UserStatusActive, "/5/")

		mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" WHERE team_path LIKE $1 AND id <> $2`)).
			WithArgs("/5/%", uint64(5), "deleted").
			WillReturnRows(memberRows())
		mock.ExpectQuery(regexp.QuoteMeta(`coalesce(sum(total_amount), 0) as total, count(*) as cnt`)).
			WithArgs("/5/%", "paid", "shipped", "delivered", from, to).
			WillReturnRows(salesRows("50", 1))
		mock.ExpectQuery("left join orders o").
			WithArgs("paid", "shipped", "delivered", from, to, "/5/%", uint64(5), "deleted").
			WillReturnRows(sqlmock.NewRows([]string{"user_level", "members", "sales"}))

		Convey("it should still report the user's own subtree sales", func() {
			result, err := svc.GetTeamPerformance(context.Background(), 5, period)

			So(err, ShouldBeNil)
			So(conv.FmtDecimal(&result.TeamSales.Decimal), ShouldEqual, "50")
			So(result.MemberCount, ShouldEqual, 0)
			So(result.ActiveRate, ShouldAlmostEqual, 0.0, 0.0001)
			So(conv.FmtDecimal(&result.Productivity.Decimal), ShouldEqual, "0")
			So(result.Distribution, ShouldHaveLength, 0)
		})
	})
}
