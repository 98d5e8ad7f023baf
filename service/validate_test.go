package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

func TestValidatePerformanceData(t *testing.T) {
	Convey("Given an active user", t, func() {
		svc, mock := setupService()
		expectUser(mock, 7, model.UserLevel_VIP, model.UserStatusActive, "/7/")

		Convey("it should return the user", func() {
			user, err := svc.ValidatePerformanceData(context.Background(), 7)
			So(err, ShouldBeNil)
			So(user.ID, ShouldEqual, 7)
			So(user.Level, ShouldEqual, model.UserLevel_VIP)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})

	Convey("Given an unknown user id", t, func() {
		svc, mock := setupService()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
			WithArgs(uint64(99)).
			WillReturnRows(sqlmock.NewRows(userColumns))

		Convey("it should return the not found error", func() {
			user, err := svc.ValidatePerformanceData(context.Background(), 99)
			So(user, ShouldBeNil)
			So(err, ShouldEqual, model.ErrUserNotFound)
		})
	})

	Convey("Given a blocked user", t, func() {
		svc, mock := setupService()
		expectUser(mock, 7, model.UserLevel_Normal, model.UserStatusBlocked, "/7/")

		Convey("it should refuse to compute anything", func() {
			user, err := svc.ValidatePerformanceData(context.Background(), 7)
			So(user, ShouldBeNil)
			So(err, ShouldEqual, model.ErrUserNotActive)
		})
	})
}

func TestInvalidateUser(t *testing.T) {
	Convey("Invalidating a user with a degraded cache is a safe no-op", t, func() {
		svc, _ := setupService()
		So(func() { svc.InvalidateUser(7) }, ShouldNotPanic)
	})
}
