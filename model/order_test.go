package model_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

func TestOrderStatusTransitions(t *testing.T) {
	Convey("Given the order status machine", t, func() {
		Convey("the happy path moves pending through delivered", func() {
			order := &model.Order{Status: model.OrderStatus_Pending}
			So(order.SetStatus(model.OrderStatus_Paid), ShouldBeNil)
			So(order.SetStatus(model.OrderStatus_Shipped), ShouldBeNil)
			So(order.SetStatus(model.OrderStatus_Delivered), ShouldBeNil)
		})

		Convey("delivered orders are terminal", func() {
			order := &model.Order{Status: model.OrderStatus_Delivered}
			So(order.SetStatus(model.OrderStatus_Refunded), ShouldResemble, model.ErrOrder_StatusInvalid)
		})

		Convey("setting the same status is rejected", func() {
			order := &model.Order{Status: model.OrderStatus_Paid}
			So(order.SetStatus(model.OrderStatus_Paid), ShouldResemble, model.ErrOrder_StatusSame)
		})

		Convey("a pending order cannot ship before payment", func() {
			order := &model.Order{Status: model.OrderStatus_Pending}
			So(order.SetStatus(model.OrderStatus_Shipped), ShouldResemble, model.ErrOrder_StatusInvalid)
		})
	})
}

func TestQualifyingStatuses(t *testing.T) {
	Convey("Only paid, shipped and delivered orders count towards performance", t, func() {
		So(model.OrderStatus_Paid.IsQualifying(), ShouldBeTrue)
		So(model.OrderStatus_Shipped.IsQualifying(), ShouldBeTrue)
		So(model.OrderStatus_Delivered.IsQualifying(), ShouldBeTrue)
		So(model.OrderStatus_Pending.IsQualifying(), ShouldBeFalse)
		So(model.OrderStatus_Cancelled.IsQualifying(), ShouldBeFalse)
		So(model.OrderStatus_Refunded.IsQualifying(), ShouldBeFalse)
	})
}
