package model

import (
	"errors"
	"time"

	"github.com/ericlagergren/decimal/sql/postgres"
)

var (
	ErrOrder_StatusSame    = errors.New("status the same with previous")
	ErrOrder_StatusInvalid = errors.New("invalid order status")
)

type OrderStatus string

const (
	OrderStatus_Pending   OrderStatus = "pending"
	OrderStatus_Paid      OrderStatus = "paid"
	OrderStatus_Shipped   OrderStatus = "shipped"
	OrderStatus_Delivered OrderStatus = "delivered"
	OrderStatus_Cancelled OrderStatus = "cancelled"
	OrderStatus_Refunded  OrderStatus = "refunded"
)

// QualifyingOrderStatuses are the statuses counted by every performance aggregate
var QualifyingOrderStatuses = []OrderStatus{
	OrderStatus_Paid,
	OrderStatus_Shipped,
	OrderStatus_Delivered,
}

var orderStatusesTransition = map[OrderStatus]map[OrderStatus]bool{}

func init() {
	orderStatusesTransition[OrderStatus_Pending] = map[OrderStatus]bool{
		OrderStatus_Paid:      true,
		OrderStatus_Cancelled: true,
	}
	orderStatusesTransition[OrderStatus_Paid] = map[OrderStatus]bool{
		OrderStatus_Shipped:   true,
		OrderStatus_Cancelled: true,
		OrderStatus_Refunded:  true,
	}
	orderStatusesTransition[OrderStatus_Shipped] = map[OrderStatus]bool{
		OrderStatus_Delivered: true,
		OrderStatus_Refunded:  true,
	}
	// delivered orders are immutable for performance purposes
	orderStatusesTransition[OrderStatus_Delivered] = map[OrderStatus]bool{}
	orderStatusesTransition[OrderStatus_Cancelled] = map[OrderStatus]bool{}
	orderStatusesTransition[OrderStatus_Refunded] = map[OrderStatus]bool{}
}

func (os OrderStatus) IsValid() bool {
	switch os {
	case OrderStatus_Pending,
		OrderStatus_Paid,
		OrderStatus_Shipped,
		OrderStatus_Delivered,
		OrderStatus_Cancelled,
		OrderStatus_Refunded:
		return true
	default:
		return false
	}
}

// IsQualifying reports whether orders in this status count towards performance
func (os OrderStatus) IsQualifying() bool {
	for _, status := range QualifyingOrderStatuses {
		if os == status {
			return true
		}
	}
	return false
}

func (os OrderStatus) IsValidChange(ns OrderStatus) error {
	if os == ns {
		return ErrOrder_StatusSame
	}
	if !orderStatusesTransition[os][ns] {
		return ErrOrder_StatusInvalid
	}
	return nil
}

func (os OrderStatus) String() string {
	return string(os)
}

// Order structure
type Order struct {
	ID          uint64            `sql:"type:bigint" gorm:"primary_key" json:"id"`
	BuyerID     uint64            `gorm:"column:buyer_id" json:"buyer_id"`
	SellerID    uint64            `gorm:"column:seller_id" json:"seller_id"`
	TotalAmount *postgres.Decimal `gorm:"column:total_amount" sql:"type:decimal(36,18)" json:"total_amount"`
	Status      OrderStatus       `sql:"not null;type:order_status_t" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SetStatus moves the order through the status machine
func (order *Order) SetStatus(ns OrderStatus) error {
	if err := order.Status.IsValidChange(ns); err != nil {
		return err
	}
	order.Status = ns
	return nil
}
