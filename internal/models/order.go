// internal/models/order.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a kiosk order as reported by the backend. The front-end never mutates it.
type Order struct {
	ID            int64           `json:"id"`
	UUID          string          `json:"uuid,omitempty"`
	Customer      string          `json:"customer"`
	TableNumber   int             `json:"table_number"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaymentMethod string          `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// StatusClass groups statuses the way the order table colours them:
// NEW, COMPLETED, and everything else.
func (s OrderStatus) StatusClass() string {
	switch s {
	case OrderStatusNew:
		return "new"
	case OrderStatusCompleted:
		return "completed"
	default:
		return "other"
	}
}

// DisplayUUID returns the order UUID or "-" when the backend did not send one.
func (o Order) DisplayUUID() string {
	if o.UUID == "" {
		return "-"
	}
	return o.UUID
}
