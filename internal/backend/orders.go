package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/models"
)

const ordersPath = "/order/get-order"

// rawOrder mirrors the wire shape; pointers distinguish missing fields from zero values.
type rawOrder struct {
	ID            *int64           `json:"id"`
	UUID          string           `json:"uuid"`
	Customer      string           `json:"customer"`
	TableNumber   int              `json:"table_number"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
	PaymentMethod string           `json:"payment_method"`
	Status        string           `json:"status"`
	CreatedAt     *string          `json:"createdAt"`
}

// Orders fetches every order visible to the token holder.
func (c *Client) Orders(ctx context.Context, token string) ([]models.Order, error) {
	var raw []rawOrder
	if err := c.do(ctx, request{method: http.MethodGet, path: ordersPath, token: token}, &raw); err != nil {
		return nil, err
	}
	return parseOrders(raw)
}

func parseOrders(raw []rawOrder) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(raw))
	for i, r := range raw {
		order, err := r.toOrder()
		if err != nil {
			err.Field = fmt.Sprintf("orders[%d].%s", i, err.Field)
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r rawOrder) toOrder() (models.Order, *SchemaError) {
	if r.ID == nil || *r.ID <= 0 {
		return models.Order{}, &SchemaError{Path: ordersPath, Field: "id", Reason: "must be a positive integer"}
	}
	if r.TotalPrice == nil {
		return models.Order{}, &SchemaError{Path: ordersPath, Field: "total_price", Reason: "is required"}
	}
	if r.TotalPrice.IsNegative() {
		return models.Order{}, &SchemaError{Path: ordersPath, Field: "total_price", Reason: "must not be negative"}
	}
	if r.CreatedAt == nil || strings.TrimSpace(*r.CreatedAt) == "" {
		return models.Order{}, &SchemaError{Path: ordersPath, Field: "createdAt", Reason: "is required"}
	}
	createdAt, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*r.CreatedAt))
	if err != nil {
		return models.Order{}, &SchemaError{Path: ordersPath, Field: "createdAt", Reason: "must be an RFC 3339 timestamp", Err: err}
	}

	return models.Order{
		ID:            *r.ID,
		UUID:          strings.TrimSpace(r.UUID),
		Customer:      r.Customer,
		TableNumber:   r.TableNumber,
		TotalPrice:    *r.TotalPrice,
		PaymentMethod: r.PaymentMethod,
		Status:        models.OrderStatus(strings.ToUpper(strings.TrimSpace(r.Status))),
		CreatedAt:     createdAt,
	}, nil
}
