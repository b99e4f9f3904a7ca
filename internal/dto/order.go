package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sari-pos/sari/internal/entity"
)

// OrderResponse represents an order header as exposed via transport layers.
type OrderResponse struct {
	ID         int64           `json:"id"`
	RefNo      string          `json:"ref_no"`
	Total      decimal.Decimal `json:"total"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderLineResponse represents one order line joined with its product name.
type OrderLineResponse struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// FromOrder maps a ledger entity onto its response shape.
func FromOrder(o *entity.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		RefNo:      o.RefNo,
		Total:      o.Total,
		PaidAmount: o.PaidAmount,
		Note:       o.Note,
		CreatedAt:  o.CreatedAt,
	}
}

// FromOrders maps an order slice onto response shapes.
func FromOrders(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, FromOrder(&orders[i]))
	}
	return out
}

// FromOrderLines maps order lines onto response shapes.
func FromOrderLines(lines []entity.OrderLine) []OrderLineResponse {
	out := make([]OrderLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLineResponse{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Subtotal:    l.Subtotal(),
		})
	}
	return out
}
