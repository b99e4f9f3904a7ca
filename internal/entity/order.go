package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order is a completed sale header. Total is fixed at submission time;
// only PaidAmount and Note may be amended afterwards.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID         int64           `bun:",pk,autoincrement"`
	RefNo      string          `bun:"ref_no"`
	Total      decimal.Decimal `bun:"total"`
	PaidAmount decimal.Decimal `bun:"paid_amount"`
	Note       string          `bun:"note,nullzero"`
	CreatedAt  time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// OrderLine records one product sold on an order. Price is the unit price
// captured at sale time, independent of later catalog price changes. Lines
// are immutable once written.
type OrderLine struct {
	bun.BaseModel `bun:"table:order_items,alias:line"`

	ID        int64           `bun:",pk,autoincrement"`
	OrderID   int64           `bun:"order_id"`
	ProductID int64           `bun:"product_id"`
	Quantity  int             `bun:"quantity"`
	Price     decimal.Decimal `bun:"price"`

	// Joined from products for display listings; never written.
	ProductName string `bun:"product_name,scanonly"`
}

// Subtotal is quantity times the captured unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
