package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Product is a sellable catalog entry. Barcoded products carry an externally
// scanned code; the rest get a synthesized code and an optional display color
// for the quick-add surface.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID           int64           `bun:",pk,autoincrement"`
	Code         string          `bun:"product_code"`
	Name         string          `bun:"product_name"`
	Stock        int             `bun:"stock"`
	Price        decimal.Decimal `bun:"price"`
	IsBarcoded   bool            `bun:"is_barcoded"`
	DisplayColor string          `bun:"display_color,nullzero"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `bun:"updated_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
