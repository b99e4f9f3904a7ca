package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sari-pos/sari/internal/entity"
)

// ProductResponse represents a product as exposed via transport layers.
type ProductResponse struct {
	ID           int64           `json:"id"`
	Code         string          `json:"product_code"`
	Name         string          `json:"product_name"`
	Stock        int             `json:"stock"`
	Price        decimal.Decimal `json:"price"`
	IsBarcoded   bool            `json:"is_barcoded"`
	DisplayColor string          `json:"display_color,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FromProduct maps a catalog entity onto its response shape.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Stock:        p.Stock,
		Price:        p.Price,
		IsBarcoded:   p.IsBarcoded,
		DisplayColor: p.DisplayColor,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromProducts maps a product slice onto response shapes.
func FromProducts(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, FromProduct(&products[i]))
	}
	return out
}
