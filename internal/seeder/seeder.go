package seeder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sari-pos/sari/internal/database"
	"github.com/sari-pos/sari/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Products seeds example catalog rows if they are missing.
func (s *Seeder) Products(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Product{
		{Code: "P001", Name: "Product 1", Stock: 50, Price: decimal.NewFromInt(100), IsBarcoded: true, CreatedAt: now, UpdatedAt: now},
		{Code: "P002", Name: "Product 2", Stock: 30, Price: decimal.NewFromInt(200), IsBarcoded: true, CreatedAt: now, UpdatedAt: now},
		{Code: "P003", Name: "Product 3", Stock: 20, Price: decimal.NewFromInt(150), DisplayColor: "#D0E8C5", CreatedAt: now, UpdatedAt: now},
		{Code: "P004", Name: "Product 4", Stock: 10, Price: decimal.NewFromInt(250), IsBarcoded: true, CreatedAt: now, UpdatedAt: now},
	}

	for _, sample := range samples {
		product := sample
		_, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (product_code) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	s.logger.Info("seeded products", zap.Int("count", len(samples)))
	return nil
}

// Orders seeds a couple of example sales against the seeded products. Skipped
// when the ledger already has rows, so reseeding never duplicates history.
func (s *Seeder) Orders(ctx context.Context) error {
	exists, err := s.db.NewSelect().Model((*entity.Order)(nil)).Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("orders already present; skipping seed")
		return nil
	}

	products := make(map[string]entity.Product)
	var rows []entity.Product
	if err := s.db.NewSelect().Model(&rows).
		Where("product_code IN (?)", bun.In([]string{"P001", "P002"})).
		Scan(ctx); err != nil {
		return err
	}
	for _, p := range rows {
		products[p.Code] = p
	}
	if len(products) < 2 {
		s.logger.Warn("seed products missing; run product seeding first")
		return nil
	}

	now := time.Now().UTC()
	samples := []struct {
		order entity.Order
		lines []entity.OrderLine
	}{
		{
			order: entity.Order{
				RefNo:      "040425-36000100",
				Total:      decimal.NewFromInt(400),
				PaidAmount: decimal.NewFromInt(500),
				CreatedAt:  now,
			},
			lines: []entity.OrderLine{
				{ProductID: products["P001"].ID, Quantity: 2, Price: decimal.NewFromInt(100)},
				{ProductID: products["P002"].ID, Quantity: 1, Price: decimal.NewFromInt(200)},
			},
		},
		{
			order: entity.Order{
				RefNo:      "040425-36000200",
				Total:      decimal.NewFromInt(200),
				PaidAmount: decimal.NewFromInt(200),
				Note:       "sample sale",
				CreatedAt:  now,
			},
			lines: []entity.OrderLine{
				{ProductID: products["P002"].ID, Quantity: 1, Price: decimal.NewFromInt(200)},
			},
		},
	}

	for _, sample := range samples {
		order := sample.order
		if _, err := s.db.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		lines := sample.lines
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if _, err := s.db.NewInsert().Model(&lines).Exec(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	return nil
}
