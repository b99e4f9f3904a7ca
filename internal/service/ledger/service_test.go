package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/entity"
	"github.com/sari-pos/sari/internal/refno"
	catalogrepo "github.com/sari-pos/sari/internal/repository/catalog"
	ledgerrepo "github.com/sari-pos/sari/internal/repository/ledger"
	catalogsvc "github.com/sari-pos/sari/internal/service/catalog"
	"github.com/sari-pos/sari/internal/service/ledger"
	"github.com/sari-pos/sari/internal/testutil"
	"github.com/sari-pos/sari/pkg/errorbank"
)

type fixture struct {
	ledger  *ledger.Service
	catalog *catalogsvc.Service
	repo    *ledgerrepo.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conns := testutil.OpenDB(t)
	clock := func() time.Time {
		return time.Date(2025, 4, 4, 10, 30, 15, 250_000_000, time.UTC)
	}
	refs := refno.NewWithClock(clock)
	cfg := config.Config{
		POS: config.POS{DefaultPageSize: 10, DefaultLowStock: 5, NonBarcodedLimit: 12},
	}
	logger := zap.NewNop()

	catRepo := catalogrepo.NewRepository(conns)
	catSvc := catalogsvc.NewService(catalogsvc.Params{
		Repository: catRepo,
		Refs:       refs,
		Config:     cfg,
		Logger:     logger,
	})

	ledRepo := ledgerrepo.NewRepository(conns)
	ledSvc := ledger.NewService(ledger.Params{
		Repository: ledRepo,
		Catalog:    catSvc,
		Refs:       refs,
		Config:     cfg,
		Logger:     logger,
	})

	return &fixture{ledger: ledSvc, catalog: catSvc, repo: ledRepo}
}

func (f *fixture) seedProduct(t *testing.T, code, name string, stock int, price string) *entity.Product {
	t.Helper()
	product, err := f.catalog.Create(context.Background(), catalogsvc.CreateProductInput{
		Code:       code,
		Name:       name,
		Stock:      stock,
		Price:      decimal.RequireFromString(price),
		IsBarcoded: true,
	})
	require.NoError(t, err)
	return product
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noodles := f.seedProduct(t, "899123", "Instant Noodles", 10, "100")
	coffee := f.seedProduct(t, "899456", "Arabica Coffee", 5, "200")

	order, err := f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: noodles.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("100")},
		{ProductID: coffee.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("200")},
	}, decimal.RequireFromString("500"))
	require.NoError(t, err)

	require.Equal(t, "040425-37815250", order.RefNo)
	require.True(t, order.Total.Equal(decimal.RequireFromString("400")))
	require.True(t, order.PaidAmount.Equal(decimal.RequireFromString("500")))

	lines, err := f.ledger.Lines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "Instant Noodles", lines[0].ProductName)

	// Stock reconciled in the same transaction.
	got, err := f.catalog.Get(ctx, noodles.ID)
	require.NoError(t, err)
	require.Equal(t, 8, got.Stock)

	got, err = f.catalog.Get(ctx, coffee.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.Stock)
}

func TestSubmitEmpty(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Submit(context.Background(), nil, decimal.Zero)
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestSubmitRejectsBadLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: 1, Quantity: 0, UnitPrice: decimal.NewFromInt(100)},
	}, decimal.Zero)
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)},
	}, decimal.Zero)
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
	}, decimal.NewFromInt(-1))
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestSubmitInsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noodles := f.seedProduct(t, "899123", "Instant Noodles", 10, "100")
	coffee := f.seedProduct(t, "899456", "Arabica Coffee", 2, "200")

	_, err := f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: noodles.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("100")},
		{ProductID: coffee.ID, Quantity: 3, UnitPrice: decimal.RequireFromString("200")},
	}, decimal.Zero)
	require.True(t, errorbank.IsKind(err, errorbank.KindUnprocessableEntity))

	// Nothing committed: no order, both stocks untouched.
	_, page, listErr := f.ledger.List(ctx, "", 1, 10)
	require.NoError(t, listErr)
	require.Zero(t, page.Total)

	got, getErr := f.catalog.Get(ctx, noodles.ID)
	require.NoError(t, getErr)
	require.Equal(t, 10, got.Stock)

	got, getErr = f.catalog.Get(ctx, coffee.ID)
	require.NoError(t, getErr)
	require.Equal(t, 2, got.Stock)
}

func TestSubmitUnknownProductRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noodles := f.seedProduct(t, "899123", "Instant Noodles", 10, "100")

	_, err := f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: noodles.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("100")},
		{ProductID: 9999, Quantity: 1, UnitPrice: decimal.RequireFromString("50")},
	}, decimal.Zero)
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))

	_, page, listErr := f.ledger.List(ctx, "", 1, 10)
	require.NoError(t, listErr)
	require.Zero(t, page.Total)

	got, getErr := f.catalog.Get(ctx, noodles.ID)
	require.NoError(t, getErr)
	require.Equal(t, 10, got.Stock)
}

func TestListFiltersByRefNo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noodles := f.seedProduct(t, "899123", "Instant Noodles", 10, "100")
	_, err := f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: noodles.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("100")},
	}, decimal.Zero)
	require.NoError(t, err)

	orders, page, err := f.ledger.List(ctx, "040425", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Len(t, orders, 1)

	_, page, err = f.ledger.List(ctx, "990101", 1, 10)
	require.NoError(t, err)
	require.Zero(t, page.Total)

	_, _, err = f.ledger.List(ctx, "", 1, 0)
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestAmendKeepsTotalAndLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noodles := f.seedProduct(t, "899123", "Instant Noodles", 10, "100")
	order, err := f.ledger.Submit(ctx, []ledger.SubmitLine{
		{ProductID: noodles.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("100")},
	}, decimal.RequireFromString("200"))
	require.NoError(t, err)

	amended, err := f.ledger.Amend(ctx, order.ID, decimal.RequireFromString("250"), "tip included")
	require.NoError(t, err)
	require.True(t, amended.PaidAmount.Equal(decimal.RequireFromString("250")))
	require.Equal(t, "tip included", amended.Note)
	require.True(t, amended.Total.Equal(order.Total))

	lines, err := f.ledger.Lines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Quantity)
}

func TestAmendMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Amend(context.Background(), 42, decimal.Zero, "")
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))

	_, err = f.ledger.Amend(context.Background(), 42, decimal.NewFromInt(-1), "")
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestLinesMissingOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Lines(context.Background(), 42)
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}
