package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/refno"
	catalogrepo "github.com/sari-pos/sari/internal/repository/catalog"
	"github.com/sari-pos/sari/internal/service/catalog"
	"github.com/sari-pos/sari/internal/testutil"
	"github.com/sari-pos/sari/pkg/errorbank"
)

var fixedTime = time.UnixMilli(1743758400000)

func newService(t *testing.T) (*catalog.Service, *catalogrepo.Repository) {
	t.Helper()

	conns := testutil.OpenDB(t)
	repo := catalogrepo.NewRepository(conns)
	svc := catalog.NewService(catalog.Params{
		Repository: repo,
		Refs:       refno.NewWithClock(func() time.Time { return fixedTime }),
		Config: config.Config{
			POS: config.POS{DefaultPageSize: 10, DefaultLowStock: 5, NonBarcodedLimit: 12},
		},
		Logger: zap.NewNop(),
	})
	return svc, repo
}

func TestCreateBarcoded(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, catalog.CreateProductInput{
		Code:         "8991234567890",
		Name:         "Instant Noodles",
		Stock:        24,
		Price:        decimal.RequireFromString("3500"),
		IsBarcoded:   true,
		DisplayColor: "#FF0000",
	})
	require.NoError(t, err)
	require.Equal(t, "8991234567890", product.Code)
	// Display colors belong to quick-add tiles only.
	require.Empty(t, product.DisplayColor)
}

func TestCreateBarcodedRequiresCode(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), catalog.CreateProductInput{
		Name:       "Instant Noodles",
		Stock:      24,
		Price:      decimal.RequireFromString("3500"),
		IsBarcoded: true,
	})
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestCreateSynthesizesCode(t *testing.T) {
	svc, _ := newService(t)

	product, err := svc.Create(context.Background(), catalog.CreateProductInput{
		Name:         "Rice per kg",
		Stock:        100,
		Price:        decimal.RequireFromString("12000"),
		DisplayColor: "#D0E8C5",
	})
	require.NoError(t, err)
	require.Equal(t, "RIC-1743758400000", product.Code)
	require.Equal(t, "#D0E8C5", product.DisplayColor)
}

func TestCreateDuplicateCodeConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	in := catalog.CreateProductInput{
		Code:       "899123",
		Name:       "Instant Noodles",
		Stock:      24,
		Price:      decimal.RequireFromString("3500"),
		IsBarcoded: true,
	}
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	in.Name = "Different Name"
	_, err = svc.Create(ctx, in)
	require.True(t, errorbank.IsKind(err, errorbank.KindConflict))

	// The catalog is unchanged by the rejected insert.
	products, page, err := svc.List(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "Instant Noodles", products[0].Name)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, catalog.CreateProductInput{Stock: 1, Price: decimal.NewFromInt(1)})
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = svc.Create(ctx, catalog.CreateProductInput{Name: "X", Stock: -1, Price: decimal.NewFromInt(1)})
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))

	_, err = svc.Create(ctx, catalog.CreateProductInput{Name: "X", Stock: 1, Price: decimal.NewFromInt(-1)})
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestGetMissing(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), 42)
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))

	_, err = svc.GetByCode(context.Background(), "no-such-code")
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestListPageMetadata(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := svc.Create(ctx, catalog.CreateProductInput{
			Code:       "code-" + name,
			Name:       name,
			Stock:      1,
			Price:      decimal.NewFromInt(100),
			IsBarcoded: true,
		})
		require.NoError(t, err)
	}

	products, page, err := svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, 2, page.Number)
	require.Equal(t, 5, page.Total)
	require.Equal(t, 3, page.TotalPages)

	_, _, err = svc.List(ctx, "", 1, 0)
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(context.Background(), 42, catalog.UpdateProductInput{
		Name:  "Ghost",
		Stock: 1,
		Price: decimal.NewFromInt(1),
	})
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestReconcile(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, catalog.CreateProductInput{
		Code:       "899123",
		Name:       "Instant Noodles",
		Stock:      3,
		Price:      decimal.RequireFromString("3500"),
		IsBarcoded: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reconcile(ctx, repo.Writer(), product.ID, 3))

	err = svc.Reconcile(ctx, repo.Writer(), product.ID, 1)
	require.True(t, errorbank.IsKind(err, errorbank.KindUnprocessableEntity))

	err = svc.Reconcile(ctx, repo.Writer(), 9999, 1)
	require.True(t, errorbank.IsKind(err, errorbank.KindNotFound))

	err = svc.Reconcile(ctx, repo.Writer(), product.ID, 0)
	require.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
}
