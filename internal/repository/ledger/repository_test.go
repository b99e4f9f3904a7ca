package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sari-pos/sari/internal/entity"
	catalogrepo "github.com/sari-pos/sari/internal/repository/catalog"
	"github.com/sari-pos/sari/internal/repository/ledger"
	"github.com/sari-pos/sari/internal/testutil"
)

func seedProduct(t *testing.T, catalog *catalogrepo.Repository, code, name string) int64 {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		Code:       code,
		Name:       name,
		Stock:      100,
		Price:      decimal.RequireFromString("1000"),
		IsBarcoded: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, catalog.Insert(context.Background(), catalog.Writer(), p))
	return p.ID
}

func TestInsertOrderWithLines(t *testing.T) {
	conns := testutil.OpenDB(t)
	catalog := catalogrepo.NewRepository(conns)
	repo := ledger.NewRepository(conns)
	ctx := context.Background()

	productID := seedProduct(t, catalog, "899123", "Instant Noodles")

	order := &entity.Order{
		RefNo:      "040425-37815250",
		Total:      decimal.RequireFromString("7000"),
		PaidAmount: decimal.RequireFromString("10000"),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.InsertOrder(ctx, repo.Writer(), order))
	require.NotZero(t, order.ID)

	lines := []entity.OrderLine{
		{OrderID: order.ID, ProductID: productID, Quantity: 2, Price: decimal.RequireFromString("3500")},
	}
	require.NoError(t, repo.InsertLines(ctx, repo.Writer(), lines))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "040425-37815250", got.RefNo)
	require.True(t, got.Total.Equal(decimal.RequireFromString("7000")))

	fetched, err := repo.Lines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	require.Equal(t, 2, fetched[0].Quantity)
	require.Equal(t, "Instant Noodles", fetched[0].ProductName)
	require.True(t, fetched[0].Subtotal().Equal(decimal.RequireFromString("7000")))
}

func TestInsertLinesEmpty(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := ledger.NewRepository(conns)

	require.Error(t, repo.InsertLines(context.Background(), repo.Writer(), nil))
}

func TestGetMissing(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := ledger.NewRepository(conns)

	_, err := repo.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestListByRefNo(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := ledger.NewRepository(conns)
	ctx := context.Background()

	for _, ref := range []string{"040425-00000001", "040425-00000002", "050425-00000001"} {
		order := &entity.Order{RefNo: ref, CreatedAt: time.Now().UTC()}
		require.NoError(t, repo.InsertOrder(ctx, repo.Writer(), order))
	}

	orders, total, err := repo.List(ctx, "040425", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, "040425-00000002", orders[0].RefNo)

	orders, total, err = repo.List(ctx, "", 2, 0)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, orders, 2)
}

func TestAmend(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := ledger.NewRepository(conns)
	ctx := context.Background()

	order := &entity.Order{
		RefNo:      "040425-00000001",
		Total:      decimal.RequireFromString("5000"),
		PaidAmount: decimal.RequireFromString("5000"),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.InsertOrder(ctx, repo.Writer(), order))

	amended := &entity.Order{
		ID:         order.ID,
		PaidAmount: decimal.RequireFromString("6000"),
		Note:       "customer paid extra",
	}
	require.NoError(t, repo.Amend(ctx, repo.Writer(), amended))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, got.PaidAmount.Equal(decimal.RequireFromString("6000")))
	require.Equal(t, "customer paid extra", got.Note)
	// The total is frozen at submission.
	require.True(t, got.Total.Equal(decimal.RequireFromString("5000")))

	missing := &entity.Order{ID: 9999, PaidAmount: decimal.Zero}
	require.ErrorIs(t, repo.Amend(ctx, repo.Writer(), missing), ledger.ErrNotFound)
}
