package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sari-pos/sari/internal/repository/settings"
	"github.com/sari-pos/sari/internal/testutil"
)

func TestGetMissing(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := settings.NewRepository(conns)

	_, err := repo.Get(context.Background(), "tableRows")
	require.ErrorIs(t, err, settings.ErrNotFound)
}

func TestUpsert(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := settings.NewRepository(conns)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "tableRows", "10"))

	value, err := repo.Get(ctx, "tableRows")
	require.NoError(t, err)
	require.Equal(t, "10", value)

	// Overwriting keeps a single row per key.
	require.NoError(t, repo.Upsert(ctx, "tableRows", "25"))

	value, err = repo.Get(ctx, "tableRows")
	require.NoError(t, err)
	require.Equal(t, "25", value)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUpsertIdempotent(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := settings.NewRepository(conns)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "lowStockThreshold", "5"))
	require.NoError(t, repo.Upsert(ctx, "lowStockThreshold", "5"))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "5", all[0].Value)
}

func TestAllSorted(t *testing.T) {
	conns := testutil.OpenDB(t)
	repo := settings.NewRepository(conns)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "tableRows", "10"))
	require.NoError(t, repo.Upsert(ctx, "lowStockThreshold", "5"))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "lowStockThreshold", all[0].Key)
	require.Equal(t, "tableRows", all[1].Key)
}
