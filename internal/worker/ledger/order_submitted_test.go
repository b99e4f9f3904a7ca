package ledger_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/messaging"
	"github.com/sari-pos/sari/internal/refno"
	catalogrepo "github.com/sari-pos/sari/internal/repository/catalog"
	settingsrepo "github.com/sari-pos/sari/internal/repository/settings"
	catalogsvc "github.com/sari-pos/sari/internal/service/catalog"
	ledgersvc "github.com/sari-pos/sari/internal/service/ledger"
	settingssvc "github.com/sari-pos/sari/internal/service/settings"
	"github.com/sari-pos/sari/internal/testutil"
	workerledger "github.com/sari-pos/sari/internal/worker/ledger"
)

func TestOrderSubmittedLowStockAlert(t *testing.T) {
	conns := testutil.OpenDB(t)
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	cfg := config.Config{
		POS: config.POS{DefaultPageSize: 10, DefaultLowStock: 5, NonBarcodedLimit: 12},
	}
	cfg.Messaging.Kafka.Topic = "pos.orders.submitted"

	catalog := catalogsvc.NewService(catalogsvc.Params{
		Repository: catalogrepo.NewRepository(conns),
		Refs:       refno.New(),
		Config:     cfg,
		Logger:     logger,
	})
	settings := settingssvc.NewService(settingssvc.Params{
		Repository: settingsrepo.NewRepository(conns),
		Config:     cfg,
		Logger:     logger,
	})

	ctx := context.Background()
	low, err := catalog.Create(ctx, catalogsvc.CreateProductInput{
		Code:       "899123",
		Name:       "Instant Noodles",
		Stock:      2,
		Price:      decimal.RequireFromString("3500"),
		IsBarcoded: true,
	})
	require.NoError(t, err)

	plenty, err := catalog.Create(ctx, catalogsvc.CreateProductInput{
		Code:       "899456",
		Name:       "Arabica Coffee",
		Stock:      50,
		Price:      decimal.RequireFromString("25000"),
		IsBarcoded: true,
	})
	require.NoError(t, err)

	registration := workerledger.NewOrderSubmittedHandler(logger, cfg, catalog, settings)
	require.Equal(t, "pos.orders.submitted", registration.Topic)

	event := ledgersvc.OrderSubmittedEvent{
		ID:    1,
		RefNo: "040425-37815250",
		Total: "7000",
		Lines: []ledgersvc.OrderSubmittedLine{
			{ProductID: low.ID, Quantity: 2},
			{ProductID: plenty.ID, Quantity: 1},
		},
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = registration.Handler(ctx, messaging.Message{
		Topic: registration.Topic,
		Value: payload,
	})
	require.NoError(t, err)

	alerts := logs.FilterMessage("low stock after sale").All()
	require.Len(t, alerts, 1)
	require.Equal(t, low.ID, alerts[0].ContextMap()["product_id"])
}

func TestOrderSubmittedBadPayload(t *testing.T) {
	conns := testutil.OpenDB(t)
	logger := zap.NewNop()

	cfg := config.Config{
		POS: config.POS{DefaultPageSize: 10, DefaultLowStock: 5, NonBarcodedLimit: 12},
	}
	cfg.Messaging.Kafka.Topic = "pos.orders.submitted"

	catalog := catalogsvc.NewService(catalogsvc.Params{
		Repository: catalogrepo.NewRepository(conns),
		Refs:       refno.New(),
		Config:     cfg,
		Logger:     logger,
	})
	settings := settingssvc.NewService(settingssvc.Params{
		Repository: settingsrepo.NewRepository(conns),
		Config:     cfg,
		Logger:     logger,
	})

	registration := workerledger.NewOrderSubmittedHandler(logger, cfg, catalog, settings)

	err := registration.Handler(context.Background(), messaging.Message{
		Topic: registration.Topic,
		Value: []byte("not json"),
	})
	require.Error(t, err)
}
