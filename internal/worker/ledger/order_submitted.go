package ledger

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/messaging"
	catalogsvc "github.com/sari-pos/sari/internal/service/catalog"
	ledgersvc "github.com/sari-pos/sari/internal/service/ledger"
	settingssvc "github.com/sari-pos/sari/internal/service/settings"
	"github.com/sari-pos/sari/internal/worker"
)

var workerTracer = otel.Tracer("github.com/sari-pos/sari/worker/ledger")

// Module registers ledger-related worker handlers.
var Module = fx.Module("worker_ledger",
	fx.Provide(
		fx.Annotate(
			NewOrderSubmittedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderSubmittedHandler sets up a worker handler that inspects submitted
// orders and raises a low-stock alert for any ordered product at or under
// the configured threshold.
func NewOrderSubmittedHandler(
	logger *zap.Logger,
	cfg config.Config,
	catalog *catalogsvc.Service,
	settings *settingssvc.Service,
) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.submitted", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ledgersvc.OrderSubmittedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order submitted", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		threshold, err := settings.LowStockThreshold(ctx)
		if err != nil {
			return err
		}

		for _, line := range event.Lines {
			product, err := catalog.Get(ctx, line.ProductID)
			if err != nil {
				logger.Warn("submitted product missing from catalog",
					zap.Int64("product_id", line.ProductID),
					zap.Error(err),
				)
				continue
			}
			if product.Stock <= threshold {
				logger.Warn("low stock after sale",
					zap.Int64("product_id", product.ID),
					zap.String("product_code", product.Code),
					zap.Int("stock", product.Stock),
					zap.Int("threshold", threshold),
					zap.String("ref_no", event.RefNo),
				)
			}
		}

		logger.Info("order submitted event processed",
			zap.Int64("id", event.ID),
			zap.String("ref_no", event.RefNo),
			zap.Int("lines", len(event.Lines)),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
