package settings

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/entity"
	repo "github.com/sari-pos/sari/internal/repository/settings"
	"github.com/sari-pos/sari/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/sari-pos/sari/service/settings")

// Service serves runtime-tunable values from the settings table. Values are
// stored as strings; typed readers parse them and fall back to configured
// defaults when a row is absent or unparseable.
type Service struct {
	repo     *repo.Repository
	defaults config.POS
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		defaults: p.Config.POS,
		logger:   p.Logger,
	}
}

// Snapshot is the current tunable state handed to callers per request, so
// every operation in a request observes one consistent pair of values.
type Snapshot struct {
	PageSize          int
	LowStockThreshold int
}

// Snapshot reads both tunables in one go.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	pageSize, err := s.PageSize(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	threshold, err := s.LowStockThreshold(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{PageSize: pageSize, LowStockThreshold: threshold}, nil
}

// PageSize returns the stored table page size, or the configured default
// when no usable row exists. The result is always positive.
func (s *Service) PageSize(ctx context.Context) (int, error) {
	v, err := s.intSetting(ctx, config.SettingPageSize, s.defaults.DefaultPageSize)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		v = s.defaults.DefaultPageSize
	}
	return v, nil
}

// LowStockThreshold returns the stored low-stock threshold, or the
// configured default when no usable row exists.
func (s *Service) LowStockThreshold(ctx context.Context) (int, error) {
	v, err := s.intSetting(ctx, config.SettingLowStockThreshold, s.defaults.DefaultLowStock)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = s.defaults.DefaultLowStock
	}
	return v, nil
}

// Get returns the raw stored value for key.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	ctx, span := serviceTracer.Start(ctx, "SettingsService.Get", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	if key == "" {
		return "", errorbank.BadRequest("setting key is required")
	}
	value, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", errorbank.NotFound("setting not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return "", errorbank.Internal("failed to load setting", errorbank.WithCause(err))
	}
	return value, nil
}

// Save upserts key to value. Saving the same pair twice is a no-op beyond
// the first write; there is never more than one row per key.
func (s *Service) Save(ctx context.Context, key, value string) error {
	ctx, span := serviceTracer.Start(ctx, "SettingsService.Save", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	if key == "" {
		return errorbank.BadRequest("setting key is required")
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to save setting", errorbank.WithCause(err))
	}
	return nil
}

// All lists every stored setting for the editing surface.
func (s *Service) All(ctx context.Context) ([]entity.Setting, error) {
	ctx, span := serviceTracer.Start(ctx, "SettingsService.All")
	defer span.End()

	rows, err := s.repo.All(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list settings", errorbank.WithCause(err))
	}
	return rows, nil
}

func (s *Service) intSetting(ctx context.Context, key string, fallback int) (int, error) {
	raw, err := s.repo.Get(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, errorbank.Internal("failed to load setting", errorbank.WithCause(err))
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("setting is not numeric; using default",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Int("default", fallback),
		)
		return fallback, nil
	}
	return v, nil
}
