package settings

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sari-pos/sari/internal/database"
	"github.com/sari-pos/sari/internal/entity"
)

var repoTracer = otel.Tracer("github.com/sari-pos/sari/repository/settings")

// ErrNotFound is returned when no row exists for a key. Callers that carry a
// default treat it as "use the default", never as a storage fault.
var ErrNotFound = errors.New("setting not found")

// Repository encapsulates the flat key/value settings table.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by the configured database.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Get fetches the value stored for key.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	ctx, span := repoTracer.Start(ctx, "SettingsRepository.Get", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	setting := new(entity.Setting)
	err := r.reader.NewSelect().Model(setting).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return "", err
	}
	return setting.Value, nil
}

// Upsert stores value under key, inserting or overwriting so that at most
// one row per key ever exists.
func (r *Repository) Upsert(ctx context.Context, key, value string) error {
	ctx, span := repoTracer.Start(ctx, "SettingsRepository.Upsert", trace.WithAttributes(attribute.String("setting.key", key)))
	defer span.End()

	setting := &entity.Setting{Key: key, Value: value}
	_, err := r.writer.NewInsert().Model(setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
	}
	return err
}

// All returns every stored setting, for the settings-editing surface.
func (r *Repository) All(ctx context.Context) ([]entity.Setting, error) {
	ctx, span := repoTracer.Start(ctx, "SettingsRepository.All")
	defer span.End()

	var rows []entity.Setting
	err := r.reader.NewSelect().Model(&rows).Order("key ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rows, nil
}
