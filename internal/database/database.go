package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/fx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sari-pos/sari/internal/config"
)

// Connections bundles writer and reader bun instances. The store is one
// local SQLite file, so both point at the same handle; the split is kept so
// read paths stay distinguishable from the write path.
type Connections struct {
	Writer *bun.DB
	Reader *bun.DB
}

// Module registers the database connections with Fx.
var Module = fx.Provide(New)

// New opens the single-file SQLite store backed by Bun.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Connections, error) {
	sqlDB, err := Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	conns := &Connections{Writer: db, Reader: db}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := pingContext(ctx, db); err != nil {
				return fmt.Errorf("ping sqlite: %w", err)
			}
			logger.Info("database opened", zap.String("path", cfg.Database.Path))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return conns, nil
}

// Open builds a *sql.DB for the configured SQLite file with foreign keys
// enforced, which the order_items cascade rule depends on.
func Open(cfg config.Database) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("empty database path")
	}

	db, err := sql.Open("sqlite", DSN(cfg))
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	return db, nil
}

// DSN renders the sqlite connection string with the pragmas applied on every
// new connection.
func DSN(cfg config.Database) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")

	return fmt.Sprintf("file:%s?%s", cfg.Path, q.Encode())
}

func pingContext(ctx context.Context, db *bun.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.DB.PingContext(pingCtx)
}
