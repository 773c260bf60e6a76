// Package bootstrap builds the storage handle and external adapters shared by the server
// and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/advisory"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
)

// Storage is an open Store plus whatever must be closed with it.
type Storage struct {
	Store repository.Store
	close func()
}

// Close releases the underlying connections.
func (s *Storage) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStorage connects the configured backend and, when migrate is set, applies migrations.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger, migrate bool) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := persistence.RunPostgresMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &Storage{Store: repository.NewPostgresStore(pg.PoolHandle()), close: pg.Close}, nil

	case config.DriverSQLite:
		db, err := persistence.OpenSQLite(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := persistence.RunSQLiteMigrations(ctx, db, logger); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Storage{Store: repository.NewSQLiteStore(db), close: func() { _ = db.Close() }}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// NewAdvisor builds the analysis guard. Without an API key every analysis is Unavailable;
// with Redis and a TTL, successful analyses are cached.
func NewAdvisor(ctx context.Context, cfg config.AdvisoryConfig, redis *persistence.Redis, logger *zap.Logger, metrics *observability.Metrics) *advisory.Advisor {
	if cfg.APIKey == "" {
		logger.Info("GEMINI_API_KEY not provided; ticket analysis disabled")
		return advisory.NewAdvisor(nil, cfg.Timeout(), logger, metrics)
	}

	gemini, err := advisory.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Warn("ticket analysis disabled", zap.Error(err))
		return advisory.NewAdvisor(nil, cfg.Timeout(), logger, metrics)
	}

	var client advisory.Client = gemini
	if redis.Enabled() && cfg.CacheTTL() > 0 {
		client = advisory.NewCachedClient(gemini, redis.Client, cfg.CacheTTL(), logger)
	}
	return advisory.NewAdvisor(client, cfg.Timeout(), logger, metrics)
}
