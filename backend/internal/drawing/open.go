package drawing

import (
	"context"

	"archmap/backend/pkg/config"
	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
)

// Open returns the store selected by cfg.DrawingsBackend
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	backend := cfg.ResolveDrawingsBackend()
	logger.Named("drawing").Info("Opening drawing store",
		zap.String("backend", backend),
		zap.String("table", cfg.DrawingsTable),
	)

	switch backend {
	case config.DrawingsBackendSupabase:
		store, err := NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.DrawingsTable)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DrawingsBackendPostgres:
		store, err := NewPostgresStore(ctx, cfg.DatabaseURL, cfg.DrawingsTable)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return NewMemoryStore(), nil
	}
}
