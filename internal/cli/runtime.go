package cli

import (
	"context"

	"github.com/sirupsen/logrus"

	"todo-list/internal/config"
	"todo-list/internal/errors"
	"todo-list/internal/metrics"
	"todo-list/internal/repository/cache"
	"todo-list/internal/repository/sqldb"
	"todo-list/internal/services"
)

// runtime holds the long-lived dependencies built from the configuration.
type runtime struct {
	config   *config.Config
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	store    *sqldb.Store
	repo     sqldb.Repository
	services *services.ServiceContainer
}

// openRuntime opens the store, applying migrations, and wraps it in the
// Redis cache when one is configured.
func openRuntime(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*runtime, error) {
	store, err := config.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	var repo sqldb.Repository = store
	if cfg.Cache.RedisURL != "" {
		client, err := cache.NewClient(cfg.Cache.RedisURL)
		if err != nil {
			store.Close()
			return nil, errors.NewInvalidInputError("cache.redis_url", cfg.Cache.RedisURL, err.Error())
		}
		repo = cache.New(store, client, cfg.Cache.TTL, logger, m)
		logger.WithField("ttl", cfg.Cache.TTL.String()).Debug("redis query cache enabled")
	}

	return &runtime{
		config:   cfg,
		logger:   logger,
		metrics:  m,
		store:    store,
		repo:     repo,
		services: services.NewServiceContainer(repo, cfg, logger, m),
	}, nil
}

// Close releases the repository and, through it, the store.
func (r *runtime) Close() error {
	return r.repo.Close()
}
