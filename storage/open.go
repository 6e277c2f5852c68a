package storage

import (
	"context"
	"fmt"
	"time"

	"airbnb-dashboard/config"
	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// Open returns the dataset source selected by cfg.DataSource.
func Open(ctx context.Context, cfg *config.Config, logger *utils.Logger) (DatasetSource, error) {
	switch cfg.DataSource {
	case config.SourceCSV, "":
		return NewCSVSource(cfg.DataPath), nil
	case config.SourcePostgres, config.SourceMongo:
		return openStore(ctx, cfg.DataSource, cfg, logger)
	}
	return nil, fmt.Errorf("storage: unknown data source %q", cfg.DataSource)
}

// OpenWriter returns the store named by target for dataset imports.
func OpenWriter(ctx context.Context, target string, cfg *config.Config, logger *utils.Logger) (DatasetWriter, error) {
	switch target {
	case config.SourcePostgres, config.SourceMongo:
		return openStore(ctx, target, cfg, logger)
	}
	return nil, fmt.Errorf("storage: cannot import into %q", target)
}

// store is a backend that can both load and replace a dataset.
type store interface {
	DatasetSource
	Write(ctx context.Context, d *models.Dataset) error
}

func openStore(ctx context.Context, kind string, cfg *config.Config, logger *utils.Logger) (store, error) {
	logger.Info("[storage] Connecting to %s", kind)
	if kind == config.SourcePostgres {
		ps, err := NewPostgresStore(ctx, cfg.DSN(), retryFor(cfg, logger))
		if err != nil {
			return nil, err
		}
		return ps, nil
	}
	ms, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection, retryFor(cfg, logger))
	if err != nil {
		return nil, err
	}
	return ms, nil
}

func retryFor(cfg *config.Config, logger *utils.Logger) *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}
}
