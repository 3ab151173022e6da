// Package storage opens the repositories selected by STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/dom/mama-respira/internal/config"
	"github.com/dom/mama-respira/internal/repository"
	"github.com/dom/mama-respira/internal/repository/memory"
	"github.com/dom/mama-respira/internal/repository/mongo"
	"github.com/dom/mama-respira/internal/repository/postgres"
	"go.uber.org/zap"
)

// CloseFunc releases the connection behind a set of repositories.
type CloseFunc func(ctx context.Context) error

// Open connects to the configured store, prepares its schema and returns
// the repositories over it.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Repositories, CloseFunc, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := postgres.NewConnection(cfg.DatabaseURL, !cfg.IsProduction() && cfg.LogLevel == "debug")
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("using postgres store")
		closeFn := func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return postgres.NewRepositories(db), closeFn, nil

	case config.StoreDriverMongo:
		store, err := mongo.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using mongo store", zap.String("database", cfg.MongoDatabase))
		return mongo.NewRepositories(store.Database()), store.Close, nil

	case config.StoreDriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewRepositories(), func(context.Context) error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
