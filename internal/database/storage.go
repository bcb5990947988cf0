package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/mikoro-portal/internal/config"
	"github.com/noah-isme/mikoro-portal/internal/repository"
)

// OpenKeyValueStore builds the key-value backend selected by cfg.StorageDriver.
// The returned close function releases the underlying connection.
func OpenKeyValueStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.KeyValueStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return repository.NewMemoryKeyValueStore(), func() {}, nil
	case config.StorageRedis:
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close redis client")
			}
		}
		return repository.NewRedisKeyValueStore(client), closeFn, nil
	case config.StorageSQLite:
		db, err := ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return gormStore(db, log)
	case config.StoragePostgres:
		db, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return gormStore(db, log)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func gormStore(db *gorm.DB, log zerolog.Logger) (repository.KeyValueStore, func(), error) {
	closeFn := func() {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}

	store, err := repository.NewGormKeyValueStore(db)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}
