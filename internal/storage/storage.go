package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/imrishuroy/landing-checkout/internal/aws"
	"github.com/imrishuroy/landing-checkout/internal/config"
	"github.com/imrishuroy/landing-checkout/internal/orders"
)

// Pool limits for the postgres connection pool.
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// OpenPostgres returns a gorm DB for dsn with the process pool settings.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	return gdb, nil
}

// Open builds the order store selected by cfg.OrderStore and verifies its
// schema. The returned close function releases the store's resources and is
// safe to call when Open fails.
func Open(ctx context.Context, cfg config.Config, clients *aws.AWSClients, log *zap.Logger) (orders.Store, func() error, error) {
	noop := func() error { return nil }

	var (
		store   orders.Store
		closeFn = noop
	)
	switch cfg.OrderStore {
	case config.StorePostgres:
		gdb, err := OpenPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, noop, err
		}
		store, closeFn = orders.NewPostgresStore(gdb), sqlDB.Close
	case config.StoreDynamoDB:
		if clients == nil {
			return nil, noop, fmt.Errorf("dynamodb store needs aws clients")
		}
		store = orders.NewDynamoStore(clients.DynamoDB, cfg.OrdersTable)
	case config.StoreMemory:
		store = orders.NewMemoryStore()
	default:
		return nil, noop, fmt.Errorf("unknown order store %q", cfg.OrderStore)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = closeFn()
		return nil, noop, fmt.Errorf("ensure schema (%s): %w", cfg.OrderStore, err)
	}
	log.Info("order store ready", zap.String("store", cfg.OrderStore))
	return store, closeFn, nil
}
