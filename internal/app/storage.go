package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/file"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/memory"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/postgres"
)

// storage — открытое хранилище сервиса. Ping == nil означает, что проверять нечего.
type storage[R any] struct {
	Repo        R
	Idempotency domain.IdempotencyRepository
	Ping        func(ctx context.Context) error
	Close       func() error
}

// storageDrivers хранит конструкторы репозитория для каждого драйвера
// и схему PostgreSQL, которой владеет сервис.
type storageDrivers[R any] struct {
	file     func(path string) (R, func(context.Context) error, error)
	memory   func() R
	postgres func(store *postgres.Store) R
	schema   postgres.Schema
}

func productDrivers() storageDrivers[domain.ProductRepository] {
	return storageDrivers[domain.ProductRepository]{
		file: func(path string) (domain.ProductRepository, func(context.Context) error, error) {
			table, err := file.OpenProducts(path)
			if err != nil {
				return nil, nil, err
			}
			return table, table.Ping, nil
		},
		memory: func() domain.ProductRepository {
			return memory.NewProductRepository(domain.DefaultProducts()...)
		},
		postgres: postgres.NewProductRepository,
		schema:   postgres.ProductSchema,
	}
}

func orderDrivers() storageDrivers[domain.OrderRepository] {
	return storageDrivers[domain.OrderRepository]{
		file: func(path string) (domain.OrderRepository, func(context.Context) error, error) {
			table, err := file.OpenOrders(path)
			if err != nil {
				return nil, nil, err
			}
			return table, table.Ping, nil
		},
		memory:   memory.NewOrderRepository,
		postgres: postgres.NewOrderRepository,
		schema:   postgres.OrderSchema,
	}
}

// initStorage открывает хранилище по cfg.StorageDriver. Ключи идемпотентности
// живут в PostgreSQL только при драйвере postgres, иначе в памяти процесса.
func initStorage[R any](ctx context.Context, cfg CommonConfig, drivers storageDrivers[R], logger *log.Entry) (storage[R], error) {
	noClose := func() error { return nil }

	switch cfg.StorageDriver {
	case StorageDriverFile, "":
		repo, ping, err := drivers.file(cfg.DataFile)
		if err != nil {
			return storage[R]{}, fmt.Errorf("open data file %s: %w", cfg.DataFile, err)
		}
		logger.WithField("data_file", cfg.DataFile).Info("file storage initialized")
		return storage[R]{
			Repo:        repo,
			Idempotency: memory.NewIdempotencyRepository(),
			Ping:        ping,
			Close:       noClose,
		}, nil

	case StorageDriverMemory:
		logger.Info("memory storage initialized")
		return storage[R]{
			Repo:        drivers.memory(),
			Idempotency: memory.NewIdempotencyRepository(),
			Close:       noClose,
		}, nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return storage[R]{}, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx, drivers.schema); err != nil {
				_ = store.Close()
				return storage[R]{}, fmt.Errorf("apply %s migrations: %w", drivers.schema.Name, err)
			}
			logger.WithField("schema", drivers.schema.Name).Info("postgres migrations applied")
		}
		logger.Info("postgres storage initialized")
		return storage[R]{
			Repo:        drivers.postgres(store),
			Idempotency: postgres.NewIdempotencyRepository(store, drivers.schema),
			Ping:        store.Ping,
			Close:       store.Close,
		}, nil

	default:
		return storage[R]{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
