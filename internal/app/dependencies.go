package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/idempotency"
	"github.com/vladislavdragonenkov/commerce/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
	"github.com/vladislavdragonenkov/commerce/internal/storage/postgres"
)

const idempotencyTTL = 24 * time.Hour

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Customers   domain.CustomerRepository
	Products    domain.ProductRepository
	Orders      domain.OrderRepository
	Outbox      domain.OutboxRepository
	Idempotency idempotency.Store
	Logger      *log.Entry

	// Инфраструктурные хэндлы для health checks и shutdown.
	Store         *postgres.Store
	RedisClient   *redis.Client
	KafkaProducer *kafka.Producer
}

// NewDependencies создаёт и инициализирует все зависимости приложения.
// Без COMMERCE_POSTGRES_DSN репозитории работают in-memory, без
// COMMERCE_REDIS_ADDR идемпотентные ключи хранятся в памяти процесса,
// без KAFKA_BROKERS события не публикуются. Такой режим подходит для
// разработки и тестов.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		deps.Store = store
		deps.Customers = postgres.NewCustomerRepository(store)
		deps.Products = postgres.NewProductRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		logger.Info("postgres storage initialized")
	} else {
		deps.Customers = memory.NewCustomerRepository()
		deps.Products = memory.NewProductRepository()
		deps.Orders = memory.NewOrderRepository()
		deps.Outbox = memory.NewOutboxRepository()
		logger.Info("using in-memory storage")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis is unreachable, falling back to in-memory idempotency store")
			_ = client.Close()
		} else {
			deps.RedisClient = client
			deps.Idempotency = idempotency.NewRedisStore(client, idempotencyTTL)
			logger.WithField("addr", cfg.RedisAddr).Info("redis idempotency store initialized")
		}
	}
	if deps.Idempotency == nil {
		deps.Idempotency = idempotency.NewMemoryStore(idempotencyTTL)
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.KafkaProducer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	return deps, nil
}

// Close освобождает инфраструктурные ресурсы в обратном порядке инициализации.
func (d *Dependencies) Close() {
	if d.KafkaProducer != nil {
		if err := d.KafkaProducer.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			d.Logger.Info("kafka producer closed")
		}
	}
	if d.RedisClient != nil {
		if err := d.RedisClient.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
