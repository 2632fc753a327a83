package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/commerce/internal/health"
	"github.com/vladislavdragonenkov/commerce/internal/httpapi"
	"github.com/vladislavdragonenkov/commerce/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/commerce/internal/service/catalog"
	"github.com/vladislavdragonenkov/commerce/internal/service/customers"
	"github.com/vladislavdragonenkov/commerce/internal/service/orders"
	"github.com/vladislavdragonenkov/commerce/internal/service/outbox"
	"github.com/vladislavdragonenkov/commerce/internal/version"
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	HTTPAddr     string
	MetricsAddr  string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
}

// DefaultConfig возвращает базовые адреса для API и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	orderSvc := orders.NewService(deps.Customers, deps.Products, deps.Orders, deps.Outbox, logger.WithField("layer", "orders"))
	customerSvc := customers.NewService(deps.Customers, deps.Outbox, logger.WithField("layer", "customers"))
	catalogSvc := catalog.NewService(deps.Products, logger.WithField("layer", "catalog"))

	// Outbox worker доставляет события в Kafka, пока приложение живо.
	if deps.KafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(deps.KafkaProducer)
		dlqPublisher := kafka.NewTopicPublisher(deps.KafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(deps.Outbox, publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlqPublisher),
		)
		go worker.Run(ctx)
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", 2*time.Second, deps.Store.Ping))
	}
	if deps.RedisClient != nil {
		healthHandler.RegisterChecker("redis", healthcheck.NewPingChecker("redis", 2*time.Second, func(ctx context.Context) error {
			return deps.RedisClient.Ping(ctx).Err()
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiServer := httpapi.NewServer(orderSvc, customerSvc, catalogSvc, deps.Idempotency, logger.WithField("layer", "http"))
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiServer.Engine()}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(srv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
