package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"secretsanta/internal/activity/adapters"
	"secretsanta/internal/activity/handler"
	"secretsanta/internal/activity/matching"
	"secretsanta/internal/activity/matchlock"
	activitymetrics "secretsanta/internal/activity/metrics"
	"secretsanta/internal/activity/ports"
	"secretsanta/internal/activity/secrets"
	"secretsanta/internal/activity/service"
	"secretsanta/internal/activity/store/memory"
	"secretsanta/internal/activity/store/postgres"
	"secretsanta/internal/activity/store/sqlite"
	"secretsanta/internal/platform/config"
	"secretsanta/internal/platform/httpserver"
	"secretsanta/internal/platform/logger"
	"secretsanta/internal/platform/metrics"
	"secretsanta/internal/platform/redis"
	"secretsanta/pkg/fieldcrypt"
	audit "secretsanta/pkg/platform/audit"
	"secretsanta/pkg/platform/audit/publisher"
	auditkafka "secretsanta/pkg/platform/audit/store/kafka"
	auditmemory "secretsanta/pkg/platform/audit/store/memory"
	"secretsanta/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and runs the HTTP server until SIGINT or SIGTERM.
// Business logic lives in internal/activity.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("secretsanta stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	key, err := fieldcrypt.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("ENCRYPTION_KEY: %w", err)
	}
	fc, err := fieldcrypt.New(key)
	if err != nil {
		return err
	}
	digester, err := secrets.NewDigester(key)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var locker matching.Locker = matchlock.NewMemory()
	if redisClient != nil {
		defer redisClient.Close()
		locker = matchlock.NewFallback(matchlock.NewRedis(redisClient.Client), matchlock.NewMemory(),
			circuit.New("redis-lock"), log)
	}

	auditStore, closeAudit, err := openAuditStore(ctx, cfg.Kafka, cfg.Audit.MemoryLimit)
	if err != nil {
		return err
	}
	defer closeAudit()
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.Buffer),
		publisher.WithLogger(log),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := matching.New(store,
		matching.WithLogger(log),
		matching.WithLocker(locker, cfg.Matching.LockTTL),
	)
	if err != nil {
		return err
	}
	svc := service.New(store, adapters.NewShippingCipher(fc), digester, engine,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(activitymetrics.New(reg)),
	)

	var checks []healthCheck
	if p, ok := store.(pinger); ok {
		checks = append(checks, healthCheck{name: "storage", check: p.Ping})
	}
	if redisClient != nil {
		checks = append(checks, healthCheck{name: "redis", check: redisClient.Health})
	}

	router := newRouter(routerDeps{
		logger:   log,
		handler:  handler.New(svc, log),
		metrics:  metrics.New(reg),
		gatherer: reg,
		checks:   checks,
	})
	srv := httpserver.New(cfg.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting secretsanta",
			"addr", cfg.Addr,
			"storage", cfg.Storage.Driver,
			"redis", redisClient != nil,
			"kafka", len(cfg.Kafka.Brokers) > 0,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// drain audit events only after in-flight requests have finished
		auditPublisher.Close()
		log.Info("secretsanta shut down")
		return err
	})
	return g.Wait()
}

type pinger interface {
	Ping(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.StorageConfig) (ports.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.TxTimeout)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.TxTimeout)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}

func openAuditStore(ctx context.Context, cfg config.KafkaConfig, memoryLimit int) (audit.Store, func(), error) {
	if len(cfg.Brokers) == 0 {
		return auditmemory.NewInMemoryStore(auditmemory.WithLimit(memoryLimit)), func() {}, nil
	}
	client, err := auditkafka.NewClient(ctx, cfg.Brokers, auditkafka.Topic{
		Name:        cfg.AuditTopic,
		Partitions:  cfg.AuditPartitions,
		Replication: cfg.AuditReplication,
	})
	if err != nil {
		return nil, nil, err
	}
	return auditkafka.New(client, cfg.AuditTopic), client.Close, nil
}
