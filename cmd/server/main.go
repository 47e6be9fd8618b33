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

	"golang.org/x/sync/errgroup"

	httpapi "lotto/internal/http"
	jwttoken "lotto/internal/jwt_token"
	"lotto/internal/lottery/adapters"
	"lotto/internal/lottery/escrow"
	"lotto/internal/lottery/handler"
	lotterymetrics "lotto/internal/lottery/metrics"
	"lotto/internal/lottery/models"
	"lotto/internal/lottery/service"
	"lotto/internal/lottery/store"
	"lotto/internal/platform/config"
	"lotto/internal/platform/httpserver"
	"lotto/internal/platform/logger"
	"lotto/internal/platform/metrics"
	"lotto/internal/platform/postgres"
	"lotto/internal/platform/redis"
	"lotto/pkg/platform/audit"
	"lotto/pkg/platform/audit/publisher"
	"lotto/pkg/platform/audit/publishers/kafka"
	auditmemory "lotto/pkg/platform/audit/store/memory"
	"lotto/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	checks := map[string]httpapi.HealthCheck{}

	backend, closeBackend, err := buildBackend(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeBackend()
	st := store.New(backend, store.WithTxTimeout(cfg.Lottery.TxTimeout))

	auditSink, closeSink, err := buildAuditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	auditPublisher := publisher.NewPublisher(auditSink,
		publisher.WithAsyncBuffer(cfg.Lottery.AuditBuffer),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	// The simulated collaborators stand in for the external ledger and venue.
	if cfg.Lottery.DurableStorage() {
		log.Warn("durable lottery state is paired with the in-memory token ledger and venue; custody balances reset on restart and refunds of surviving tickets will fail",
			"storage", cfg.Lottery.Storage)
	}
	token := adapters.NewTokenLedger(faucet(cfg.Lottery)...)
	simulated, err := adapters.NewSimulatedVenue(token, models.Address(cfg.Lottery.VenueAccount), cfg.Lottery.VenueYieldBps)
	if err != nil {
		return fmt.Errorf("build venue: %w", err)
	}
	venue := adapters.NewGuardedVenue(simulated, circuit.New("venue",
		circuit.WithFailureThreshold(cfg.Lottery.VenueFailureThreshold),
		circuit.WithCooldown(cfg.Lottery.VenueCooldown),
	), log)
	coordinator, err := escrow.New(token, venue, models.Address(cfg.Lottery.Custody))
	if err != nil {
		return fmt.Errorf("build escrow: %w", err)
	}

	lottery, err := service.New(st, coordinator,
		service.WithLogger(log),
		service.WithMetrics(lotterymetrics.New()),
		service.WithAuditPublisher(auditPublisher),
		service.WithTickDuration(cfg.Lottery.TickDuration),
	)
	if err != nil {
		return fmt.Errorf("build lottery service: %w", err)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	lotteryHandler := handler.New(lottery, log, jwttoken.NewJWTServiceAdapter(jwtService))
	router := httpapi.NewRouter(log, metrics.New(), checks, lotteryHandler)

	apiServer := httpserver.New(cfg.Addr, router)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := httpserver.New(cfg.MetricsAddr, metricsMux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting lotto API", "addr", cfg.Addr, "storage", cfg.Lottery.Storage)
		return serve(apiServer)
	})
	g.Go(func() error {
		log.Info("starting metrics server", "addr", cfg.MetricsAddr)
		return serve(metricsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

func faucet(cfg config.LotteryConfig) []adapters.TokenOption {
	opts := make([]adapters.TokenOption, 0, len(cfg.FaucetAccounts))
	for _, account := range cfg.FaucetAccounts {
		opts = append(opts, adapters.WithInitialBalance(
			models.Address(cfg.FaucetCurrency), models.Address(account), models.Amount(cfg.FaucetAmount)))
	}
	return opts
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func buildBackend(ctx context.Context, cfg config.Server, checks map[string]httpapi.HealthCheck) (store.Backend, func(), error) {
	switch cfg.Lottery.Storage {
	case config.StorageRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		checks["redis"] = client.Health
		backend := store.NewRedisBackend(client.Client, store.WithRedisKeyPrefix(client.KeyPrefix))
		return backend, func() { _ = client.Close() }, nil
	case config.StoragePostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		checks["postgres"] = client.Health
		backend := store.NewPostgresBackend(client.DB, store.WithPostgresTable(cfg.Postgres.Table))
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return backend, func() { _ = client.Close() }, nil
	default:
		return store.NewInMemoryBackend(), func() {}, nil
	}
}

func buildAuditSink(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("audit events kept in memory; set LOTTO_KAFKA_BROKERS to stream them")
		return auditmemory.NewInMemoryStore(), func() {}, nil
	}
	sink, err := kafka.Dial(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	if err := sink.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replicas); err != nil {
		sink.Close()
		return nil, nil, err
	}
	return sink, sink.Close, nil
}
