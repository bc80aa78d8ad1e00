package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"vcasino_wallet/internal/clicker"
	"vcasino_wallet/internal/config"
	"vcasino_wallet/internal/conversion"
	"vcasino_wallet/internal/handlers"
	"vcasino_wallet/internal/logging"
	"vcasino_wallet/internal/metrics"
	"vcasino_wallet/internal/outbox"
	"vcasino_wallet/internal/repository"
	"vcasino_wallet/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	logger := logging.SetupLogger(cfg.LogLevel)

	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	poolConfig, err := pgxpool.ParseConfig(cfg.DBURL)
	if err != nil {
		logger.Error("failed to parse db config", "err", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := repository.NewWalletPGRepository(pool, logger)
	clickerClient := clicker.New(cfg.ClickerURL, cfg.ClickerTimeout)
	policy := conversion.NewPolicy(cfg.Rates)
	svc := service.NewWalletService(repo, clickerClient, policy, logger)
	handler := handlers.NewWalletHTTPHandler(svc)

	outboxMetrics := metrics.NewOutbox(prometheus.DefaultRegisterer)
	var sink outbox.Sink = outbox.NewClickerSink(clickerClient)
	if cfg.OutboxSink == "kafka" {
		kafkaSink := outbox.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	dispatcher := outbox.NewDispatcher(repo, sink, logger, outboxMetrics,
		cfg.OutboxInterval, cfg.OutboxBatchSize, cfg.OutboxMaxAttempts)

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go dispatcher.Run(dispatcherCtx)

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	r := gin.Default()
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("Server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	stopDispatcher()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
	}
	if err := metricsSrv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Metrics server forced to shutdown", "err", err)
	}
	logger.Info("Server exiting")
}
