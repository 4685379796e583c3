package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wyfcoding/notificationcenter/internal/outbox"
	"github.com/wyfcoding/notificationcenter/pkg/config"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
	"github.com/wyfcoding/notificationcenter/pkg/metrics"
	"github.com/wyfcoding/notificationcenter/pkg/mq"
)

var configPath = flag.String("config", "configs/outbox-relay.toml", "config file path")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init database", "error", err)
	}
	defer database.Close()

	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		MaxRetries:      cfg.Kafka.MaxRetries,
		RetryBackoff:    cfg.Kafka.RetryBackoff,
		SessionTimeout:  cfg.Kafka.SessionTimeout,
		DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init kafka producer", "error", err)
	}
	defer producer.Close()

	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		go serveMetrics(ctx, cfg, m)
	}

	relay := outbox.NewRelay(database.DB, producer, m, outbox.RelayConfig{
		PollInterval: time.Duration(cfg.Outbox.PollInterval) * time.Millisecond,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
	})

	logger.Info(ctx, "outbox relay starting", "service", cfg.ServiceName)
	if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal(ctx, "outbox relay failed", "error", err)
	}
	logger.Info(context.Background(), "outbox relay stopped")
}

// serveMetrics 为中继进程单独暴露指标与健康检查端点
func serveMetrics(ctx context.Context, cfg *config.Config, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(ctx, "metrics server failed", "error", err)
	}
}
