package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wyfcoding/notificationcenter/internal/outbox"
	pushapp "github.com/wyfcoding/notificationcenter/internal/push/application"
	pushdomain "github.com/wyfcoding/notificationcenter/internal/push/domain"
	pushmessaging "github.com/wyfcoding/notificationcenter/internal/push/infrastructure/messaging"
	pushmysql "github.com/wyfcoding/notificationcenter/internal/push/infrastructure/persistence/mysql"
	pushsender "github.com/wyfcoding/notificationcenter/internal/push/infrastructure/sender"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	smsapp "github.com/wyfcoding/notificationcenter/internal/sms/application"
	smsdomain "github.com/wyfcoding/notificationcenter/internal/sms/domain"
	smsmessaging "github.com/wyfcoding/notificationcenter/internal/sms/infrastructure/messaging"
	smsmysql "github.com/wyfcoding/notificationcenter/internal/sms/infrastructure/persistence/mysql"
	smssender "github.com/wyfcoding/notificationcenter/internal/sms/infrastructure/sender"
	"github.com/wyfcoding/notificationcenter/pkg/config"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
	"github.com/wyfcoding/notificationcenter/pkg/metrics"
	"github.com/wyfcoding/notificationcenter/pkg/mq"
)

var configPath = flag.String("config", "configs/receipt-worker.toml", "config file path")

// receiptTopic 供应商回执主题，由回调网关写入
const receiptTopic = "notification.delivery.receipts"

const defaultSmsProvider = "TWILIO"

// deliveryReceipt 供应商送达回执
type deliveryReceipt struct {
	Channel        string `json:"channel"`
	NotificationID string `json:"notification_id"`
	Status         string `json:"status"`
	DeliveredAt    string `json:"delivered_at"`
	Reason         string `json:"reason,omitempty"`
}

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

	if err := idgen.Init(cfg.Snowflake.NodeID); err != nil {
		logger.Fatal(ctx, "failed to init id generator", "error", err)
	}

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

	kafkaCfg := mq.KafkaConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		MaxRetries:      cfg.Kafka.MaxRetries,
		RetryBackoff:    cfg.Kafka.RetryBackoff,
		SessionTimeout:  cfg.Kafka.SessionTimeout,
		DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
	}

	consumer, err := mq.NewConsumer(kafkaCfg, receiptTopic)
	if err != nil {
		logger.Fatal(ctx, "failed to init kafka consumer", "error", err)
	}
	defer consumer.Close()

	producer, err := mq.NewProducer(kafkaCfg)
	if err != nil {
		logger.Fatal(ctx, "failed to init kafka producer", "error", err)
	}
	defer producer.Close()
	dlq := mq.NewDeadLetterQueue(producer, cfg.Kafka.DeadLetterTopic)

	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		go serveMetrics(ctx, cfg, m)
	}

	outboxManager := outbox.NewManager(database.DB)

	pushCommand := pushapp.NewPushCommand(
		database,
		pushmysql.NewPushRepository(database.DB),
		pushmessaging.NewOutboxEventPublisher(outboxManager),
		pushdomain.NewProviderSelector(nil),
		pushsender.NewLoggingSender(),
		nil,
		m,
	)
	smsCommand := smsapp.NewSmsCommand(
		database,
		smsmysql.NewSmsRepository(database.DB),
		smsmessaging.NewOutboxEventPublisher(outboxManager),
		smsdomain.NewDefaultCostEstimator(),
		smssender.NewLoggingSender(defaultSmsProvider),
		nil,
		m,
	)

	worker := &receiptWorker{
		consumer:    consumer,
		dlq:         dlq,
		pushCommand: pushCommand,
		smsCommand:  smsCommand,
	}

	logger.Info(ctx, "receipt worker starting", "service", cfg.ServiceName, "topic", receiptTopic)
	worker.run(ctx)
	logger.Info(context.Background(), "receipt worker stopped")
}

// receiptWorker 消费供应商回执并确认送达
type receiptWorker struct {
	consumer    *mq.KafkaConsumer
	dlq         *mq.DeadLetterQueue
	pushCommand *pushapp.PushCommand
	smsCommand  *smsapp.SmsCommand
}

func (w *receiptWorker) run(ctx context.Context) {
	for {
		msg, err := w.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "failed to read receipt", "error", err)
			continue
		}

		if err := w.handle(ctx, msg); err != nil {
			logger.Error(ctx, "receipt handling failed",
				"key", msg.Key,
				"error", err,
			)
			if dlqErr := w.dlq.Send(ctx, msg, "receipt handling failed", err); dlqErr != nil {
				logger.Error(ctx, "failed to dead-letter receipt", "key", msg.Key, "error", dlqErr)
			}
		}
	}
}

// handle 按渠道路由回执；已处于终态的通知视为重复回执，不算失败
func (w *receiptWorker) handle(ctx context.Context, msg *mq.Message) error {
	var receipt deliveryReceipt
	if err := msg.UnmarshalPayload(&receipt); err != nil {
		return fmt.Errorf("malformed receipt payload: %w", err)
	}

	if receipt.Status != "DELIVERED" {
		logger.Info(ctx, "ignoring non-delivery receipt",
			"notification_id", receipt.NotificationID,
			"status", receipt.Status,
		)
		return nil
	}

	deliveredAt, err := time.Parse(time.RFC3339, receipt.DeliveredAt)
	if err != nil {
		return fmt.Errorf("invalid delivered_at %q: %w", receipt.DeliveredAt, err)
	}

	switch receipt.Channel {
	case "push":
		err = w.pushCommand.ConfirmDelivery(ctx, pushapp.ConfirmDeliveryCommand{
			NotificationID: receipt.NotificationID,
			DeliveredAt:    deliveredAt,
		})
	case "sms":
		err = w.smsCommand.ConfirmDelivery(ctx, smsapp.ConfirmDeliveryCommand{
			NotificationID: receipt.NotificationID,
			DeliveredAt:    deliveredAt,
		})
	default:
		return fmt.Errorf("unknown receipt channel %q", receipt.Channel)
	}

	var transitionErr *shared.InvalidStateTransitionError
	if errors.As(err, &transitionErr) {
		logger.Warn(ctx, "duplicate delivery receipt ignored",
			"notification_id", receipt.NotificationID,
			"from", transitionErr.From,
		)
		return nil
	}
	return err
}

// serveMetrics 为回执进程单独暴露指标与健康检查端点
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
