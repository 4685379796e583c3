package outbox

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/notificationcenter/pkg/logger"
	"github.com/wyfcoding/notificationcenter/pkg/metrics"
)

// Publisher 消息投递接口，由 pkg/mq 的 Kafka 生产者实现
type Publisher interface {
	SendRaw(ctx context.Context, topic string, key string, value []byte) error
}

// RelayConfig 中继配置
type RelayConfig struct {
	// 轮询间隔
	PollInterval time.Duration
	// 每批拉取条数
	BatchSize int
	// 单条消息最大投递次数，超过后标记 FAILED
	MaxAttempts int
}

// Relay 发件箱中继，轮询 PENDING 消息并投递到 Kafka
type Relay struct {
	db        *gorm.DB
	publisher Publisher
	metrics   *metrics.Metrics
	cfg       RelayConfig
}

// NewRelay 创建发件箱中继
func NewRelay(db *gorm.DB, publisher Publisher, m *metrics.Metrics, cfg RelayConfig) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Relay{db: db, publisher: publisher, metrics: m, cfg: cfg}
}

// Run 启动轮询循环，阻塞直到 ctx 取消
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	logger.Info(ctx, "outbox relay started",
		"poll_interval", r.cfg.PollInterval,
		"batch_size", r.cfg.BatchSize,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				logger.Error(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

// relayBatch 拉取一批待投递消息并逐条投递
// 使用 SKIP LOCKED 行锁保证多实例部署下消息不被重复消费
func (r *Relay) relayBatch(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var messages []Message
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", StatusPending).
			Order("id asc").
			Limit(r.cfg.BatchSize).
			Find(&messages).Error
		if err != nil {
			return err
		}

		for i := range messages {
			r.relayOne(ctx, tx, &messages[i])
		}
		return nil
	})
}

// relayOne 投递单条消息并更新状态
func (r *Relay) relayOne(ctx context.Context, tx *gorm.DB, msg *Message) {
	err := r.publisher.SendRaw(ctx, msg.Topic, msg.Key, []byte(msg.Payload))

	msg.Attempts++
	if err == nil {
		now := time.Now()
		msg.Status = StatusSent
		msg.SentAt = &now
		msg.LastError = ""
		if r.metrics != nil {
			r.metrics.OutboxPublishedTotal.WithLabelValues("success").Inc()
		}
	} else {
		msg.LastError = err.Error()
		if msg.Attempts >= r.cfg.MaxAttempts {
			msg.Status = StatusFailed
			logger.Error(ctx, "outbox message dead-lettered",
				"message_id", msg.MessageID,
				"topic", msg.Topic,
				"attempts", msg.Attempts,
				"error", err,
			)
			if r.metrics != nil {
				r.metrics.OutboxPublishedTotal.WithLabelValues("dead_letter").Inc()
			}
		} else {
			logger.Warn(ctx, "outbox message publish failed, will retry",
				"message_id", msg.MessageID,
				"topic", msg.Topic,
				"attempts", msg.Attempts,
				"error", err,
			)
			if r.metrics != nil {
				r.metrics.OutboxPublishedTotal.WithLabelValues("retry").Inc()
			}
		}
	}

	if updateErr := tx.Model(&Message{}).
		Where("id = ?", msg.ID).
		Updates(map[string]interface{}{
			"status":     msg.Status,
			"attempts":   msg.Attempts,
			"last_error": msg.LastError,
			"sent_at":    msg.SentAt,
		}).Error; updateErr != nil {
		logger.Error(ctx, "failed to update outbox message", "message_id", msg.MessageID, "error", updateErr)
	}
}
