// Package application 短信上下文的应用服务
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
	"github.com/wyfcoding/notificationcenter/pkg/metrics"
)

// ErrDuplicateRequest 幂等键冲突
var ErrDuplicateRequest = errors.New("duplicate request")

// idempotencyTTL 幂等键保留时长
const idempotencyTTL = 24 * time.Hour

// SmsCommand 处理短信相关的命令操作
type SmsCommand struct {
	database  *db.DB
	repo      domain.Repository
	publisher domain.EventPublisher
	estimator *domain.CostEstimator
	sender    domain.Sender
	cache     *cache.RedisCache
	metrics   *metrics.Metrics
}

// NewSmsCommand 创建命令服务
func NewSmsCommand(
	database *db.DB,
	repo domain.Repository,
	publisher domain.EventPublisher,
	estimator *domain.CostEstimator,
	sender domain.Sender,
	redisCache *cache.RedisCache,
	m *metrics.Metrics,
) *SmsCommand {
	return &SmsCommand{
		database:  database,
		repo:      repo,
		publisher: publisher,
		estimator: estimator,
		sender:    sender,
		cache:     redisCache,
		metrics:   m,
	}
}

// SendSms 创建并发送短信，返回消息 ID
// cmd.ScheduledAt 非空时仅入库等待调度，否则立即走发送流程
func (c *SmsCommand) SendSms(ctx context.Context, cmd SendSmsCommand) (string, error) {
	if cmd.RequestKey != "" && c.cache != nil {
		key := fmt.Sprintf("idem:sms:%s:%s", cmd.TenantID, cmd.RequestKey)
		acquired, err := c.cache.SetNX(ctx, key, "1", idempotencyTTL)
		if err == nil && !acquired {
			return "", ErrDuplicateRequest
		}
	}

	tenantID, err := shared.NewTenantID(cmd.TenantID)
	if err != nil {
		return "", err
	}
	userID, err := shared.NewUserID(cmd.UserID)
	if err != nil {
		return "", err
	}
	phone, err := domain.NewPhoneNumber(cmd.Phone)
	if err != nil {
		return "", err
	}
	content, err := domain.NewSmsContent(cmd.Body)
	if err != nil {
		return "", err
	}
	priority, err := shared.ParsePriority(cmd.Priority)
	if err != nil {
		return "", err
	}
	id, err := shared.NewNotificationID(idgen.GenIDString())
	if err != nil {
		return "", err
	}

	cost := c.estimator.Estimate(phone, content)
	m, err := domain.NewSmsMessage(id, tenantID, userID, phone, content, cmd.SenderID, priority, cost)
	if err != nil {
		return "", err
	}

	if cmd.ScheduledAt != nil {
		if err := m.Schedule(*cmd.ScheduledAt); err != nil {
			return "", err
		}
	}

	if err := c.persist(ctx, m); err != nil {
		return "", err
	}

	if c.metrics != nil {
		c.metrics.NotificationsTotal.WithLabelValues("sms").Inc()
	}

	if cmd.ScheduledAt == nil {
		if err := c.dispatch(ctx, m); err != nil {
			logger.Error(ctx, "sms dispatch failed", "notification_id", m.ID.String(), "error", err)
		}
	}

	return m.ID.String(), nil
}

// ConfirmDelivery 处理服务商送达回执
func (c *SmsCommand) ConfirmDelivery(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	id, err := shared.NewNotificationID(cmd.NotificationID)
	if err != nil {
		return err
	}

	m, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := m.MarkDelivered(cmd.DeliveredAt); err != nil {
		return err
	}

	if err := c.persist(ctx, m); err != nil {
		return err
	}

	if c.metrics != nil {
		c.metrics.DeliveriesTotal.WithLabelValues("sms").Inc()
	}
	return nil
}

// Cancel 取消尚未发出的短信
func (c *SmsCommand) Cancel(ctx context.Context, cmd CancelSmsCommand) error {
	id, err := shared.NewNotificationID(cmd.NotificationID)
	if err != nil {
		return err
	}

	m, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := m.Cancel(cmd.CancelledBy); err != nil {
		return err
	}

	return c.persist(ctx, m)
}

// DispatchDue 处理到期的计划短信与重试短信，由外部调度触发
func (c *SmsCommand) DispatchDue(ctx context.Context, limit int) (int, error) {
	now := time.Now().UTC()
	dispatched := 0

	scheduled, err := c.repo.ListDueScheduled(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	retries, err := c.repo.ListDueForRetry(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	for _, m := range append(scheduled, retries...) {
		if err := c.dispatch(ctx, m); err != nil {
			logger.Error(ctx, "due sms dispatch failed", "notification_id", m.ID.String(), "error", err)
			continue
		}
		dispatched++
	}

	return dispatched, nil
}

// dispatch 执行一次发送尝试：调用发送器并根据结果推进状态机
func (c *SmsCommand) dispatch(ctx context.Context, m *domain.SmsMessage) error {
	if err := m.MarkSending(c.sender.Provider()); err != nil {
		return err
	}
	if err := c.persist(ctx, m); err != nil {
		return err
	}

	providerMessageID, sendErr := c.sender.Send(ctx, m)
	if sendErr != nil {
		if err := m.MarkFailed(sendErr.Error()); err != nil {
			return err
		}
		if err := c.persist(ctx, m); err != nil {
			return err
		}
		return c.handleSendFailure(ctx, m, sendErr.Error())
	}

	if err := m.MarkSent(providerMessageID); err != nil {
		return err
	}
	return c.persist(ctx, m)
}

// handleSendFailure 失败后的重试决策：未耗尽则安排重试，否则永久失败
func (c *SmsCommand) handleSendFailure(ctx context.Context, m *domain.SmsMessage, reason string) error {
	retryErr := m.Retry(time.Now().UTC())
	switch {
	case retryErr == nil:
		if c.metrics != nil {
			c.metrics.RetriesTotal.WithLabelValues("sms").Inc()
		}
	case errors.Is(retryErr, domain.ErrRetryExhausted):
		if err := m.MarkPermanentlyFailed(reason); err != nil {
			return err
		}
		if c.metrics != nil {
			c.metrics.PermanentFailuresTotal.WithLabelValues("sms").Inc()
		}
	default:
		return retryErr
	}

	return c.persist(ctx, m)
}

// persist 在事务中保存聚合并将未提交事件写入发件箱
func (c *SmsCommand) persist(ctx context.Context, m *domain.SmsMessage) error {
	return c.database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := c.repo.Save(ctx, tx, m); err != nil {
			return err
		}
		return c.publisher.PublishInTx(ctx, tx, m.PullEvents())
	})
}
