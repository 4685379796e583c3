package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/push/domain"
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

// PushCommand 处理推送相关的命令操作
type PushCommand struct {
	database  *db.DB
	repo      domain.Repository
	publisher domain.EventPublisher
	selector  *domain.ProviderSelector
	sender    domain.Sender
	cache     *cache.RedisCache
	metrics   *metrics.Metrics
}

// NewPushCommand 创建命令服务
func NewPushCommand(
	database *db.DB,
	repo domain.Repository,
	publisher domain.EventPublisher,
	selector *domain.ProviderSelector,
	sender domain.Sender,
	redisCache *cache.RedisCache,
	m *metrics.Metrics,
) *PushCommand {
	return &PushCommand{
		database:  database,
		repo:      repo,
		publisher: publisher,
		selector:  selector,
		sender:    sender,
		cache:     redisCache,
		metrics:   m,
	}
}

// SendPush 创建并发送推送通知，返回通知 ID
// cmd.ScheduledAt 非空时仅入库等待调度，否则立即走发送流程
func (c *PushCommand) SendPush(ctx context.Context, cmd SendPushCommand) (string, error) {
	if cmd.RequestKey != "" && c.cache != nil {
		key := fmt.Sprintf("idem:push:%s:%s", cmd.TenantID, cmd.RequestKey)
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
	token, err := domain.NewDeviceToken(cmd.DeviceToken)
	if err != nil {
		return "", err
	}
	content, err := domain.NewPushContent(cmd.Title, cmd.Body, cmd.ImageURL, cmd.Data)
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

	n, err := domain.NewPushNotification(id, tenantID, userID, token, domain.Platform(cmd.Platform), content, priority)
	if err != nil {
		return "", err
	}

	if cmd.ScheduledAt != nil {
		if err := n.Schedule(*cmd.ScheduledAt); err != nil {
			return "", err
		}
	}

	if err := c.persist(ctx, n); err != nil {
		return "", err
	}

	if c.metrics != nil {
		c.metrics.NotificationsTotal.WithLabelValues("push").Inc()
	}

	if cmd.ScheduledAt == nil {
		if err := c.dispatch(ctx, n); err != nil {
			logger.Error(ctx, "push dispatch failed", "notification_id", n.ID.String(), "error", err)
		}
	}

	return n.ID.String(), nil
}

// ConfirmDelivery 处理服务商送达回执
func (c *PushCommand) ConfirmDelivery(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	id, err := shared.NewNotificationID(cmd.NotificationID)
	if err != nil {
		return err
	}

	n, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := n.MarkDelivered(cmd.DeliveredAt); err != nil {
		return err
	}

	if err := c.persist(ctx, n); err != nil {
		return err
	}

	if c.metrics != nil {
		c.metrics.DeliveriesTotal.WithLabelValues("push").Inc()
	}
	return nil
}

// Cancel 取消尚未发出的推送
func (c *PushCommand) Cancel(ctx context.Context, cmd CancelPushCommand) error {
	id, err := shared.NewNotificationID(cmd.NotificationID)
	if err != nil {
		return err
	}

	n, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := n.Cancel(cmd.CancelledBy); err != nil {
		return err
	}

	return c.persist(ctx, n)
}

// DispatchDue 处理到期的计划通知与重试通知，由外部调度触发
func (c *PushCommand) DispatchDue(ctx context.Context, limit int) (int, error) {
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

	for _, n := range append(scheduled, retries...) {
		if err := c.dispatch(ctx, n); err != nil {
			logger.Error(ctx, "due push dispatch failed", "notification_id", n.ID.String(), "error", err)
			continue
		}
		dispatched++
	}

	return dispatched, nil
}

// dispatch 执行一次发送尝试：选择服务商、调用发送器并根据结果推进状态机
func (c *PushCommand) dispatch(ctx context.Context, n *domain.PushNotification) error {
	provider, err := c.selector.Select(n)
	if err != nil {
		return c.handleSendFailure(ctx, n, err.Error())
	}

	if err := n.MarkSending(provider); err != nil {
		return err
	}
	if err := c.persist(ctx, n); err != nil {
		return err
	}

	providerMessageID, sendErr := c.sender.Send(ctx, n)
	if sendErr != nil {
		if err := n.MarkFailed(sendErr.Error()); err != nil {
			return err
		}
		if err := c.persist(ctx, n); err != nil {
			return err
		}
		return c.handleSendFailure(ctx, n, sendErr.Error())
	}

	if err := n.MarkSent(providerMessageID); err != nil {
		return err
	}
	return c.persist(ctx, n)
}

// handleSendFailure 失败后的重试决策：未耗尽则安排重试，否则永久失败
func (c *PushCommand) handleSendFailure(ctx context.Context, n *domain.PushNotification, reason string) error {
	if n.Status != domain.StatusFailed {
		if err := n.MarkFailed(reason); err != nil {
			return err
		}
	}

	retryErr := n.Retry(time.Now().UTC())
	switch {
	case retryErr == nil:
		if c.metrics != nil {
			c.metrics.RetriesTotal.WithLabelValues("push").Inc()
		}
	case errors.Is(retryErr, domain.ErrRetryExhausted):
		if err := n.MarkPermanentlyFailed(reason); err != nil {
			return err
		}
		if c.metrics != nil {
			c.metrics.PermanentFailuresTotal.WithLabelValues("push").Inc()
		}
	default:
		return retryErr
	}

	return c.persist(ctx, n)
}

// persist 在事务中保存聚合并将未提交事件写入发件箱
func (c *PushCommand) persist(ctx context.Context, n *domain.PushNotification) error {
	return c.database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := c.repo.Save(ctx, tx, n); err != nil {
			return err
		}
		return c.publisher.PublishInTx(ctx, tx, n.PullEvents())
	})
}
