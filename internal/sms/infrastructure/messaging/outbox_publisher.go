// Package messaging 提供短信上下文的事件发布实现
package messaging

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/outbox"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
)

// TopicSmsEvents 短信事件主题
const TopicSmsEvents = "notification.sms.events"

// OutboxEventPublisher 通过发件箱发布领域事件，保证与业务数据同事务
type OutboxEventPublisher struct {
	manager *outbox.Manager
}

// NewOutboxEventPublisher 创建发布器
func NewOutboxEventPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &OutboxEventPublisher{manager: manager}
}

// PublishInTx 实现 domain.EventPublisher
func (p *OutboxEventPublisher) PublishInTx(ctx context.Context, tx *gorm.DB, events []shared.Event) error {
	return p.manager.StoreAllInTx(ctx, tx, TopicSmsEvents, events)
}
