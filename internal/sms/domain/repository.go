package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// Repository 短信仓储接口
type Repository interface {
	// Save 持久化聚合；更新时按加载版本做乐观锁校验
	Save(ctx context.Context, tx *gorm.DB, m *SmsMessage) error
	// Get 按 ID 加载聚合
	Get(ctx context.Context, id shared.NotificationID) (*SmsMessage, error)
	// ListByUser 按租户与用户分页查询
	ListByUser(ctx context.Context, tenantID shared.TenantID, userID shared.UserID, status SmsStatus, limit, offset int) ([]*SmsMessage, int64, error)
	// ListDueForRetry 查询到期待重试的短信
	ListDueForRetry(ctx context.Context, before time.Time, limit int) ([]*SmsMessage, error)
	// ListDueScheduled 查询到期的计划短信
	ListDueScheduled(ctx context.Context, before time.Time, limit int) ([]*SmsMessage, error)
}

// EventPublisher 事件发布接口，与业务数据同事务写出
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx *gorm.DB, events []shared.Event) error
}

// Sender 短信发送器接口，由基础设施层接入具体服务商
type Sender interface {
	// Send 发送短信，返回服务商消息 ID
	Send(ctx context.Context, m *SmsMessage) (providerMessageID string, err error)
	// Provider 返回服务商名称
	Provider() string
}
