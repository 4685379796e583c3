package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// Repository 推送通知仓储接口
type Repository interface {
	// 在事务中保存聚合，版本不匹配时返回 shared.ErrVersionConflict
	Save(ctx context.Context, tx *gorm.DB, n *PushNotification) error
	// 按 ID 获取聚合，不存在时返回 shared.ErrNotFound
	Get(ctx context.Context, id shared.NotificationID) (*PushNotification, error)
	// 按租户与用户分页查询
	ListByUser(ctx context.Context, tenantID shared.TenantID, userID shared.UserID, status PushStatus, limit, offset int) ([]*PushNotification, int64, error)
	// 查询到期待重试的通知
	ListDueForRetry(ctx context.Context, before time.Time, limit int) ([]*PushNotification, error)
	// 查询到期待发送的计划通知
	ListDueScheduled(ctx context.Context, before time.Time, limit int) ([]*PushNotification, error)
}

// EventPublisher 领域事件发布接口，由基础设施层的 Outbox 实现
type EventPublisher interface {
	// 在事务中发布一组领域事件
	PublishInTx(ctx context.Context, tx *gorm.DB, events []shared.Event) error
}
