package domain

import (
	"context"

	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// Repository 模板仓储接口
type Repository interface {
	// Save 持久化聚合与新增修订；更新时按加载版本做乐观锁校验
	Save(ctx context.Context, tx *gorm.DB, t *EmailTemplate) error
	// Get 按 ID 加载聚合（含全部修订）
	Get(ctx context.Context, id shared.TemplateID) (*EmailTemplate, error)
	// GetByName 按租户与名称加载聚合
	GetByName(ctx context.Context, tenantID shared.TenantID, name string) (*EmailTemplate, error)
	// ListByTenant 按租户分页查询（不含已删除）
	ListByTenant(ctx context.Context, tenantID shared.TenantID, status TemplateStatus, limit, offset int) ([]*EmailTemplate, int64, error)
}

// EventPublisher 事件发布接口，与业务数据同事务写出
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx *gorm.DB, events []shared.Event) error
}
