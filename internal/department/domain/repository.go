package domain

import (
	"context"

	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// Repository 部门仓储接口
type Repository interface {
	// Save 持久化聚合；更新时按加载版本做乐观锁校验
	Save(ctx context.Context, tx *gorm.DB, d *Department) error
	// Get 按 ID 加载聚合
	Get(ctx context.Context, id shared.DepartmentID) (*Department, error)
	// ListByTenant 按租户分页查询（不含已删除）
	ListByTenant(ctx context.Context, tenantID shared.TenantID, status DepartmentStatus, limit, offset int) ([]*Department, int64, error)
	// ListChildren 查询直接子部门（不含已删除）
	ListChildren(ctx context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) ([]*Department, error)
	// CountActiveChildren 统计处于活跃状态的直接子部门数
	CountActiveChildren(ctx context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) (int64, error)
}

// EventPublisher 事件发布接口，与业务数据同事务写出
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx *gorm.DB, events []shared.Event) error
}
