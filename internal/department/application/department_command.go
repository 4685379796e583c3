// Package application 部门上下文的应用服务
package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/department/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// DepartmentCommand 处理部门相关的命令操作
type DepartmentCommand struct {
	database  *db.DB
	repo      domain.Repository
	publisher domain.EventPublisher
	hierarchy *domain.HierarchyService
	cache     *cache.RedisCache
}

// NewDepartmentCommand 创建命令服务
func NewDepartmentCommand(
	database *db.DB,
	repo domain.Repository,
	publisher domain.EventPublisher,
	hierarchy *domain.HierarchyService,
	redisCache *cache.RedisCache,
) *DepartmentCommand {
	return &DepartmentCommand{
		database:  database,
		repo:      repo,
		publisher: publisher,
		hierarchy: hierarchy,
		cache:     redisCache,
	}
}

// CreateDepartment 创建部门，返回部门 ID
func (c *DepartmentCommand) CreateDepartment(ctx context.Context, cmd CreateDepartmentCommand) (string, error) {
	tenantID, err := shared.NewTenantID(cmd.TenantID)
	if err != nil {
		return "", err
	}
	managerID, err := shared.NewUserID(cmd.ManagerID)
	if err != nil {
		return "", err
	}
	settings, err := buildSettings(cmd.MaxMembers, cmd.AllowSelfJoin, cmd.RequireApproval, cmd.Visibility)
	if err != nil {
		return "", err
	}
	parentID, err := parseParentID(cmd.ParentID)
	if err != nil {
		return "", err
	}

	id, err := shared.NewDepartmentID(uuid.NewString())
	if err != nil {
		return "", err
	}

	d, err := domain.NewDepartment(id, tenantID, cmd.Name, parentID, managerID, settings)
	if err != nil {
		return "", err
	}

	if err := c.hierarchy.ValidateParent(ctx, d, parentID); err != nil {
		return "", err
	}

	if err := c.persist(ctx, d); err != nil {
		return "", err
	}
	return d.ID.String(), nil
}

// Activate 启用部门
func (c *DepartmentCommand) Activate(ctx context.Context, cmd LifecycleCommand) error {
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		return d.Activate()
	})
}

// Suspend 暂停部门
func (c *DepartmentCommand) Suspend(ctx context.Context, cmd SuspendDepartmentCommand) error {
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		return d.Suspend(cmd.Reason)
	})
}

// Disable 停用部门
func (c *DepartmentCommand) Disable(ctx context.Context, cmd LifecycleCommand) error {
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		return d.Disable()
	})
}

// Delete 软删除部门，先通过层级服务确认无活跃子部门
func (c *DepartmentCommand) Delete(ctx context.Context, cmd LifecycleCommand) error {
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		if err := c.hierarchy.EnsureDeletable(ctx, d); err != nil {
			return err
		}
		return d.Delete(cmd.OperatorID)
	})
}

// ChangeManager 更换负责人
func (c *DepartmentCommand) ChangeManager(ctx context.Context, cmd ChangeManagerCommand) error {
	managerID, err := shared.NewUserID(cmd.ManagerID)
	if err != nil {
		return err
	}
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		return d.ChangeManager(managerID)
	})
}

// UpdateSettings 更新部门设置
func (c *DepartmentCommand) UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) error {
	settings, err := buildSettings(cmd.MaxMembers, cmd.AllowSelfJoin, cmd.RequireApproval, cmd.Visibility)
	if err != nil {
		return err
	}
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		return d.UpdateSettings(settings)
	})
}

// Rename 重命名部门
func (c *DepartmentCommand) Rename(ctx context.Context, cmd RenameDepartmentCommand) error {
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		return d.Rename(cmd.Name)
	})
}

// Reparent 调整父部门，先做环与深度校验
func (c *DepartmentCommand) Reparent(ctx context.Context, cmd ReparentDepartmentCommand) error {
	parentID, err := parseParentID(cmd.ParentID)
	if err != nil {
		return err
	}
	return c.mutate(ctx, cmd.DepartmentID, cmd.OperatorID, cmd.Roles, func(ctx context.Context, d *domain.Department) error {
		if err := c.hierarchy.ValidateParent(ctx, d, parentID); err != nil {
			return err
		}
		return d.Reparent(parentID)
	})
}

// mutate 加载聚合、校验权限、执行变更并持久化
func (c *DepartmentCommand) mutate(ctx context.Context, departmentID, operatorID string, roles []string, fn func(context.Context, *domain.Department) error) error {
	id, err := shared.NewDepartmentID(departmentID)
	if err != nil {
		return err
	}

	d, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := c.hierarchy.EnsureCanManage(d, operatorID, roles); err != nil {
		return err
	}

	if err := fn(ctx, d); err != nil {
		return err
	}

	return c.persist(ctx, d)
}

// persist 在事务中保存聚合并将未提交事件写入发件箱，成功后失效树缓存
func (c *DepartmentCommand) persist(ctx context.Context, d *domain.Department) error {
	err := c.database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := c.repo.Save(ctx, tx, d); err != nil {
			return err
		}
		return c.publisher.PublishInTx(ctx, tx, d.PullEvents())
	})
	if err != nil {
		return err
	}

	if c.cache != nil {
		keys := []string{
			fmt.Sprintf("department:dept:%s", d.ID.String()),
			fmt.Sprintf("department:tree:%s", d.TenantID.String()),
		}
		for _, key := range keys {
			if delErr := c.cache.Delete(ctx, key); delErr != nil {
				logger.Warn(ctx, "department cache invalidation failed", "key", key, "error", delErr)
			}
		}
	}
	return nil
}

// buildSettings 组装部门设置，可见范围缺省为 tenant
func buildSettings(maxMembers int, allowSelfJoin, requireApproval bool, visibility string) (domain.DepartmentSettings, error) {
	if visibility == "" {
		visibility = string(domain.VisibilityTenant)
	}
	return domain.NewDepartmentSettings(maxMembers, allowSelfJoin, requireApproval, domain.Visibility(visibility))
}

// parseParentID 解析父部门 ID，空串表示根部门
func parseParentID(value string) (*shared.DepartmentID, error) {
	if value == "" {
		return nil, nil
	}
	parentID, err := shared.NewDepartmentID(value)
	if err != nil {
		return nil, err
	}
	return &parentID, nil
}
