package domain

import (
	"context"
	"errors"
	"fmt"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// MaxDepth 组织结构最大层级
const MaxDepth = 10

// RoleTenantAdmin 租户管理员角色
const RoleTenantAdmin = "tenant_admin"

// HierarchyService 部门层级领域服务
// 负责改挂的环检测与深度校验、删除守卫和管理权限判定
type HierarchyService struct {
	repo Repository
}

// NewHierarchyService 创建层级服务
func NewHierarchyService(repo Repository) *HierarchyService {
	return &HierarchyService{repo: repo}
}

// ValidateParent 校验新父部门：须存在且活跃、不形成环、不超过最大层级
// parentID 为 nil 表示挂为根部门，总是合法
func (s *HierarchyService) ValidateParent(ctx context.Context, d *Department, parentID *shared.DepartmentID) error {
	if parentID == nil {
		return nil
	}
	if parentID.String() == d.ID.String() {
		return ErrHierarchyCycle
	}

	parent, err := s.repo.Get(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent.Status != StatusActive {
		return fmt.Errorf("%w: %s", ErrParentNotActive, parent.Status)
	}
	if parent.TenantID.String() != d.TenantID.String() {
		return shared.ErrNotFound
	}

	// 沿祖先链上溯：遇到自身即成环，链长达到上限即超深
	depth := 1
	current := parent
	for current.ParentID != nil {
		if current.ParentID.String() == d.ID.String() {
			return ErrHierarchyCycle
		}
		depth++
		if depth >= MaxDepth {
			return ErrMaxDepthExceeded
		}
		ancestor, err := s.repo.Get(ctx, *current.ParentID)
		if err != nil {
			// 祖先链断裂视为数据损坏，不放行
			return fmt.Errorf("broken hierarchy at %s: %w", current.ParentID.String(), err)
		}
		current = ancestor
	}

	return nil
}

// EnsureDeletable 删除守卫：存在活跃子部门时禁止删除
func (s *HierarchyService) EnsureDeletable(ctx context.Context, d *Department) error {
	count, err := s.repo.CountActiveChildren(ctx, d.TenantID, d.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d active children", ErrDepartmentHasChildren, count)
	}
	return nil
}

// EnsureCanManage 权限判定：部门负责人或租户管理员可管理
func (s *HierarchyService) EnsureCanManage(d *Department, operatorID string, roles []string) error {
	if d.IsManagedBy(operatorID) {
		return nil
	}
	for _, role := range roles {
		if role == RoleTenantAdmin {
			return nil
		}
	}
	return ErrPermissionDenied
}

// Depth 计算部门在树中的深度，根部门为 1
func (s *HierarchyService) Depth(ctx context.Context, d *Department) (int, error) {
	depth := 1
	current := d
	for current.ParentID != nil {
		depth++
		if depth > MaxDepth {
			return 0, ErrMaxDepthExceeded
		}
		parent, err := s.repo.Get(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return depth, nil
			}
			return 0, err
		}
		current = parent
	}
	return depth, nil
}
