// Package mysql 提供部门仓储接口的 MySQL GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/department/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// DepartmentModel 部门数据库模型
type DepartmentModel struct {
	gorm.Model
	DepartmentID    string `gorm:"column:department_id;type:varchar(36);uniqueIndex;not null"`
	TenantID        string `gorm:"column:tenant_id;type:varchar(36);index;not null"`
	Name            string `gorm:"column:name;type:varchar(100);not null"`
	ParentID        string `gorm:"column:parent_id;type:varchar(36);index"`
	ManagerID       string `gorm:"column:manager_id;type:varchar(36);not null"`
	Status          string `gorm:"column:status;type:varchar(20);index;not null"`
	SuspendReason   string `gorm:"column:suspend_reason;type:varchar(500)"`
	DeletedBy       string `gorm:"column:deleted_by;type:varchar(36)"`
	MaxMembers      int    `gorm:"column:max_members;not null;default:100"`
	AllowSelfJoin   bool   `gorm:"column:allow_self_join;not null;default:0"`
	RequireApproval bool   `gorm:"column:require_approval;not null;default:1"`
	Visibility      string `gorm:"column:visibility;type:varchar(10);not null;default:'tenant'"`
	Version         int64  `gorm:"column:version;not null;default:1"`
}

// TableName 指定表名
func (DepartmentModel) TableName() string { return "departments" }

// departmentRepositoryImpl 是 domain.Repository 接口的 GORM 实现
type departmentRepositoryImpl struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建部门仓储实例
func NewDepartmentRepository(db *gorm.DB) domain.Repository {
	return &departmentRepositoryImpl{db: db}
}

// Save 实现 domain.Repository.Save，乐观锁版本校验
func (r *departmentRepositoryImpl) Save(ctx context.Context, tx *gorm.DB, d *domain.Department) error {
	m := toModel(d)

	if d.LoadedVersion == 0 {
		if err := tx.WithContext(ctx).Create(m).Error; err != nil {
			logger.Error(ctx, "department_repository.Save create failed", "department_id", d.ID.String(), "error", err)
			return fmt.Errorf("failed to create department: %w", err)
		}
		d.LoadedVersion = d.Version
		return nil
	}

	result := tx.WithContext(ctx).Model(&DepartmentModel{}).
		Where("department_id = ? AND version = ?", d.ID.String(), d.LoadedVersion).
		Updates(map[string]interface{}{
			"name":             m.Name,
			"parent_id":        m.ParentID,
			"manager_id":       m.ManagerID,
			"status":           m.Status,
			"suspend_reason":   m.SuspendReason,
			"deleted_by":       m.DeletedBy,
			"max_members":      m.MaxMembers,
			"allow_self_join":  m.AllowSelfJoin,
			"require_approval": m.RequireApproval,
			"visibility":       m.Visibility,
			"version":          m.Version,
		})
	if result.Error != nil {
		logger.Error(ctx, "department_repository.Save update failed", "department_id", d.ID.String(), "error", result.Error)
		return fmt.Errorf("failed to update department: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}

	d.LoadedVersion = d.Version
	return nil
}

// Get 实现 domain.Repository.Get
func (r *departmentRepositoryImpl) Get(ctx context.Context, id shared.DepartmentID) (*domain.Department, error) {
	var m DepartmentModel
	if err := r.db.WithContext(ctx).Where("department_id = ?", id.String()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		logger.Error(ctx, "department_repository.Get failed", "department_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return toDomain(&m)
}

// ListByTenant 实现 domain.Repository.ListByTenant，默认排除已删除部门
func (r *departmentRepositoryImpl) ListByTenant(ctx context.Context, tenantID shared.TenantID, status domain.DepartmentStatus, limit, offset int) ([]*domain.Department, int64, error) {
	var ms []DepartmentModel
	var total int64

	query := r.db.WithContext(ctx).Model(&DepartmentModel{}).
		Where("tenant_id = ?", tenantID.String())
	if status != "" {
		query = query.Where("status = ?", string(status))
	} else {
		query = query.Where("status <> ?", string(domain.StatusDeleted))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at asc").Limit(limit).Offset(offset).Find(&ms).Error; err != nil {
		logger.Error(ctx, "department_repository.ListByTenant failed", "tenant_id", tenantID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list departments: %w", err)
	}

	return toDomainList(ms, total)
}

// ListChildren 实现 domain.Repository.ListChildren
func (r *departmentRepositoryImpl) ListChildren(ctx context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) ([]*domain.Department, error) {
	var ms []DepartmentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id = ? AND status <> ?",
			tenantID.String(), parentID.String(), string(domain.StatusDeleted)).
		Order("created_at asc").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	res, _, err := toDomainList(ms, 0)
	return res, err
}

// CountActiveChildren 实现 domain.Repository.CountActiveChildren
func (r *departmentRepositoryImpl) CountActiveChildren(ctx context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DepartmentModel{}).
		Where("tenant_id = ? AND parent_id = ? AND status = ?",
			tenantID.String(), parentID.String(), string(domain.StatusActive)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active children: %w", err)
	}
	return count, nil
}

// toModel 领域对象转数据库模型
func toModel(d *domain.Department) *DepartmentModel {
	parentID := ""
	if d.ParentID != nil {
		parentID = d.ParentID.String()
	}

	return &DepartmentModel{
		DepartmentID:    d.ID.String(),
		TenantID:        d.TenantID.String(),
		Name:            d.Name,
		ParentID:        parentID,
		ManagerID:       d.ManagerID.String(),
		Status:          string(d.Status),
		SuspendReason:   d.SuspendReason,
		DeletedBy:       d.DeletedBy,
		MaxMembers:      d.Settings.MaxMembers(),
		AllowSelfJoin:   d.Settings.AllowSelfJoin(),
		RequireApproval: d.Settings.RequireApproval(),
		Visibility:      string(d.Settings.Visibility()),
		Version:         d.Version,
	}
}

// toDomain 数据库模型转领域对象
func toDomain(m *DepartmentModel) (*domain.Department, error) {
	id, err := shared.NewDepartmentID(m.DepartmentID)
	if err != nil {
		return nil, err
	}
	tenantID, err := shared.NewTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	managerID, err := shared.NewUserID(m.ManagerID)
	if err != nil {
		return nil, err
	}
	settings, err := domain.NewDepartmentSettings(m.MaxMembers, m.AllowSelfJoin, m.RequireApproval, domain.Visibility(m.Visibility))
	if err != nil {
		return nil, err
	}

	var parentID *shared.DepartmentID
	if m.ParentID != "" {
		pid, err := shared.NewDepartmentID(m.ParentID)
		if err != nil {
			return nil, err
		}
		parentID = &pid
	}

	return &domain.Department{
		ID:            id,
		TenantID:      tenantID,
		Name:          m.Name,
		ParentID:      parentID,
		ManagerID:     managerID,
		Settings:      settings,
		Status:        domain.DepartmentStatus(m.Status),
		SuspendReason: m.SuspendReason,
		DeletedBy:     m.DeletedBy,
		Version:       m.Version,
		LoadedVersion: m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// toDomainList 批量转换
func toDomainList(ms []DepartmentModel, total int64) ([]*domain.Department, int64, error) {
	res := make([]*domain.Department, 0, len(ms))
	for i := range ms {
		d, err := toDomain(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, d)
	}
	return res, total, nil
}
