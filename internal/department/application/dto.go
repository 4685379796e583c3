package application

import (
	"time"

	"github.com/wyfcoding/notificationcenter/internal/department/domain"
)

// CreateDepartmentCommand 创建部门命令
type CreateDepartmentCommand struct {
	TenantID        string
	Name            string
	ParentID        string
	ManagerID       string
	MaxMembers      int
	AllowSelfJoin   bool
	RequireApproval bool
	Visibility      string
}

// LifecycleCommand 启用/停用/删除命令
type LifecycleCommand struct {
	DepartmentID string
	TenantID     string
	OperatorID   string
	Roles        []string
}

// SuspendDepartmentCommand 暂停命令
type SuspendDepartmentCommand struct {
	DepartmentID string
	TenantID     string
	OperatorID   string
	Roles        []string
	Reason       string
}

// ChangeManagerCommand 更换负责人命令
type ChangeManagerCommand struct {
	DepartmentID string
	TenantID     string
	OperatorID   string
	Roles        []string
	ManagerID    string
}

// UpdateSettingsCommand 更新设置命令
type UpdateSettingsCommand struct {
	DepartmentID    string
	TenantID        string
	OperatorID      string
	Roles           []string
	MaxMembers      int
	AllowSelfJoin   bool
	RequireApproval bool
	Visibility      string
}

// RenameDepartmentCommand 重命名命令
type RenameDepartmentCommand struct {
	DepartmentID string
	TenantID     string
	OperatorID   string
	Roles        []string
	Name         string
}

// ReparentDepartmentCommand 改挂命令
type ReparentDepartmentCommand struct {
	DepartmentID string
	TenantID     string
	OperatorID   string
	Roles        []string
	// 新父部门 ID，空串表示挂为根部门
	ParentID string
}

// DepartmentDTO 部门查询视图
type DepartmentDTO struct {
	DepartmentID    string    `json:"department_id"`
	TenantID        string    `json:"tenant_id"`
	Name            string    `json:"name"`
	ParentID        string    `json:"parent_id,omitempty"`
	ManagerID       string    `json:"manager_id"`
	Status          string    `json:"status"`
	SuspendReason   string    `json:"suspend_reason,omitempty"`
	MaxMembers      int       `json:"max_members"`
	AllowSelfJoin   bool      `json:"allow_self_join"`
	RequireApproval bool      `json:"require_approval"`
	Visibility      string    `json:"visibility"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DepartmentTreeNode 部门树节点视图
type DepartmentTreeNode struct {
	DepartmentDTO
	Children []*DepartmentTreeNode `json:"children,omitempty"`
}

// toDTO 领域对象转查询视图
func toDTO(d *domain.Department) *DepartmentDTO {
	parentID := ""
	if d.ParentID != nil {
		parentID = d.ParentID.String()
	}

	return &DepartmentDTO{
		DepartmentID:    d.ID.String(),
		TenantID:        d.TenantID.String(),
		Name:            d.Name,
		ParentID:        parentID,
		ManagerID:       d.ManagerID.String(),
		Status:          string(d.Status),
		SuspendReason:   d.SuspendReason,
		MaxMembers:      d.Settings.MaxMembers(),
		AllowSelfJoin:   d.Settings.AllowSelfJoin(),
		RequireApproval: d.Settings.RequireApproval(),
		Visibility:      string(d.Settings.Visibility()),
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
