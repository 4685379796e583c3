package application

import (
	"context"
)

// DepartmentService 部门服务门面，整合命令和查询服务
type DepartmentService struct {
	command *DepartmentCommand
	query   *DepartmentQuery
}

// NewDepartmentService 构造函数
func NewDepartmentService(command *DepartmentCommand, query *DepartmentQuery) *DepartmentService {
	return &DepartmentService{
		command: command,
		query:   query,
	}
}

// --- Command (Writes) ---

// CreateDepartment 创建部门
func (s *DepartmentService) CreateDepartment(ctx context.Context, cmd CreateDepartmentCommand) (string, error) {
	return s.command.CreateDepartment(ctx, cmd)
}

// Activate 启用部门
func (s *DepartmentService) Activate(ctx context.Context, cmd LifecycleCommand) error {
	return s.command.Activate(ctx, cmd)
}

// Suspend 暂停部门
func (s *DepartmentService) Suspend(ctx context.Context, cmd SuspendDepartmentCommand) error {
	return s.command.Suspend(ctx, cmd)
}

// Disable 停用部门
func (s *DepartmentService) Disable(ctx context.Context, cmd LifecycleCommand) error {
	return s.command.Disable(ctx, cmd)
}

// Delete 软删除部门
func (s *DepartmentService) Delete(ctx context.Context, cmd LifecycleCommand) error {
	return s.command.Delete(ctx, cmd)
}

// ChangeManager 更换负责人
func (s *DepartmentService) ChangeManager(ctx context.Context, cmd ChangeManagerCommand) error {
	return s.command.ChangeManager(ctx, cmd)
}

// UpdateSettings 更新部门设置
func (s *DepartmentService) UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) error {
	return s.command.UpdateSettings(ctx, cmd)
}

// Rename 重命名部门
func (s *DepartmentService) Rename(ctx context.Context, cmd RenameDepartmentCommand) error {
	return s.command.Rename(ctx, cmd)
}

// Reparent 调整父部门
func (s *DepartmentService) Reparent(ctx context.Context, cmd ReparentDepartmentCommand) error {
	return s.command.Reparent(ctx, cmd)
}

// --- Query (Reads) ---

// GetDepartment 按 ID 查询部门
func (s *DepartmentService) GetDepartment(ctx context.Context, departmentID string) (*DepartmentDTO, error) {
	return s.query.GetDepartment(ctx, departmentID)
}

// ListByTenant 按租户分页查询部门
func (s *DepartmentService) ListByTenant(ctx context.Context, tenantID, status string, limit, offset int) ([]*DepartmentDTO, int64, error) {
	return s.query.ListByTenant(ctx, tenantID, status, limit, offset)
}

// ListChildren 查询直接子部门
func (s *DepartmentService) ListChildren(ctx context.Context, tenantID, departmentID string) ([]*DepartmentDTO, error) {
	return s.query.ListChildren(ctx, tenantID, departmentID)
}

// GetTree 查询租户的完整部门树
func (s *DepartmentService) GetTree(ctx context.Context, tenantID string) ([]*DepartmentTreeNode, error) {
	return s.query.GetTree(ctx, tenantID)
}
