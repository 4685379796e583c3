package domain

import (
	"fmt"
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// AggregateTypeDepartment 聚合类型常量
const AggregateTypeDepartment = "Department"

// maxNameLength 部门名称长度上限
const maxNameLength = 100

// Department 部门聚合根，租户内的树节点
// 状态机：PENDING -> ACTIVE <-> SUSPENDED/DISABLED -> DELETED（软删除）
type Department struct {
	shared.AggregateRoot

	// 部门 ID
	ID shared.DepartmentID
	// 租户 ID
	TenantID shared.TenantID
	// 部门名称
	Name string
	// 父部门 ID，根部门为 nil
	ParentID *shared.DepartmentID
	// 负责人
	ManagerID shared.UserID
	// 部门设置
	Settings DepartmentSettings
	// 当前状态
	Status DepartmentStatus
	// 暂停原因
	SuspendReason string
	// 删除操作者
	DeletedBy string
	// 乐观锁版本号
	Version int64
	// 加载时的版本号，乐观锁比较基准，由仓储维护；新建聚合为 0
	LoadedVersion int64
	// 创建时间
	CreatedAt time.Time
	// 更新时间
	UpdatedAt time.Time
}

// NewDepartment 创建部门聚合，初始状态 PENDING
func NewDepartment(
	id shared.DepartmentID,
	tenantID shared.TenantID,
	name string,
	parentID *shared.DepartmentID,
	managerID shared.UserID,
	settings DepartmentSettings,
) (*Department, error) {
	if name == "" || len([]rune(name)) > maxNameLength {
		return nil, fmt.Errorf("%w: name length must be 1-%d", ErrInvalidDepartmentName, maxNameLength)
	}

	now := time.Now().UTC()
	d := &Department{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		ParentID:  parentID,
		ManagerID: managerID,
		Settings:  settings,
		Status:    StatusPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	d.Record(NewDepartmentCreatedEvent(d))
	return d, nil
}

// transitionTo 状态转换守卫，成功后递增版本号
func (d *Department) transitionTo(next DepartmentStatus) error {
	if !d.Status.CanTransitionTo(next) {
		return shared.NewInvalidStateTransition(AggregateTypeDepartment, string(d.Status), string(next))
	}
	d.Status = next
	d.Version++
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// touch 非状态变更的版本推进
func (d *Department) touch() {
	d.Version++
	d.UpdatedAt = time.Now().UTC()
}

// Activate 启用部门，PENDING/SUSPENDED/DISABLED -> ACTIVE
func (d *Department) Activate() error {
	if err := d.transitionTo(StatusActive); err != nil {
		return err
	}
	d.SuspendReason = ""
	d.Record(NewDepartmentActivatedEvent(d))
	return nil
}

// Suspend 暂停部门，ACTIVE -> SUSPENDED
func (d *Department) Suspend(reason string) error {
	if err := d.transitionTo(StatusSuspended); err != nil {
		return err
	}
	d.SuspendReason = reason
	d.Record(NewDepartmentSuspendedEvent(d, reason))
	return nil
}

// Disable 停用部门，ACTIVE/SUSPENDED -> DISABLED
func (d *Department) Disable() error {
	if err := d.transitionTo(StatusDisabled); err != nil {
		return err
	}
	d.Record(NewDepartmentDisabledEvent(d))
	return nil
}

// Delete 软删除部门，调用方须先通过层级服务确认无活跃子部门
func (d *Department) Delete(deletedBy string) error {
	if err := d.transitionTo(StatusDeleted); err != nil {
		return err
	}
	d.DeletedBy = deletedBy
	d.Record(NewDepartmentDeletedEvent(d, deletedBy))
	return nil
}

// ChangeManager 更换负责人
func (d *Department) ChangeManager(managerID shared.UserID) error {
	if d.Status.IsTerminal() {
		return shared.NewInvalidStateTransition(AggregateTypeDepartment, string(d.Status), string(d.Status))
	}
	previous := d.ManagerID
	d.ManagerID = managerID
	d.touch()
	d.Record(NewDepartmentManagerChangedEvent(d, previous))
	return nil
}

// UpdateSettings 更新部门设置
func (d *Department) UpdateSettings(settings DepartmentSettings) error {
	if d.Status.IsTerminal() {
		return shared.NewInvalidStateTransition(AggregateTypeDepartment, string(d.Status), string(d.Status))
	}
	d.Settings = settings
	d.touch()
	d.Record(NewDepartmentSettingsUpdatedEvent(d))
	return nil
}

// Rename 重命名部门
func (d *Department) Rename(name string) error {
	if d.Status.IsTerminal() {
		return shared.NewInvalidStateTransition(AggregateTypeDepartment, string(d.Status), string(d.Status))
	}
	if name == "" || len([]rune(name)) > maxNameLength {
		return fmt.Errorf("%w: name length must be 1-%d", ErrInvalidDepartmentName, maxNameLength)
	}
	previous := d.Name
	d.Name = name
	d.touch()
	d.Record(NewDepartmentRenamedEvent(d, previous))
	return nil
}

// Reparent 调整父部门，环与深度校验由层级服务完成
func (d *Department) Reparent(parentID *shared.DepartmentID) error {
	if d.Status.IsTerminal() {
		return shared.NewInvalidStateTransition(AggregateTypeDepartment, string(d.Status), string(d.Status))
	}
	previous := d.ParentID
	d.ParentID = parentID
	d.touch()
	d.Record(NewDepartmentReparentedEvent(d, previous))
	return nil
}

// IsManagedBy 是否由指定用户负责
func (d *Department) IsManagedBy(userID string) bool {
	return d.ManagerID.String() == userID
}

// IsTerminal 是否处于终态
func (d *Department) IsTerminal() bool {
	return d.Status.IsTerminal()
}
