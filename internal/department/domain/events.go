package domain

import (
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// 部门领域事件类型
const (
	EventTypeDepartmentCreated         = "department.created"
	EventTypeDepartmentActivated       = "department.activated"
	EventTypeDepartmentSuspended       = "department.suspended"
	EventTypeDepartmentDisabled        = "department.disabled"
	EventTypeDepartmentDeleted         = "department.deleted"
	EventTypeDepartmentManagerChanged  = "department.manager_changed"
	EventTypeDepartmentSettingsUpdated = "department.settings_updated"
	EventTypeDepartmentRenamed         = "department.renamed"
	EventTypeDepartmentReparented      = "department.reparented"
)

func init() {
	shared.RegisterEvent(EventTypeDepartmentCreated, func() shared.Event { return &DepartmentCreatedEvent{} })
	shared.RegisterEvent(EventTypeDepartmentActivated, func() shared.Event { return &DepartmentActivatedEvent{} })
	shared.RegisterEvent(EventTypeDepartmentSuspended, func() shared.Event { return &DepartmentSuspendedEvent{} })
	shared.RegisterEvent(EventTypeDepartmentDisabled, func() shared.Event { return &DepartmentDisabledEvent{} })
	shared.RegisterEvent(EventTypeDepartmentDeleted, func() shared.Event { return &DepartmentDeletedEvent{} })
	shared.RegisterEvent(EventTypeDepartmentManagerChanged, func() shared.Event { return &DepartmentManagerChangedEvent{} })
	shared.RegisterEvent(EventTypeDepartmentSettingsUpdated, func() shared.Event { return &DepartmentSettingsUpdatedEvent{} })
	shared.RegisterEvent(EventTypeDepartmentRenamed, func() shared.Event { return &DepartmentRenamedEvent{} })
	shared.RegisterEvent(EventTypeDepartmentReparented, func() shared.Event { return &DepartmentReparentedEvent{} })
}

// parentIDString 父部门 ID 的事件表示，根部门为空串
func parentIDString(parentID *shared.DepartmentID) string {
	if parentID == nil {
		return ""
	}
	return parentID.String()
}

// DepartmentCreatedEvent 部门创建事件
type DepartmentCreatedEvent struct {
	shared.BaseDomainEvent
	DepartmentName string `json:"name"`
	ParentID       string `json:"parent_id,omitempty"`
	ManagerID      string `json:"manager_id"`
}

// NewDepartmentCreatedEvent 构造创建事件
func NewDepartmentCreatedEvent(d *Department) *DepartmentCreatedEvent {
	return &DepartmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentCreated, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
		DepartmentName:  d.Name,
		ParentID:        parentIDString(d.ParentID),
		ManagerID:       d.ManagerID.String(),
	}
}

// DepartmentActivatedEvent 部门启用事件
type DepartmentActivatedEvent struct {
	shared.BaseDomainEvent
}

// NewDepartmentActivatedEvent 构造启用事件
func NewDepartmentActivatedEvent(d *Department) *DepartmentActivatedEvent {
	return &DepartmentActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentActivated, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
	}
}

// DepartmentSuspendedEvent 部门暂停事件
type DepartmentSuspendedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewDepartmentSuspendedEvent 构造暂停事件
func NewDepartmentSuspendedEvent(d *Department, reason string) *DepartmentSuspendedEvent {
	return &DepartmentSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentSuspended, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
		Reason:          reason,
	}
}

// DepartmentDisabledEvent 部门停用事件
type DepartmentDisabledEvent struct {
	shared.BaseDomainEvent
}

// NewDepartmentDisabledEvent 构造停用事件
func NewDepartmentDisabledEvent(d *Department) *DepartmentDisabledEvent {
	return &DepartmentDisabledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentDisabled, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
	}
}

// DepartmentDeletedEvent 部门删除事件
type DepartmentDeletedEvent struct {
	shared.BaseDomainEvent
	DeletedBy string `json:"deleted_by"`
}

// NewDepartmentDeletedEvent 构造删除事件
func NewDepartmentDeletedEvent(d *Department, deletedBy string) *DepartmentDeletedEvent {
	return &DepartmentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentDeleted, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
		DeletedBy:       deletedBy,
	}
}

// DepartmentManagerChangedEvent 部门负责人变更事件
type DepartmentManagerChangedEvent struct {
	shared.BaseDomainEvent
	PreviousManagerID string `json:"previous_manager_id"`
	ManagerID         string `json:"manager_id"`
}

// NewDepartmentManagerChangedEvent 构造负责人变更事件
func NewDepartmentManagerChangedEvent(d *Department, previous shared.UserID) *DepartmentManagerChangedEvent {
	return &DepartmentManagerChangedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeDepartmentManagerChanged, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
		PreviousManagerID: previous.String(),
		ManagerID:         d.ManagerID.String(),
	}
}

// DepartmentSettingsUpdatedEvent 部门设置更新事件
type DepartmentSettingsUpdatedEvent struct {
	shared.BaseDomainEvent
	MaxMembers      int    `json:"max_members"`
	AllowSelfJoin   bool   `json:"allow_self_join"`
	RequireApproval bool   `json:"require_approval"`
	Visibility      string `json:"visibility"`
}

// NewDepartmentSettingsUpdatedEvent 构造设置更新事件
func NewDepartmentSettingsUpdatedEvent(d *Department) *DepartmentSettingsUpdatedEvent {
	return &DepartmentSettingsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentSettingsUpdated, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
		MaxMembers:      d.Settings.MaxMembers(),
		AllowSelfJoin:   d.Settings.AllowSelfJoin(),
		RequireApproval: d.Settings.RequireApproval(),
		Visibility:      string(d.Settings.Visibility()),
	}
}

// DepartmentRenamedEvent 部门重命名事件
type DepartmentRenamedEvent struct {
	shared.BaseDomainEvent
	PreviousName   string `json:"previous_name"`
	DepartmentName string `json:"name"`
}

// NewDepartmentRenamedEvent 构造重命名事件
func NewDepartmentRenamedEvent(d *Department, previous string) *DepartmentRenamedEvent {
	return &DepartmentRenamedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepartmentRenamed, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
		PreviousName:    previous,
		DepartmentName:  d.Name,
	}
}

// DepartmentReparentedEvent 部门改挂事件
type DepartmentReparentedEvent struct {
	shared.BaseDomainEvent
	PreviousParentID string `json:"previous_parent_id,omitempty"`
	ParentID         string `json:"parent_id,omitempty"`
}

// NewDepartmentReparentedEvent 构造改挂事件
func NewDepartmentReparentedEvent(d *Department, previous *shared.DepartmentID) *DepartmentReparentedEvent {
	return &DepartmentReparentedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeDepartmentReparented, AggregateTypeDepartment, d.ID.String(), d.TenantID.String(), d.Version),
		PreviousParentID: parentIDString(previous),
		ParentID:         parentIDString(d.ParentID),
	}
}
