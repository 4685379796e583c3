package domain

import "fmt"

// 成员数限制
const (
	minMembers = 1
	maxMembers = 10000
)

// Visibility 部门可见范围
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityTenant  Visibility = "tenant"
	VisibilityPrivate Visibility = "private"
)

// Valid 是否为已知可见范围
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityTenant, VisibilityPrivate:
		return true
	}
	return false
}

// DepartmentSettings 部门设置值对象
// allowSelfJoin 与 requireApproval 互斥：自助加入的语义是免审批
type DepartmentSettings struct {
	maxMembers      int
	allowSelfJoin   bool
	requireApproval bool
	visibility      Visibility
}

// NewDepartmentSettings 校验并构造部门设置
func NewDepartmentSettings(maxMembersLimit int, allowSelfJoin, requireApproval bool, visibility Visibility) (DepartmentSettings, error) {
	if maxMembersLimit < minMembers || maxMembersLimit > maxMembers {
		return DepartmentSettings{}, fmt.Errorf("%w: max members must be %d-%d", ErrInvalidSettings, minMembers, maxMembers)
	}
	if allowSelfJoin && requireApproval {
		return DepartmentSettings{}, fmt.Errorf("%w: self-join cannot require approval", ErrInvalidSettings)
	}
	if !visibility.Valid() {
		return DepartmentSettings{}, fmt.Errorf("%w: unknown visibility %q", ErrInvalidSettings, visibility)
	}

	return DepartmentSettings{
		maxMembers:      maxMembersLimit,
		allowSelfJoin:   allowSelfJoin,
		requireApproval: requireApproval,
		visibility:      visibility,
	}, nil
}

// DefaultSettings 默认部门设置
func DefaultSettings() DepartmentSettings {
	return DepartmentSettings{
		maxMembers:      100,
		allowSelfJoin:   false,
		requireApproval: true,
		visibility:      VisibilityTenant,
	}
}

// MaxMembers 成员数上限
func (s DepartmentSettings) MaxMembers() int { return s.maxMembers }

// AllowSelfJoin 是否允许自助加入
func (s DepartmentSettings) AllowSelfJoin() bool { return s.allowSelfJoin }

// RequireApproval 加入是否需要审批
func (s DepartmentSettings) RequireApproval() bool { return s.requireApproval }

// Visibility 可见范围
func (s DepartmentSettings) Visibility() Visibility { return s.visibility }
