// Package domain 部门组织结构的领域模型
package domain

// DepartmentStatus 部门状态
type DepartmentStatus string

const (
	StatusPending   DepartmentStatus = "PENDING"
	StatusActive    DepartmentStatus = "ACTIVE"
	StatusSuspended DepartmentStatus = "SUSPENDED"
	StatusDisabled  DepartmentStatus = "DISABLED"
	StatusDeleted   DepartmentStatus = "DELETED"
)

// departmentTransitions 状态转换合法性表
// DELETED 为终态（软删除），无出边
var departmentTransitions = map[DepartmentStatus][]DepartmentStatus{
	StatusPending:   {StatusActive, StatusDeleted},
	StatusActive:    {StatusSuspended, StatusDisabled, StatusDeleted},
	StatusSuspended: {StatusActive, StatusDisabled, StatusDeleted},
	StatusDisabled:  {StatusActive, StatusDeleted},
	StatusDeleted:   {},
}

// Valid 是否为已知状态
func (s DepartmentStatus) Valid() bool {
	_, ok := departmentTransitions[s]
	return ok
}

// CanTransitionTo 判断是否允许转换到目标状态
func (s DepartmentStatus) CanTransitionTo(next DepartmentStatus) bool {
	for _, allowed := range departmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal 是否为终态
func (s DepartmentStatus) IsTerminal() bool {
	return len(departmentTransitions[s]) == 0 && s.Valid()
}
