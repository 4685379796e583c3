package domain

import "errors"

var (
	// ErrInvalidDepartmentName 非法部门名称
	ErrInvalidDepartmentName = errors.New("invalid department name")
	// ErrInvalidSettings 非法部门设置
	ErrInvalidSettings = errors.New("invalid department settings")
	// ErrDepartmentHasChildren 部门下仍有活跃子部门，禁止删除
	ErrDepartmentHasChildren = errors.New("department has active children")
	// ErrHierarchyCycle 调整父级会形成环
	ErrHierarchyCycle = errors.New("department hierarchy cycle")
	// ErrMaxDepthExceeded 超过组织结构最大层级
	ErrMaxDepthExceeded = errors.New("department max depth exceeded")
	// ErrPermissionDenied 操作者无权管理该部门
	ErrPermissionDenied = errors.New("permission denied")
	// ErrParentNotActive 父部门未处于活跃状态
	ErrParentNotActive = errors.New("parent department is not active")
)
