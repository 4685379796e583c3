package domain

import (
	"errors"
	"fmt"
)

// 标识值对象构造错误
var (
	ErrInvalidTenantID       = errors.New("invalid tenant id")
	ErrInvalidUserID         = errors.New("invalid user id")
	ErrInvalidNotificationID = errors.New("invalid notification id")
	ErrInvalidTemplateID     = errors.New("invalid template id")
	ErrInvalidDepartmentID   = errors.New("invalid department id")
)

// ErrVersionConflict 乐观锁版本冲突
var ErrVersionConflict = errors.New("aggregate version conflict")

// ErrNotFound 聚合不存在
var ErrNotFound = errors.New("aggregate not found")

// InvalidStateTransitionError 非法状态转换错误
type InvalidStateTransitionError struct {
	// 聚合类型
	AggregateType string
	// 当前状态
	From string
	// 目标状态
	To string
}

// Error 实现 error 接口
func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid %s state transition: %s -> %s", e.AggregateType, e.From, e.To)
}

// NewInvalidStateTransition 构造非法状态转换错误
func NewInvalidStateTransition(aggregateType, from, to string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{AggregateType: aggregateType, From: from, To: to}
}
