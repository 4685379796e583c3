package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// TenantID 租户标识值对象，UUID 格式
type TenantID struct {
	value string
}

// NewTenantID 校验并构造租户 ID
func NewTenantID(value string) (TenantID, error) {
	if _, err := uuid.Parse(value); err != nil {
		return TenantID{}, fmt.Errorf("%w: %q", ErrInvalidTenantID, value)
	}
	return TenantID{value: value}, nil
}

// String 返回原始字符串值
func (id TenantID) String() string { return id.value }

// IsZero 是否为空值
func (id TenantID) IsZero() bool { return id.value == "" }

// UserID 用户标识值对象，UUID 格式
type UserID struct {
	value string
}

// NewUserID 校验并构造用户 ID
func NewUserID(value string) (UserID, error) {
	if _, err := uuid.Parse(value); err != nil {
		return UserID{}, fmt.Errorf("%w: %q", ErrInvalidUserID, value)
	}
	return UserID{value: value}, nil
}

// String 返回原始字符串值
func (id UserID) String() string { return id.value }

// IsZero 是否为空值
func (id UserID) IsZero() bool { return id.value == "" }

// NotificationID 通知标识值对象，雪花 ID 的十进制字符串形式
type NotificationID struct {
	value string
}

// NewNotificationID 校验并构造通知 ID
func NewNotificationID(value string) (NotificationID, error) {
	if err := validateSnowflakeID(value); err != nil {
		return NotificationID{}, fmt.Errorf("%w: %q", ErrInvalidNotificationID, value)
	}
	return NotificationID{value: value}, nil
}

// String 返回原始字符串值
func (id NotificationID) String() string { return id.value }

// IsZero 是否为空值
func (id NotificationID) IsZero() bool { return id.value == "" }

// TemplateID 模板标识值对象，雪花 ID 的十进制字符串形式
type TemplateID struct {
	value string
}

// NewTemplateID 校验并构造模板 ID
func NewTemplateID(value string) (TemplateID, error) {
	if err := validateSnowflakeID(value); err != nil {
		return TemplateID{}, fmt.Errorf("%w: %q", ErrInvalidTemplateID, value)
	}
	return TemplateID{value: value}, nil
}

// String 返回原始字符串值
func (id TemplateID) String() string { return id.value }

// IsZero 是否为空值
func (id TemplateID) IsZero() bool { return id.value == "" }

// DepartmentID 部门标识值对象，UUID 格式
type DepartmentID struct {
	value string
}

// NewDepartmentID 校验并构造部门 ID
func NewDepartmentID(value string) (DepartmentID, error) {
	if _, err := uuid.Parse(value); err != nil {
		return DepartmentID{}, fmt.Errorf("%w: %q", ErrInvalidDepartmentID, value)
	}
	return DepartmentID{value: value}, nil
}

// String 返回原始字符串值
func (id DepartmentID) String() string { return id.value }

// IsZero 是否为空值
func (id DepartmentID) IsZero() bool { return id.value == "" }

// validateSnowflakeID 雪花 ID 字符串校验：1-32 位十进制数字
func validateSnowflakeID(value string) error {
	if len(value) == 0 || len(value) > 32 {
		return fmt.Errorf("invalid length %d", len(value))
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("non-digit character %q", r)
		}
	}
	return nil
}
