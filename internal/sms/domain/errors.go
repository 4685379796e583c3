package domain

import "errors"

var (
	// ErrInvalidPhoneNumber 非法手机号（须为 E.164 格式）
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	// ErrInvalidSmsContent 非法短信内容
	ErrInvalidSmsContent = errors.New("invalid sms content")
	// ErrRetryExhausted 重试次数已耗尽
	ErrRetryExhausted = errors.New("retry attempts exhausted")
	// ErrScheduleInPast 计划发送时间早于当前时间
	ErrScheduleInPast = errors.New("scheduled time is in the past")
	// ErrUnknownProvider 未配置的短信服务商
	ErrUnknownProvider = errors.New("unknown sms provider")
)
