package domain

import "errors"

// 推送领域错误
var (
	ErrInvalidPushContent = errors.New("invalid push content")
	ErrInvalidDeviceToken = errors.New("invalid device token")
	ErrInvalidPlatform    = errors.New("invalid device platform")
	ErrRetryExhausted     = errors.New("retry attempts exhausted")
	ErrScheduleInPast     = errors.New("scheduled time must be in the future")
	ErrNoProviderForPlatform = errors.New("no push provider available for platform")
)
