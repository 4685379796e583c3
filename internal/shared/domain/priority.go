package domain

import (
	"errors"
	"time"
)

// Priority 通知优先级
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// ErrInvalidPriority 非法优先级
var ErrInvalidPriority = errors.New("invalid priority")

// ParsePriority 解析优先级字符串，空值回落到 NORMAL
func ParsePriority(value string) (Priority, error) {
	switch Priority(value) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return Priority(value), nil
	case "":
		return PriorityNormal, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Valid 是否为合法优先级
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Score 优先级评分，用于发送队列排序
func (p Priority) Score() int {
	switch p {
	case PriorityCritical:
		return 20
	case PriorityHigh:
		return 10
	case PriorityNormal:
		return 5
	default:
		return 1
	}
}

// MaxRetries 由优先级推导的最大重试次数
func (p Priority) MaxRetries() int {
	switch p {
	case PriorityCritical:
		return 8
	case PriorityHigh:
		return 5
	case PriorityNormal:
		return 3
	default:
		return 1
	}
}

// BackoffBase 由优先级推导的首次重试退避时长
func (p Priority) BackoffBase() time.Duration {
	switch p {
	case PriorityCritical:
		return 10 * time.Second
	case PriorityHigh:
		return 30 * time.Second
	case PriorityNormal:
		return time.Minute
	default:
		return 5 * time.Minute
	}
}

// backoffCap 重试退避上限
const backoffCap = 6 * time.Hour

// NextRetryAt 计算第 retryCount 次重试的时间：base * 2^(retryCount-1)，上限 6 小时
func NextRetryAt(p Priority, retryCount int, now time.Time) time.Time {
	if retryCount < 1 {
		retryCount = 1
	}

	backoff := p.BackoffBase()
	for i := 1; i < retryCount; i++ {
		backoff *= 2
		if backoff >= backoffCap {
			backoff = backoffCap
			break
		}
	}
	if backoff > backoffCap {
		backoff = backoffCap
	}

	return now.Add(backoff)
}
