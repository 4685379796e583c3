package domain

import (
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// AggregateTypePush 聚合类型常量
const AggregateTypePush = "PushNotification"

// Provider 推送服务商
type Provider string

const (
	ProviderFCM     Provider = "FCM"
	ProviderAPNS    Provider = "APNS"
	ProviderWebPush Provider = "WEB_PUSH"
)

// PushNotification 推送通知聚合根
// 状态机：PENDING -> SENDING -> SENT -> DELIVERED/FAILED -> RETRYING -> PERMANENTLY_FAILED/CANCELLED
type PushNotification struct {
	shared.AggregateRoot

	// 通知 ID
	ID shared.NotificationID
	// 租户 ID
	TenantID shared.TenantID
	// 目标用户 ID
	UserID shared.UserID
	// 设备令牌
	Token DeviceToken
	// 设备平台
	Platform Platform
	// 推送内容
	Content PushContent
	// 优先级
	Priority shared.Priority
	// 当前状态
	Status PushStatus
	// 发送所用服务商
	Provider Provider
	// 服务商消息 ID
	ProviderMessageID string
	// 当前重试次数
	RetryCount int
	// 最大重试次数（由优先级推导）
	MaxRetries int
	// 计划发送时间
	ScheduledAt *time.Time
	// 下次重试时间
	NextRetryAt *time.Time
	// 实际发送时间
	SentAt *time.Time
	// 送达时间
	DeliveredAt *time.Time
	// 失败原因
	FailureReason string
	// 取消操作者
	CancelledBy string
	// 乐观锁版本号
	Version int64
	// 加载时的版本号，乐观锁比较基准，由仓储维护；新建聚合为 0
	LoadedVersion int64
	// 创建时间
	CreatedAt time.Time
	// 更新时间
	UpdatedAt time.Time
}

// NewPushNotification 创建推送通知聚合，初始状态 PENDING
func NewPushNotification(
	id shared.NotificationID,
	tenantID shared.TenantID,
	userID shared.UserID,
	token DeviceToken,
	platform Platform,
	content PushContent,
	priority shared.Priority,
) (*PushNotification, error) {
	if !platform.Valid() {
		return nil, ErrInvalidPlatform
	}
	if !priority.Valid() {
		return nil, shared.ErrInvalidPriority
	}

	now := time.Now().UTC()
	n := &PushNotification{
		ID:         id,
		TenantID:   tenantID,
		UserID:     userID,
		Token:      token,
		Platform:   platform,
		Content:    content,
		Priority:   priority,
		Status:     StatusPending,
		MaxRetries: priority.MaxRetries(),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	n.Record(NewPushCreatedEvent(n))
	return n, nil
}

// transitionTo 状态转换守卫，成功后递增版本号
func (n *PushNotification) transitionTo(next PushStatus) error {
	if !n.Status.CanTransitionTo(next) {
		return shared.NewInvalidStateTransition(AggregateTypePush, string(n.Status), string(next))
	}
	n.Status = next
	n.Version++
	n.UpdatedAt = time.Now().UTC()
	return nil
}

// Schedule 设置计划发送时间，PENDING -> SCHEDULED
func (n *PushNotification) Schedule(at time.Time) error {
	if !at.After(time.Now()) {
		return ErrScheduleInPast
	}
	if err := n.transitionTo(StatusScheduled); err != nil {
		return err
	}
	n.ScheduledAt = &at
	n.Record(NewPushScheduledEvent(n, at))
	return nil
}

// MarkSending 开始发送，记录所选服务商
func (n *PushNotification) MarkSending(provider Provider) error {
	if err := n.transitionTo(StatusSending); err != nil {
		return err
	}
	n.Provider = provider
	n.Record(NewPushSendingEvent(n))
	return nil
}

// MarkSent 发送成功，记录服务商消息 ID
func (n *PushNotification) MarkSent(providerMessageID string) error {
	if err := n.transitionTo(StatusSent); err != nil {
		return err
	}
	now := time.Now().UTC()
	n.SentAt = &now
	n.ProviderMessageID = providerMessageID
	n.Record(NewPushSentEvent(n))
	return nil
}

// MarkDelivered 确认送达（通常来自服务商回执）
func (n *PushNotification) MarkDelivered(at time.Time) error {
	if err := n.transitionTo(StatusDelivered); err != nil {
		return err
	}
	n.DeliveredAt = &at
	n.Record(NewPushDeliveredEvent(n, at))
	return nil
}

// MarkFailed 记录一次发送失败
func (n *PushNotification) MarkFailed(reason string) error {
	if err := n.transitionTo(StatusFailed); err != nil {
		return err
	}
	n.FailureReason = reason
	n.Record(NewPushFailedEvent(n, reason))
	return nil
}

// Retry 安排一次重试，FAILED -> RETRYING
// 重试次数耗尽时返回 ErrRetryExhausted，调用方应转为永久失败
func (n *PushNotification) Retry(now time.Time) error {
	if n.RetryCount >= n.MaxRetries {
		return ErrRetryExhausted
	}
	if err := n.transitionTo(StatusRetrying); err != nil {
		return err
	}
	n.RetryCount++
	next := shared.NextRetryAt(n.Priority, n.RetryCount, now)
	n.NextRetryAt = &next
	n.Record(NewPushRetryingEvent(n, next))
	return nil
}

// MarkPermanentlyFailed 标记永久失败
func (n *PushNotification) MarkPermanentlyFailed(reason string) error {
	if err := n.transitionTo(StatusPermanentlyFailed); err != nil {
		return err
	}
	n.FailureReason = reason
	n.Record(NewPushPermanentlyFailedEvent(n, reason))
	return nil
}

// Cancel 取消通知，仅在未进入发送流程或等待重试时允许
func (n *PushNotification) Cancel(cancelledBy string) error {
	if err := n.transitionTo(StatusCancelled); err != nil {
		return err
	}
	n.CancelledBy = cancelledBy
	n.Record(NewPushCancelledEvent(n, cancelledBy))
	return nil
}

// IsTerminal 是否处于终态
func (n *PushNotification) IsTerminal() bool {
	return n.Status.IsTerminal()
}
