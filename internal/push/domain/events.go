package domain

import (
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// 推送领域事件类型
const (
	EventTypePushCreated           = "push.created"
	EventTypePushScheduled         = "push.scheduled"
	EventTypePushSending           = "push.sending"
	EventTypePushSent              = "push.sent"
	EventTypePushDelivered         = "push.delivered"
	EventTypePushFailed            = "push.failed"
	EventTypePushRetrying          = "push.retrying"
	EventTypePushPermanentlyFailed = "push.permanently_failed"
	EventTypePushCancelled         = "push.cancelled"
)

func init() {
	shared.RegisterEvent(EventTypePushCreated, func() shared.Event { return &PushCreatedEvent{} })
	shared.RegisterEvent(EventTypePushScheduled, func() shared.Event { return &PushScheduledEvent{} })
	shared.RegisterEvent(EventTypePushSending, func() shared.Event { return &PushSendingEvent{} })
	shared.RegisterEvent(EventTypePushSent, func() shared.Event { return &PushSentEvent{} })
	shared.RegisterEvent(EventTypePushDelivered, func() shared.Event { return &PushDeliveredEvent{} })
	shared.RegisterEvent(EventTypePushFailed, func() shared.Event { return &PushFailedEvent{} })
	shared.RegisterEvent(EventTypePushRetrying, func() shared.Event { return &PushRetryingEvent{} })
	shared.RegisterEvent(EventTypePushPermanentlyFailed, func() shared.Event { return &PushPermanentlyFailedEvent{} })
	shared.RegisterEvent(EventTypePushCancelled, func() shared.Event { return &PushCancelledEvent{} })
}

// PushCreatedEvent 推送通知创建事件
type PushCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   string            `json:"user_id"`
	Platform string            `json:"platform"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	ImageURL string            `json:"image_url,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	Priority string            `json:"priority"`
}

// NewPushCreatedEvent 构造创建事件
func NewPushCreatedEvent(n *PushNotification) *PushCreatedEvent {
	return &PushCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushCreated, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		UserID:          n.UserID.String(),
		Platform:        string(n.Platform),
		Title:           n.Content.Title(),
		Body:            n.Content.Body(),
		ImageURL:        n.Content.ImageURL(),
		Data:            n.Content.Data(),
		Priority:        string(n.Priority),
	}
}

// PushScheduledEvent 推送通知计划发送事件
type PushScheduledEvent struct {
	shared.BaseDomainEvent
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewPushScheduledEvent 构造计划发送事件
func NewPushScheduledEvent(n *PushNotification, at time.Time) *PushScheduledEvent {
	return &PushScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushScheduled, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		ScheduledAt:     at,
	}
}

// PushSendingEvent 推送通知开始发送事件
type PushSendingEvent struct {
	shared.BaseDomainEvent
	Provider string `json:"provider"`
}

// NewPushSendingEvent 构造开始发送事件
func NewPushSendingEvent(n *PushNotification) *PushSendingEvent {
	return &PushSendingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushSending, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		Provider:        string(n.Provider),
	}
}

// PushSentEvent 推送通知发送成功事件
type PushSentEvent struct {
	shared.BaseDomainEvent
	Provider          string     `json:"provider"`
	ProviderMessageID string     `json:"provider_message_id"`
	SentAt            *time.Time `json:"sent_at"`
}

// NewPushSentEvent 构造发送成功事件
func NewPushSentEvent(n *PushNotification) *PushSentEvent {
	return &PushSentEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePushSent, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		Provider:          string(n.Provider),
		ProviderMessageID: n.ProviderMessageID,
		SentAt:            n.SentAt,
	}
}

// PushDeliveredEvent 推送通知送达事件
type PushDeliveredEvent struct {
	shared.BaseDomainEvent
	DeliveredAt time.Time `json:"delivered_at"`
}

// NewPushDeliveredEvent 构造送达事件
func NewPushDeliveredEvent(n *PushNotification, at time.Time) *PushDeliveredEvent {
	return &PushDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushDelivered, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		DeliveredAt:     at,
	}
}

// PushFailedEvent 推送通知发送失败事件
type PushFailedEvent struct {
	shared.BaseDomainEvent
	Reason     string `json:"reason"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
}

// NewPushFailedEvent 构造发送失败事件
func NewPushFailedEvent(n *PushNotification, reason string) *PushFailedEvent {
	return &PushFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushFailed, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		Reason:          reason,
		RetryCount:      n.RetryCount,
		MaxRetries:      n.MaxRetries,
	}
}

// PushRetryingEvent 推送通知重试事件
type PushRetryingEvent struct {
	shared.BaseDomainEvent
	RetryCount  int       `json:"retry_count"`
	NextRetryAt time.Time `json:"next_retry_at"`
}

// NewPushRetryingEvent 构造重试事件
func NewPushRetryingEvent(n *PushNotification, nextRetryAt time.Time) *PushRetryingEvent {
	return &PushRetryingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushRetrying, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		RetryCount:      n.RetryCount,
		NextRetryAt:     nextRetryAt,
	}
}

// PushPermanentlyFailedEvent 推送通知永久失败事件
type PushPermanentlyFailedEvent struct {
	shared.BaseDomainEvent
	Reason     string `json:"reason"`
	RetryCount int    `json:"retry_count"`
}

// NewPushPermanentlyFailedEvent 构造永久失败事件
func NewPushPermanentlyFailedEvent(n *PushNotification, reason string) *PushPermanentlyFailedEvent {
	return &PushPermanentlyFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushPermanentlyFailed, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		Reason:          reason,
		RetryCount:      n.RetryCount,
	}
}

// PushCancelledEvent 推送通知取消事件
type PushCancelledEvent struct {
	shared.BaseDomainEvent
	CancelledBy string `json:"cancelled_by"`
}

// NewPushCancelledEvent 构造取消事件
func NewPushCancelledEvent(n *PushNotification, cancelledBy string) *PushCancelledEvent {
	return &PushCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePushCancelled, AggregateTypePush, n.ID.String(), n.TenantID.String(), n.Version),
		CancelledBy:     cancelledBy,
	}
}
