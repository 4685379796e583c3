package domain

import (
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// 短信领域事件类型
const (
	EventTypeSmsCreated           = "sms.created"
	EventTypeSmsScheduled         = "sms.scheduled"
	EventTypeSmsSending           = "sms.sending"
	EventTypeSmsSent              = "sms.sent"
	EventTypeSmsDelivered         = "sms.delivered"
	EventTypeSmsFailed            = "sms.failed"
	EventTypeSmsRetrying          = "sms.retrying"
	EventTypeSmsPermanentlyFailed = "sms.permanently_failed"
	EventTypeSmsCancelled         = "sms.cancelled"
)

func init() {
	shared.RegisterEvent(EventTypeSmsCreated, func() shared.Event { return &SmsCreatedEvent{} })
	shared.RegisterEvent(EventTypeSmsScheduled, func() shared.Event { return &SmsScheduledEvent{} })
	shared.RegisterEvent(EventTypeSmsSending, func() shared.Event { return &SmsSendingEvent{} })
	shared.RegisterEvent(EventTypeSmsSent, func() shared.Event { return &SmsSentEvent{} })
	shared.RegisterEvent(EventTypeSmsDelivered, func() shared.Event { return &SmsDeliveredEvent{} })
	shared.RegisterEvent(EventTypeSmsFailed, func() shared.Event { return &SmsFailedEvent{} })
	shared.RegisterEvent(EventTypeSmsRetrying, func() shared.Event { return &SmsRetryingEvent{} })
	shared.RegisterEvent(EventTypeSmsPermanentlyFailed, func() shared.Event { return &SmsPermanentlyFailedEvent{} })
	shared.RegisterEvent(EventTypeSmsCancelled, func() shared.Event { return &SmsCancelledEvent{} })
}

// SmsCreatedEvent 短信创建事件
type SmsCreatedEvent struct {
	shared.BaseDomainEvent
	UserID        string `json:"user_id"`
	Phone         string `json:"phone"`
	Body          string `json:"body"`
	Encoding      string `json:"encoding"`
	Segments      int    `json:"segments"`
	SenderID      string `json:"sender_id,omitempty"`
	Priority      string `json:"priority"`
	EstimatedCost string `json:"estimated_cost"`
}

// NewSmsCreatedEvent 构造创建事件
func NewSmsCreatedEvent(m *SmsMessage) *SmsCreatedEvent {
	return &SmsCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsCreated, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		UserID:          m.UserID.String(),
		Phone:           m.Phone.String(),
		Body:            m.Content.Body(),
		Encoding:        m.Content.Encoding(),
		Segments:        m.Content.Segments(),
		SenderID:        m.SenderID,
		Priority:        string(m.Priority),
		EstimatedCost:   m.EstimatedCost.String(),
	}
}

// SmsScheduledEvent 短信计划发送事件
type SmsScheduledEvent struct {
	shared.BaseDomainEvent
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewSmsScheduledEvent 构造计划发送事件
func NewSmsScheduledEvent(m *SmsMessage, at time.Time) *SmsScheduledEvent {
	return &SmsScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsScheduled, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		ScheduledAt:     at,
	}
}

// SmsSendingEvent 短信开始发送事件
type SmsSendingEvent struct {
	shared.BaseDomainEvent
	Provider string `json:"provider"`
}

// NewSmsSendingEvent 构造开始发送事件
func NewSmsSendingEvent(m *SmsMessage) *SmsSendingEvent {
	return &SmsSendingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsSending, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		Provider:        m.Provider,
	}
}

// SmsSentEvent 短信发送成功事件
type SmsSentEvent struct {
	shared.BaseDomainEvent
	Provider          string     `json:"provider"`
	ProviderMessageID string     `json:"provider_message_id"`
	Segments          int        `json:"segments"`
	SentAt            *time.Time `json:"sent_at"`
}

// NewSmsSentEvent 构造发送成功事件
func NewSmsSentEvent(m *SmsMessage) *SmsSentEvent {
	return &SmsSentEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeSmsSent, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		Provider:          m.Provider,
		ProviderMessageID: m.ProviderMessageID,
		Segments:          m.Content.Segments(),
		SentAt:            m.SentAt,
	}
}

// SmsDeliveredEvent 短信送达事件
type SmsDeliveredEvent struct {
	shared.BaseDomainEvent
	DeliveredAt time.Time `json:"delivered_at"`
}

// NewSmsDeliveredEvent 构造送达事件
func NewSmsDeliveredEvent(m *SmsMessage, at time.Time) *SmsDeliveredEvent {
	return &SmsDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsDelivered, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		DeliveredAt:     at,
	}
}

// SmsFailedEvent 短信发送失败事件
type SmsFailedEvent struct {
	shared.BaseDomainEvent
	Reason     string `json:"reason"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
}

// NewSmsFailedEvent 构造发送失败事件
func NewSmsFailedEvent(m *SmsMessage, reason string) *SmsFailedEvent {
	return &SmsFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsFailed, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		Reason:          reason,
		RetryCount:      m.RetryCount,
		MaxRetries:      m.MaxRetries,
	}
}

// SmsRetryingEvent 短信重试事件
type SmsRetryingEvent struct {
	shared.BaseDomainEvent
	RetryCount  int       `json:"retry_count"`
	NextRetryAt time.Time `json:"next_retry_at"`
}

// NewSmsRetryingEvent 构造重试事件
func NewSmsRetryingEvent(m *SmsMessage, nextRetryAt time.Time) *SmsRetryingEvent {
	return &SmsRetryingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsRetrying, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		RetryCount:      m.RetryCount,
		NextRetryAt:     nextRetryAt,
	}
}

// SmsPermanentlyFailedEvent 短信永久失败事件
type SmsPermanentlyFailedEvent struct {
	shared.BaseDomainEvent
	Reason     string `json:"reason"`
	RetryCount int    `json:"retry_count"`
}

// NewSmsPermanentlyFailedEvent 构造永久失败事件
func NewSmsPermanentlyFailedEvent(m *SmsMessage, reason string) *SmsPermanentlyFailedEvent {
	return &SmsPermanentlyFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsPermanentlyFailed, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		Reason:          reason,
		RetryCount:      m.RetryCount,
	}
}

// SmsCancelledEvent 短信取消事件
type SmsCancelledEvent struct {
	shared.BaseDomainEvent
	CancelledBy string `json:"cancelled_by"`
}

// NewSmsCancelledEvent 构造取消事件
func NewSmsCancelledEvent(m *SmsMessage, cancelledBy string) *SmsCancelledEvent {
	return &SmsCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSmsCancelled, AggregateTypeSms, m.ID.String(), m.TenantID.String(), m.Version),
		CancelledBy:     cancelledBy,
	}
}
