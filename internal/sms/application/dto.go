package application

import (
	"time"

	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
)

// SendSmsCommand 发送短信命令
type SendSmsCommand struct {
	// 租户 ID
	TenantID string
	// 目标用户 ID
	UserID string
	// 目标手机号，E.164 格式
	Phone string
	// 短信正文
	Body string
	// 发送方标识
	SenderID string
	// 优先级：LOW, NORMAL, HIGH, CRITICAL，默认 NORMAL
	Priority string
	// 计划发送时间，为空时立即发送
	ScheduledAt *time.Time
	// 客户端幂等键
	RequestKey string
}

// CancelSmsCommand 取消短信命令
type CancelSmsCommand struct {
	NotificationID string
	TenantID       string
	CancelledBy    string
}

// ConfirmDeliveryCommand 送达回执命令
type ConfirmDeliveryCommand struct {
	NotificationID string
	DeliveredAt    time.Time
}

// SmsMessageDTO 短信查询视图
type SmsMessageDTO struct {
	NotificationID    string     `json:"notification_id"`
	TenantID          string     `json:"tenant_id"`
	UserID            string     `json:"user_id"`
	Phone             string     `json:"phone"`
	Body              string     `json:"body"`
	Encoding          string     `json:"encoding"`
	Segments          int        `json:"segments"`
	SenderID          string     `json:"sender_id,omitempty"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	Provider          string     `json:"provider,omitempty"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	EstimatedCost     string     `json:"estimated_cost"`
	RetryCount        int        `json:"retry_count"`
	MaxRetries        int        `json:"max_retries"`
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"`
	NextRetryAt       *time.Time `json:"next_retry_at,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// toDTO 领域对象转查询视图
func toDTO(m *domain.SmsMessage) *SmsMessageDTO {
	return &SmsMessageDTO{
		NotificationID:    m.ID.String(),
		TenantID:          m.TenantID.String(),
		UserID:            m.UserID.String(),
		Phone:             m.Phone.String(),
		Body:              m.Content.Body(),
		Encoding:          m.Content.Encoding(),
		Segments:          m.Content.Segments(),
		SenderID:          m.SenderID,
		Priority:          string(m.Priority),
		Status:            string(m.Status),
		Provider:          m.Provider,
		ProviderMessageID: m.ProviderMessageID,
		EstimatedCost:     m.EstimatedCost.String(),
		RetryCount:        m.RetryCount,
		MaxRetries:        m.MaxRetries,
		ScheduledAt:       m.ScheduledAt,
		NextRetryAt:       m.NextRetryAt,
		SentAt:            m.SentAt,
		DeliveredAt:       m.DeliveredAt,
		FailureReason:     m.FailureReason,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
