package application

import (
	"time"

	"github.com/wyfcoding/notificationcenter/internal/push/domain"
)

// SendPushCommand 发送推送命令
type SendPushCommand struct {
	// 租户 ID
	TenantID string
	// 目标用户 ID
	UserID string
	// 设备令牌
	DeviceToken string
	// 设备平台：IOS, ANDROID, WEB
	Platform string
	// 标题
	Title string
	// 正文
	Body string
	// 图片地址
	ImageURL string
	// 附加数据
	Data map[string]string
	// 优先级：LOW, NORMAL, HIGH, CRITICAL，默认 NORMAL
	Priority string
	// 计划发送时间，为空时立即发送
	ScheduledAt *time.Time
	// 客户端幂等键
	RequestKey string
}

// CancelPushCommand 取消推送命令
type CancelPushCommand struct {
	NotificationID string
	TenantID       string
	CancelledBy    string
}

// ConfirmDeliveryCommand 送达回执命令
type ConfirmDeliveryCommand struct {
	NotificationID string
	DeliveredAt    time.Time
}

// PushNotificationDTO 推送通知查询视图
type PushNotificationDTO struct {
	NotificationID    string            `json:"notification_id"`
	TenantID          string            `json:"tenant_id"`
	UserID            string            `json:"user_id"`
	Platform          string            `json:"platform"`
	Title             string            `json:"title"`
	Body              string            `json:"body"`
	ImageURL          string            `json:"image_url,omitempty"`
	Data              map[string]string `json:"data,omitempty"`
	Priority          string            `json:"priority"`
	Status            string            `json:"status"`
	Provider          string            `json:"provider,omitempty"`
	ProviderMessageID string            `json:"provider_message_id,omitempty"`
	RetryCount        int               `json:"retry_count"`
	MaxRetries        int               `json:"max_retries"`
	ScheduledAt       *time.Time        `json:"scheduled_at,omitempty"`
	NextRetryAt       *time.Time        `json:"next_retry_at,omitempty"`
	SentAt            *time.Time        `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	FailureReason     string            `json:"failure_reason,omitempty"`
	Version           int64             `json:"version"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// toDTO 领域对象转查询视图
func toDTO(n *domain.PushNotification) *PushNotificationDTO {
	return &PushNotificationDTO{
		NotificationID:    n.ID.String(),
		TenantID:          n.TenantID.String(),
		UserID:            n.UserID.String(),
		Platform:          string(n.Platform),
		Title:             n.Content.Title(),
		Body:              n.Content.Body(),
		ImageURL:          n.Content.ImageURL(),
		Data:              n.Content.Data(),
		Priority:          string(n.Priority),
		Status:            string(n.Status),
		Provider:          string(n.Provider),
		ProviderMessageID: n.ProviderMessageID,
		RetryCount:        n.RetryCount,
		MaxRetries:        n.MaxRetries,
		ScheduledAt:       n.ScheduledAt,
		NextRetryAt:       n.NextRetryAt,
		SentAt:            n.SentAt,
		DeliveredAt:       n.DeliveredAt,
		FailureReason:     n.FailureReason,
		Version:           n.Version,
		CreatedAt:         n.CreatedAt,
		UpdatedAt:         n.UpdatedAt,
	}
}
