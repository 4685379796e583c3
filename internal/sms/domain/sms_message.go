package domain

import (
	"time"

	"github.com/shopspring/decimal"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// AggregateTypeSms 聚合类型常量
const AggregateTypeSms = "SmsMessage"

// SmsMessage 短信聚合根
// 状态机与推送一致：PENDING -> SENDING -> SENT -> DELIVERED/FAILED -> RETRYING -> PERMANENTLY_FAILED/CANCELLED
type SmsMessage struct {
	shared.AggregateRoot

	// 消息 ID
	ID shared.NotificationID
	// 租户 ID
	TenantID shared.TenantID
	// 目标用户 ID
	UserID shared.UserID
	// 目标手机号
	Phone PhoneNumber
	// 短信内容
	Content SmsContent
	// 发送方标识（sender ID 或短号）
	SenderID string
	// 优先级
	Priority shared.Priority
	// 当前状态
	Status SmsStatus
	// 发送所用服务商
	Provider string
	// 服务商消息 ID
	ProviderMessageID string
	// 预估成本
	EstimatedCost decimal.Decimal
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

// NewSmsMessage 创建短信聚合，初始状态 PENDING
func NewSmsMessage(
	id shared.NotificationID,
	tenantID shared.TenantID,
	userID shared.UserID,
	phone PhoneNumber,
	content SmsContent,
	senderID string,
	priority shared.Priority,
	estimatedCost decimal.Decimal,
) (*SmsMessage, error) {
	if !priority.Valid() {
		return nil, shared.ErrInvalidPriority
	}

	now := time.Now().UTC()
	m := &SmsMessage{
		ID:            id,
		TenantID:      tenantID,
		UserID:        userID,
		Phone:         phone,
		Content:       content,
		SenderID:      senderID,
		Priority:      priority,
		Status:        StatusPending,
		EstimatedCost: estimatedCost,
		MaxRetries:    priority.MaxRetries(),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	m.Record(NewSmsCreatedEvent(m))
	return m, nil
}

// transitionTo 状态转换守卫，成功后递增版本号
func (m *SmsMessage) transitionTo(next SmsStatus) error {
	if !m.Status.CanTransitionTo(next) {
		return shared.NewInvalidStateTransition(AggregateTypeSms, string(m.Status), string(next))
	}
	m.Status = next
	m.Version++
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Schedule 设置计划发送时间，PENDING -> SCHEDULED
func (m *SmsMessage) Schedule(at time.Time) error {
	if !at.After(time.Now()) {
		return ErrScheduleInPast
	}
	if err := m.transitionTo(StatusScheduled); err != nil {
		return err
	}
	m.ScheduledAt = &at
	m.Record(NewSmsScheduledEvent(m, at))
	return nil
}

// MarkSending 开始发送，记录所选服务商
func (m *SmsMessage) MarkSending(provider string) error {
	if err := m.transitionTo(StatusSending); err != nil {
		return err
	}
	m.Provider = provider
	m.Record(NewSmsSendingEvent(m))
	return nil
}

// MarkSent 发送成功，记录服务商消息 ID
func (m *SmsMessage) MarkSent(providerMessageID string) error {
	if err := m.transitionTo(StatusSent); err != nil {
		return err
	}
	now := time.Now().UTC()
	m.SentAt = &now
	m.ProviderMessageID = providerMessageID
	m.Record(NewSmsSentEvent(m))
	return nil
}

// MarkDelivered 确认送达（通常来自服务商回执）
func (m *SmsMessage) MarkDelivered(at time.Time) error {
	if err := m.transitionTo(StatusDelivered); err != nil {
		return err
	}
	m.DeliveredAt = &at
	m.Record(NewSmsDeliveredEvent(m, at))
	return nil
}

// MarkFailed 记录一次发送失败
func (m *SmsMessage) MarkFailed(reason string) error {
	if err := m.transitionTo(StatusFailed); err != nil {
		return err
	}
	m.FailureReason = reason
	m.Record(NewSmsFailedEvent(m, reason))
	return nil
}

// Retry 安排一次重试，FAILED -> RETRYING
// 重试次数耗尽时返回 ErrRetryExhausted，调用方应转为永久失败
func (m *SmsMessage) Retry(now time.Time) error {
	if m.RetryCount >= m.MaxRetries {
		return ErrRetryExhausted
	}
	if err := m.transitionTo(StatusRetrying); err != nil {
		return err
	}
	m.RetryCount++
	next := shared.NextRetryAt(m.Priority, m.RetryCount, now)
	m.NextRetryAt = &next
	m.Record(NewSmsRetryingEvent(m, next))
	return nil
}

// MarkPermanentlyFailed 标记永久失败
func (m *SmsMessage) MarkPermanentlyFailed(reason string) error {
	if err := m.transitionTo(StatusPermanentlyFailed); err != nil {
		return err
	}
	m.FailureReason = reason
	m.Record(NewSmsPermanentlyFailedEvent(m, reason))
	return nil
}

// Cancel 取消短信，仅在未进入发送流程或等待重试时允许
func (m *SmsMessage) Cancel(cancelledBy string) error {
	if err := m.transitionTo(StatusCancelled); err != nil {
		return err
	}
	m.CancelledBy = cancelledBy
	m.Record(NewSmsCancelledEvent(m, cancelledBy))
	return nil
}

// IsTerminal 是否处于终态
func (m *SmsMessage) IsTerminal() bool {
	return m.Status.IsTerminal()
}
