// Package mysql 提供短信仓储接口的 MySQL GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// SmsMessageModel 短信数据库模型
type SmsMessageModel struct {
	gorm.Model
	NotificationID    string          `gorm:"column:notification_id;type:varchar(32);uniqueIndex;not null"`
	TenantID          string          `gorm:"column:tenant_id;type:varchar(36);index;not null"`
	UserID            string          `gorm:"column:user_id;type:varchar(36);index;not null"`
	Phone             string          `gorm:"column:phone;type:varchar(20);not null"`
	Body              string          `gorm:"column:body;type:varchar(670);not null"`
	SenderID          string          `gorm:"column:sender_id;type:varchar(20)"`
	Priority          string          `gorm:"column:priority;type:varchar(10);not null"`
	Status            string          `gorm:"column:status;type:varchar(20);index;not null"`
	Provider          string          `gorm:"column:provider;type:varchar(30)"`
	ProviderMessageID string          `gorm:"column:provider_message_id;type:varchar(100)"`
	EstimatedCost     decimal.Decimal `gorm:"column:estimated_cost;type:decimal(10,6);not null;default:0"`
	RetryCount        int             `gorm:"column:retry_count;not null;default:0"`
	MaxRetries        int             `gorm:"column:max_retries;not null;default:0"`
	ScheduledAt       *time.Time      `gorm:"column:scheduled_at;type:datetime;index"`
	NextRetryAt       *time.Time      `gorm:"column:next_retry_at;type:datetime;index"`
	SentAt            *time.Time      `gorm:"column:sent_at;type:datetime"`
	DeliveredAt       *time.Time      `gorm:"column:delivered_at;type:datetime"`
	FailureReason     string          `gorm:"column:failure_reason;type:text"`
	CancelledBy       string          `gorm:"column:cancelled_by;type:varchar(36)"`
	Version           int64           `gorm:"column:version;not null;default:1"`
}

// TableName 指定表名
func (SmsMessageModel) TableName() string { return "sms_messages" }

// smsRepositoryImpl 是 domain.Repository 接口的 GORM 实现
type smsRepositoryImpl struct {
	db *gorm.DB
}

// NewSmsRepository 创建短信仓储实例
func NewSmsRepository(db *gorm.DB) domain.Repository {
	return &smsRepositoryImpl{db: db}
}

// Save 实现 domain.Repository.Save，乐观锁版本校验
func (r *smsRepositoryImpl) Save(ctx context.Context, tx *gorm.DB, m *domain.SmsMessage) error {
	model := toModel(m)

	if m.LoadedVersion == 0 {
		if err := tx.WithContext(ctx).Create(model).Error; err != nil {
			logger.Error(ctx, "sms_repository.Save create failed", "notification_id", m.ID.String(), "error", err)
			return fmt.Errorf("failed to create sms message: %w", err)
		}
		m.LoadedVersion = m.Version
		return nil
	}

	result := tx.WithContext(ctx).Model(&SmsMessageModel{}).
		Where("notification_id = ? AND version = ?", m.ID.String(), m.LoadedVersion).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"provider":            model.Provider,
			"provider_message_id": model.ProviderMessageID,
			"retry_count":         model.RetryCount,
			"scheduled_at":        model.ScheduledAt,
			"next_retry_at":       model.NextRetryAt,
			"sent_at":             model.SentAt,
			"delivered_at":        model.DeliveredAt,
			"failure_reason":      model.FailureReason,
			"cancelled_by":        model.CancelledBy,
			"version":             model.Version,
		})
	if result.Error != nil {
		logger.Error(ctx, "sms_repository.Save update failed", "notification_id", m.ID.String(), "error", result.Error)
		return fmt.Errorf("failed to update sms message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}

	m.LoadedVersion = m.Version
	return nil
}

// Get 实现 domain.Repository.Get
func (r *smsRepositoryImpl) Get(ctx context.Context, id shared.NotificationID) (*domain.SmsMessage, error) {
	var model SmsMessageModel
	if err := r.db.WithContext(ctx).Where("notification_id = ?", id.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		logger.Error(ctx, "sms_repository.Get failed", "notification_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get sms message: %w", err)
	}
	return toDomain(&model)
}

// ListByUser 实现 domain.Repository.ListByUser
func (r *smsRepositoryImpl) ListByUser(ctx context.Context, tenantID shared.TenantID, userID shared.UserID, status domain.SmsStatus, limit, offset int) ([]*domain.SmsMessage, int64, error) {
	var models []SmsMessageModel
	var total int64

	query := r.db.WithContext(ctx).Model(&SmsMessageModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID.String(), userID.String())
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		logger.Error(ctx, "sms_repository.ListByUser failed", "user_id", userID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list sms messages: %w", err)
	}

	return toDomainList(models, total)
}

// ListDueForRetry 实现 domain.Repository.ListDueForRetry
func (r *smsRepositoryImpl) ListDueForRetry(ctx context.Context, before time.Time, limit int) ([]*domain.SmsMessage, error) {
	var models []SmsMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", string(domain.StatusRetrying), before).
		Order("next_retry_at asc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due retries: %w", err)
	}

	res, _, err := toDomainList(models, 0)
	return res, err
}

// ListDueScheduled 实现 domain.Repository.ListDueScheduled
func (r *smsRepositoryImpl) ListDueScheduled(ctx context.Context, before time.Time, limit int) ([]*domain.SmsMessage, error) {
	var models []SmsMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(domain.StatusScheduled), before).
		Order("scheduled_at asc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due scheduled sms: %w", err)
	}

	res, _, err := toDomainList(models, 0)
	return res, err
}

// toModel 领域对象转数据库模型
func toModel(m *domain.SmsMessage) *SmsMessageModel {
	return &SmsMessageModel{
		NotificationID:    m.ID.String(),
		TenantID:          m.TenantID.String(),
		UserID:            m.UserID.String(),
		Phone:             m.Phone.String(),
		Body:              m.Content.Body(),
		SenderID:          m.SenderID,
		Priority:          string(m.Priority),
		Status:            string(m.Status),
		Provider:          m.Provider,
		ProviderMessageID: m.ProviderMessageID,
		EstimatedCost:     m.EstimatedCost,
		RetryCount:        m.RetryCount,
		MaxRetries:        m.MaxRetries,
		ScheduledAt:       m.ScheduledAt,
		NextRetryAt:       m.NextRetryAt,
		SentAt:            m.SentAt,
		DeliveredAt:       m.DeliveredAt,
		FailureReason:     m.FailureReason,
		CancelledBy:       m.CancelledBy,
		Version:           m.Version,
	}
}

// toDomain 数据库模型转领域对象
func toDomain(model *SmsMessageModel) (*domain.SmsMessage, error) {
	id, err := shared.NewNotificationID(model.NotificationID)
	if err != nil {
		return nil, err
	}
	tenantID, err := shared.NewTenantID(model.TenantID)
	if err != nil {
		return nil, err
	}
	userID, err := shared.NewUserID(model.UserID)
	if err != nil {
		return nil, err
	}
	phone, err := domain.NewPhoneNumber(model.Phone)
	if err != nil {
		return nil, err
	}
	content, err := domain.NewSmsContent(model.Body)
	if err != nil {
		return nil, err
	}

	return &domain.SmsMessage{
		ID:                id,
		TenantID:          tenantID,
		UserID:            userID,
		Phone:             phone,
		Content:           content,
		SenderID:          model.SenderID,
		Priority:          shared.Priority(model.Priority),
		Status:            domain.SmsStatus(model.Status),
		Provider:          model.Provider,
		ProviderMessageID: model.ProviderMessageID,
		EstimatedCost:     model.EstimatedCost,
		RetryCount:        model.RetryCount,
		MaxRetries:        model.MaxRetries,
		ScheduledAt:       model.ScheduledAt,
		NextRetryAt:       model.NextRetryAt,
		SentAt:            model.SentAt,
		DeliveredAt:       model.DeliveredAt,
		FailureReason:     model.FailureReason,
		CancelledBy:       model.CancelledBy,
		Version:           model.Version,
		LoadedVersion:     model.Version,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}, nil
}

// toDomainList 批量转换
func toDomainList(models []SmsMessageModel, total int64) ([]*domain.SmsMessage, int64, error) {
	res := make([]*domain.SmsMessage, 0, len(models))
	for i := range models {
		m, err := toDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, m)
	}
	return res, total, nil
}
