// Package mysql 提供推送通知仓储接口的 MySQL GORM 实现
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/push/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// PushNotificationModel 推送通知数据库模型
type PushNotificationModel struct {
	gorm.Model
	NotificationID    string         `gorm:"column:notification_id;type:varchar(32);uniqueIndex;not null"`
	TenantID          string         `gorm:"column:tenant_id;type:varchar(36);index;not null"`
	UserID            string         `gorm:"column:user_id;type:varchar(36);index;not null"`
	DeviceToken       string         `gorm:"column:device_token;type:varchar(512);not null"`
	Platform          string         `gorm:"column:platform;type:varchar(10);not null"`
	Title             string         `gorm:"column:title;type:varchar(100);not null"`
	Body              string         `gorm:"column:body;type:varchar(1000);not null"`
	ImageURL          string         `gorm:"column:image_url;type:varchar(500)"`
	Data              datatypes.JSON `gorm:"column:data;type:json"`
	Priority          string         `gorm:"column:priority;type:varchar(10);not null"`
	Status            string         `gorm:"column:status;type:varchar(20);index;not null"`
	Provider          string         `gorm:"column:provider;type:varchar(20)"`
	ProviderMessageID string         `gorm:"column:provider_message_id;type:varchar(100)"`
	RetryCount        int            `gorm:"column:retry_count;not null;default:0"`
	MaxRetries        int            `gorm:"column:max_retries;not null;default:0"`
	ScheduledAt       *time.Time     `gorm:"column:scheduled_at;type:datetime;index"`
	NextRetryAt       *time.Time     `gorm:"column:next_retry_at;type:datetime;index"`
	SentAt            *time.Time     `gorm:"column:sent_at;type:datetime"`
	DeliveredAt       *time.Time     `gorm:"column:delivered_at;type:datetime"`
	FailureReason     string         `gorm:"column:failure_reason;type:text"`
	CancelledBy       string         `gorm:"column:cancelled_by;type:varchar(36)"`
	Version           int64          `gorm:"column:version;not null;default:1"`
}

// TableName 指定表名
func (PushNotificationModel) TableName() string { return "push_notifications" }

// pushRepositoryImpl 是 domain.Repository 接口的 GORM 实现
type pushRepositoryImpl struct {
	db *gorm.DB
}

// NewPushRepository 创建推送通知仓储实例
func NewPushRepository(db *gorm.DB) domain.Repository {
	return &pushRepositoryImpl{db: db}
}

// Save 实现 domain.Repository.Save，乐观锁版本校验
func (r *pushRepositoryImpl) Save(ctx context.Context, tx *gorm.DB, n *domain.PushNotification) error {
	m, err := toModel(n)
	if err != nil {
		return err
	}

	if n.LoadedVersion == 0 {
		if err := tx.WithContext(ctx).Create(m).Error; err != nil {
			logger.Error(ctx, "push_repository.Save create failed", "notification_id", n.ID.String(), "error", err)
			return fmt.Errorf("failed to create push notification: %w", err)
		}
		n.LoadedVersion = n.Version
		return nil
	}

	result := tx.WithContext(ctx).Model(&PushNotificationModel{}).
		Where("notification_id = ? AND version = ?", n.ID.String(), n.LoadedVersion).
		Updates(map[string]interface{}{
			"status":              m.Status,
			"provider":            m.Provider,
			"provider_message_id": m.ProviderMessageID,
			"retry_count":         m.RetryCount,
			"scheduled_at":        m.ScheduledAt,
			"next_retry_at":       m.NextRetryAt,
			"sent_at":             m.SentAt,
			"delivered_at":        m.DeliveredAt,
			"failure_reason":      m.FailureReason,
			"cancelled_by":        m.CancelledBy,
			"version":             m.Version,
		})
	if result.Error != nil {
		logger.Error(ctx, "push_repository.Save update failed", "notification_id", n.ID.String(), "error", result.Error)
		return fmt.Errorf("failed to update push notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrVersionConflict
	}

	n.LoadedVersion = n.Version
	return nil
}

// Get 实现 domain.Repository.Get
func (r *pushRepositoryImpl) Get(ctx context.Context, id shared.NotificationID) (*domain.PushNotification, error) {
	var m PushNotificationModel
	if err := r.db.WithContext(ctx).Where("notification_id = ?", id.String()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		logger.Error(ctx, "push_repository.Get failed", "notification_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get push notification: %w", err)
	}
	return toDomain(&m)
}

// ListByUser 实现 domain.Repository.ListByUser
func (r *pushRepositoryImpl) ListByUser(ctx context.Context, tenantID shared.TenantID, userID shared.UserID, status domain.PushStatus, limit, offset int) ([]*domain.PushNotification, int64, error) {
	var ms []PushNotificationModel
	var total int64

	query := r.db.WithContext(ctx).Model(&PushNotificationModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID.String(), userID.String())
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&ms).Error; err != nil {
		logger.Error(ctx, "push_repository.ListByUser failed", "user_id", userID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list push notifications: %w", err)
	}

	return toDomainList(ms, total)
}

// ListDueForRetry 实现 domain.Repository.ListDueForRetry
func (r *pushRepositoryImpl) ListDueForRetry(ctx context.Context, before time.Time, limit int) ([]*domain.PushNotification, error) {
	var ms []PushNotificationModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", string(domain.StatusRetrying), before).
		Order("next_retry_at asc").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due retries: %w", err)
	}

	res, _, err := toDomainList(ms, 0)
	return res, err
}

// ListDueScheduled 实现 domain.Repository.ListDueScheduled
func (r *pushRepositoryImpl) ListDueScheduled(ctx context.Context, before time.Time, limit int) ([]*domain.PushNotification, error) {
	var ms []PushNotificationModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", string(domain.StatusScheduled), before).
		Order("scheduled_at asc").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due scheduled notifications: %w", err)
	}

	res, _, err := toDomainList(ms, 0)
	return res, err
}

// toModel 领域对象转数据库模型
func toModel(n *domain.PushNotification) (*PushNotificationModel, error) {
	var data datatypes.JSON
	if d := n.Content.Data(); len(d) > 0 {
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal push data: %w", err)
		}
		data = datatypes.JSON(raw)
	}

	return &PushNotificationModel{
		NotificationID:    n.ID.String(),
		TenantID:          n.TenantID.String(),
		UserID:            n.UserID.String(),
		DeviceToken:       n.Token.String(),
		Platform:          string(n.Platform),
		Title:             n.Content.Title(),
		Body:              n.Content.Body(),
		ImageURL:          n.Content.ImageURL(),
		Data:              data,
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
		CancelledBy:       n.CancelledBy,
		Version:           n.Version,
	}, nil
}

// toDomain 数据库模型转领域对象
func toDomain(m *PushNotificationModel) (*domain.PushNotification, error) {
	id, err := shared.NewNotificationID(m.NotificationID)
	if err != nil {
		return nil, err
	}
	tenantID, err := shared.NewTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}
	userID, err := shared.NewUserID(m.UserID)
	if err != nil {
		return nil, err
	}
	token, err := domain.NewDeviceToken(m.DeviceToken)
	if err != nil {
		return nil, err
	}

	var data map[string]string
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal push data: %w", err)
		}
	}
	content, err := domain.NewPushContent(m.Title, m.Body, m.ImageURL, data)
	if err != nil {
		return nil, err
	}

	return &domain.PushNotification{
		ID:                id,
		TenantID:          tenantID,
		UserID:            userID,
		Token:             token,
		Platform:          domain.Platform(m.Platform),
		Content:           content,
		Priority:          shared.Priority(m.Priority),
		Status:            domain.PushStatus(m.Status),
		Provider:          domain.Provider(m.Provider),
		ProviderMessageID: m.ProviderMessageID,
		RetryCount:        m.RetryCount,
		MaxRetries:        m.MaxRetries,
		ScheduledAt:       m.ScheduledAt,
		NextRetryAt:       m.NextRetryAt,
		SentAt:            m.SentAt,
		DeliveredAt:       m.DeliveredAt,
		FailureReason:     m.FailureReason,
		CancelledBy:       m.CancelledBy,
		Version:           m.Version,
		LoadedVersion:     m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

// toDomainList 批量转换
func toDomainList(ms []PushNotificationModel, total int64) ([]*domain.PushNotification, int64, error) {
	res := make([]*domain.PushNotification, 0, len(ms))
	for i := range ms {
		n, err := toDomain(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, n)
	}
	return res, total, nil
}
