// Package outbox 实现事务性发件箱：领域事件与业务数据同事务落库，再由中继异步投递到 Kafka
package outbox

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	shareddomain "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
)

// 消息状态
const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

// Message 发件箱消息模型
type Message struct {
	gorm.Model
	// 消息唯一标识
	MessageID string `gorm:"column:message_id;type:varchar(32);uniqueIndex;not null"`
	// 目标主题
	Topic string `gorm:"column:topic;type:varchar(100);not null"`
	// 分区键（通常为聚合 ID）
	Key string `gorm:"column:message_key;type:varchar(64);index;not null"`
	// 事件类型
	EventType string `gorm:"column:event_type;type:varchar(100);not null"`
	// 事件载荷
	Payload datatypes.JSON `gorm:"column:payload;type:json;not null"`
	// 投递状态
	Status string `gorm:"column:status;type:varchar(20);index;not null;default:'PENDING'"`
	// 已尝试投递次数
	Attempts int `gorm:"column:attempts;not null;default:0"`
	// 最近一次投递失败原因
	LastError string `gorm:"column:last_error;type:text"`
	// 投递成功时间
	SentAt *time.Time `gorm:"column:sent_at;type:datetime"`
}

// TableName 指定表名
func (Message) TableName() string { return "outbox_messages" }

// Manager 发件箱管理器，负责在业务事务内写入事件
type Manager struct {
	db *gorm.DB
}

// NewManager 创建发件箱管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// DB 返回底层数据库句柄
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// StoreInTx 在指定事务中写入一条领域事件
func (m *Manager) StoreInTx(ctx context.Context, tx *gorm.DB, topic string, e shareddomain.Event) error {
	payload, err := shareddomain.ToJSON(e)
	if err != nil {
		return err
	}

	_, aggregateID := e.Aggregate()
	msg := &Message{
		MessageID: idgen.GenIDString(),
		Topic:     topic,
		Key:       aggregateID,
		EventType: e.Name(),
		Payload:   datatypes.JSON(payload),
		Status:    StatusPending,
	}

	if err := tx.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to store outbox message: %w", err)
	}
	return nil
}

// StoreAllInTx 在指定事务中批量写入领域事件
func (m *Manager) StoreAllInTx(ctx context.Context, tx *gorm.DB, topic string, events []shareddomain.Event) error {
	for _, e := range events {
		if err := m.StoreInTx(ctx, tx, topic, e); err != nil {
			return err
		}
	}
	return nil
}
