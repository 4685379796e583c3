// Package domain 提供各限界上下文共享的领域基础设施：领域事件、聚合根与标识值对象
package domain

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event 领域事件接口
// 所有领域事件均可 JSON 序列化，供外部事件总线消费
type Event interface {
	// Name 返回事件类型名
	Name() string
	// Aggregate 返回聚合类型和聚合 ID
	Aggregate() (aggregateType string, aggregateID string)
	// Occurred 返回事件发生时间
	Occurred() time.Time
}

// BaseDomainEvent 领域事件公共字段
type BaseDomainEvent struct {
	// 事件唯一标识
	EventID string `json:"event_id"`
	// 事件类型名
	EventType string `json:"event_type"`
	// 聚合类型
	AggregateType string `json:"aggregate_type"`
	// 聚合 ID
	AggregateID string `json:"aggregate_id"`
	// 租户 ID
	TenantID string `json:"tenant_id"`
	// 聚合版本号（事件发生后的版本）
	AggregateVersion int64 `json:"aggregate_version"`
	// 事件发生时间
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBaseDomainEvent 构造事件公共字段
func NewBaseDomainEvent(eventType, aggregateType, aggregateID, tenantID string, version int64) BaseDomainEvent {
	return BaseDomainEvent{
		EventID:          uuid.New().String(),
		EventType:        eventType,
		AggregateType:    aggregateType,
		AggregateID:      aggregateID,
		TenantID:         tenantID,
		AggregateVersion: version,
		OccurredAt:       time.Now().UTC(),
	}
}

// Name 实现 Event 接口
func (e BaseDomainEvent) Name() string { return e.EventType }

// Aggregate 实现 Event 接口
func (e BaseDomainEvent) Aggregate() (string, string) { return e.AggregateType, e.AggregateID }

// Occurred 实现 Event 接口
func (e BaseDomainEvent) Occurred() time.Time { return e.OccurredAt }

// ToJSON 序列化领域事件
func ToJSON(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", e.Name(), err)
	}
	return data, nil
}

// eventRegistry 事件类型注册表，FromJSON 依赖它还原具体事件类型
var eventRegistry = struct {
	sync.RWMutex
	factories map[string]func() Event
}{factories: make(map[string]func() Event)}

// RegisterEvent 注册事件类型工厂，通常在各上下文的 init 中调用
func RegisterEvent(eventType string, factory func() Event) {
	eventRegistry.Lock()
	defer eventRegistry.Unlock()
	eventRegistry.factories[eventType] = factory
}

// eventTypeEnvelope 仅用于探测事件类型
type eventTypeEnvelope struct {
	EventType string `json:"event_type"`
}

// FromJSON 根据 event_type 字段还原具体领域事件
func FromJSON(data []byte) (Event, error) {
	var env eventTypeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to detect event type: %w", err)
	}
	if env.EventType == "" {
		return nil, fmt.Errorf("event payload missing event_type")
	}

	eventRegistry.RLock()
	factory, ok := eventRegistry.factories[env.EventType]
	eventRegistry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", env.EventType)
	}

	e := factory()
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", env.EventType, err)
	}
	return e, nil
}

// AggregateRoot 聚合根基类，收集未提交的领域事件
type AggregateRoot struct {
	events []Event
}

// Record 记录一条待发布的领域事件
func (a *AggregateRoot) Record(e Event) {
	a.events = append(a.events, e)
}

// PullEvents 取出并清空未提交事件
func (a *AggregateRoot) PullEvents() []Event {
	events := a.events
	a.events = nil
	return events
}

// PendingEvents 查看未提交事件（不清空）
func (a *AggregateRoot) PendingEvents() []Event {
	return a.events
}
