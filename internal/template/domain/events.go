package domain

import (
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// 模板领域事件类型
const (
	EventTypeTemplateCreated        = "template.created"
	EventTypeTemplateContentUpdated = "template.content_updated"
	EventTypeTemplatePublished      = "template.published"
	EventTypeTemplateArchived       = "template.archived"
	EventTypeTemplateRestored       = "template.restored"
	EventTypeTemplateDeleted        = "template.deleted"
)

func init() {
	shared.RegisterEvent(EventTypeTemplateCreated, func() shared.Event { return &TemplateCreatedEvent{} })
	shared.RegisterEvent(EventTypeTemplateContentUpdated, func() shared.Event { return &TemplateContentUpdatedEvent{} })
	shared.RegisterEvent(EventTypeTemplatePublished, func() shared.Event { return &TemplatePublishedEvent{} })
	shared.RegisterEvent(EventTypeTemplateArchived, func() shared.Event { return &TemplateArchivedEvent{} })
	shared.RegisterEvent(EventTypeTemplateRestored, func() shared.Event { return &TemplateRestoredEvent{} })
	shared.RegisterEvent(EventTypeTemplateDeleted, func() shared.Event { return &TemplateDeletedEvent{} })
}

// TemplateCreatedEvent 模板创建事件
type TemplateCreatedEvent struct {
	shared.BaseDomainEvent
	TemplateName string   `json:"name"`
	Subject      string   `json:"subject"`
	Variables    []string `json:"variables,omitempty"`
	CreatedBy    string   `json:"created_by"`
}

// NewTemplateCreatedEvent 构造创建事件
func NewTemplateCreatedEvent(t *EmailTemplate) *TemplateCreatedEvent {
	return &TemplateCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTemplateCreated, AggregateTypeTemplate, t.ID.String(), t.TenantID.String(), t.Version),
		TemplateName:    t.Name,
		Subject:         t.Content.Subject(),
		Variables:       t.Content.Variables(),
		CreatedBy:       t.CreatedBy,
	}
}

// TemplateContentUpdatedEvent 模板内容更新事件
type TemplateContentUpdatedEvent struct {
	shared.BaseDomainEvent
	Subject   string `json:"subject"`
	UpdatedBy string `json:"updated_by"`
	HasDraft  bool   `json:"has_draft"`
}

// NewTemplateContentUpdatedEvent 构造内容更新事件
func NewTemplateContentUpdatedEvent(t *EmailTemplate, updatedBy string) *TemplateContentUpdatedEvent {
	return &TemplateContentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTemplateContentUpdated, AggregateTypeTemplate, t.ID.String(), t.TenantID.String(), t.Version),
		Subject:         t.Content.Subject(),
		UpdatedBy:       updatedBy,
		HasDraft:        t.HasDraft,
	}
}

// TemplatePublishedEvent 模板发布事件
type TemplatePublishedEvent struct {
	shared.BaseDomainEvent
	Revision    int       `json:"revision"`
	Subject     string    `json:"subject"`
	PublishedBy string    `json:"published_by"`
	PublishedAt time.Time `json:"published_at"`
}

// NewTemplatePublishedEvent 构造发布事件
func NewTemplatePublishedEvent(t *EmailTemplate, revision *TemplateRevision) *TemplatePublishedEvent {
	return &TemplatePublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTemplatePublished, AggregateTypeTemplate, t.ID.String(), t.TenantID.String(), t.Version),
		Revision:        revision.Number,
		Subject:         revision.Content.Subject(),
		PublishedBy:     revision.PublishedBy,
		PublishedAt:     revision.PublishedAt,
	}
}

// TemplateArchivedEvent 模板归档事件
type TemplateArchivedEvent struct {
	shared.BaseDomainEvent
	ArchivedBy string `json:"archived_by"`
}

// NewTemplateArchivedEvent 构造归档事件
func NewTemplateArchivedEvent(t *EmailTemplate, archivedBy string) *TemplateArchivedEvent {
	return &TemplateArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTemplateArchived, AggregateTypeTemplate, t.ID.String(), t.TenantID.String(), t.Version),
		ArchivedBy:      archivedBy,
	}
}

// TemplateRestoredEvent 模板恢复事件
type TemplateRestoredEvent struct {
	shared.BaseDomainEvent
	RestoredBy string `json:"restored_by"`
}

// NewTemplateRestoredEvent 构造恢复事件
func NewTemplateRestoredEvent(t *EmailTemplate, restoredBy string) *TemplateRestoredEvent {
	return &TemplateRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTemplateRestored, AggregateTypeTemplate, t.ID.String(), t.TenantID.String(), t.Version),
		RestoredBy:      restoredBy,
	}
}

// TemplateDeletedEvent 模板删除事件
type TemplateDeletedEvent struct {
	shared.BaseDomainEvent
	DeletedBy string `json:"deleted_by"`
}

// NewTemplateDeletedEvent 构造删除事件
func NewTemplateDeletedEvent(t *EmailTemplate, deletedBy string) *TemplateDeletedEvent {
	return &TemplateDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTemplateDeleted, AggregateTypeTemplate, t.ID.String(), t.TenantID.String(), t.Version),
		DeletedBy:       deletedBy,
	}
}
