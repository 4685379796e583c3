package domain

import (
	"fmt"
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// AggregateTypeTemplate 聚合类型常量
const AggregateTypeTemplate = "EmailTemplate"

// TemplateRevision 模板的一次发布快照，发布后不可变
type TemplateRevision struct {
	// 修订号，从 1 开始单调递增
	Number int
	// 发布时冻结的内容
	Content TemplateContent
	// 发布人
	PublishedBy string
	// 发布时间
	PublishedAt time.Time
}

// EmailTemplate 邮件模板聚合根
// 发布采用版本化快照：Publish 将当前草稿内容冻结为新修订，
// 已发布模板的编辑只改动工作副本，不回写已冻结的修订
type EmailTemplate struct {
	shared.AggregateRoot

	// 模板 ID
	ID shared.TemplateID
	// 租户 ID
	TenantID shared.TenantID
	// 模板名称，租户内唯一
	Name string
	// 工作副本内容
	Content TemplateContent
	// 当前状态
	Status TemplateStatus
	// 已冻结的修订列表，按修订号递增
	Revisions []TemplateRevision
	// 当前已发布的修订号，0 表示尚未发布
	PublishedRevision int
	// 工作副本是否有未发布的改动
	HasDraft bool
	// 创建人
	CreatedBy string
	// 乐观锁版本号
	Version int64
	// 加载时的版本号，乐观锁比较基准，由仓储维护；新建聚合为 0
	LoadedVersion int64
	// 创建时间
	CreatedAt time.Time
	// 更新时间
	UpdatedAt time.Time
}

// NewEmailTemplate 创建邮件模板聚合，初始状态 DRAFT
func NewEmailTemplate(
	id shared.TemplateID,
	tenantID shared.TenantID,
	name string,
	content TemplateContent,
	createdBy string,
) (*EmailTemplate, error) {
	if name == "" || len([]rune(name)) > maxNameLength {
		return nil, fmt.Errorf("%w: name length must be 1-%d", ErrInvalidTemplateName, maxNameLength)
	}

	now := time.Now().UTC()
	t := &EmailTemplate{
		ID:        id,
		TenantID:  tenantID,
		Name:      name,
		Content:   content,
		Status:    StatusDraft,
		HasDraft:  true,
		CreatedBy: createdBy,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Record(NewTemplateCreatedEvent(t))
	return t, nil
}

// transitionTo 状态转换守卫，成功后递增版本号
func (t *EmailTemplate) transitionTo(next TemplateStatus) error {
	if !t.Status.CanTransitionTo(next) {
		return shared.NewInvalidStateTransition(AggregateTypeTemplate, string(t.Status), string(next))
	}
	t.Status = next
	t.Version++
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateContent 更新工作副本内容
// 草稿与已发布状态都允许编辑：编辑已发布模板只产生新的待发布草稿，
// 不改动已冻结的修订
func (t *EmailTemplate) UpdateContent(content TemplateContent, updatedBy string) error {
	if t.Status != StatusDraft && t.Status != StatusPublished {
		return fmt.Errorf("%w: status %s", ErrTemplateNotEditable, t.Status)
	}

	t.Content = content
	t.HasDraft = true
	t.Version++
	t.UpdatedAt = time.Now().UTC()
	t.Record(NewTemplateContentUpdatedEvent(t, updatedBy))
	return nil
}

// Publish 发布当前草稿：冻结为新修订并指向它
// 首次发布走 DRAFT -> PUBLISHED，再次发布在 PUBLISHED 状态下叠加新修订
func (t *EmailTemplate) Publish(publishedBy string) (*TemplateRevision, error) {
	switch t.Status {
	case StatusDraft:
		if err := t.transitionTo(StatusPublished); err != nil {
			return nil, err
		}
	case StatusPublished:
		if !t.HasDraft {
			return nil, ErrNothingToPublish
		}
		t.Version++
		t.UpdatedAt = time.Now().UTC()
	default:
		return nil, shared.NewInvalidStateTransition(AggregateTypeTemplate, string(t.Status), string(StatusPublished))
	}

	revision := TemplateRevision{
		Number:      len(t.Revisions) + 1,
		Content:     t.Content,
		PublishedBy: publishedBy,
		PublishedAt: time.Now().UTC(),
	}
	t.Revisions = append(t.Revisions, revision)
	t.PublishedRevision = revision.Number
	t.HasDraft = false

	t.Record(NewTemplatePublishedEvent(t, &revision))
	return &revision, nil
}

// Archive 归档模板，PUBLISHED -> ARCHIVED
func (t *EmailTemplate) Archive(archivedBy string) error {
	if err := t.transitionTo(StatusArchived); err != nil {
		return err
	}
	t.Record(NewTemplateArchivedEvent(t, archivedBy))
	return nil
}

// Restore 恢复归档模板，ARCHIVED -> PUBLISHED
func (t *EmailTemplate) Restore(restoredBy string) error {
	if err := t.transitionTo(StatusPublished); err != nil {
		return err
	}
	t.Record(NewTemplateRestoredEvent(t, restoredBy))
	return nil
}

// Delete 软删除模板，DRAFT/ARCHIVED -> DELETED
func (t *EmailTemplate) Delete(deletedBy string) error {
	if err := t.transitionTo(StatusDeleted); err != nil {
		return err
	}
	t.Record(NewTemplateDeletedEvent(t, deletedBy))
	return nil
}

// CurrentRevision 当前已发布的修订，尚未发布时返回 ErrNoPublishedRevision
func (t *EmailTemplate) CurrentRevision() (*TemplateRevision, error) {
	if t.PublishedRevision == 0 {
		return nil, ErrNoPublishedRevision
	}
	for i := range t.Revisions {
		if t.Revisions[i].Number == t.PublishedRevision {
			return &t.Revisions[i], nil
		}
	}
	return nil, ErrNoPublishedRevision
}

// IsTerminal 是否处于终态
func (t *EmailTemplate) IsTerminal() bool {
	return t.Status.IsTerminal()
}
