package application

import (
	"time"

	"github.com/wyfcoding/notificationcenter/internal/template/domain"
)

// CreateTemplateCommand 创建模板命令
type CreateTemplateCommand struct {
	TenantID  string
	Name      string
	Subject   string
	HTMLBody  string
	TextBody  string
	Variables []string
	CreatedBy string
}

// UpdateContentCommand 更新模板内容命令
type UpdateContentCommand struct {
	TemplateID string
	TenantID   string
	Subject    string
	HTMLBody   string
	TextBody   string
	Variables  []string
	UpdatedBy  string
}

// PublishTemplateCommand 发布模板命令
type PublishTemplateCommand struct {
	TemplateID  string
	TenantID    string
	PublishedBy string
}

// LifecycleCommand 归档/恢复/删除命令
type LifecycleCommand struct {
	TemplateID string
	TenantID   string
	OperatedBy string
}

// RenderQuery 渲染请求
type RenderQuery struct {
	TemplateID string
	// 指定修订号，0 表示当前已发布修订
	Revision int
	Values   map[string]string
}

// TemplateRevisionDTO 修订视图
type TemplateRevisionDTO struct {
	Number      int       `json:"number"`
	Subject     string    `json:"subject"`
	PublishedBy string    `json:"published_by"`
	PublishedAt time.Time `json:"published_at"`
}

// EmailTemplateDTO 模板查询视图
type EmailTemplateDTO struct {
	TemplateID        string                `json:"template_id"`
	TenantID          string                `json:"tenant_id"`
	Name              string                `json:"name"`
	Subject           string                `json:"subject"`
	HTMLBody          string                `json:"html_body"`
	TextBody          string                `json:"text_body,omitempty"`
	Variables         []string              `json:"variables,omitempty"`
	Status            string                `json:"status"`
	PublishedRevision int                   `json:"published_revision"`
	HasDraft          bool                  `json:"has_draft"`
	Revisions         []TemplateRevisionDTO `json:"revisions,omitempty"`
	CreatedBy         string                `json:"created_by"`
	Version           int64                 `json:"version"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// RenderedEmailDTO 渲染结果视图
type RenderedEmailDTO struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body,omitempty"`
	Revision int    `json:"revision"`
}

// toDTO 领域对象转查询视图
func toDTO(t *domain.EmailTemplate) *EmailTemplateDTO {
	revisions := make([]TemplateRevisionDTO, len(t.Revisions))
	for i, r := range t.Revisions {
		revisions[i] = TemplateRevisionDTO{
			Number:      r.Number,
			Subject:     r.Content.Subject(),
			PublishedBy: r.PublishedBy,
			PublishedAt: r.PublishedAt,
		}
	}

	return &EmailTemplateDTO{
		TemplateID:        t.ID.String(),
		TenantID:          t.TenantID.String(),
		Name:              t.Name,
		Subject:           t.Content.Subject(),
		HTMLBody:          t.Content.HTMLBody(),
		TextBody:          t.Content.TextBody(),
		Variables:         t.Content.Variables(),
		Status:            string(t.Status),
		PublishedRevision: t.PublishedRevision,
		HasDraft:          t.HasDraft,
		Revisions:         revisions,
		CreatedBy:         t.CreatedBy,
		Version:           t.Version,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
