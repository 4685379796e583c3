package application

import (
	"context"
)

// TemplateService 模板服务门面，整合命令和查询服务
type TemplateService struct {
	command *TemplateCommand
	query   *TemplateQuery
}

// NewTemplateService 构造函数
func NewTemplateService(command *TemplateCommand, query *TemplateQuery) *TemplateService {
	return &TemplateService{
		command: command,
		query:   query,
	}
}

// --- Command (Writes) ---

// CreateTemplate 创建模板
func (s *TemplateService) CreateTemplate(ctx context.Context, cmd CreateTemplateCommand) (string, error) {
	return s.command.CreateTemplate(ctx, cmd)
}

// UpdateContent 更新模板内容
func (s *TemplateService) UpdateContent(ctx context.Context, cmd UpdateContentCommand) error {
	return s.command.UpdateContent(ctx, cmd)
}

// Publish 发布模板，返回新修订号
func (s *TemplateService) Publish(ctx context.Context, cmd PublishTemplateCommand) (int, error) {
	return s.command.Publish(ctx, cmd)
}

// Archive 归档模板
func (s *TemplateService) Archive(ctx context.Context, cmd LifecycleCommand) error {
	return s.command.Archive(ctx, cmd)
}

// Restore 恢复归档模板
func (s *TemplateService) Restore(ctx context.Context, cmd LifecycleCommand) error {
	return s.command.Restore(ctx, cmd)
}

// Delete 软删除模板
func (s *TemplateService) Delete(ctx context.Context, cmd LifecycleCommand) error {
	return s.command.Delete(ctx, cmd)
}

// --- Query (Reads) ---

// GetTemplate 按 ID 查询模板
func (s *TemplateService) GetTemplate(ctx context.Context, templateID string) (*EmailTemplateDTO, error) {
	return s.query.GetTemplate(ctx, templateID)
}

// ListByTenant 按租户分页查询模板
func (s *TemplateService) ListByTenant(ctx context.Context, tenantID, status string, limit, offset int) ([]*EmailTemplateDTO, int64, error) {
	return s.query.ListByTenant(ctx, tenantID, status, limit, offset)
}

// Render 渲染模板
func (s *TemplateService) Render(ctx context.Context, query RenderQuery) (*RenderedEmailDTO, error) {
	return s.query.Render(ctx, query)
}
