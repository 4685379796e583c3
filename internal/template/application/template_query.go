package application

import (
	"context"
	"fmt"
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/template/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
)

// queryCacheTTL 查询缓存时长
const queryCacheTTL = 5 * time.Minute

// TemplateQuery 处理模板相关的查询操作
type TemplateQuery struct {
	repo     domain.Repository
	renderer *domain.Renderer
	cache    *cache.RedisCache
}

// NewTemplateQuery 创建查询服务
func NewTemplateQuery(repo domain.Repository, renderer *domain.Renderer, redisCache *cache.RedisCache) *TemplateQuery {
	return &TemplateQuery{repo: repo, renderer: renderer, cache: redisCache}
}

// GetTemplate 按 ID 查询模板，优先走缓存
func (q *TemplateQuery) GetTemplate(ctx context.Context, templateID string) (*EmailTemplateDTO, error) {
	id, err := shared.NewTemplateID(templateID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("template:tpl:%s", id.String())
	if q.cache != nil {
		var cached EmailTemplateDTO
		if hit, err := q.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	t, err := q.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := toDTO(t)
	if q.cache != nil {
		_ = q.cache.SetJSON(ctx, cacheKey, dto, queryCacheTTL)
	}
	return dto, nil
}

// ListByTenant 按租户分页查询模板
func (q *TemplateQuery) ListByTenant(ctx context.Context, tenantID, status string, limit, offset int) ([]*EmailTemplateDTO, int64, error) {
	tid, err := shared.NewTenantID(tenantID)
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	templates, total, err := q.repo.ListByTenant(ctx, tid, domain.TemplateStatus(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*EmailTemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toDTO(t)
	}
	return dtos, total, nil
}

// Render 按已发布修订渲染模板
// query.Revision 为 0 时使用当前已发布的修订
func (q *TemplateQuery) Render(ctx context.Context, query RenderQuery) (*RenderedEmailDTO, error) {
	id, err := shared.NewTemplateID(query.TemplateID)
	if err != nil {
		return nil, err
	}

	t, err := q.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var revision *domain.TemplateRevision
	if query.Revision == 0 {
		revision, err = t.CurrentRevision()
		if err != nil {
			return nil, err
		}
	} else {
		for i := range t.Revisions {
			if t.Revisions[i].Number == query.Revision {
				revision = &t.Revisions[i]
				break
			}
		}
		if revision == nil {
			return nil, domain.ErrNoPublishedRevision
		}
	}

	rendered, err := q.renderer.Render(revision.Content, query.Values)
	if err != nil {
		return nil, err
	}

	return &RenderedEmailDTO{
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTMLBody,
		TextBody: rendered.TextBody,
		Revision: revision.Number,
	}, nil
}
