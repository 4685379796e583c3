// Package application 模板上下文的应用服务
package application

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/template/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// ErrTemplateNameTaken 租户内模板名称冲突
var ErrTemplateNameTaken = errors.New("template name already taken")

// TemplateCommand 处理模板相关的命令操作
type TemplateCommand struct {
	database  *db.DB
	repo      domain.Repository
	publisher domain.EventPublisher
	cache     *cache.RedisCache
}

// NewTemplateCommand 创建命令服务
func NewTemplateCommand(
	database *db.DB,
	repo domain.Repository,
	publisher domain.EventPublisher,
	redisCache *cache.RedisCache,
) *TemplateCommand {
	return &TemplateCommand{
		database:  database,
		repo:      repo,
		publisher: publisher,
		cache:     redisCache,
	}
}

// CreateTemplate 创建模板，返回模板 ID
func (c *TemplateCommand) CreateTemplate(ctx context.Context, cmd CreateTemplateCommand) (string, error) {
	tenantID, err := shared.NewTenantID(cmd.TenantID)
	if err != nil {
		return "", err
	}
	content, err := domain.NewTemplateContent(cmd.Subject, cmd.HTMLBody, cmd.TextBody, cmd.Variables)
	if err != nil {
		return "", err
	}
	id, err := shared.NewTemplateID(idgen.GenIDString())
	if err != nil {
		return "", err
	}

	// 名称在租户内唯一
	if _, err := c.repo.GetByName(ctx, tenantID, cmd.Name); err == nil {
		return "", ErrTemplateNameTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		return "", err
	}

	t, err := domain.NewEmailTemplate(id, tenantID, cmd.Name, content, cmd.CreatedBy)
	if err != nil {
		return "", err
	}

	if err := c.persist(ctx, t); err != nil {
		return "", err
	}
	return t.ID.String(), nil
}

// UpdateContent 更新模板工作副本内容
func (c *TemplateCommand) UpdateContent(ctx context.Context, cmd UpdateContentCommand) error {
	content, err := domain.NewTemplateContent(cmd.Subject, cmd.HTMLBody, cmd.TextBody, cmd.Variables)
	if err != nil {
		return err
	}

	return c.mutate(ctx, cmd.TemplateID, func(t *domain.EmailTemplate) error {
		return t.UpdateContent(content, cmd.UpdatedBy)
	})
}

// Publish 发布模板当前草稿
func (c *TemplateCommand) Publish(ctx context.Context, cmd PublishTemplateCommand) (int, error) {
	var revision int
	err := c.mutate(ctx, cmd.TemplateID, func(t *domain.EmailTemplate) error {
		r, err := t.Publish(cmd.PublishedBy)
		if err != nil {
			return err
		}
		revision = r.Number
		return nil
	})
	return revision, err
}

// Archive 归档模板
func (c *TemplateCommand) Archive(ctx context.Context, cmd LifecycleCommand) error {
	return c.mutate(ctx, cmd.TemplateID, func(t *domain.EmailTemplate) error {
		return t.Archive(cmd.OperatedBy)
	})
}

// Restore 恢复归档模板
func (c *TemplateCommand) Restore(ctx context.Context, cmd LifecycleCommand) error {
	return c.mutate(ctx, cmd.TemplateID, func(t *domain.EmailTemplate) error {
		return t.Restore(cmd.OperatedBy)
	})
}

// Delete 软删除模板
func (c *TemplateCommand) Delete(ctx context.Context, cmd LifecycleCommand) error {
	return c.mutate(ctx, cmd.TemplateID, func(t *domain.EmailTemplate) error {
		return t.Delete(cmd.OperatedBy)
	})
}

// mutate 加载聚合、执行变更并持久化
func (c *TemplateCommand) mutate(ctx context.Context, templateID string, fn func(*domain.EmailTemplate) error) error {
	id, err := shared.NewTemplateID(templateID)
	if err != nil {
		return err
	}

	t, err := c.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(t); err != nil {
		return err
	}

	return c.persist(ctx, t)
}

// persist 在事务中保存聚合并将未提交事件写入发件箱，成功后失效查询缓存
func (c *TemplateCommand) persist(ctx context.Context, t *domain.EmailTemplate) error {
	err := c.database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := c.repo.Save(ctx, tx, t); err != nil {
			return err
		}
		return c.publisher.PublishInTx(ctx, tx, t.PullEvents())
	})
	if err != nil {
		return err
	}

	if c.cache != nil {
		if delErr := c.cache.Delete(ctx, fmt.Sprintf("template:tpl:%s", t.ID.String())); delErr != nil {
			logger.Warn(ctx, "template cache invalidation failed", "template_id", t.ID.String(), "error", delErr)
		}
	}
	return nil
}
