// Package mysql 提供模板仓储接口的 MySQL GORM 实现
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/template/domain"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// EmailTemplateModel 模板数据库模型
type EmailTemplateModel struct {
	gorm.Model
	TemplateID        string         `gorm:"column:template_id;type:varchar(32);uniqueIndex;not null"`
	TenantID          string         `gorm:"column:tenant_id;type:varchar(36);uniqueIndex:idx_tenant_name;not null"`
	Name              string         `gorm:"column:name;type:varchar(100);uniqueIndex:idx_tenant_name;not null"`
	Subject           string         `gorm:"column:subject;type:varchar(200);not null"`
	HTMLBody          string         `gorm:"column:html_body;type:mediumtext;not null"`
	TextBody          string         `gorm:"column:text_body;type:text"`
	Variables         datatypes.JSON `gorm:"column:variables;type:json"`
	Status            string         `gorm:"column:status;type:varchar(20);index;not null"`
	PublishedRevision int            `gorm:"column:published_revision;not null;default:0"`
	HasDraft          bool           `gorm:"column:has_draft;not null;default:0"`
	CreatedBy         string         `gorm:"column:created_by;type:varchar(36)"`
	Version           int64          `gorm:"column:version;not null;default:1"`
}

// TableName 指定表名
func (EmailTemplateModel) TableName() string { return "email_templates" }

// TemplateRevisionModel 模板修订数据库模型，发布后不再更新
type TemplateRevisionModel struct {
	gorm.Model
	TemplateID  string         `gorm:"column:template_id;type:varchar(32);uniqueIndex:idx_template_revision;not null"`
	Revision    int            `gorm:"column:revision;uniqueIndex:idx_template_revision;not null"`
	Subject     string         `gorm:"column:subject;type:varchar(200);not null"`
	HTMLBody    string         `gorm:"column:html_body;type:mediumtext;not null"`
	TextBody    string         `gorm:"column:text_body;type:text"`
	Variables   datatypes.JSON `gorm:"column:variables;type:json"`
	PublishedBy string         `gorm:"column:published_by;type:varchar(36)"`
	PublishedAt time.Time      `gorm:"column:published_at;type:datetime;not null"`
}

// TableName 指定表名
func (TemplateRevisionModel) TableName() string { return "template_revisions" }

// templateRepositoryImpl 是 domain.Repository 接口的 GORM 实现
type templateRepositoryImpl struct {
	db *gorm.DB
}

// NewTemplateRepository 创建模板仓储实例
func NewTemplateRepository(db *gorm.DB) domain.Repository {
	return &templateRepositoryImpl{db: db}
}

// Save 实现 domain.Repository.Save，乐观锁版本校验
// 修订表只增不改，按 (template_id, revision) 唯一键幂等插入
func (r *templateRepositoryImpl) Save(ctx context.Context, tx *gorm.DB, t *domain.EmailTemplate) error {
	m, err := toModel(t)
	if err != nil {
		return err
	}

	if t.LoadedVersion == 0 {
		if err := tx.WithContext(ctx).Create(m).Error; err != nil {
			logger.Error(ctx, "template_repository.Save create failed", "template_id", t.ID.String(), "error", err)
			return fmt.Errorf("failed to create template: %w", err)
		}
	} else {
		result := tx.WithContext(ctx).Model(&EmailTemplateModel{}).
			Where("template_id = ? AND version = ?", t.ID.String(), t.LoadedVersion).
			Updates(map[string]interface{}{
				"subject":            m.Subject,
				"html_body":          m.HTMLBody,
				"text_body":          m.TextBody,
				"variables":          m.Variables,
				"status":             m.Status,
				"published_revision": m.PublishedRevision,
				"has_draft":          m.HasDraft,
				"version":            m.Version,
			})
		if result.Error != nil {
			logger.Error(ctx, "template_repository.Save update failed", "template_id", t.ID.String(), "error", result.Error)
			return fmt.Errorf("failed to update template: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrVersionConflict
		}
	}

	if err := r.saveRevisions(ctx, tx, t); err != nil {
		return err
	}

	t.LoadedVersion = t.Version
	return nil
}

// saveRevisions 幂等写入修订快照
func (r *templateRepositoryImpl) saveRevisions(ctx context.Context, tx *gorm.DB, t *domain.EmailTemplate) error {
	for _, revision := range t.Revisions {
		rm, err := revisionToModel(t.ID.String(), &revision)
		if err != nil {
			return err
		}
		err = tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "template_id"}, {Name: "revision"}},
				DoNothing: true,
			}).
			Create(rm).Error
		if err != nil {
			return fmt.Errorf("failed to save template revision %d: %w", revision.Number, err)
		}
	}
	return nil
}

// Get 实现 domain.Repository.Get
func (r *templateRepositoryImpl) Get(ctx context.Context, id shared.TemplateID) (*domain.EmailTemplate, error) {
	var m EmailTemplateModel
	if err := r.db.WithContext(ctx).Where("template_id = ?", id.String()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		logger.Error(ctx, "template_repository.Get failed", "template_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return r.load(ctx, &m)
}

// GetByName 实现 domain.Repository.GetByName
func (r *templateRepositoryImpl) GetByName(ctx context.Context, tenantID shared.TenantID, name string) (*domain.EmailTemplate, error) {
	var m EmailTemplateModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID.String(), name).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template by name: %w", err)
	}
	return r.load(ctx, &m)
}

// ListByTenant 实现 domain.Repository.ListByTenant，默认排除已删除模板
func (r *templateRepositoryImpl) ListByTenant(ctx context.Context, tenantID shared.TenantID, status domain.TemplateStatus, limit, offset int) ([]*domain.EmailTemplate, int64, error) {
	var ms []EmailTemplateModel
	var total int64

	query := r.db.WithContext(ctx).Model(&EmailTemplateModel{}).
		Where("tenant_id = ?", tenantID.String())
	if status != "" {
		query = query.Where("status = ?", string(status))
	} else {
		query = query.Where("status <> ?", string(domain.StatusDeleted))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&ms).Error; err != nil {
		logger.Error(ctx, "template_repository.ListByTenant failed", "tenant_id", tenantID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}

	res := make([]*domain.EmailTemplate, 0, len(ms))
	for i := range ms {
		t, err := r.load(ctx, &ms[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, t)
	}
	return res, total, nil
}

// load 组装聚合：模板行 + 全部修订
func (r *templateRepositoryImpl) load(ctx context.Context, m *EmailTemplateModel) (*domain.EmailTemplate, error) {
	var revisionModels []TemplateRevisionModel
	err := r.db.WithContext(ctx).
		Where("template_id = ?", m.TemplateID).
		Order("revision asc").
		Find(&revisionModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load template revisions: %w", err)
	}
	return toDomain(m, revisionModels)
}

// toModel 领域对象转数据库模型
func toModel(t *domain.EmailTemplate) (*EmailTemplateModel, error) {
	variables, err := marshalVariables(t.Content.Variables())
	if err != nil {
		return nil, err
	}

	return &EmailTemplateModel{
		TemplateID:        t.ID.String(),
		TenantID:          t.TenantID.String(),
		Name:              t.Name,
		Subject:           t.Content.Subject(),
		HTMLBody:          t.Content.HTMLBody(),
		TextBody:          t.Content.TextBody(),
		Variables:         variables,
		Status:            string(t.Status),
		PublishedRevision: t.PublishedRevision,
		HasDraft:          t.HasDraft,
		CreatedBy:         t.CreatedBy,
		Version:           t.Version,
	}, nil
}

// revisionToModel 修订转数据库模型
func revisionToModel(templateID string, revision *domain.TemplateRevision) (*TemplateRevisionModel, error) {
	variables, err := marshalVariables(revision.Content.Variables())
	if err != nil {
		return nil, err
	}

	return &TemplateRevisionModel{
		TemplateID:  templateID,
		Revision:    revision.Number,
		Subject:     revision.Content.Subject(),
		HTMLBody:    revision.Content.HTMLBody(),
		TextBody:    revision.Content.TextBody(),
		Variables:   variables,
		PublishedBy: revision.PublishedBy,
		PublishedAt: revision.PublishedAt,
	}, nil
}

// toDomain 数据库模型转领域对象
func toDomain(m *EmailTemplateModel, revisionModels []TemplateRevisionModel) (*domain.EmailTemplate, error) {
	id, err := shared.NewTemplateID(m.TemplateID)
	if err != nil {
		return nil, err
	}
	tenantID, err := shared.NewTenantID(m.TenantID)
	if err != nil {
		return nil, err
	}

	variables, err := unmarshalVariables(m.Variables)
	if err != nil {
		return nil, err
	}
	content, err := domain.NewTemplateContent(m.Subject, m.HTMLBody, m.TextBody, variables)
	if err != nil {
		return nil, err
	}

	revisions := make([]domain.TemplateRevision, 0, len(revisionModels))
	for i := range revisionModels {
		rm := &revisionModels[i]
		revisionVars, err := unmarshalVariables(rm.Variables)
		if err != nil {
			return nil, err
		}
		revisionContent, err := domain.NewTemplateContent(rm.Subject, rm.HTMLBody, rm.TextBody, revisionVars)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, domain.TemplateRevision{
			Number:      rm.Revision,
			Content:     revisionContent,
			PublishedBy: rm.PublishedBy,
			PublishedAt: rm.PublishedAt,
		})
	}

	return &domain.EmailTemplate{
		ID:                id,
		TenantID:          tenantID,
		Name:              m.Name,
		Content:           content,
		Status:            domain.TemplateStatus(m.Status),
		Revisions:         revisions,
		PublishedRevision: m.PublishedRevision,
		HasDraft:          m.HasDraft,
		CreatedBy:         m.CreatedBy,
		Version:           m.Version,
		LoadedVersion:     m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

// marshalVariables 变量列表序列化
func marshalVariables(variables []string) (datatypes.JSON, error) {
	if len(variables) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template variables: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// unmarshalVariables 变量列表反序列化
func unmarshalVariables(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var variables []string
	if err := json.Unmarshal(raw, &variables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template variables: %w", err)
	}
	return variables, nil
}
