// Package http 提供模板上下文的 HTTP 接口
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/template/application"
	"github.com/wyfcoding/notificationcenter/internal/template/domain"
	"github.com/wyfcoding/notificationcenter/pkg/middleware"
)

// TemplateHandler 模板 HTTP 处理器
type TemplateHandler struct {
	service *application.TemplateService
}

// NewTemplateHandler 创建处理器
func NewTemplateHandler(service *application.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *TemplateHandler) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.POST("", h.CreateTemplate)
		templates.GET("", h.ListByTenant)
		templates.GET("/:id", h.GetTemplate)
		templates.PUT("/:id/content", h.UpdateContent)
		templates.POST("/:id/publish", h.Publish)
		templates.POST("/:id/archive", h.Archive)
		templates.POST("/:id/restore", h.Restore)
		templates.DELETE("/:id", h.Delete)
		templates.POST("/:id/render", h.Render)
	}
}

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Name      string   `json:"name" binding:"required"`
	Subject   string   `json:"subject" binding:"required"`
	HTMLBody  string   `json:"html_body" binding:"required"`
	TextBody  string   `json:"text_body"`
	Variables []string `json:"variables"`
}

// CreateTemplate 创建模板
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.CreateTemplate(c.Request.Context(), application.CreateTemplateCommand{
		TenantID:  c.GetString(middleware.TenantIDKey),
		Name:      req.Name,
		Subject:   req.Subject,
		HTMLBody:  req.HTMLBody,
		TextBody:  req.TextBody,
		Variables: req.Variables,
		CreatedBy: c.GetString(middleware.UserIDKey),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"template_id": id})
}

// GetTemplate 按 ID 查询模板
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	dto, err := h.service.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ListByTenant 按租户分页查询模板
func (h *TemplateHandler) ListByTenant(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Limit  int    `form:"limit"`
		Offset int    `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dtos, total, err := h.service.ListByTenant(c.Request.Context(),
		c.GetString(middleware.TenantIDKey), query.Status, query.Limit, query.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total, "items": dtos})
}

// UpdateContentRequest 更新内容请求
type UpdateContentRequest struct {
	Subject   string   `json:"subject" binding:"required"`
	HTMLBody  string   `json:"html_body" binding:"required"`
	TextBody  string   `json:"text_body"`
	Variables []string `json:"variables"`
}

// UpdateContent 更新模板内容
func (h *TemplateHandler) UpdateContent(c *gin.Context) {
	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.UpdateContent(c.Request.Context(), application.UpdateContentCommand{
		TemplateID: c.Param("id"),
		TenantID:   c.GetString(middleware.TenantIDKey),
		Subject:    req.Subject,
		HTMLBody:   req.HTMLBody,
		TextBody:   req.TextBody,
		Variables:  req.Variables,
		UpdatedBy:  c.GetString(middleware.UserIDKey),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Publish 发布模板
func (h *TemplateHandler) Publish(c *gin.Context) {
	revision, err := h.service.Publish(c.Request.Context(), application.PublishTemplateCommand{
		TemplateID:  c.Param("id"),
		TenantID:    c.GetString(middleware.TenantIDKey),
		PublishedBy: c.GetString(middleware.UserIDKey),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "published", "revision": revision})
}

// Archive 归档模板
func (h *TemplateHandler) Archive(c *gin.Context) {
	h.lifecycle(c, h.service.Archive, "archived")
}

// Restore 恢复归档模板
func (h *TemplateHandler) Restore(c *gin.Context) {
	h.lifecycle(c, h.service.Restore, "restored")
}

// Delete 软删除模板
func (h *TemplateHandler) Delete(c *gin.Context) {
	h.lifecycle(c, h.service.Delete, "deleted")
}

// lifecycle 归档/恢复/删除的公共处理
func (h *TemplateHandler) lifecycle(c *gin.Context, op func(context.Context, application.LifecycleCommand) error, status string) {
	err := op(c.Request.Context(), application.LifecycleCommand{
		TemplateID: c.Param("id"),
		TenantID:   c.GetString(middleware.TenantIDKey),
		OperatedBy: c.GetString(middleware.UserIDKey),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// RenderRequest 渲染请求
type RenderRequest struct {
	Revision int               `json:"revision"`
	Values   map[string]string `json:"values"`
}

// Render 渲染模板
func (h *TemplateHandler) Render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto, err := h.service.Render(c.Request.Context(), application.RenderQuery{
		TemplateID: c.Param("id"),
		Revision:   req.Revision,
		Values:     req.Values,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// respondError 领域错误到 HTTP 状态码的映射
func respondError(c *gin.Context, err error) {
	var transitionErr *shared.InvalidStateTransitionError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, shared.ErrVersionConflict),
		errors.Is(err, application.ErrTemplateNameTaken),
		errors.Is(err, domain.ErrTemplateNotEditable),
		errors.Is(err, domain.ErrNothingToPublish),
		errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, shared.ErrInvalidTenantID),
		errors.Is(err, shared.ErrInvalidTemplateID),
		errors.Is(err, domain.ErrInvalidTemplateContent),
		errors.Is(err, domain.ErrInvalidTemplateName),
		errors.Is(err, domain.ErrUndeclaredVariable),
		errors.Is(err, domain.ErrMissingVariable),
		errors.Is(err, domain.ErrNoPublishedRevision):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
