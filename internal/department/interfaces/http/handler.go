// Package http 提供部门上下文的 HTTP 接口
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/notificationcenter/internal/department/application"
	"github.com/wyfcoding/notificationcenter/internal/department/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/middleware"
)

// DepartmentHandler 部门 HTTP 处理器
type DepartmentHandler struct {
	service *application.DepartmentService
}

// NewDepartmentHandler 创建处理器
func NewDepartmentHandler(service *application.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *DepartmentHandler) RegisterRoutes(r *gin.RouterGroup) {
	departments := r.Group("/departments")
	{
		departments.POST("", h.CreateDepartment)
		departments.GET("", h.ListByTenant)
		departments.GET("/tree", h.GetTree)
		departments.GET("/:id", h.GetDepartment)
		departments.GET("/:id/children", h.ListChildren)
		departments.POST("/:id/activate", h.Activate)
		departments.POST("/:id/suspend", h.Suspend)
		departments.POST("/:id/disable", h.Disable)
		departments.DELETE("/:id", h.Delete)
		departments.PUT("/:id/manager", h.ChangeManager)
		departments.PUT("/:id/settings", h.UpdateSettings)
		departments.PUT("/:id/name", h.Rename)
		departments.PUT("/:id/parent", h.Reparent)
	}
}

// operatorRoles 从 gin context 取出操作者角色
func operatorRoles(c *gin.Context) []string {
	value, _ := c.Get(middleware.RolesKey)
	if roles, ok := value.([]string); ok {
		return roles
	}
	return nil
}

// lifecycleCommand 组装生命周期命令
func lifecycleCommand(c *gin.Context) application.LifecycleCommand {
	return application.LifecycleCommand{
		DepartmentID: c.Param("id"),
		TenantID:     c.GetString(middleware.TenantIDKey),
		OperatorID:   c.GetString(middleware.UserIDKey),
		Roles:        operatorRoles(c),
	}
}

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name            string `json:"name" binding:"required"`
	ParentID        string `json:"parent_id"`
	ManagerID       string `json:"manager_id" binding:"required"`
	MaxMembers      int    `json:"max_members" binding:"required,min=1,max=10000"`
	AllowSelfJoin   bool   `json:"allow_self_join"`
	RequireApproval bool   `json:"require_approval"`
	Visibility      string `json:"visibility" binding:"omitempty,oneof=public tenant private"`
}

// CreateDepartment 创建部门
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.CreateDepartment(c.Request.Context(), application.CreateDepartmentCommand{
		TenantID:        c.GetString(middleware.TenantIDKey),
		Name:            req.Name,
		ParentID:        req.ParentID,
		ManagerID:       req.ManagerID,
		MaxMembers:      req.MaxMembers,
		AllowSelfJoin:   req.AllowSelfJoin,
		RequireApproval: req.RequireApproval,
		Visibility:      req.Visibility,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"department_id": id})
}

// GetDepartment 按 ID 查询部门
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	dto, err := h.service.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ListByTenant 按租户分页查询部门
func (h *DepartmentHandler) ListByTenant(c *gin.Context) {
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

// ListChildren 查询直接子部门
func (h *DepartmentHandler) ListChildren(c *gin.Context) {
	dtos, err := h.service.ListChildren(c.Request.Context(),
		c.GetString(middleware.TenantIDKey), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos})
}

// GetTree 查询租户的完整部门树
func (h *DepartmentHandler) GetTree(c *gin.Context) {
	tree, err := h.service.GetTree(c.Request.Context(), c.GetString(middleware.TenantIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": tree})
}

// Activate 启用部门
func (h *DepartmentHandler) Activate(c *gin.Context) {
	if err := h.service.Activate(c.Request.Context(), lifecycleCommand(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

// SuspendRequest 暂停请求
type SuspendRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Suspend 暂停部门
func (h *DepartmentHandler) Suspend(c *gin.Context) {
	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Suspend(c.Request.Context(), application.SuspendDepartmentCommand{
		DepartmentID: c.Param("id"),
		TenantID:     c.GetString(middleware.TenantIDKey),
		OperatorID:   c.GetString(middleware.UserIDKey),
		Roles:        operatorRoles(c),
		Reason:       req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "suspended"})
}

// Disable 停用部门
func (h *DepartmentHandler) Disable(c *gin.Context) {
	if err := h.service.Disable(c.Request.Context(), lifecycleCommand(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disabled"})
}

// Delete 软删除部门
func (h *DepartmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), lifecycleCommand(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ChangeManagerRequest 更换负责人请求
type ChangeManagerRequest struct {
	ManagerID string `json:"manager_id" binding:"required"`
}

// ChangeManager 更换负责人
func (h *DepartmentHandler) ChangeManager(c *gin.Context) {
	var req ChangeManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.ChangeManager(c.Request.Context(), application.ChangeManagerCommand{
		DepartmentID: c.Param("id"),
		TenantID:     c.GetString(middleware.TenantIDKey),
		OperatorID:   c.GetString(middleware.UserIDKey),
		Roles:        operatorRoles(c),
		ManagerID:    req.ManagerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "manager_changed"})
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	MaxMembers      int    `json:"max_members" binding:"required,min=1,max=10000"`
	AllowSelfJoin   bool   `json:"allow_self_join"`
	RequireApproval bool   `json:"require_approval"`
	Visibility      string `json:"visibility" binding:"omitempty,oneof=public tenant private"`
}

// UpdateSettings 更新部门设置
func (h *DepartmentHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.UpdateSettings(c.Request.Context(), application.UpdateSettingsCommand{
		DepartmentID:    c.Param("id"),
		TenantID:        c.GetString(middleware.TenantIDKey),
		OperatorID:      c.GetString(middleware.UserIDKey),
		Roles:           operatorRoles(c),
		MaxMembers:      req.MaxMembers,
		AllowSelfJoin:   req.AllowSelfJoin,
		RequireApproval: req.RequireApproval,
		Visibility:      req.Visibility,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "settings_updated"})
}

// RenameRequest 重命名请求
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename 重命名部门
func (h *DepartmentHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Rename(c.Request.Context(), application.RenameDepartmentCommand{
		DepartmentID: c.Param("id"),
		TenantID:     c.GetString(middleware.TenantIDKey),
		OperatorID:   c.GetString(middleware.UserIDKey),
		Roles:        operatorRoles(c),
		Name:         req.Name,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "renamed"})
}

// ReparentRequest 改挂请求
type ReparentRequest struct {
	// 新父部门 ID，空串表示挂为根部门
	ParentID string `json:"parent_id"`
}

// Reparent 调整父部门
func (h *DepartmentHandler) Reparent(c *gin.Context) {
	var req ReparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Reparent(c.Request.Context(), application.ReparentDepartmentCommand{
		DepartmentID: c.Param("id"),
		TenantID:     c.GetString(middleware.TenantIDKey),
		OperatorID:   c.GetString(middleware.UserIDKey),
		Roles:        operatorRoles(c),
		ParentID:     req.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reparented"})
}

// respondError 领域错误到 HTTP 状态码的映射
func respondError(c *gin.Context, err error) {
	var transitionErr *shared.InvalidStateTransitionError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, shared.ErrVersionConflict),
		errors.Is(err, domain.ErrDepartmentHasChildren),
		errors.Is(err, domain.ErrHierarchyCycle),
		errors.Is(err, domain.ErrMaxDepthExceeded),
		errors.Is(err, domain.ErrParentNotActive),
		errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, shared.ErrInvalidTenantID),
		errors.Is(err, shared.ErrInvalidUserID),
		errors.Is(err, shared.ErrInvalidDepartmentID),
		errors.Is(err, domain.ErrInvalidDepartmentName),
		errors.Is(err, domain.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
