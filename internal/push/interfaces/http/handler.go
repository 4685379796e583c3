// Package http 提供推送上下文的 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/notificationcenter/internal/push/application"
	"github.com/wyfcoding/notificationcenter/internal/push/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/middleware"
)

// PushHandler 推送 HTTP 处理器
type PushHandler struct {
	service *application.PushService
}

// NewPushHandler 创建处理器
func NewPushHandler(service *application.PushService) *PushHandler {
	return &PushHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *PushHandler) RegisterRoutes(r *gin.RouterGroup) {
	push := r.Group("/push")
	{
		push.POST("/notifications", h.SendPush)
		push.GET("/notifications/:id", h.GetPush)
		push.GET("/notifications", h.ListByUser)
		push.POST("/notifications/:id/cancel", h.Cancel)
		push.POST("/notifications/:id/delivery", h.ConfirmDelivery)
	}
}

// SendPushRequest 发送推送请求
type SendPushRequest struct {
	UserID      string            `json:"user_id" binding:"required"`
	DeviceToken string            `json:"device_token" binding:"required"`
	Platform    string            `json:"platform" binding:"required,oneof=IOS ANDROID WEB"`
	Title       string            `json:"title" binding:"required"`
	Body        string            `json:"body" binding:"required"`
	ImageURL    string            `json:"image_url"`
	Data        map[string]string `json:"data"`
	Priority    string            `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH CRITICAL"`
	ScheduledAt *time.Time        `json:"scheduled_at"`
	RequestKey  string            `json:"request_key"`
}

// SendPush 发送推送通知
func (h *PushHandler) SendPush(c *gin.Context) {
	var req SendPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.SendPush(c.Request.Context(), application.SendPushCommand{
		TenantID:    c.GetString(middleware.TenantIDKey),
		UserID:      req.UserID,
		DeviceToken: req.DeviceToken,
		Platform:    req.Platform,
		Title:       req.Title,
		Body:        req.Body,
		ImageURL:    req.ImageURL,
		Data:        req.Data,
		Priority:    req.Priority,
		ScheduledAt: req.ScheduledAt,
		RequestKey:  req.RequestKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notification_id": id})
}

// GetPush 按 ID 查询推送通知
func (h *PushHandler) GetPush(c *gin.Context) {
	dto, err := h.service.GetPush(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ListByUser 按用户分页查询推送通知
func (h *PushHandler) ListByUser(c *gin.Context) {
	var query struct {
		UserID string `form:"user_id" binding:"required"`
		Status string `form:"status"`
		Limit  int    `form:"limit"`
		Offset int    `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dtos, total, err := h.service.ListByUser(c.Request.Context(),
		c.GetString(middleware.TenantIDKey), query.UserID, query.Status, query.Limit, query.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total, "items": dtos})
}

// Cancel 取消推送通知
func (h *PushHandler) Cancel(c *gin.Context) {
	err := h.service.Cancel(c.Request.Context(), application.CancelPushCommand{
		NotificationID: c.Param("id"),
		TenantID:       c.GetString(middleware.TenantIDKey),
		CancelledBy:    c.GetString(middleware.UserIDKey),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ConfirmDelivery 处理服务商送达回执
func (h *PushHandler) ConfirmDelivery(c *gin.Context) {
	var req struct {
		DeliveredAt *time.Time `json:"delivered_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deliveredAt := time.Now().UTC()
	if req.DeliveredAt != nil {
		deliveredAt = *req.DeliveredAt
	}

	err := h.service.ConfirmDelivery(c.Request.Context(), application.ConfirmDeliveryCommand{
		NotificationID: c.Param("id"),
		DeliveredAt:    deliveredAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "delivered"})
}

// respondError 领域错误到 HTTP 状态码的映射
func respondError(c *gin.Context, err error) {
	var transitionErr *shared.InvalidStateTransitionError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, shared.ErrVersionConflict),
		errors.Is(err, application.ErrDuplicateRequest),
		errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, shared.ErrInvalidTenantID),
		errors.Is(err, shared.ErrInvalidUserID),
		errors.Is(err, shared.ErrInvalidNotificationID),
		errors.Is(err, shared.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidPushContent),
		errors.Is(err, domain.ErrInvalidDeviceToken),
		errors.Is(err, domain.ErrInvalidPlatform),
		errors.Is(err, domain.ErrScheduleInPast):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
