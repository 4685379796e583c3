// Package http 提供短信上下文的 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/sms/application"
	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
	"github.com/wyfcoding/notificationcenter/pkg/middleware"
)

// SmsHandler 短信 HTTP 处理器
type SmsHandler struct {
	service *application.SmsService
}

// NewSmsHandler 创建处理器
func NewSmsHandler(service *application.SmsService) *SmsHandler {
	return &SmsHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *SmsHandler) RegisterRoutes(r *gin.RouterGroup) {
	sms := r.Group("/sms")
	{
		sms.POST("/messages", h.SendSms)
		sms.GET("/messages/:id", h.GetSms)
		sms.GET("/messages", h.ListByUser)
		sms.POST("/messages/:id/cancel", h.Cancel)
		sms.POST("/messages/:id/delivery", h.ConfirmDelivery)
	}
}

// SendSmsRequest 发送短信请求
type SendSmsRequest struct {
	UserID      string     `json:"user_id" binding:"required"`
	Phone       string     `json:"phone" binding:"required"`
	Body        string     `json:"body" binding:"required"`
	SenderID    string     `json:"sender_id"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH CRITICAL"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	RequestKey  string     `json:"request_key"`
}

// SendSms 发送短信
func (h *SmsHandler) SendSms(c *gin.Context) {
	var req SendSmsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.SendSms(c.Request.Context(), application.SendSmsCommand{
		TenantID:    c.GetString(middleware.TenantIDKey),
		UserID:      req.UserID,
		Phone:       req.Phone,
		Body:        req.Body,
		SenderID:    req.SenderID,
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

// GetSms 按 ID 查询短信
func (h *SmsHandler) GetSms(c *gin.Context) {
	dto, err := h.service.GetSms(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ListByUser 按用户分页查询短信
func (h *SmsHandler) ListByUser(c *gin.Context) {
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

// Cancel 取消短信
func (h *SmsHandler) Cancel(c *gin.Context) {
	err := h.service.Cancel(c.Request.Context(), application.CancelSmsCommand{
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
func (h *SmsHandler) ConfirmDelivery(c *gin.Context) {
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
		errors.Is(err, domain.ErrInvalidPhoneNumber),
		errors.Is(err, domain.ErrInvalidSmsContent),
		errors.Is(err, domain.ErrScheduleInPast):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
