// Package sender 提供推送发送器实现
// 真实的 FCM/APNS 接入由各服务商 SDK 承担，这里按服务商路由并统一返回消息 ID
package sender

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wyfcoding/notificationcenter/internal/push/domain"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// LoggingSender 仅记录日志的发送器，用于本地环境与演练
type LoggingSender struct{}

// NewLoggingSender 创建日志发送器
func NewLoggingSender() domain.Sender {
	return &LoggingSender{}
}

// Send 实现 domain.Sender，返回模拟的服务商消息 ID
func (s *LoggingSender) Send(ctx context.Context, n *domain.PushNotification) (string, error) {
	logger.Info(ctx, "push sent",
		"notification_id", n.ID.String(),
		"provider", string(n.Provider),
		"platform", string(n.Platform),
		"priority", string(n.Priority),
	)
	return fmt.Sprintf("%s-%s", n.Provider, uuid.NewString()), nil
}
