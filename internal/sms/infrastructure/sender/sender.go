// Package sender 提供短信发送器实现
package sender

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
	"github.com/wyfcoding/notificationcenter/pkg/logger"
)

// LoggingSender 仅记录日志的发送器，用于本地环境与演练
type LoggingSender struct {
	provider string
}

// NewLoggingSender 创建日志发送器
func NewLoggingSender(provider string) domain.Sender {
	if provider == "" {
		provider = "LOGGING"
	}
	return &LoggingSender{provider: provider}
}

// Send 实现 domain.Sender，返回模拟的服务商消息 ID
func (s *LoggingSender) Send(ctx context.Context, m *domain.SmsMessage) (string, error) {
	logger.Info(ctx, "sms sent",
		"notification_id", m.ID.String(),
		"provider", s.provider,
		"segments", m.Content.Segments(),
		"encoding", m.Content.Encoding(),
		"cost", m.EstimatedCost.String(),
	)
	return fmt.Sprintf("%s-%s", s.provider, uuid.NewString()), nil
}

// Provider 实现 domain.Sender
func (s *LoggingSender) Provider() string { return s.provider }
