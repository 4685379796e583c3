package application

import (
	"context"
)

// PushService 推送服务门面，整合命令和查询服务
type PushService struct {
	command *PushCommand
	query   *PushQuery
}

// NewPushService 构造函数
func NewPushService(command *PushCommand, query *PushQuery) *PushService {
	return &PushService{
		command: command,
		query:   query,
	}
}

// --- Command (Writes) ---

// SendPush 发送推送通知
func (s *PushService) SendPush(ctx context.Context, cmd SendPushCommand) (string, error) {
	return s.command.SendPush(ctx, cmd)
}

// ConfirmDelivery 处理送达回执
func (s *PushService) ConfirmDelivery(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	return s.command.ConfirmDelivery(ctx, cmd)
}

// Cancel 取消推送通知
func (s *PushService) Cancel(ctx context.Context, cmd CancelPushCommand) error {
	return s.command.Cancel(ctx, cmd)
}

// DispatchDue 处理到期的计划与重试通知
func (s *PushService) DispatchDue(ctx context.Context, limit int) (int, error) {
	return s.command.DispatchDue(ctx, limit)
}

// --- Query (Reads) ---

// GetPush 按 ID 查询通知
func (s *PushService) GetPush(ctx context.Context, notificationID string) (*PushNotificationDTO, error) {
	return s.query.GetPush(ctx, notificationID)
}

// ListByUser 按用户分页查询通知
func (s *PushService) ListByUser(ctx context.Context, tenantID, userID, status string, limit, offset int) ([]*PushNotificationDTO, int64, error) {
	return s.query.ListByUser(ctx, tenantID, userID, status, limit, offset)
}
