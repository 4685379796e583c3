package application

import (
	"context"
)

// SmsService 短信服务门面，整合命令和查询服务
type SmsService struct {
	command *SmsCommand
	query   *SmsQuery
}

// NewSmsService 构造函数
func NewSmsService(command *SmsCommand, query *SmsQuery) *SmsService {
	return &SmsService{
		command: command,
		query:   query,
	}
}

// --- Command (Writes) ---

// SendSms 发送短信
func (s *SmsService) SendSms(ctx context.Context, cmd SendSmsCommand) (string, error) {
	return s.command.SendSms(ctx, cmd)
}

// ConfirmDelivery 处理送达回执
func (s *SmsService) ConfirmDelivery(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	return s.command.ConfirmDelivery(ctx, cmd)
}

// Cancel 取消短信
func (s *SmsService) Cancel(ctx context.Context, cmd CancelSmsCommand) error {
	return s.command.Cancel(ctx, cmd)
}

// DispatchDue 处理到期的计划与重试短信
func (s *SmsService) DispatchDue(ctx context.Context, limit int) (int, error) {
	return s.command.DispatchDue(ctx, limit)
}

// --- Query (Reads) ---

// GetSms 按 ID 查询短信
func (s *SmsService) GetSms(ctx context.Context, notificationID string) (*SmsMessageDTO, error) {
	return s.query.GetSms(ctx, notificationID)
}

// ListByUser 按用户分页查询短信
func (s *SmsService) ListByUser(ctx context.Context, tenantID, userID, status string, limit, offset int) ([]*SmsMessageDTO, int64, error) {
	return s.query.ListByUser(ctx, tenantID, userID, status, limit, offset)
}
