package domain

import "context"

// Sender 推送发送接口，实际接入 FCM/APNs 的实现位于基础设施层
type Sender interface {
	// Send 发送通知，返回服务商消息 ID
	Send(ctx context.Context, n *PushNotification) (providerMessageID string, err error)
}
