// Package domain 推送通知的领域模型
package domain

// PushStatus 推送通知状态
type PushStatus string

const (
	StatusPending           PushStatus = "PENDING"
	StatusScheduled         PushStatus = "SCHEDULED"
	StatusSending           PushStatus = "SENDING"
	StatusSent              PushStatus = "SENT"
	StatusDelivered         PushStatus = "DELIVERED"
	StatusFailed            PushStatus = "FAILED"
	StatusRetrying          PushStatus = "RETRYING"
	StatusPermanentlyFailed PushStatus = "PERMANENTLY_FAILED"
	StatusCancelled         PushStatus = "CANCELLED"
)

// pushTransitions 状态转换合法性表
// DELIVERED / PERMANENTLY_FAILED / CANCELLED 为终态，无出边
var pushTransitions = map[PushStatus][]PushStatus{
	StatusPending:           {StatusSending, StatusScheduled, StatusCancelled},
	StatusScheduled:         {StatusSending, StatusCancelled},
	StatusSending:           {StatusSent, StatusFailed},
	StatusSent:              {StatusDelivered, StatusFailed},
	StatusFailed:            {StatusRetrying, StatusPermanentlyFailed},
	StatusRetrying:          {StatusSending, StatusPermanentlyFailed, StatusCancelled},
	StatusDelivered:         {},
	StatusPermanentlyFailed: {},
	StatusCancelled:         {},
}

// Valid 是否为已知状态
func (s PushStatus) Valid() bool {
	_, ok := pushTransitions[s]
	return ok
}

// CanTransitionTo 判断是否允许转换到目标状态
func (s PushStatus) CanTransitionTo(next PushStatus) bool {
	for _, allowed := range pushTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal 是否为终态
func (s PushStatus) IsTerminal() bool {
	return len(pushTransitions[s]) == 0 && s.Valid()
}
