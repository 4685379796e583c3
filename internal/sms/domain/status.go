// Package domain 短信的领域模型
package domain

// SmsStatus 短信状态
type SmsStatus string

const (
	StatusPending           SmsStatus = "PENDING"
	StatusScheduled         SmsStatus = "SCHEDULED"
	StatusSending           SmsStatus = "SENDING"
	StatusSent              SmsStatus = "SENT"
	StatusDelivered         SmsStatus = "DELIVERED"
	StatusFailed            SmsStatus = "FAILED"
	StatusRetrying          SmsStatus = "RETRYING"
	StatusPermanentlyFailed SmsStatus = "PERMANENTLY_FAILED"
	StatusCancelled         SmsStatus = "CANCELLED"
)

// smsTransitions 状态转换合法性表
// DELIVERED / PERMANENTLY_FAILED / CANCELLED 为终态，无出边
var smsTransitions = map[SmsStatus][]SmsStatus{
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
func (s SmsStatus) Valid() bool {
	_, ok := smsTransitions[s]
	return ok
}

// CanTransitionTo 判断是否允许转换到目标状态
func (s SmsStatus) CanTransitionTo(next SmsStatus) bool {
	for _, allowed := range smsTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal 是否为终态
func (s SmsStatus) IsTerminal() bool {
	return len(smsTransitions[s]) == 0 && s.Valid()
}
