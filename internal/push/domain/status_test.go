package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushStatusTransitions(t *testing.T) {
	tests := []struct {
		from    PushStatus
		to      PushStatus
		allowed bool
	}{
		{StatusPending, StatusSending, true},
		{StatusPending, StatusScheduled, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusSent, false},
		{StatusScheduled, StatusSending, true},
		{StatusScheduled, StatusSent, false},
		{StatusSending, StatusSent, true},
		{StatusSending, StatusFailed, true},
		{StatusSending, StatusCancelled, false},
		{StatusSent, StatusDelivered, true},
		{StatusSent, StatusFailed, true},
		{StatusFailed, StatusRetrying, true},
		{StatusFailed, StatusPermanentlyFailed, true},
		{StatusFailed, StatusSending, false},
		{StatusRetrying, StatusSending, true},
		{StatusRetrying, StatusCancelled, true},
		{StatusDelivered, StatusFailed, false},
		{StatusCancelled, StatusSending, false},
		{StatusPermanentlyFailed, StatusRetrying, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPushStatusTerminal(t *testing.T) {
	terminal := []PushStatus{StatusDelivered, StatusPermanentlyFailed, StatusCancelled}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), string(s))
	}

	nonTerminal := []PushStatus{StatusPending, StatusScheduled, StatusSending, StatusSent, StatusFailed, StatusRetrying}
	for _, s := range nonTerminal {
		assert.False(t, s.IsTerminal(), string(s))
	}

	// 未知状态既不合法也不是终态
	assert.False(t, PushStatus("BOGUS").Valid())
	assert.False(t, PushStatus("BOGUS").IsTerminal())
}
