package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

func newTestSms(t *testing.T, priority shared.Priority) *SmsMessage {
	t.Helper()

	id, err := shared.NewNotificationID("1862497328841363457")
	require.NoError(t, err)
	tenantID, err := shared.NewTenantID(uuid.NewString())
	require.NoError(t, err)
	userID, err := shared.NewUserID(uuid.NewString())
	require.NoError(t, err)
	phone, err := NewPhoneNumber("+8613812345678")
	require.NoError(t, err)
	content, err := NewSmsContent("您的验证码是 8888")
	require.NoError(t, err)

	m, err := NewSmsMessage(id, tenantID, userID, phone, content, "ACME", priority, decimal.NewFromFloat(0.025))
	require.NoError(t, err)
	return m
}

func TestNewSmsMessage(t *testing.T) {
	m := newTestSms(t, shared.PriorityCritical)

	assert.Equal(t, StatusPending, m.Status)
	assert.Equal(t, 8, m.MaxRetries)
	assert.Equal(t, "ACME", m.SenderID)
	assert.True(t, m.EstimatedCost.Equal(decimal.NewFromFloat(0.025)))

	events := m.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "sms.created", events[0].Name())
}

func TestSmsHappyPath(t *testing.T) {
	m := newTestSms(t, shared.PriorityNormal)
	m.PullEvents()

	require.NoError(t, m.MarkSending("TWILIO"))
	assert.Equal(t, "TWILIO", m.Provider)

	require.NoError(t, m.MarkSent("SM123"))
	require.NoError(t, m.MarkDelivered(time.Now().UTC()))
	assert.True(t, m.IsTerminal())

	events := m.PullEvents()
	require.Len(t, events, 3)
	assert.Equal(t, "sms.sending", events[0].Name())
	assert.Equal(t, "sms.sent", events[1].Name())
	assert.Equal(t, "sms.delivered", events[2].Name())
}

func TestSmsRetryExhaustion(t *testing.T) {
	m := newTestSms(t, shared.PriorityLow)
	now := time.Now().UTC()

	require.NoError(t, m.MarkSending("TWILIO"))
	require.NoError(t, m.MarkFailed("carrier timeout"))
	require.NoError(t, m.Retry(now))
	require.NotNil(t, m.NextRetryAt)

	require.NoError(t, m.MarkSending("TWILIO"))
	require.NoError(t, m.MarkFailed("carrier timeout"))
	assert.ErrorIs(t, m.Retry(now), ErrRetryExhausted)

	require.NoError(t, m.MarkPermanentlyFailed("carrier timeout"))
	assert.True(t, m.IsTerminal())
}

func TestSmsScheduleAndCancel(t *testing.T) {
	m := newTestSms(t, shared.PriorityNormal)

	assert.ErrorIs(t, m.Schedule(time.Now().Add(-time.Second)), ErrScheduleInPast)

	require.NoError(t, m.Schedule(time.Now().Add(time.Hour)))
	require.NoError(t, m.Cancel("ops"))
	assert.Equal(t, "ops", m.CancelledBy)

	// 终态后拒绝一切转换
	var transitionErr *shared.InvalidStateTransitionError
	assert.ErrorAs(t, m.MarkSending("TWILIO"), &transitionErr)
}

func TestSmsStatusTerminal(t *testing.T) {
	for _, s := range []SmsStatus{StatusDelivered, StatusPermanentlyFailed, StatusCancelled} {
		assert.True(t, s.IsTerminal(), string(s))
	}
	for _, s := range []SmsStatus{StatusPending, StatusScheduled, StatusSending, StatusSent, StatusFailed, StatusRetrying} {
		assert.False(t, s.IsTerminal(), string(s))
	}
	assert.False(t, SmsStatus("BOGUS").IsTerminal())
}
