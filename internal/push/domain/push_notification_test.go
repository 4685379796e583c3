package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

func newTestNotification(t *testing.T, priority shared.Priority) *PushNotification {
	t.Helper()

	id, err := shared.NewNotificationID("1862497328841363456")
	require.NoError(t, err)
	tenantID, err := shared.NewTenantID(uuid.NewString())
	require.NoError(t, err)
	userID, err := shared.NewUserID(uuid.NewString())
	require.NoError(t, err)
	token, err := NewDeviceToken("device-token")
	require.NoError(t, err)
	content, err := NewPushContent("title", "body", "", nil)
	require.NoError(t, err)

	n, err := NewPushNotification(id, tenantID, userID, token, PlatformAndroid, content, priority)
	require.NoError(t, err)
	return n
}

func TestNewPushNotification(t *testing.T) {
	n := newTestNotification(t, shared.PriorityHigh)

	assert.Equal(t, StatusPending, n.Status)
	assert.Equal(t, 5, n.MaxRetries)
	assert.Equal(t, int64(1), n.Version)
	assert.Equal(t, int64(0), n.LoadedVersion)

	events := n.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "push.created", events[0].Name())
}

func TestNewPushNotificationInvalidPlatform(t *testing.T) {
	id, _ := shared.NewNotificationID("1")
	tenantID, _ := shared.NewTenantID(uuid.NewString())
	userID, _ := shared.NewUserID(uuid.NewString())
	token, _ := NewDeviceToken("tok")
	content, _ := NewPushContent("t", "b", "", nil)

	_, err := NewPushNotification(id, tenantID, userID, token, Platform("SYMBIAN"), content, shared.PriorityNormal)
	assert.ErrorIs(t, err, ErrInvalidPlatform)
}

func TestPushHappyPath(t *testing.T) {
	n := newTestNotification(t, shared.PriorityNormal)
	n.PullEvents()

	require.NoError(t, n.MarkSending(ProviderFCM))
	assert.Equal(t, ProviderFCM, n.Provider)

	require.NoError(t, n.MarkSent("fcm-msg-1"))
	assert.Equal(t, "fcm-msg-1", n.ProviderMessageID)
	require.NotNil(t, n.SentAt)

	deliveredAt := time.Now().UTC()
	require.NoError(t, n.MarkDelivered(deliveredAt))
	assert.True(t, n.IsTerminal())
	assert.Equal(t, int64(4), n.Version)

	events := n.PullEvents()
	require.Len(t, events, 3)
	assert.Equal(t, "push.sending", events[0].Name())
	assert.Equal(t, "push.sent", events[1].Name())
	assert.Equal(t, "push.delivered", events[2].Name())
}

func TestPushSchedule(t *testing.T) {
	n := newTestNotification(t, shared.PriorityNormal)

	err := n.Schedule(time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, ErrScheduleInPast)

	at := time.Now().Add(time.Hour)
	require.NoError(t, n.Schedule(at))
	assert.Equal(t, StatusScheduled, n.Status)
	require.NotNil(t, n.ScheduledAt)

	// 计划中的通知仍可取消
	require.NoError(t, n.Cancel("ops"))
	assert.Equal(t, StatusCancelled, n.Status)
	assert.Equal(t, "ops", n.CancelledBy)
}

func TestPushRetryFlow(t *testing.T) {
	n := newTestNotification(t, shared.PriorityLow) // 最多 1 次重试
	now := time.Now().UTC()

	require.NoError(t, n.MarkSending(ProviderAPNS))
	require.NoError(t, n.MarkFailed("connection reset"))
	assert.Equal(t, "connection reset", n.FailureReason)

	require.NoError(t, n.Retry(now))
	assert.Equal(t, StatusRetrying, n.Status)
	assert.Equal(t, 1, n.RetryCount)
	require.NotNil(t, n.NextRetryAt)
	assert.Equal(t, now.Add(5*time.Minute), *n.NextRetryAt)

	require.NoError(t, n.MarkSending(ProviderAPNS))
	require.NoError(t, n.MarkFailed("still down"))

	// 重试耗尽
	assert.ErrorIs(t, n.Retry(now), ErrRetryExhausted)
	require.NoError(t, n.MarkPermanentlyFailed("still down"))
	assert.True(t, n.IsTerminal())
}

func TestPushIllegalTransitions(t *testing.T) {
	n := newTestNotification(t, shared.PriorityNormal)

	// PENDING 不能直接标记已发送
	err := n.MarkSent("msg")
	var transitionErr *shared.InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, AggregateTypePush, transitionErr.AggregateType)

	// 发送中不可取消
	require.NoError(t, n.MarkSending(ProviderFCM))
	assert.Error(t, n.Cancel("user"))

	// 终态后一切转换被拒绝
	require.NoError(t, n.MarkSent("msg"))
	require.NoError(t, n.MarkDelivered(time.Now()))
	assert.Error(t, n.MarkFailed("late failure"))
	assert.Error(t, n.Cancel("user"))
}

func TestProviderSelector(t *testing.T) {
	n := newTestNotification(t, shared.PriorityNormal)

	selector := NewProviderSelector(nil)
	provider, err := selector.Select(n)
	require.NoError(t, err)
	assert.Equal(t, ProviderFCM, provider)

	// 租户级覆盖优先
	override := NewProviderSelector(map[string]map[Platform]Provider{
		n.TenantID.String(): {PlatformAndroid: ProviderAPNS},
	})
	provider, err = override.Select(n)
	require.NoError(t, err)
	assert.Equal(t, ProviderAPNS, provider)

	n.Platform = Platform("UNKNOWN")
	_, err = selector.Select(n)
	assert.ErrorIs(t, err, ErrNoProviderForPlatform)
}
