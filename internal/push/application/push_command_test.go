package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/push/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
)

// fakeRepository 内存仓储，Save 仅更新乐观锁基准
type fakeRepository struct {
	notifications map[string]*domain.PushNotification
	saveErr       error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{notifications: make(map[string]*domain.PushNotification)}
}

func (r *fakeRepository) Save(_ context.Context, _ *gorm.DB, n *domain.PushNotification) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.notifications[n.ID.String()] = n
	n.LoadedVersion = n.Version
	return nil
}

func (r *fakeRepository) Get(_ context.Context, id shared.NotificationID) (*domain.PushNotification, error) {
	n, ok := r.notifications[id.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return n, nil
}

func (r *fakeRepository) ListByUser(_ context.Context, tenantID shared.TenantID, userID shared.UserID, status domain.PushStatus, _, _ int) ([]*domain.PushNotification, int64, error) {
	var res []*domain.PushNotification
	for _, n := range r.notifications {
		if n.TenantID.String() != tenantID.String() || n.UserID.String() != userID.String() {
			continue
		}
		if status != "" && n.Status != status {
			continue
		}
		res = append(res, n)
	}
	return res, int64(len(res)), nil
}

func (r *fakeRepository) ListDueForRetry(_ context.Context, before time.Time, _ int) ([]*domain.PushNotification, error) {
	var res []*domain.PushNotification
	for _, n := range r.notifications {
		if n.Status == domain.StatusRetrying && n.NextRetryAt != nil && !n.NextRetryAt.After(before) {
			res = append(res, n)
		}
	}
	return res, nil
}

func (r *fakeRepository) ListDueScheduled(_ context.Context, before time.Time, _ int) ([]*domain.PushNotification, error) {
	var res []*domain.PushNotification
	for _, n := range r.notifications {
		if n.Status == domain.StatusScheduled && n.ScheduledAt != nil && !n.ScheduledAt.After(before) {
			res = append(res, n)
		}
	}
	return res, nil
}

// fakePublisher 收集发布的事件
type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) PublishInTx(_ context.Context, _ *gorm.DB, events []shared.Event) error {
	p.events = append(p.events, events...)
	return nil
}

// fakeSender 可编程发送器
type fakeSender struct {
	messageID string
	err       error
	calls     int
}

func (s *fakeSender) Send(_ context.Context, _ *domain.PushNotification) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.messageID, nil
}

// testEnv 命令服务测试装配
type testEnv struct {
	command   *PushCommand
	repo      *fakeRepository
	publisher *fakePublisher
	sender    *fakeSender
	mock      sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, idgen.Init(1))

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisCache := cache.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	repo := newFakeRepository()
	publisher := &fakePublisher{}
	sender := &fakeSender{messageID: "prov-msg-1"}
	command := NewPushCommand(
		&db.DB{DB: gormDB},
		repo,
		publisher,
		domain.NewProviderSelector(nil),
		sender,
		redisCache,
		nil,
	)

	return &testEnv{command: command, repo: repo, publisher: publisher, sender: sender, mock: mock}
}

// expectTx 预约 n 次事务提交
func (e *testEnv) expectTx(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func sendCmd() SendPushCommand {
	return SendPushCommand{
		TenantID:    uuid.NewString(),
		UserID:      uuid.NewString(),
		DeviceToken: "token-1",
		Platform:    "ANDROID",
		Title:       "title",
		Body:        "body",
		Priority:    "NORMAL",
	}
}

func TestSendPushImmediate(t *testing.T) {
	env := newTestEnv(t)
	// 入库 + 标记发送中 + 标记已发送
	env.expectTx(3)

	id, err := env.command.SendPush(context.Background(), sendCmd())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	n := env.repo.notifications[id]
	require.NotNil(t, n)
	assert.Equal(t, domain.StatusSent, n.Status)
	assert.Equal(t, domain.ProviderFCM, n.Provider)
	assert.Equal(t, "prov-msg-1", n.ProviderMessageID)
	assert.Equal(t, 1, env.sender.calls)

	names := make([]string, len(env.publisher.events))
	for i, e := range env.publisher.events {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"push.created", "push.sending", "push.sent"}, names)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSendPushIdempotency(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(3)

	cmd := sendCmd()
	cmd.RequestKey = "req-1"

	_, err := env.command.SendPush(context.Background(), cmd)
	require.NoError(t, err)

	// 同幂等键的重复请求被拒绝
	_, err = env.command.SendPush(context.Background(), cmd)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// 不同幂等键不受影响
	env.expectTx(3)
	cmd.RequestKey = "req-2"
	_, err = env.command.SendPush(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestSendPushScheduled(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	cmd := sendCmd()
	at := time.Now().Add(time.Hour)
	cmd.ScheduledAt = &at

	id, err := env.command.SendPush(context.Background(), cmd)
	require.NoError(t, err)

	n := env.repo.notifications[id]
	assert.Equal(t, domain.StatusScheduled, n.Status)
	assert.Zero(t, env.sender.calls)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSendPushInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	cmd := sendCmd()
	cmd.Platform = "SYMBIAN"
	_, err := env.command.SendPush(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidPlatform)

	cmd = sendCmd()
	cmd.TenantID = "nope"
	_, err = env.command.SendPush(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidTenantID)

	cmd = sendCmd()
	cmd.Priority = "ASAP"
	_, err = env.command.SendPush(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidPriority)
}

func TestSendPushFailureSchedulesRetry(t *testing.T) {
	env := newTestEnv(t)
	env.sender.err = errors.New("fcm unavailable")
	// 入库 + 发送中 + 失败 + 安排重试
	env.expectTx(4)

	id, err := env.command.SendPush(context.Background(), sendCmd())
	require.NoError(t, err)

	n := env.repo.notifications[id]
	assert.Equal(t, domain.StatusRetrying, n.Status)
	assert.Equal(t, 1, n.RetryCount)
	require.NotNil(t, n.NextRetryAt)
	assert.Equal(t, "fcm unavailable", n.FailureReason)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestConfirmDelivery(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(3)

	id, err := env.command.SendPush(context.Background(), sendCmd())
	require.NoError(t, err)

	env.expectTx(1)
	deliveredAt := time.Now().UTC()
	require.NoError(t, env.command.ConfirmDelivery(context.Background(), ConfirmDeliveryCommand{
		NotificationID: id,
		DeliveredAt:    deliveredAt,
	}))

	n := env.repo.notifications[id]
	assert.Equal(t, domain.StatusDelivered, n.Status)

	// 回执不能重复确认
	err = env.command.ConfirmDelivery(context.Background(), ConfirmDeliveryCommand{
		NotificationID: id,
		DeliveredAt:    deliveredAt,
	})
	var transitionErr *shared.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestCancelPush(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	cmd := sendCmd()
	at := time.Now().Add(time.Hour)
	cmd.ScheduledAt = &at
	id, err := env.command.SendPush(context.Background(), cmd)
	require.NoError(t, err)

	env.expectTx(1)
	require.NoError(t, env.command.Cancel(context.Background(), CancelPushCommand{
		NotificationID: id,
		CancelledBy:    "ops",
	}))
	assert.Equal(t, domain.StatusCancelled, env.repo.notifications[id].Status)

	// 不存在的通知
	err = env.command.Cancel(context.Background(), CancelPushCommand{NotificationID: "999"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDispatchDue(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	cmd := sendCmd()
	at := time.Now().Add(time.Hour)
	cmd.ScheduledAt = &at
	id, err := env.command.SendPush(context.Background(), cmd)
	require.NoError(t, err)

	// 把计划时间拨到过去，模拟到期
	past := time.Now().Add(-time.Minute)
	env.repo.notifications[id].ScheduledAt = &past

	// 发送中 + 已发送
	env.expectTx(2)
	dispatched, err := env.command.DispatchDue(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)
	assert.Equal(t, domain.StatusSent, env.repo.notifications[id].Status)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
