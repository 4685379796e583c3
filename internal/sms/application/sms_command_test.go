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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
)

// fakeRepository 内存仓储，Save 仅更新乐观锁基准
type fakeRepository struct {
	messages map[string]*domain.SmsMessage
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{messages: make(map[string]*domain.SmsMessage)}
}

func (r *fakeRepository) Save(_ context.Context, _ *gorm.DB, m *domain.SmsMessage) error {
	r.messages[m.ID.String()] = m
	m.LoadedVersion = m.Version
	return nil
}

func (r *fakeRepository) Get(_ context.Context, id shared.NotificationID) (*domain.SmsMessage, error) {
	m, ok := r.messages[id.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *fakeRepository) ListByUser(_ context.Context, tenantID shared.TenantID, userID shared.UserID, status domain.SmsStatus, _, _ int) ([]*domain.SmsMessage, int64, error) {
	var res []*domain.SmsMessage
	for _, m := range r.messages {
		if m.TenantID.String() != tenantID.String() || m.UserID.String() != userID.String() {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		res = append(res, m)
	}
	return res, int64(len(res)), nil
}

func (r *fakeRepository) ListDueForRetry(_ context.Context, before time.Time, _ int) ([]*domain.SmsMessage, error) {
	var res []*domain.SmsMessage
	for _, m := range r.messages {
		if m.Status == domain.StatusRetrying && m.NextRetryAt != nil && !m.NextRetryAt.After(before) {
			res = append(res, m)
		}
	}
	return res, nil
}

func (r *fakeRepository) ListDueScheduled(_ context.Context, before time.Time, _ int) ([]*domain.SmsMessage, error) {
	var res []*domain.SmsMessage
	for _, m := range r.messages {
		if m.Status == domain.StatusScheduled && m.ScheduledAt != nil && !m.ScheduledAt.After(before) {
			res = append(res, m)
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

func (s *fakeSender) Send(_ context.Context, _ *domain.SmsMessage) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.messageID, nil
}

func (s *fakeSender) Provider() string { return "TWILIO" }

type testEnv struct {
	command   *SmsCommand
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
	sender := &fakeSender{messageID: "SM123"}
	command := NewSmsCommand(
		&db.DB{DB: gormDB},
		repo,
		publisher,
		domain.NewDefaultCostEstimator(),
		sender,
		redisCache,
		nil,
	)

	return &testEnv{command: command, repo: repo, publisher: publisher, sender: sender, mock: mock}
}

func (e *testEnv) expectTx(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func sendCmd() SendSmsCommand {
	return SendSmsCommand{
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
		Phone:    "+8613812345678",
		Body:     "您的验证码是 8888",
		SenderID: "ACME",
		Priority: "HIGH",
	}
}

func TestSendSmsImmediate(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(3)

	id, err := env.command.SendSms(context.Background(), sendCmd())
	require.NoError(t, err)

	m := env.repo.messages[id]
	require.NotNil(t, m)
	assert.Equal(t, domain.StatusSent, m.Status)
	assert.Equal(t, "TWILIO", m.Provider)
	assert.Equal(t, "SM123", m.ProviderMessageID)
	assert.Equal(t, 5, m.MaxRetries)

	// 成本 = +86 单价 0.025 * 1 段
	assert.True(t, m.EstimatedCost.Equal(decimal.NewFromFloat(0.025)), m.EstimatedCost.String())

	names := make([]string, len(env.publisher.events))
	for i, e := range env.publisher.events {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"sms.created", "sms.sending", "sms.sent"}, names)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSendSmsIdempotency(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(3)

	cmd := sendCmd()
	cmd.RequestKey = "req-1"

	_, err := env.command.SendSms(context.Background(), cmd)
	require.NoError(t, err)

	_, err = env.command.SendSms(context.Background(), cmd)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestSendSmsInvalidPhone(t *testing.T) {
	env := newTestEnv(t)

	cmd := sendCmd()
	cmd.Phone = "13812345678"
	_, err := env.command.SendSms(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)
}

func TestSendSmsFailureSchedulesRetry(t *testing.T) {
	env := newTestEnv(t)
	env.sender.err = errors.New("carrier timeout")
	env.expectTx(4)

	id, err := env.command.SendSms(context.Background(), sendCmd())
	require.NoError(t, err)

	m := env.repo.messages[id]
	assert.Equal(t, domain.StatusRetrying, m.Status)
	assert.Equal(t, 1, m.RetryCount)
	require.NotNil(t, m.NextRetryAt)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSmsDispatchDueRetry(t *testing.T) {
	env := newTestEnv(t)
	env.sender.err = errors.New("carrier timeout")
	env.expectTx(4)

	id, err := env.command.SendSms(context.Background(), sendCmd())
	require.NoError(t, err)

	// 把重试时间拨到过去，模拟到期；恢复发送器
	past := time.Now().Add(-time.Minute)
	env.repo.messages[id].NextRetryAt = &past
	env.sender.err = nil

	env.expectTx(2)
	dispatched, err := env.command.DispatchDue(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)
	assert.Equal(t, domain.StatusSent, env.repo.messages[id].Status)
}

func TestSmsConfirmDeliveryAndCancel(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(3)

	id, err := env.command.SendSms(context.Background(), sendCmd())
	require.NoError(t, err)

	env.expectTx(1)
	require.NoError(t, env.command.ConfirmDelivery(context.Background(), ConfirmDeliveryCommand{
		NotificationID: id,
		DeliveredAt:    time.Now().UTC(),
	}))
	assert.Equal(t, domain.StatusDelivered, env.repo.messages[id].Status)

	// 终态后取消被拒绝
	err = env.command.Cancel(context.Background(), CancelSmsCommand{NotificationID: id, CancelledBy: "ops"})
	var transitionErr *shared.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}
