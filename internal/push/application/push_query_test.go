package application

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/notificationcenter/internal/push/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
)

func seedNotification(t *testing.T, repo *fakeRepository) *domain.PushNotification {
	t.Helper()

	id, err := shared.NewNotificationID("1862497328841363456")
	require.NoError(t, err)
	tenantID, err := shared.NewTenantID(uuid.NewString())
	require.NoError(t, err)
	userID, err := shared.NewUserID(uuid.NewString())
	require.NoError(t, err)
	token, err := domain.NewDeviceToken("tok")
	require.NoError(t, err)
	content, err := domain.NewPushContent("title", "body", "", nil)
	require.NoError(t, err)

	n, err := domain.NewPushNotification(id, tenantID, userID, token, domain.PlatformIOS, content, shared.PriorityNormal)
	require.NoError(t, err)
	repo.notifications[n.ID.String()] = n
	return n
}

func TestGetPushCacheAside(t *testing.T) {
	repo := newFakeRepository()
	n := seedNotification(t, repo)

	mr := miniredis.RunT(t)
	redisCache := cache.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	query := NewPushQuery(repo, redisCache)

	dto, err := query.GetPush(context.Background(), n.ID.String())
	require.NoError(t, err)
	assert.Equal(t, n.ID.String(), dto.NotificationID)
	assert.Equal(t, "PENDING", dto.Status)

	// 第二次命中缓存：即使仓储中的数据被移除，读取仍成功
	delete(repo.notifications, n.ID.String())
	cached, err := query.GetPush(context.Background(), n.ID.String())
	require.NoError(t, err)
	assert.Equal(t, dto.NotificationID, cached.NotificationID)

	// 缓存过期后回源，仓储缺数据即报错
	mr.FastForward(time.Hour)
	_, err = query.GetPush(context.Background(), n.ID.String())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetPushInvalidID(t *testing.T) {
	query := NewPushQuery(newFakeRepository(), nil)
	_, err := query.GetPush(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, shared.ErrInvalidNotificationID)
}

func TestListByUser(t *testing.T) {
	repo := newFakeRepository()
	n := seedNotification(t, repo)
	query := NewPushQuery(repo, nil)

	dtos, total, err := query.ListByUser(context.Background(), n.TenantID.String(), n.UserID.String(), "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, dtos, 1)

	// 状态过滤
	dtos, total, err = query.ListByUser(context.Background(), n.TenantID.String(), n.UserID.String(), "SENT", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, dtos)

	// 其他用户查不到
	dtos, _, err = query.ListByUser(context.Background(), n.TenantID.String(), uuid.NewString(), "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, dtos)
}
