package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/notificationcenter/internal/push/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
)

// queryCacheTTL 查询缓存时长
const queryCacheTTL = 30 * time.Second

// PushQuery 处理推送相关的查询操作
type PushQuery struct {
	repo  domain.Repository
	cache *cache.RedisCache
}

// NewPushQuery 创建查询服务
func NewPushQuery(repo domain.Repository, redisCache *cache.RedisCache) *PushQuery {
	return &PushQuery{repo: repo, cache: redisCache}
}

// GetPush 按 ID 查询通知，优先走缓存
// 处于终态的通知缓存更久，非终态的短暂缓存以降低热点读压力
func (q *PushQuery) GetPush(ctx context.Context, notificationID string) (*PushNotificationDTO, error) {
	id, err := shared.NewNotificationID(notificationID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("push:notif:%s", id.String())
	if q.cache != nil {
		var cached PushNotificationDTO
		if hit, err := q.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	n, err := q.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := toDTO(n)
	if q.cache != nil {
		ttl := queryCacheTTL
		if n.IsTerminal() {
			ttl = 10 * time.Minute
		}
		_ = q.cache.SetJSON(ctx, cacheKey, dto, ttl)
	}
	return dto, nil
}

// ListByUser 按租户与用户分页查询通知
func (q *PushQuery) ListByUser(ctx context.Context, tenantID, userID, status string, limit, offset int) ([]*PushNotificationDTO, int64, error) {
	tid, err := shared.NewTenantID(tenantID)
	if err != nil {
		return nil, 0, err
	}
	uid, err := shared.NewUserID(userID)
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, total, err := q.repo.ListByUser(ctx, tid, uid, domain.PushStatus(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*PushNotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toDTO(n)
	}
	return dtos, total, nil
}
