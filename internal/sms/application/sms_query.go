package application

import (
	"context"
	"fmt"
	"time"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/sms/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
)

// queryCacheTTL 查询缓存时长
const queryCacheTTL = 30 * time.Second

// SmsQuery 处理短信相关的查询操作
type SmsQuery struct {
	repo  domain.Repository
	cache *cache.RedisCache
}

// NewSmsQuery 创建查询服务
func NewSmsQuery(repo domain.Repository, redisCache *cache.RedisCache) *SmsQuery {
	return &SmsQuery{repo: repo, cache: redisCache}
}

// GetSms 按 ID 查询短信，优先走缓存
// 处于终态的短信缓存更久，非终态的短暂缓存以降低热点读压力
func (q *SmsQuery) GetSms(ctx context.Context, notificationID string) (*SmsMessageDTO, error) {
	id, err := shared.NewNotificationID(notificationID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("sms:msg:%s", id.String())
	if q.cache != nil {
		var cached SmsMessageDTO
		if hit, err := q.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	m, err := q.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := toDTO(m)
	if q.cache != nil {
		ttl := queryCacheTTL
		if m.IsTerminal() {
			ttl = 10 * time.Minute
		}
		_ = q.cache.SetJSON(ctx, cacheKey, dto, ttl)
	}
	return dto, nil
}

// ListByUser 按租户与用户分页查询短信
func (q *SmsQuery) ListByUser(ctx context.Context, tenantID, userID, status string, limit, offset int) ([]*SmsMessageDTO, int64, error) {
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

	messages, total, err := q.repo.ListByUser(ctx, tid, uid, domain.SmsStatus(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*SmsMessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = toDTO(m)
	}
	return dtos, total, nil
}
