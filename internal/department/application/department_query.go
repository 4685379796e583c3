package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/notificationcenter/internal/department/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/cache"
)

// 查询缓存时长
const (
	queryCacheTTL = 5 * time.Minute
	treeCacheTTL  = time.Minute
)

// DepartmentQuery 处理部门相关的查询操作
type DepartmentQuery struct {
	repo  domain.Repository
	cache *cache.RedisCache
}

// NewDepartmentQuery 创建查询服务
func NewDepartmentQuery(repo domain.Repository, redisCache *cache.RedisCache) *DepartmentQuery {
	return &DepartmentQuery{repo: repo, cache: redisCache}
}

// GetDepartment 按 ID 查询部门，优先走缓存
func (q *DepartmentQuery) GetDepartment(ctx context.Context, departmentID string) (*DepartmentDTO, error) {
	id, err := shared.NewDepartmentID(departmentID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("department:dept:%s", id.String())
	if q.cache != nil {
		var cached DepartmentDTO
		if hit, err := q.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	d, err := q.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := toDTO(d)
	if q.cache != nil {
		_ = q.cache.SetJSON(ctx, cacheKey, dto, queryCacheTTL)
	}
	return dto, nil
}

// ListByTenant 按租户分页查询部门
func (q *DepartmentQuery) ListByTenant(ctx context.Context, tenantID, status string, limit, offset int) ([]*DepartmentDTO, int64, error) {
	tid, err := shared.NewTenantID(tenantID)
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	departments, total, err := q.repo.ListByTenant(ctx, tid, domain.DepartmentStatus(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*DepartmentDTO, len(departments))
	for i, d := range departments {
		dtos[i] = toDTO(d)
	}
	return dtos, total, nil
}

// ListChildren 查询直接子部门
func (q *DepartmentQuery) ListChildren(ctx context.Context, tenantID, departmentID string) ([]*DepartmentDTO, error) {
	tid, err := shared.NewTenantID(tenantID)
	if err != nil {
		return nil, err
	}
	id, err := shared.NewDepartmentID(departmentID)
	if err != nil {
		return nil, err
	}

	children, err := q.repo.ListChildren(ctx, tid, id)
	if err != nil {
		return nil, err
	}

	dtos := make([]*DepartmentDTO, len(children))
	for i, d := range children {
		dtos[i] = toDTO(d)
	}
	return dtos, nil
}

// GetTree 查询租户的完整部门树，优先走缓存
// 一次取全量再内存组树，避免逐层回库
func (q *DepartmentQuery) GetTree(ctx context.Context, tenantID string) ([]*DepartmentTreeNode, error) {
	tid, err := shared.NewTenantID(tenantID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("department:tree:%s", tid.String())
	if q.cache != nil {
		var cached []*DepartmentTreeNode
		if hit, err := q.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	// 全量拉取后组树；分页上限取租户部门数的合理上界
	departments, _, err := q.repo.ListByTenant(ctx, tid, "", 10000, 0)
	if err != nil {
		return nil, err
	}

	tree := buildTree(departments)
	if q.cache != nil {
		_ = q.cache.SetJSON(ctx, cacheKey, tree, treeCacheTTL)
	}
	return tree, nil
}

// buildTree 按 parentID 组装部门树，孤儿节点挂到根
func buildTree(departments []*domain.Department) []*DepartmentTreeNode {
	nodes := make(map[string]*DepartmentTreeNode, len(departments))
	for _, d := range departments {
		nodes[d.ID.String()] = &DepartmentTreeNode{DepartmentDTO: *toDTO(d)}
	}

	var roots []*DepartmentTreeNode
	for _, d := range departments {
		node := nodes[d.ID.String()]
		if d.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[d.ParentID.String()]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}
