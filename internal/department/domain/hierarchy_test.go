package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

// fakeRepository 内存仓储，仅供层级服务测试使用
type fakeRepository struct {
	departments map[string]*Department
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{departments: make(map[string]*Department)}
}

func (r *fakeRepository) add(d *Department) {
	r.departments[d.ID.String()] = d
}

func (r *fakeRepository) Save(_ context.Context, _ *gorm.DB, d *Department) error {
	r.add(d)
	return nil
}

func (r *fakeRepository) Get(_ context.Context, id shared.DepartmentID) (*Department, error) {
	d, ok := r.departments[id.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (r *fakeRepository) ListByTenant(_ context.Context, tenantID shared.TenantID, status DepartmentStatus, _, _ int) ([]*Department, int64, error) {
	var res []*Department
	for _, d := range r.departments {
		if d.TenantID.String() != tenantID.String() {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		res = append(res, d)
	}
	return res, int64(len(res)), nil
}

func (r *fakeRepository) ListChildren(_ context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) ([]*Department, error) {
	var res []*Department
	for _, d := range r.departments {
		if d.TenantID.String() == tenantID.String() && d.ParentID != nil && d.ParentID.String() == parentID.String() {
			res = append(res, d)
		}
	}
	return res, nil
}

func (r *fakeRepository) CountActiveChildren(_ context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) (int64, error) {
	var count int64
	for _, d := range r.departments {
		if d.TenantID.String() == tenantID.String() && d.ParentID != nil &&
			d.ParentID.String() == parentID.String() && d.Status == StatusActive {
			count++
		}
	}
	return count, nil
}

// buildChain 构建 length 层的活跃部门链，返回全部节点（根在前）
func buildChain(t *testing.T, repo *fakeRepository, tenantID shared.TenantID, length int) []*Department {
	t.Helper()

	chain := make([]*Department, 0, length)
	var parentID *shared.DepartmentID
	for i := 0; i < length; i++ {
		d := newTestDepartment(t, tenantID, parentID)
		require.NoError(t, d.Activate())
		repo.add(d)
		chain = append(chain, d)
		id := d.ID
		parentID = &id
	}
	return chain
}

func TestValidateParentRootAlwaysAllowed(t *testing.T) {
	svc := NewHierarchyService(newFakeRepository())
	d := newTestDepartment(t, testTenantID(t), nil)

	assert.NoError(t, svc.ValidateParent(context.Background(), d, nil))
}

func TestValidateParentSelfCycle(t *testing.T) {
	svc := NewHierarchyService(newFakeRepository())
	d := newTestDepartment(t, testTenantID(t), nil)

	id := d.ID
	assert.ErrorIs(t, svc.ValidateParent(context.Background(), d, &id), ErrHierarchyCycle)
}

func TestValidateParentAncestorCycle(t *testing.T) {
	repo := newFakeRepository()
	tenantID := testTenantID(t)
	chain := buildChain(t, repo, tenantID, 3)
	svc := NewHierarchyService(repo)

	// 把根改挂到自己的孙子下面会成环
	leafID := chain[2].ID
	assert.ErrorIs(t, svc.ValidateParent(context.Background(), chain[0], &leafID), ErrHierarchyCycle)
}

func TestValidateParentInactive(t *testing.T) {
	repo := newFakeRepository()
	tenantID := testTenantID(t)
	svc := NewHierarchyService(repo)

	parent := newTestDepartment(t, tenantID, nil)
	require.NoError(t, parent.Activate())
	require.NoError(t, parent.Suspend("audit"))
	repo.add(parent)

	child := newTestDepartment(t, tenantID, nil)
	parentID := parent.ID
	assert.ErrorIs(t, svc.ValidateParent(context.Background(), child, &parentID), ErrParentNotActive)
}

func TestValidateParentCrossTenant(t *testing.T) {
	repo := newFakeRepository()
	svc := NewHierarchyService(repo)

	parent := newTestDepartment(t, testTenantID(t), nil)
	require.NoError(t, parent.Activate())
	repo.add(parent)

	// 其他租户看不到该部门
	child := newTestDepartment(t, testTenantID(t), nil)
	parentID := parent.ID
	assert.ErrorIs(t, svc.ValidateParent(context.Background(), child, &parentID), shared.ErrNotFound)
}

func TestValidateParentMaxDepth(t *testing.T) {
	repo := newFakeRepository()
	tenantID := testTenantID(t)
	svc := NewHierarchyService(repo)

	chain := buildChain(t, repo, tenantID, MaxDepth)
	child := newTestDepartment(t, tenantID, nil)

	// 挂到第 10 层下面超出上限
	leafID := chain[MaxDepth-1].ID
	assert.ErrorIs(t, svc.ValidateParent(context.Background(), child, &leafID), ErrMaxDepthExceeded)

	// 挂到较浅的节点下面可行
	shallowID := chain[2].ID
	assert.NoError(t, svc.ValidateParent(context.Background(), child, &shallowID))
}

func TestEnsureDeletable(t *testing.T) {
	repo := newFakeRepository()
	tenantID := testTenantID(t)
	svc := NewHierarchyService(repo)

	parent := newTestDepartment(t, tenantID, nil)
	require.NoError(t, parent.Activate())
	repo.add(parent)

	parentID := parent.ID
	child := newTestDepartment(t, tenantID, &parentID)
	require.NoError(t, child.Activate())
	repo.add(child)

	assert.ErrorIs(t, svc.EnsureDeletable(context.Background(), parent), ErrDepartmentHasChildren)

	// 子部门删除后解除守卫
	require.NoError(t, child.Delete("admin"))
	assert.NoError(t, svc.EnsureDeletable(context.Background(), parent))
}

func TestEnsureCanManage(t *testing.T) {
	svc := NewHierarchyService(newFakeRepository())
	d := newTestDepartment(t, testTenantID(t), nil)

	assert.NoError(t, svc.EnsureCanManage(d, d.ManagerID.String(), nil))
	assert.NoError(t, svc.EnsureCanManage(d, "someone-else", []string{"viewer", RoleTenantAdmin}))
	assert.ErrorIs(t, svc.EnsureCanManage(d, "someone-else", []string{"viewer"}), ErrPermissionDenied)
}

func TestDepth(t *testing.T) {
	repo := newFakeRepository()
	tenantID := testTenantID(t)
	svc := NewHierarchyService(repo)

	chain := buildChain(t, repo, tenantID, 4)

	depth, err := svc.Depth(context.Background(), chain[0])
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	depth, err = svc.Depth(context.Background(), chain[3])
	require.NoError(t, err)
	assert.Equal(t, 4, depth)
}
