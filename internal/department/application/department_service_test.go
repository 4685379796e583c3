package application

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/wyfcoding/notificationcenter/internal/department/domain"
	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/pkg/db"
)

// fakeRepository 内存仓储，Save 仅更新乐观锁基准
type fakeRepository struct {
	departments map[string]*domain.Department
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{departments: make(map[string]*domain.Department)}
}

func (r *fakeRepository) Save(_ context.Context, _ *gorm.DB, d *domain.Department) error {
	r.departments[d.ID.String()] = d
	d.LoadedVersion = d.Version
	return nil
}

func (r *fakeRepository) Get(_ context.Context, id shared.DepartmentID) (*domain.Department, error) {
	d, ok := r.departments[id.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (r *fakeRepository) ListByTenant(_ context.Context, tenantID shared.TenantID, status domain.DepartmentStatus, _, _ int) ([]*domain.Department, int64, error) {
	var res []*domain.Department
	for _, d := range r.departments {
		if d.TenantID.String() != tenantID.String() {
			continue
		}
		if status == "" && d.Status == domain.StatusDeleted {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		res = append(res, d)
	}
	return res, int64(len(res)), nil
}

func (r *fakeRepository) ListChildren(_ context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) ([]*domain.Department, error) {
	var res []*domain.Department
	for _, d := range r.departments {
		if d.TenantID.String() == tenantID.String() && d.ParentID != nil &&
			d.ParentID.String() == parentID.String() && d.Status != domain.StatusDeleted {
			res = append(res, d)
		}
	}
	return res, nil
}

func (r *fakeRepository) CountActiveChildren(_ context.Context, tenantID shared.TenantID, parentID shared.DepartmentID) (int64, error) {
	var count int64
	for _, d := range r.departments {
		if d.TenantID.String() == tenantID.String() && d.ParentID != nil &&
			d.ParentID.String() == parentID.String() && d.Status == domain.StatusActive {
			count++
		}
	}
	return count, nil
}

// fakePublisher 收集发布的事件
type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) PublishInTx(_ context.Context, _ *gorm.DB, events []shared.Event) error {
	p.events = append(p.events, events...)
	return nil
}

type testEnv struct {
	service   *DepartmentService
	repo      *fakeRepository
	publisher *fakePublisher
	mock      sqlmock.Sqlmock
	tenantID  string
	managerID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	repo := newFakeRepository()
	publisher := &fakePublisher{}
	hierarchy := domain.NewHierarchyService(repo)
	command := NewDepartmentCommand(&db.DB{DB: gormDB}, repo, publisher, hierarchy, nil)
	query := NewDepartmentQuery(repo, nil)

	return &testEnv{
		service:   NewDepartmentService(command, query),
		repo:      repo,
		publisher: publisher,
		mock:      mock,
		tenantID:  uuid.NewString(),
		managerID: uuid.NewString(),
	}
}

func (e *testEnv) expectTx(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func (e *testEnv) createCmd(name, parentID string) CreateDepartmentCommand {
	return CreateDepartmentCommand{
		TenantID:        e.tenantID,
		Name:            name,
		ParentID:        parentID,
		ManagerID:       e.managerID,
		MaxMembers:      100,
		RequireApproval: true,
	}
}

// adminCmd 以租户管理员身份构造生命周期命令
func (e *testEnv) adminCmd(departmentID string) LifecycleCommand {
	return LifecycleCommand{
		DepartmentID: departmentID,
		TenantID:     e.tenantID,
		OperatorID:   uuid.NewString(),
		Roles:        []string{domain.RoleTenantAdmin},
	}
}

func TestCreateDepartmentRoot(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	id, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)

	dto, err := env.service.GetDepartment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", dto.Status)
	assert.Empty(t, dto.ParentID)
}

func TestCreateDepartmentUnderParent(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(2)

	parentID, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(parentID)))

	// 父部门活跃后可以挂子部门
	env.expectTx(1)
	childID, err := env.service.CreateDepartment(context.Background(), env.createCmd("后端组", parentID))
	require.NoError(t, err)

	dto, err := env.service.GetDepartment(context.Background(), childID)
	require.NoError(t, err)
	assert.Equal(t, parentID, dto.ParentID)
}

func TestCreateDepartmentParentNotActive(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	parentID, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)

	// PENDING 状态的父部门不能挂子部门
	_, err = env.service.CreateDepartment(context.Background(), env.createCmd("后端组", parentID))
	assert.ErrorIs(t, err, domain.ErrParentNotActive)
}

func TestDeleteGuardedByActiveChildren(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(2)

	parentID, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(parentID)))

	env.expectTx(2)
	childID, err := env.service.CreateDepartment(context.Background(), env.createCmd("后端组", parentID))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(childID)))

	// 有活跃子部门时禁止删除
	err = env.service.Delete(context.Background(), env.adminCmd(parentID))
	assert.ErrorIs(t, err, domain.ErrDepartmentHasChildren)

	// 删除子部门后放行
	env.expectTx(2)
	require.NoError(t, env.service.Delete(context.Background(), env.adminCmd(childID)))
	require.NoError(t, env.service.Delete(context.Background(), env.adminCmd(parentID)))
}

func TestManagePermission(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	id, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)

	// 普通用户无权操作
	err = env.service.Activate(context.Background(), LifecycleCommand{
		DepartmentID: id,
		OperatorID:   uuid.NewString(),
		Roles:        []string{"viewer"},
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	// 部门负责人可以操作
	env.expectTx(1)
	require.NoError(t, env.service.Activate(context.Background(), LifecycleCommand{
		DepartmentID: id,
		OperatorID:   env.managerID,
	}))
}

func TestReparentRejectsCycle(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(4)

	rootID, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(rootID)))

	childID, err := env.service.CreateDepartment(context.Background(), env.createCmd("后端组", rootID))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(childID)))

	// 把根改挂到自己的子部门下面会成环
	err = env.service.Reparent(context.Background(), ReparentDepartmentCommand{
		DepartmentID: rootID,
		OperatorID:   env.managerID,
		ParentID:     childID,
	})
	assert.ErrorIs(t, err, domain.ErrHierarchyCycle)

	// 改挂为根部门合法
	env.expectTx(1)
	require.NoError(t, env.service.Reparent(context.Background(), ReparentDepartmentCommand{
		DepartmentID: childID,
		OperatorID:   env.managerID,
		ParentID:     "",
	}))
}

func TestGetTree(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(4)

	rootID, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(rootID)))

	childID, err := env.service.CreateDepartment(context.Background(), env.createCmd("后端组", rootID))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(childID)))

	tree, err := env.service.GetTree(context.Background(), env.tenantID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, rootID, tree[0].DepartmentID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, childID, tree[0].Children[0].DepartmentID)
}

func TestSuspendAndSettings(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(2)

	id, err := env.service.CreateDepartment(context.Background(), env.createCmd("研发部", ""))
	require.NoError(t, err)
	require.NoError(t, env.service.Activate(context.Background(), env.adminCmd(id)))

	env.expectTx(1)
	require.NoError(t, env.service.Suspend(context.Background(), SuspendDepartmentCommand{
		DepartmentID: id,
		OperatorID:   env.managerID,
		Reason:       "audit",
	}))

	dto, err := env.service.GetDepartment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "SUSPENDED", dto.Status)
	assert.Equal(t, "audit", dto.SuspendReason)

	// 自助加入与审批互斥在应用层同样被拦截
	err = env.service.UpdateSettings(context.Background(), UpdateSettingsCommand{
		DepartmentID:    id,
		OperatorID:      env.managerID,
		MaxMembers:      100,
		AllowSelfJoin:   true,
		RequireApproval: true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}
