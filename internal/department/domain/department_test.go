package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
)

func newTestDepartment(t *testing.T, tenantID shared.TenantID, parentID *shared.DepartmentID) *Department {
	t.Helper()

	id, err := shared.NewDepartmentID(uuid.NewString())
	require.NoError(t, err)
	managerID, err := shared.NewUserID(uuid.NewString())
	require.NoError(t, err)

	d, err := NewDepartment(id, tenantID, "研发部", parentID, managerID, DefaultSettings())
	require.NoError(t, err)
	return d
}

func testTenantID(t *testing.T) shared.TenantID {
	t.Helper()
	tenantID, err := shared.NewTenantID(uuid.NewString())
	require.NoError(t, err)
	return tenantID
}

func TestNewDepartment(t *testing.T) {
	d := newTestDepartment(t, testTenantID(t), nil)

	assert.Equal(t, StatusPending, d.Status)
	assert.Nil(t, d.ParentID)
	assert.Equal(t, 100, d.Settings.MaxMembers())

	events := d.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "department.created", events[0].Name())
}

func TestNewDepartmentInvalidName(t *testing.T) {
	id, _ := shared.NewDepartmentID(uuid.NewString())
	managerID, _ := shared.NewUserID(uuid.NewString())

	_, err := NewDepartment(id, testTenantID(t), "", nil, managerID, DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidDepartmentName)

	_, err = NewDepartment(id, testTenantID(t), strings.Repeat("名", 101), nil, managerID, DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidDepartmentName)
}

func TestDepartmentLifecycle(t *testing.T) {
	d := newTestDepartment(t, testTenantID(t), nil)
	d.PullEvents()

	require.NoError(t, d.Activate())
	require.NoError(t, d.Suspend("billing overdue"))
	assert.Equal(t, "billing overdue", d.SuspendReason)

	// 恢复后暂停原因清空
	require.NoError(t, d.Activate())
	assert.Empty(t, d.SuspendReason)

	require.NoError(t, d.Disable())
	require.NoError(t, d.Activate())
	require.NoError(t, d.Delete("admin-1"))
	assert.Equal(t, "admin-1", d.DeletedBy)
	assert.True(t, d.IsTerminal())

	events := d.PullEvents()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{
		"department.activated", "department.suspended", "department.activated",
		"department.disabled", "department.activated", "department.deleted",
	}, names)
}

func TestDepartmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from    DepartmentStatus
		to      DepartmentStatus
		allowed bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusDeleted, true},
		{StatusPending, StatusSuspended, false},
		{StatusActive, StatusSuspended, true},
		{StatusActive, StatusDisabled, true},
		{StatusActive, StatusDeleted, true},
		{StatusSuspended, StatusActive, true},
		{StatusSuspended, StatusDisabled, true},
		{StatusDisabled, StatusActive, true},
		{StatusDisabled, StatusSuspended, false},
		{StatusDeleted, StatusActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, StatusDeleted.IsTerminal())
	assert.False(t, StatusDisabled.IsTerminal())
}

func TestDepartmentMutationsAfterDelete(t *testing.T) {
	d := newTestDepartment(t, testTenantID(t), nil)
	require.NoError(t, d.Delete("admin"))

	managerID, _ := shared.NewUserID(uuid.NewString())
	assert.Error(t, d.ChangeManager(managerID))
	assert.Error(t, d.Rename("new name"))
	assert.Error(t, d.UpdateSettings(DefaultSettings()))
	assert.Error(t, d.Reparent(nil))
}

func TestDepartmentRename(t *testing.T) {
	d := newTestDepartment(t, testTenantID(t), nil)
	before := d.Version

	require.NoError(t, d.Rename("平台部"))
	assert.Equal(t, "平台部", d.Name)
	assert.Equal(t, before+1, d.Version)

	assert.ErrorIs(t, d.Rename(""), ErrInvalidDepartmentName)
}

func TestNewDepartmentSettings(t *testing.T) {
	settings, err := NewDepartmentSettings(500, true, false, VisibilityPublic)
	require.NoError(t, err)
	assert.Equal(t, 500, settings.MaxMembers())
	assert.True(t, settings.AllowSelfJoin())

	_, err = NewDepartmentSettings(0, false, true, VisibilityTenant)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = NewDepartmentSettings(10001, false, true, VisibilityTenant)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	// 自助加入与审批互斥
	_, err = NewDepartmentSettings(100, true, true, VisibilityTenant)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = NewDepartmentSettings(100, false, true, Visibility("global"))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}
