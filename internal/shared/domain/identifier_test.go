package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDIdentifiers(t *testing.T) {
	raw := uuid.NewString()

	tenantID, err := NewTenantID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, tenantID.String())
	assert.False(t, tenantID.IsZero())

	userID, err := NewUserID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, userID.String())

	deptID, err := NewDepartmentID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, deptID.String())

	_, err = NewTenantID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidTenantID)
	_, err = NewUserID("")
	assert.ErrorIs(t, err, ErrInvalidUserID)
	_, err = NewDepartmentID("123")
	assert.ErrorIs(t, err, ErrInvalidDepartmentID)

	assert.True(t, TenantID{}.IsZero())
	assert.True(t, DepartmentID{}.IsZero())
}

func TestSnowflakeIdentifiers(t *testing.T) {
	id, err := NewNotificationID("1862497328841363456")
	require.NoError(t, err)
	assert.Equal(t, "1862497328841363456", id.String())

	tplID, err := NewTemplateID("42")
	require.NoError(t, err)
	assert.Equal(t, "42", tplID.String())

	_, err = NewNotificationID("")
	assert.ErrorIs(t, err, ErrInvalidNotificationID)
	_, err = NewNotificationID("12a34")
	assert.ErrorIs(t, err, ErrInvalidNotificationID)
	_, err = NewTemplateID("123456789012345678901234567890123")
	assert.ErrorIs(t, err, ErrInvalidTemplateID)
}
