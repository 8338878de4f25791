package authz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthzError_SentinelMatchingSurvivesContext(t *testing.T) {
	err := ErrPrerequisiteMissing.WithContext("user-1").WithRole("clinician")

	assert.True(t, errors.Is(err, ErrPrerequisiteMissing))
	assert.False(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "user-1", err.UserID)
	assert.Equal(t, "clinician", err.Role)

	// The sentinel itself must stay untouched
	assert.Empty(t, ErrPrerequisiteMissing.UserID)
	assert.Empty(t, ErrPrerequisiteMissing.Role)
}

func TestAuthzError_MatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("role mutation failed: %w", ErrDependentRoleActive.WithContext("user-1"))

	assert.True(t, errors.Is(wrapped, ErrDependentRoleActive))

	authzErr, ok := GetAuthzError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeDependentRoleActive, authzErr.Code)
}

func TestAuthzError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrDataUnavailable.WithCause(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), ErrorCodeDataUnavailable)
}

func TestIsAuthzError(t *testing.T) {
	assert.True(t, IsAuthzError(ErrUnknownRole))
	assert.True(t, IsAuthzError(fmt.Errorf("wrapped: %w", ErrPermissionDenied)))
	assert.False(t, IsAuthzError(errors.New("plain error")))
	assert.False(t, IsAuthzError(nil))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("practice_biller")
	require.NoError(t, err)
	assert.Equal(t, RolePracticeBiller, role)

	_, err = ParseRole("superuser")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRole))

	authzErr, ok := GetAuthzError(err)
	require.True(t, ok)
	assert.Equal(t, "superuser", authzErr.Role)
}

func TestValidRoles(t *testing.T) {
	roles := ValidRoles()
	assert.Len(t, roles, 9)
	for _, role := range roles {
		assert.True(t, IsValidRole(role))
	}
	assert.False(t, IsValidRole(Role("")))
}
