package accounts_test

import (
	"testing"

	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := accounts.HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.True(t, accounts.CheckPasswordHash("password123", hash))
	require.False(t, accounts.CheckPasswordHash("password456", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := accounts.HashPassword("password123")
	require.NoError(t, err)
	second, err := accounts.HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestValidatePassword(t *testing.T) {
	require.Error(t, accounts.ValidatePassword("short"))
	require.Error(t, accounts.ValidatePassword("1234567"))
	require.NoError(t, accounts.ValidatePassword("12345678"))
	require.NoError(t, accounts.ValidatePassword("a much longer password"))
}

func TestRoleValid(t *testing.T) {
	require.True(t, accounts.RoleUser.Valid())
	require.True(t, accounts.RoleModerator.Valid())
	require.True(t, accounts.RoleAdmin.Valid())
	require.False(t, accounts.Role("").Valid())
	require.False(t, accounts.Role("ROOT").Valid())
}
