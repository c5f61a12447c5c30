package users_test

import (
	"testing"

	"github.com/lintangjaya/go-storefront/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Password1", ""},
		{"too short", "Pa1", "password must be at least 6 characters long"},
		{"no uppercase", "password1", "password must contain at least one uppercase letter"},
		{"no lowercase", "PASSWORD1", "password must contain at least one lowercase letter"},
		{"no number", "Password", "password must contain at least one number"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tc.password)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := users.HashPassword("Password1")
	require.NoError(t, err)
	require.NotEqual(t, "Password1", hash)

	require.True(t, users.CheckPasswordHash("Password1", hash))
	require.False(t, users.CheckPasswordHash("Password2", hash))
	require.False(t, users.CheckPasswordHash("Password1", "not-a-hash"))
}

func TestRoleType(t *testing.T) {
	require.True(t, users.RoleAdmin.Valid())
	require.True(t, users.RoleCustomer.Valid())
	require.False(t, users.RoleType("SUPERUSER").Valid())

	admin := users.User{Role: users.RoleAdmin}
	customer := users.User{Role: users.RoleCustomer}
	require.True(t, admin.IsAdmin())
	require.False(t, customer.IsAdmin())
}
