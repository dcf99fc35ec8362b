package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/pkg/config"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

func newTestManager(access int) *Manager {
	return NewManager(config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpire:  access,
		RefreshTokenExpire: 3600,
	})
}

func TestGenerateAndValidate(t *testing.T) {
	m := newTestManager(60)

	token, err := m.GenerateAccessToken(42, "user@example.com", "User", constants.AuthTypeLocal)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token, constants.JWTTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, int64(60), m.AccessExpire())
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	m := newTestManager(60)

	refresh, err := m.GenerateRefreshToken(1, "a@b.c", "A", constants.AuthTypeLocal)
	require.NoError(t, err)

	_, err = m.ValidateToken(refresh, constants.JWTTypeAccess)
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidToken)

	_, err = m.ValidateToken(refresh, constants.JWTTypeRefresh)
	assert.NoError(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	m := newTestManager(-10)

	token, err := m.GenerateAccessToken(1, "a@b.c", "A", constants.AuthTypeLocal)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, pkgErrors.ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := newTestManager(60).GenerateAccessToken(1, "a@b.c", "A", constants.AuthTypeLocal)
	require.NoError(t, err)

	other := NewManager(config.JWTConfig{Secret: "other", AccessTokenExpire: 60, RefreshTokenExpire: 60})
	_, err = other.ParseToken(token)
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}
