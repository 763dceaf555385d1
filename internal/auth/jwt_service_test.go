package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	_, err := NewJWTService("too short", time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndParseTokens(t *testing.T) {
	svc, err := NewJWTService(testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	pair, err := svc.GenerateTokens("admin", 1, true)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))

	claims, err := svc.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestParseTokenRejectsRefreshToken(t *testing.T) {
	svc, err := NewJWTService(testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	pair, err := svc.GenerateTokens("user", 2, false)
	require.NoError(t, err)

	_, err = svc.ParseToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	svc, err := NewJWTService(testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	other, err := NewJWTService("ffffffffffffffffffffffffffffffff", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	pair, err := svc.GenerateTokens("user", 2, false)
	require.NoError(t, err)

	_, err = other.ParseToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, err := NewJWTService(testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	_, err = svc.ParseToken("not.a.token")
	assert.Error(t, err)
}
