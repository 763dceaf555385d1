package auth

import (
	"testing"
	"time"

	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/database/repo/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLoginService(t *testing.T) *LoginService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Device{}))

	jwtService, err := NewJWTService(testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	return NewLoginService(accounts.NewRepository(db), accounts.NewDeviceRepository(db), jwtService)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupLoginService(t)

	user, err := svc.Register("alice", "alice@example.com", "long enough password")
	require.NoError(t, err)
	assert.False(t, user.IsAdmin, "self-registered accounts must not be admins")

	result, err := svc.Login("alice", "long enough password")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEmpty(t, result.DeviceID)
	assert.Equal(t, "alice", result.User.Username)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := setupLoginService(t)

	_, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = svc.Register("bob", "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupLoginService(t)

	_, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := setupLoginService(t)

	_, err := svc.Login("ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc := setupLoginService(t)

	_, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	login, err := svc.Login("alice", "password123")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(login.RefreshToken, login.DeviceID)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is dead after rotation.
	_, err = svc.RefreshToken(login.RefreshToken, login.DeviceID)
	assert.Error(t, err)
}

func TestLogoutRevokesDevice(t *testing.T) {
	svc := setupLoginService(t)

	_, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	login, err := svc.Login("alice", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(login.DeviceID))

	_, err = svc.RefreshToken(login.RefreshToken, login.DeviceID)
	assert.Error(t, err)
}
