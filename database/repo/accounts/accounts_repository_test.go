package accounts

import (
	"testing"
	"time"

	"github.com/abofield/abofield/database/models"
	cryptopackage "github.com/abofield/abofield/utils/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Device{}))
	return db
}

func TestCreateDefaultAdminUser(t *testing.T) {
	repo := NewRepository(setupDB(t))

	password, err := repo.CreateDefaultAdminUser()
	require.NoError(t, err)
	assert.NotEmpty(t, password)

	user, err := repo.GetUserByUsername("admin")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	ok, err := cryptopackage.ComparePasswordAndHash(password, user.Password)
	require.NoError(t, err)
	assert.True(t, ok, "returned password must match the stored hash")

	// Second call is a no-op.
	password, err = repo.CreateDefaultAdminUser()
	require.NoError(t, err)
	assert.Empty(t, password)
}

func TestGetUserNotFound(t *testing.T) {
	repo := NewRepository(setupDB(t))

	_, err := repo.GetUserByUsername("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsernameOrEmailExists(t *testing.T) {
	repo := NewRepository(setupDB(t))

	require.NoError(t, repo.CreateUser(&models.User{
		Username: "alice", Email: "alice@example.com", Password: "hash",
	}))

	exists, err := repo.UsernameOrEmailExists("alice", "other@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UsernameOrEmailExists("bob", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UsernameOrEmailExists("bob", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeviceLifecycle(t *testing.T) {
	db := setupDB(t)
	users := NewRepository(db)
	devices := NewDeviceRepository(db)

	require.NoError(t, users.CreateUser(&models.User{
		Username: "alice", Email: "alice@example.com", Password: "hash",
	}))
	user, err := users.GetUserByUsername("alice")
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, devices.CreateLoginDevice(user.ID, "device-1", "token-1", expiry))

	device, err := devices.GetDeviceByRefreshTokenAndDeviceID("token-1", "device-1")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, user.ID, device.UserID)

	// Wrong token yields nothing.
	device, err = devices.GetDeviceByRefreshTokenAndDeviceID("wrong", "device-1")
	require.NoError(t, err)
	assert.Nil(t, device)

	require.NoError(t, devices.RotateRefreshToken("device-1", "token-2", expiry))
	device, err = devices.GetDeviceByRefreshTokenAndDeviceID("token-2", "device-1")
	require.NoError(t, err)
	assert.NotNil(t, device)

	require.NoError(t, devices.DeleteByDeviceID("device-1"))
	device, err = devices.GetDeviceByRefreshTokenAndDeviceID("token-2", "device-1")
	require.NoError(t, err)
	assert.Nil(t, device)
}

func TestDeleteExpired(t *testing.T) {
	db := setupDB(t)
	users := NewRepository(db)
	devices := NewDeviceRepository(db)

	require.NoError(t, users.CreateUser(&models.User{
		Username: "alice", Email: "alice@example.com", Password: "hash",
	}))
	user, err := users.GetUserByUsername("alice")
	require.NoError(t, err)

	require.NoError(t, devices.CreateLoginDevice(user.ID, "live", "t1", time.Now().Add(time.Hour)))
	require.NoError(t, devices.CreateLoginDevice(user.ID, "stale", "t2", time.Now().Add(-time.Hour)))

	n, err := devices.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
