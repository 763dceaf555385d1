package accounts

import (
	"errors"
	"time"

	"github.com/abofield/abofield/database/models"
	"gorm.io/gorm"
)

// DeviceRepository persists refresh-token sessions.
type DeviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// CreateLoginDevice stores the refresh token issued at login.
func (r *DeviceRepository) CreateLoginDevice(userID uint, deviceID, refreshToken string, expiry time.Time) error {
	device := &models.Device{
		UserID:       userID,
		DeviceID:     deviceID,
		RefreshToken: refreshToken,
		Expiry:       expiry,
	}
	return r.db.Create(device).Error
}

// GetDeviceByRefreshTokenAndDeviceID returns the matching unexpired device,
// or nil when none exists.
func (r *DeviceRepository) GetDeviceByRefreshTokenAndDeviceID(refreshToken, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.Where("refresh_token = ? AND device_id = ? AND expiry > ?", refreshToken, deviceID, time.Now()).
		First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// RotateRefreshToken replaces the token on an existing device row.
func (r *DeviceRepository) RotateRefreshToken(deviceID, refreshToken string, expiry time.Time) error {
	return r.db.Model(&models.Device{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]interface{}{
			"refresh_token": refreshToken,
			"expiry":        expiry,
		}).Error
}

// DeleteByDeviceID revokes one session.
func (r *DeviceRepository) DeleteByDeviceID(deviceID string) error {
	return r.db.Where("device_id = ?", deviceID).Delete(&models.Device{}).Error
}

// DeleteExpired removes stale sessions.
func (r *DeviceRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expiry < ?", time.Now()).Delete(&models.Device{})
	return result.RowsAffected, result.Error
}
