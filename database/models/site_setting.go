package models

import "gorm.io/gorm"

// SiteSetting is one key/value entry edited from the admin settings page.
type SiteSetting struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
