package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageOrigin classifies where an image's bytes live.
type ImageOrigin string

const (
	// OriginLocal is an asset bundled with the site at a fixed path.
	OriginLocal ImageOrigin = "local"
	// OriginExternal is an asset hosted at a third-party URL.
	OriginExternal ImageOrigin = "external"
	// OriginManaged is an asset whose bytes live in our own bucket.
	OriginManaged ImageOrigin = "managed"
)

// Valid reports whether the origin is one of the closed set.
func (o ImageOrigin) Valid() bool {
	switch o {
	case OriginLocal, OriginExternal, OriginManaged:
		return true
	}
	return false
}

// StringList stores a text array as JSON so the column works on both SQLite
// and PostgreSQL.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for string list: %T", value)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// Image is a single registry record. Managed records carry a bucket/key
// pair; local and external records carry a direct path or URL.
type Image struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Name        string      `gorm:"not null" json:"name"`
	Description string      `json:"description"`
	Origin      ImageOrigin `gorm:"column:type;size:16;not null;index" json:"type"`
	Path        string      `gorm:"index" json:"path"`
	BucketName  string      `json:"bucket_name,omitempty"`
	FilePath    string      `json:"file_path,omitempty"`
	UsedIn      StringList  `gorm:"type:text" json:"used_in"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName keeps the historical table name.
func (Image) TableName() string {
	return "images"
}

// BeforeCreate assigns the record ID and rejects invalid origins.
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if !i.Origin.Valid() {
		return fmt.Errorf("invalid image origin: %q", i.Origin)
	}
	if i.Origin == OriginManaged && (i.BucketName == "" || i.FilePath == "") {
		return errors.New("managed image requires bucket name and file path")
	}
	return nil
}

// Location returns the storage location of the record: bucket/key for
// managed images, the direct path or URL otherwise.
func (i *Image) Location() string {
	if i.Origin == OriginManaged {
		return i.BucketName + "/" + i.FilePath
	}
	return i.Path
}
