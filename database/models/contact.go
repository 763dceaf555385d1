package models

import "gorm.io/gorm"

// ContactMessage is a submission from the site contact form.
type ContactMessage struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `gorm:"not null" json:"message"`
}

// BrochureRequest records a brochure download request.
type BrochureRequest struct {
	gorm.Model
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null;index" json:"email"`
}
