package accounts

import (
	"errors"
	"fmt"
	"log"

	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/utils"
	cryptopackage "github.com/abofield/abofield/utils/crypto"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no account matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// Repository persists user accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database handle.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateDefaultAdminUser bootstraps an "admin" account with a random
// password when none exists. The generated password is returned so the
// caller can print it once.
func (r *Repository) CreateDefaultAdminUser() (string, error) {
	var count int64

	if err := r.db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to check admin user existence: %w", err)
	}

	if count > 0 {
		return "", nil
	}

	randomPassword, err := utils.GenerateRandomToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}

	hashedPassword, err := cryptopackage.GenerateFromPassword(randomPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash default password: %w", err)
	}

	user := &models.User{
		Username: "admin",
		Password: hashedPassword,
		IsAdmin:  true,
	}

	if err := r.db.Create(user).Error; err != nil {
		return "", fmt.Errorf("failed to create default admin user: %w", err)
	}

	log.Println("Created default admin user")
	return randomPassword, nil
}

// CreateUser inserts a new account.
func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByUsername looks up an account by username.
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks up an account by email.
func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID looks up an account by primary key.
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UsernameOrEmailExists reports whether either identifier is taken.
func (r *Repository) UsernameOrEmailExists(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}
