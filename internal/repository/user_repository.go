package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/taskpad/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create stores a new account
func (r *GormUserRepository) Create(ctx context.Context, account *models.Account) error {
	return wrapStorageError("create account", r.db.WithContext(ctx).Create(account).Error)
}

// FindByUsername finds an account by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, wrapStorageError("find account by username", err)
	}
	return &account, nil
}

// FindByEmail finds an account by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, wrapStorageError("find account by email", err)
	}
	return &account, nil
}

// Update saves an existing account
func (r *GormUserRepository) Update(ctx context.Context, account *models.Account) error {
	return wrapStorageError("update account", r.db.WithContext(ctx).Save(account).Error)
}
