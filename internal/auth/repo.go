package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
)

// Repository exposes persistence helpers for user identities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a user repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}
