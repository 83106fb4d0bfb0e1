package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
)

// Repository exposes persistence helpers for cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, userID, medicineID uuid.UUID) (*models.CartItem, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, medicineID uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Get(ctx context.Context, userID, medicineID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "user_id = ? AND medicine_id = ?", userID, medicineID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Medicine").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", quantity).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, medicineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND medicine_id = ?", userID, medicineID).
		Delete(&models.CartItem{}).Error
}

func (r *repositoryImpl) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	result := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.
			Model(&models.CartItem{}).
			Select("id").
			Where("updated_at < ?", cutoff).
			Limit(batchSize)).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
