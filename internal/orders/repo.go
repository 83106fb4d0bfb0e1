package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	"github.com/medirush/medirush-backend/pkg/pagination"
)

// Repository exposes persistence helpers for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error)
	ListActive(ctx context.Context, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, now time.Time) (bool, error)
	AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error
	OrderNumberExists(ctx context.Context, orderNumber string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listOrdersParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Where("user_id = ?", params.UserID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status <> ?", enums.OrderStatusDelivered).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus performs a compare-and-set transition so concurrent movers
// cannot skip or repeat a stage.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, now time.Time) (bool, error) {
	updates := map[string]any{"status": to, "updated_at": now}
	if to == enums.OrderStatusDelivered {
		updates["delivered_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
