package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the medicine catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, params listMedicinesParams) ([]models.Medicine, *pagination.Cursor, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Medicine, error)
	Categories(ctx context.Context) ([]string, error)
	SearchByName(ctx context.Context, name string, limit int) ([]models.Medicine, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listMedicinesParams struct {
	Category string
	Search   string
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) List(ctx context.Context, params listMedicinesParams) ([]models.Medicine, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Medicine{})
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(coalesce(generic_name, '')) LIKE ?", pattern, pattern)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var medicines []models.Medicine
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&medicines).Error; err != nil {
		return nil, nil, err
	}

	if len(medicines) > normalized {
		next := medicines[normalized]
		medicines = medicines[:normalized]
		return medicines, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return medicines, nil, nil
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := r.db.WithContext(ctx).First(&medicine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *repositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Medicine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var medicines []models.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}

func (r *repositoryImpl) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repositoryImpl) SearchByName(ctx context.Context, name string, limit int) ([]models.Medicine, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	var medicines []models.Medicine
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	if err := r.db.WithContext(ctx).
		Where("lower(name) LIKE ? OR lower(coalesce(generic_name, '')) LIKE ?", pattern, pattern).
		Order("name").
		Limit(limit).
		Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}
