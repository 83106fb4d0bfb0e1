package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
)

// HospitalFilter narrows the hospital listing.
type HospitalFilter struct {
	Search   string
	Open24x7 *bool
	MaxKM    float64
	Limit    int
}

// DoctorFilter narrows the doctor listing.
type DoctorFilter struct {
	Specialty string
	Search    string
	Available *bool
	Limit     int
}

// Repository exposes read access to the hospital and doctor directory. The
// directory is seed data curated by operations, so there are no write paths.
type Repository interface {
	ListHospitals(ctx context.Context, filter HospitalFilter) ([]models.Hospital, error)
	GetHospital(ctx context.Context, id uuid.UUID) (*models.Hospital, error)
	ListDoctors(ctx context.Context, filter DoctorFilter) ([]models.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*models.Doctor, error)
	DoctorSpecialties(ctx context.Context) ([]string, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a directory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListHospitals(ctx context.Context, filter HospitalFilter) ([]models.Hospital, error) {
	query := r.db.WithContext(ctx).Model(&models.Hospital{})

	if filter.Search != "" {
		query = query.Where("lower(name) LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Open24x7 != nil {
		query = query.Where("is_open_24x7 = ?", *filter.Open24x7)
	}
	if filter.MaxKM > 0 {
		query = query.Where("distance_km <= ?", filter.MaxKM)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.Hospital
	err := query.Order("distance_km ASC").Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetHospital(ctx context.Context, id uuid.UUID) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := r.db.WithContext(ctx).First(&hospital, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &hospital, nil
}

func (r *repositoryImpl) ListDoctors(ctx context.Context, filter DoctorFilter) ([]models.Doctor, error) {
	query := r.db.WithContext(ctx).Model(&models.Doctor{})

	if filter.Specialty != "" {
		query = query.Where("lower(specialty) = ?", filter.Specialty)
	}
	if filter.Search != "" {
		query = query.Where("lower(name) LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.Doctor
	err := query.Order("rating DESC, experience_years DESC").Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetDoctor(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.WithContext(ctx).First(&doctor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *repositoryImpl) DoctorSpecialties(ctx context.Context) ([]string, error) {
	var specialties []string
	err := r.db.WithContext(ctx).
		Model(&models.Doctor{}).
		Distinct("specialty").
		Order("specialty ASC").
		Pluck("specialty", &specialties).Error
	return specialties, err
}
