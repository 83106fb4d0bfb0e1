package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/pagination"
)

// Service exposes the emergency directory of hospitals and doctors.
type Service interface {
	ListHospitals(ctx context.Context, params HospitalParams) ([]models.Hospital, error)
	GetHospital(ctx context.Context, id uuid.UUID) (*models.Hospital, error)
	ListDoctors(ctx context.Context, params DoctorParams) ([]models.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*models.Doctor, error)
	DoctorSpecialties(ctx context.Context) ([]string, error)
}

// HospitalParams configures hospital listing.
type HospitalParams struct {
	Search   string
	Open24x7 *bool
	MaxKM    float64
	Limit    int
}

// DoctorParams configures doctor listing.
type DoctorParams struct {
	Specialty string
	Search    string
	Available *bool
	Limit     int
}

type service struct {
	repo Repository
}

// NewService wires directory dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "directory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListHospitals(ctx context.Context, params HospitalParams) ([]models.Hospital, error) {
	rows, err := s.repo.ListHospitals(ctx, HospitalFilter{
		Search:   strings.ToLower(strings.TrimSpace(params.Search)),
		Open24x7: params.Open24x7,
		MaxKM:    params.MaxKM,
		Limit:    pagination.NormalizeLimit(params.Limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list hospitals")
	}
	return rows, nil
}

func (s *service) GetHospital(ctx context.Context, id uuid.UUID) (*models.Hospital, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hospital id required")
	}
	hospital, err := s.repo.GetHospital(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hospital not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get hospital")
	}
	return hospital, nil
}

func (s *service) ListDoctors(ctx context.Context, params DoctorParams) ([]models.Doctor, error) {
	rows, err := s.repo.ListDoctors(ctx, DoctorFilter{
		Specialty: strings.ToLower(strings.TrimSpace(params.Specialty)),
		Search:    strings.ToLower(strings.TrimSpace(params.Search)),
		Available: params.Available,
		Limit:     pagination.NormalizeLimit(params.Limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list doctors")
	}
	return rows, nil
}

func (s *service) GetDoctor(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "doctor id required")
	}
	doctor, err := s.repo.GetDoctor(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "doctor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get doctor")
	}
	return doctor, nil
}

func (s *service) DoctorSpecialties(ctx context.Context) ([]string, error) {
	specialties, err := s.repo.DoctorSpecialties(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list specialties")
	}
	return specialties, nil
}
