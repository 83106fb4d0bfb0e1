package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
)

// Repository exposes persistence helpers for profiles and the records hanging
// off them: addresses, emergency contacts, medical history, and allergies.
// Every row is scoped by user id so one account can never read another's data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	SaveProfile(ctx context.Context, profile *models.Profile) error

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.SavedAddress, error)
	GetAddress(ctx context.Context, userID, id uuid.UUID) (*models.SavedAddress, error)
	CreateAddress(ctx context.Context, address *models.SavedAddress) error
	SaveAddress(ctx context.Context, address *models.SavedAddress) error
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
	ClearDefaultAddress(ctx context.Context, userID, exceptID uuid.UUID) error
	CountAddresses(ctx context.Context, userID uuid.UUID) (int64, error)

	ListContacts(ctx context.Context, userID uuid.UUID) ([]models.EmergencyContact, error)
	GetContact(ctx context.Context, userID, id uuid.UUID) (*models.EmergencyContact, error)
	CreateContact(ctx context.Context, contact *models.EmergencyContact) error
	SaveContact(ctx context.Context, contact *models.EmergencyContact) error
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error
	ClearPrimaryContact(ctx context.Context, userID, exceptID uuid.UUID) error

	ListConditions(ctx context.Context, userID uuid.UUID) ([]models.MedicalCondition, error)
	GetCondition(ctx context.Context, userID, id uuid.UUID) (*models.MedicalCondition, error)
	CreateCondition(ctx context.Context, condition *models.MedicalCondition) error
	SaveCondition(ctx context.Context, condition *models.MedicalCondition) error
	DeleteCondition(ctx context.Context, userID, id uuid.UUID) error

	ListAllergies(ctx context.Context, userID uuid.UUID) ([]models.Allergy, error)
	GetAllergy(ctx context.Context, userID, id uuid.UUID) (*models.Allergy, error)
	CreateAllergy(ctx context.Context, allergy *models.Allergy) error
	SaveAllergy(ctx context.Context, allergy *models.Allergy) error
	DeleteAllergy(ctx context.Context, userID, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a profile repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repositoryImpl) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repositoryImpl) SaveProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *repositoryImpl) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.SavedAddress, error) {
	var rows []models.SavedAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetAddress(ctx context.Context, userID, id uuid.UUID) (*models.SavedAddress, error) {
	var address models.SavedAddress
	if err := r.db.WithContext(ctx).First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repositoryImpl) CreateAddress(ctx context.Context, address *models.SavedAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repositoryImpl) SaveAddress(ctx context.Context, address *models.SavedAddress) error {
	return r.db.WithContext(ctx).Save(address).Error
}

func (r *repositoryImpl) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.SavedAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) ClearDefaultAddress(ctx context.Context, userID, exceptID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SavedAddress{}).
		Where("user_id = ? AND id <> ?", userID, exceptID).
		Update("is_default", false).Error
}

func (r *repositoryImpl) CountAddresses(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SavedAddress{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListContacts(ctx context.Context, userID uuid.UUID) ([]models.EmergencyContact, error) {
	var rows []models.EmergencyContact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetContact(ctx context.Context, userID, id uuid.UUID) (*models.EmergencyContact, error) {
	var contact models.EmergencyContact
	if err := r.db.WithContext(ctx).First(&contact, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *repositoryImpl) CreateContact(ctx context.Context, contact *models.EmergencyContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *repositoryImpl) SaveContact(ctx context.Context, contact *models.EmergencyContact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *repositoryImpl) DeleteContact(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.EmergencyContact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) ClearPrimaryContact(ctx context.Context, userID, exceptID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.EmergencyContact{}).
		Where("user_id = ? AND id <> ?", userID, exceptID).
		Update("is_primary", false).Error
}

func (r *repositoryImpl) ListConditions(ctx context.Context, userID uuid.UUID) ([]models.MedicalCondition, error) {
	var rows []models.MedicalCondition
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetCondition(ctx context.Context, userID, id uuid.UUID) (*models.MedicalCondition, error) {
	var condition models.MedicalCondition
	if err := r.db.WithContext(ctx).First(&condition, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &condition, nil
}

func (r *repositoryImpl) CreateCondition(ctx context.Context, condition *models.MedicalCondition) error {
	return r.db.WithContext(ctx).Create(condition).Error
}

func (r *repositoryImpl) SaveCondition(ctx context.Context, condition *models.MedicalCondition) error {
	return r.db.WithContext(ctx).Save(condition).Error
}

func (r *repositoryImpl) DeleteCondition(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.MedicalCondition{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) ListAllergies(ctx context.Context, userID uuid.UUID) ([]models.Allergy, error) {
	var rows []models.Allergy
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) GetAllergy(ctx context.Context, userID, id uuid.UUID) (*models.Allergy, error) {
	var allergy models.Allergy
	if err := r.db.WithContext(ctx).First(&allergy, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &allergy, nil
}

func (r *repositoryImpl) CreateAllergy(ctx context.Context, allergy *models.Allergy) error {
	return r.db.WithContext(ctx).Create(allergy).Error
}

func (r *repositoryImpl) SaveAllergy(ctx context.Context, allergy *models.Allergy) error {
	return r.db.WithContext(ctx).Save(allergy).Error
}

func (r *repositoryImpl) DeleteAllergy(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Allergy{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
