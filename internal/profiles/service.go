package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/logger"
)

// Service manages the profile screen and its attached records.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.Profile, error)

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.SavedAddress, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.SavedAddress, error)
	UpdateAddress(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*models.SavedAddress, error)
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
	GetForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.SavedAddress, error)

	ListContacts(ctx context.Context, userID uuid.UUID) ([]models.EmergencyContact, error)
	CreateContact(ctx context.Context, userID uuid.UUID, input ContactInput) (*models.EmergencyContact, error)
	UpdateContact(ctx context.Context, userID, id uuid.UUID, input ContactInput) (*models.EmergencyContact, error)
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error

	ListConditions(ctx context.Context, userID uuid.UUID) ([]models.MedicalCondition, error)
	CreateCondition(ctx context.Context, userID uuid.UUID, input ConditionInput) (*models.MedicalCondition, error)
	UpdateCondition(ctx context.Context, userID, id uuid.UUID, input ConditionInput) (*models.MedicalCondition, error)
	DeleteCondition(ctx context.Context, userID, id uuid.UUID) error

	ListAllergies(ctx context.Context, userID uuid.UUID) ([]models.Allergy, error)
	CreateAllergy(ctx context.Context, userID uuid.UUID, input AllergyInput) (*models.Allergy, error)
	UpdateAllergy(ctx context.Context, userID, id uuid.UUID, input AllergyInput) (*models.Allergy, error)
	DeleteAllergy(ctx context.Context, userID, id uuid.UUID) error
}

// UpdateProfileInput carries partial profile edits. Nil fields are left as
// they are.
type UpdateProfileInput struct {
	FullName    *string    `json:"fullName"`
	Phone       *string    `json:"phone"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Gender      *string    `json:"gender"`
	BloodGroup  *string    `json:"bloodGroup"`
	AvatarURL   *string    `json:"avatarUrl"`
}

// AddressInput is the write shape for a saved address.
type AddressInput struct {
	Label     string  `json:"label"`
	Line1     string  `json:"line1"`
	Line2     *string `json:"line2"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Pincode   string  `json:"pincode"`
	IsDefault bool    `json:"isDefault"`
}

// ContactInput is the write shape for an emergency contact.
type ContactInput struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Relation  string `json:"relation"`
	IsPrimary bool   `json:"isPrimary"`
}

// ConditionInput is the write shape for a medical history entry.
type ConditionInput struct {
	Name        string     `json:"name"`
	DiagnosedAt *time.Time `json:"diagnosedAt"`
	Notes       *string    `json:"notes"`
}

// AllergyInput is the write shape for an allergy record.
type AllergyInput struct {
	Allergen string  `json:"allergen"`
	Severity string  `json:"severity"`
	Reaction *string `json:"reaction"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires profile dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// GetProfile returns the user's profile, creating an empty one on first read.
func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	created := &models.Profile{UserID: userID}
	if err := s.repo.CreateProfile(ctx, created); err != nil {
		// A concurrent first read may have won the insert.
		if existing, getErr := s.repo.GetProfile(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return created, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		profile.FullName = trimmedOrNil(input.FullName)
	}
	if input.Phone != nil {
		profile.Phone = trimmedOrNil(input.Phone)
	}
	if input.DateOfBirth != nil {
		profile.DateOfBirth = input.DateOfBirth
	}
	if input.Gender != nil {
		profile.Gender = trimmedOrNil(input.Gender)
	}
	if input.BloodGroup != nil {
		profile.BloodGroup = trimmedOrNil(input.BloodGroup)
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = trimmedOrNil(input.AvatarURL)
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return profile, nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.SavedAddress, error) {
	rows, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

func (s *service) CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.SavedAddress, error) {
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	count, err := s.repo.CountAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
	}

	address := &models.SavedAddress{
		UserID:  userID,
		Label:   strings.TrimSpace(input.Label),
		Line1:   strings.TrimSpace(input.Line1),
		Line2:   trimmedOrNil(input.Line2),
		City:    strings.TrimSpace(input.City),
		State:   strings.TrimSpace(input.State),
		Pincode: strings.TrimSpace(input.Pincode),
		// The first address on the book is always the default.
		IsDefault: input.IsDefault || count == 0,
	}

	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	if address.IsDefault {
		if err := s.repo.ClearDefaultAddress(ctx, userID, address.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
	}
	return address, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*models.SavedAddress, error) {
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	address, err := s.repo.GetAddress(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get address")
	}

	address.Label = strings.TrimSpace(input.Label)
	address.Line1 = strings.TrimSpace(input.Line1)
	address.Line2 = trimmedOrNil(input.Line2)
	address.City = strings.TrimSpace(input.City)
	address.State = strings.TrimSpace(input.State)
	address.Pincode = strings.TrimSpace(input.Pincode)
	address.IsDefault = input.IsDefault

	if err := s.repo.SaveAddress(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save address")
	}
	if address.IsDefault {
		if err := s.repo.ClearDefaultAddress(ctx, userID, address.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
	}
	return address, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteAddress(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// GetForUser loads an address for the checkout snapshot. Errors pass through
// untranslated so callers can distinguish a missing row.
func (s *service) GetForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.SavedAddress, error) {
	return s.repo.GetAddress(ctx, userID, addressID)
}

func (s *service) ListContacts(ctx context.Context, userID uuid.UUID) ([]models.EmergencyContact, error) {
	rows, err := s.repo.ListContacts(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	return rows, nil
}

func (s *service) CreateContact(ctx context.Context, userID uuid.UUID, input ContactInput) (*models.EmergencyContact, error) {
	if err := validateContact(input); err != nil {
		return nil, err
	}

	contact := &models.EmergencyContact{
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Relation:  strings.TrimSpace(input.Relation),
		IsPrimary: input.IsPrimary,
	}

	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact")
	}
	if contact.IsPrimary {
		if err := s.repo.ClearPrimaryContact(ctx, userID, contact.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear primary contact")
		}
	}
	return contact, nil
}

func (s *service) UpdateContact(ctx context.Context, userID, id uuid.UUID, input ContactInput) (*models.EmergencyContact, error) {
	if err := validateContact(input); err != nil {
		return nil, err
	}

	contact, err := s.repo.GetContact(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get contact")
	}

	contact.Name = strings.TrimSpace(input.Name)
	contact.Phone = strings.TrimSpace(input.Phone)
	contact.Relation = strings.TrimSpace(input.Relation)
	contact.IsPrimary = input.IsPrimary

	if err := s.repo.SaveContact(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save contact")
	}
	if contact.IsPrimary {
		if err := s.repo.ClearPrimaryContact(ctx, userID, contact.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear primary contact")
		}
	}
	return contact, nil
}

func (s *service) DeleteContact(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteContact(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contact")
	}
	return nil
}

func (s *service) ListConditions(ctx context.Context, userID uuid.UUID) ([]models.MedicalCondition, error) {
	rows, err := s.repo.ListConditions(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conditions")
	}
	return rows, nil
}

func (s *service) CreateCondition(ctx context.Context, userID uuid.UUID, input ConditionInput) (*models.MedicalCondition, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "condition name required")
	}

	condition := &models.MedicalCondition{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		DiagnosedAt: input.DiagnosedAt,
		Notes:       trimmedOrNil(input.Notes),
	}

	if err := s.repo.CreateCondition(ctx, condition); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create condition")
	}
	return condition, nil
}

func (s *service) UpdateCondition(ctx context.Context, userID, id uuid.UUID, input ConditionInput) (*models.MedicalCondition, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "condition name required")
	}

	condition, err := s.repo.GetCondition(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "condition not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get condition")
	}

	condition.Name = strings.TrimSpace(input.Name)
	condition.DiagnosedAt = input.DiagnosedAt
	condition.Notes = trimmedOrNil(input.Notes)

	if err := s.repo.SaveCondition(ctx, condition); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save condition")
	}
	return condition, nil
}

func (s *service) DeleteCondition(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteCondition(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "condition not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete condition")
	}
	return nil
}

func (s *service) ListAllergies(ctx context.Context, userID uuid.UUID) ([]models.Allergy, error) {
	rows, err := s.repo.ListAllergies(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list allergies")
	}
	return rows, nil
}

func (s *service) CreateAllergy(ctx context.Context, userID uuid.UUID, input AllergyInput) (*models.Allergy, error) {
	allergen, severity, err := validateAllergy(input)
	if err != nil {
		return nil, err
	}

	allergy := &models.Allergy{
		UserID:   userID,
		Allergen: allergen,
		Severity: severity,
		Reaction: trimmedOrNil(input.Reaction),
	}

	if err := s.repo.CreateAllergy(ctx, allergy); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create allergy")
	}
	return allergy, nil
}

func (s *service) UpdateAllergy(ctx context.Context, userID, id uuid.UUID, input AllergyInput) (*models.Allergy, error) {
	allergen, severity, err := validateAllergy(input)
	if err != nil {
		return nil, err
	}

	allergy, err := s.repo.GetAllergy(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "allergy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get allergy")
	}

	allergy.Allergen = allergen
	allergy.Severity = severity
	allergy.Reaction = trimmedOrNil(input.Reaction)

	if err := s.repo.SaveAllergy(ctx, allergy); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save allergy")
	}
	return allergy, nil
}

func (s *service) DeleteAllergy(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteAllergy(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "allergy not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete allergy")
	}
	return nil
}

func validateAddress(input AddressInput) error {
	switch {
	case strings.TrimSpace(input.Label) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address label required")
	case strings.TrimSpace(input.Line1) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address line1 required")
	case strings.TrimSpace(input.City) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address city required")
	case strings.TrimSpace(input.State) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address state required")
	case strings.TrimSpace(input.Pincode) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address pincode required")
	}
	return nil
}

func validateContact(input ContactInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "contact name required")
	case strings.TrimSpace(input.Phone) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "contact phone required")
	case strings.TrimSpace(input.Relation) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "contact relation required")
	}
	return nil
}

func validateAllergy(input AllergyInput) (string, enums.AllergySeverity, error) {
	allergen := strings.TrimSpace(input.Allergen)
	if allergen == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "allergen required")
	}
	severity, err := enums.ParseAllergySeverity(strings.TrimSpace(input.Severity))
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid severity")
	}
	return allergen, severity, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
