package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Profile{},
		&models.SavedAddress{},
		&models.EmergencyContact{},
		&models.MedicalCondition{},
		&models.Allergy{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(openTestDB(t)), nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func strPtr(s string) *string { return &s }

func TestGetProfileCreatesOnFirstRead(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if first.UserID != userID {
		t.Fatalf("expected profile bound to user, got %s", first.UserID)
	}

	second, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("second GetProfile returned error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same profile row, got %s and %s", first.ID, second.ID)
	}
}

func TestUpdateProfileAppliesPartialEdits(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	updated, err := svc.UpdateProfile(ctx, userID, UpdateProfileInput{
		FullName:   strPtr("Asha Rao"),
		BloodGroup: strPtr("O+"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.FullName == nil || *updated.FullName != "Asha Rao" {
		t.Fatalf("expected full name set, got %+v", updated.FullName)
	}

	// A later edit that omits the name must not clear it.
	updated, err = svc.UpdateProfile(ctx, userID, UpdateProfileInput{Gender: strPtr("female")})
	if err != nil {
		t.Fatalf("second UpdateProfile returned error: %v", err)
	}
	if updated.FullName == nil || *updated.FullName != "Asha Rao" {
		t.Fatalf("expected full name preserved, got %+v", updated.FullName)
	}
	if updated.BloodGroup == nil || *updated.BloodGroup != "O+" {
		t.Fatalf("expected blood group preserved, got %+v", updated.BloodGroup)
	}
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateAddress(ctx, userID, AddressInput{
		Label:   "Home",
		Line1:   "14 Cross",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560034",
	})
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}
	if !created.IsDefault {
		t.Fatal("first address must become the default")
	}
}

func TestSingleDefaultAddress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateAddress(ctx, userID, AddressInput{
		Label: "Home", Line1: "14 Cross", City: "Bengaluru", State: "Karnataka", Pincode: "560034",
	}); err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	second, err := svc.CreateAddress(ctx, userID, AddressInput{
		Label: "Work", Line1: "8 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	rows, err := svc.ListAddresses(ctx, userID)
	if err != nil {
		t.Fatalf("ListAddresses returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(rows))
	}

	defaults := 0
	for _, row := range rows {
		if row.IsDefault {
			defaults++
			if row.ID != second.ID {
				t.Fatalf("expected %s to hold the default, got %s", second.ID, row.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default address, got %d", defaults)
	}
}

func TestUpdateAddressMovesDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateAddress(ctx, userID, AddressInput{
		Label: "Home", Line1: "14 Cross", City: "Bengaluru", State: "Karnataka", Pincode: "560034",
	})
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}
	second, err := svc.CreateAddress(ctx, userID, AddressInput{
		Label: "Work", Line1: "8 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001",
	})
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	if _, err := svc.UpdateAddress(ctx, userID, second.ID, AddressInput{
		Label: "Work", Line1: "8 MG Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001",
		IsDefault: true,
	}); err != nil {
		t.Fatalf("UpdateAddress returned error: %v", err)
	}

	reloaded, err := svc.GetForUser(ctx, userID, first.ID)
	if err != nil {
		t.Fatalf("GetForUser returned error: %v", err)
	}
	if reloaded.IsDefault {
		t.Fatal("previous default must be cleared")
	}
}

func TestDeleteAddressScopedToOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	address, err := svc.CreateAddress(ctx, owner, AddressInput{
		Label: "Home", Line1: "14 Cross", City: "Bengaluru", State: "Karnataka", Pincode: "560034",
	})
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	err = svc.DeleteAddress(ctx, uuid.New(), address.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}

	if err := svc.DeleteAddress(ctx, owner, address.ID); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if _, err := svc.GetForUser(ctx, owner, address.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestAddressValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateAddress(context.Background(), uuid.New(), AddressInput{Label: "Home"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSinglePrimaryContact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateContact(ctx, userID, ContactInput{
		Name: "Ravi", Phone: "+919812345678", Relation: "brother", IsPrimary: true,
	}); err != nil {
		t.Fatalf("CreateContact returned error: %v", err)
	}
	second, err := svc.CreateContact(ctx, userID, ContactInput{
		Name: "Meera", Phone: "+919898765432", Relation: "spouse", IsPrimary: true,
	})
	if err != nil {
		t.Fatalf("CreateContact returned error: %v", err)
	}

	rows, err := svc.ListContacts(ctx, userID)
	if err != nil {
		t.Fatalf("ListContacts returned error: %v", err)
	}

	primaries := 0
	for _, row := range rows {
		if row.IsPrimary {
			primaries++
			if row.ID != second.ID {
				t.Fatalf("expected latest primary to win, got %s", row.ID)
			}
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary contact, got %d", primaries)
	}
}

func TestContactCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	contact, err := svc.CreateContact(ctx, userID, ContactInput{
		Name: "Ravi", Phone: "+919812345678", Relation: "brother",
	})
	if err != nil {
		t.Fatalf("CreateContact returned error: %v", err)
	}

	updated, err := svc.UpdateContact(ctx, userID, contact.ID, ContactInput{
		Name: "Ravi Kumar", Phone: "+919812345678", Relation: "brother",
	})
	if err != nil {
		t.Fatalf("UpdateContact returned error: %v", err)
	}
	if updated.Name != "Ravi Kumar" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}

	if err := svc.DeleteContact(ctx, userID, contact.ID); err != nil {
		t.Fatalf("DeleteContact returned error: %v", err)
	}
	err = svc.DeleteContact(ctx, userID, contact.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestConditionCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	condition, err := svc.CreateCondition(ctx, userID, ConditionInput{
		Name:  "Hypertension",
		Notes: strPtr("Managed with medication"),
	})
	if err != nil {
		t.Fatalf("CreateCondition returned error: %v", err)
	}

	updated, err := svc.UpdateCondition(ctx, userID, condition.ID, ConditionInput{Name: "Hypertension stage 1"})
	if err != nil {
		t.Fatalf("UpdateCondition returned error: %v", err)
	}
	if updated.Name != "Hypertension stage 1" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Notes != nil {
		t.Fatal("omitted notes must clear the field on full update")
	}

	if err := svc.DeleteCondition(ctx, userID, condition.ID); err != nil {
		t.Fatalf("DeleteCondition returned error: %v", err)
	}

	rows, err := svc.ListConditions(ctx, userID)
	if err != nil {
		t.Fatalf("ListConditions returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(rows))
	}
}

func TestAllergySeverityValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateAllergy(ctx, userID, AllergyInput{Allergen: "Penicillin", Severity: "catastrophic"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown severity, got %v", err)
	}

	allergy, err := svc.CreateAllergy(ctx, userID, AllergyInput{Allergen: "Penicillin", Severity: "severe"})
	if err != nil {
		t.Fatalf("CreateAllergy returned error: %v", err)
	}
	if allergy.Severity != enums.AllergySeveritySevere {
		t.Fatalf("expected severe, got %s", allergy.Severity)
	}
}
