package checkout

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medirush/medirush-backend/internal/cart"
	"github.com/medirush/medirush-backend/internal/orders"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type fakeAddressResolver struct {
	addresses map[uuid.UUID]*models.SavedAddress
}

func (f *fakeAddressResolver) GetForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.SavedAddress, error) {
	if addr, ok := f.addresses[addressID]; ok && addr.UserID == userID {
		return addr, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeStarter struct {
	mu      sync.Mutex
	started []uuid.UUID
}

func (f *fakeStarter) Start(orderID uuid.UUID, placedAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, orderID)
}

func (f *fakeStarter) startedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.started)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Medicine{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

type fixture struct {
	svc       Service
	db        *gorm.DB
	cartRepo  cart.Repository
	orderRepo orders.Repository
	starter   *fakeStarter
	addresses *fakeAddressResolver
	userID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := openTestDB(t)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	starter := &fakeStarter{}
	addresses := &fakeAddressResolver{addresses: map[uuid.UUID]*models.SavedAddress{}}

	svc, err := NewService(
		gormTxRunner{db: conn},
		cartRepo,
		orderRepo,
		addresses,
		starter,
		config.TrackingConfig{PreparingAfter: time.Hour, PickedAfter: 2 * time.Hour, DeliveredAfter: 3 * time.Hour},
		nil,
	)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	return &fixture{
		svc:       svc,
		db:        conn,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		starter:   starter,
		addresses: addresses,
		userID:    uuid.New(),
	}
}

func (f *fixture) seedCart(t *testing.T, price, quantity int) *models.Medicine {
	t.Helper()
	med := &models.Medicine{
		ID:       uuid.New(),
		Name:     "Paracetamol 500mg",
		Category: "Pain Relief",
		Price:    price,
		MRP:      price,
	}
	if err := f.db.Create(med).Error; err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	item := &models.CartItem{
		ID:         uuid.New(),
		UserID:     f.userID,
		MedicineID: med.ID,
		Quantity:   quantity,
	}
	if err := f.db.Create(item).Error; err != nil {
		t.Fatalf("seed cart item: %v", err)
	}
	return med
}

func testAddress() *DeliveryAddress {
	return &DeliveryAddress{
		Name:        "Asha Rao",
		Phone:       "+919876543210",
		AddressLine: "221B Baker Street, Bengaluru",
		Pincode:     "560001",
	}
}

func TestPlaceSnapshotsCartIntoOrder(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 100, 2)
	ctx := context.Background()

	order, err := f.svc.Place(ctx, PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodUPI,
		Address:       testAddress(),
	})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	if !strings.HasPrefix(order.OrderNumber, "ORD") || len(order.OrderNumber) != 11 {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed status, got %s", order.Status)
	}
	// Subtotal 200 crosses the free delivery threshold.
	if order.Subtotal != 200 || order.Discount != 10 || order.DeliveryFee != 0 || order.Total != 190 {
		t.Fatalf("unexpected bill: %+v", order)
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("prepaid order should be marked paid, got %s", order.PaymentStatus)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPrice != 100 || order.Items[0].TotalPrice != 200 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}

	// Cart is cleared in the same transaction.
	remaining, err := f.cartRepo.List(ctx, f.userID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected cart cleared, got %d lines", len(remaining))
	}

	if f.starter.startedCount() != 1 {
		t.Fatalf("expected delivery simulation started once, got %d", f.starter.startedCount())
	}

	stored, err := f.orderRepo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(stored.StatusEvents) != 1 || stored.StatusEvents[0].Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed status event, got %+v", stored.StatusEvents)
	}
}

func TestPlaceBelowThresholdChargesFee(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 100, 1)

	order, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodCOD,
		Address:       testAddress(),
	})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if order.Subtotal != 100 || order.Discount != 5 || order.DeliveryFee != 29 || order.Total != 124 {
		t.Fatalf("unexpected bill: %+v", order)
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("cod order should stay pending, got %s", order.PaymentStatus)
	}
}

func TestPlaceEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodUPI,
		Address:       testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
	if f.starter.startedCount() != 0 {
		t.Fatal("simulation must not start for a failed checkout")
	}
}

func TestPlaceMissingAddress(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 50, 1)

	_, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodUPI,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without an address, got %v", err)
	}
	if f.starter.startedCount() != 0 {
		t.Fatal("simulation must not start for a failed checkout")
	}
}

func TestPlaceIncompleteAddressReportsFields(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 50, 1)

	_, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodUPI,
		Address: &DeliveryAddress{
			Name:        "Asha Rao",
			Phone:       "  ",
			AddressLine: "221B Baker Street, Bengaluru",
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for incomplete address, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", typed.Details())
	}
	if details["phone"] != "is required" || details["pincode"] != "is required" {
		t.Fatalf("expected phone and pincode flagged, got %v", details)
	}
	if _, flagged := details["name"]; flagged {
		t.Fatalf("name was provided but flagged: %v", details)
	}
}

func TestPlaceComposesAddressText(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 50, 1)

	order, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodUPI,
		Address:       testAddress(),
	})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	want := "Asha Rao, 221B Baker Street, Bengaluru, 560001 (+919876543210)"
	if order.DeliveryAddressText != want {
		t.Fatalf("unexpected address snapshot %q", order.DeliveryAddressText)
	}
	if order.DeliveryAddressID != nil {
		t.Fatalf("free-form address must not carry a saved address id, got %v", order.DeliveryAddressID)
	}
}

func TestPlaceResolvesSavedAddress(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 50, 1)

	line2 := "Flat 4"
	addr := &models.SavedAddress{
		ID:      uuid.New(),
		UserID:  f.userID,
		Label:   "Home",
		Line1:   "14 Cross",
		Line2:   &line2,
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560034",
	}
	f.addresses.addresses[addr.ID] = addr

	order, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodCard,
		AddressID:     &addr.ID,
	})
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if order.DeliveryAddressText != "14 Cross, Flat 4, Bengaluru, Karnataka 560034" {
		t.Fatalf("unexpected address snapshot %q", order.DeliveryAddressText)
	}
	if order.DeliveryAddressID == nil || *order.DeliveryAddressID != addr.ID {
		t.Fatalf("expected address id retained, got %v", order.DeliveryAddressID)
	}
}

func TestPlaceUnknownAddress(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 50, 1)

	missing := uuid.New()
	_, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodUPI,
		AddressID:     &missing,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPlaceRejectsUnknownPaymentMethod(t *testing.T) {
	f := newFixture(t)
	f.seedCart(t, 50, 1)

	_, err := f.svc.Place(context.Background(), PlaceParams{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethod("barter"),
		Address:       testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
