package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/internal/cart"
	"github.com/medirush/medirush-backend/internal/orders"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db/models"
	"github.com/medirush/medirush-backend/pkg/enums"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/logger"
	"github.com/medirush/medirush-backend/pkg/pricing"
)

// Service places orders from the active cart.
type Service interface {
	Place(ctx context.Context, params PlaceParams) (*models.Order, error)
}

// PlaceParams carries the checkout inputs.
type PlaceParams struct {
	UserID        uuid.UUID
	PaymentMethod enums.PaymentMethod
	AddressID     *uuid.UUID
	Address       *DeliveryAddress
}

// DeliveryAddress is the checkout address form used when no saved address is
// referenced. Every field is required.
type DeliveryAddress struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	Pincode     string `json:"pincode"`
}

func (a DeliveryAddress) fullText() string {
	return a.Name + ", " + a.AddressLine + ", " + a.Pincode + " (" + a.Phone + ")"
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddressResolver loads a saved address owned by the user.
type AddressResolver interface {
	GetForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.SavedAddress, error)
}

// DeliveryStarter schedules the delivery lifecycle for a placed order.
type DeliveryStarter interface {
	Start(orderID uuid.UUID, placedAt time.Time)
}

type service struct {
	tx        TxRunner
	cartRepo  cart.Repository
	orderRepo orders.Repository
	addresses AddressResolver
	starter   DeliveryStarter
	tracking  config.TrackingConfig
	logg      *logger.Logger
}

// NewService wires checkout dependencies.
func NewService(
	tx TxRunner,
	cartRepo cart.Repository,
	orderRepo orders.Repository,
	addresses AddressResolver,
	starter DeliveryStarter,
	tracking config.TrackingConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if cartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart repository required")
	}
	if orderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if addresses == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address resolver required")
	}
	return &service{
		tx:        tx,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		addresses: addresses,
		starter:   starter,
		tracking:  tracking,
		logg:      logg,
	}, nil
}

// Place snapshots the cart into an order, clears the cart, and starts the
// delivery simulation. Prices are frozen at this point: the order lines copy
// the catalog price current at placement.
func (s *service) Place(ctx context.Context, params PlaceParams) (*models.Order, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !params.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	addressText, addressID, err := s.resolveAddress(ctx, params)
	if err != nil {
		return nil, err
	}

	items, err := s.cartRepo.List(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	subtotal := 0
	for _, item := range items {
		if item.Medicine == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart line lost its medicine")
		}
		lineTotal := item.Medicine.Price * item.Quantity
		orderItems = append(orderItems, models.OrderItem{
			MedicineID:   item.MedicineID,
			MedicineName: item.Medicine.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.Medicine.Price,
			TotalPrice:   lineTotal,
		})
		subtotal += lineTotal
	}
	bill := pricing.Compute(subtotal)

	orderNumber, err := orders.GenerateOrderNumber(ctx, s.orderRepo)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	estimated := now.Add(s.tracking.DeliveredAfter)
	paymentStatus := enums.PaymentStatusPaid
	if params.PaymentMethod == enums.PaymentMethodCOD {
		paymentStatus = enums.PaymentStatusPending
	}

	order := &models.Order{
		ID:                  uuid.New(),
		UserID:              params.UserID,
		OrderNumber:         orderNumber,
		Status:              enums.OrderStatusConfirmed,
		Subtotal:            bill.Subtotal,
		Discount:            bill.Discount,
		DeliveryFee:         bill.DeliveryFee,
		Total:               bill.GrandTotal,
		PaymentMethod:       params.PaymentMethod,
		PaymentStatus:       paymentStatus,
		DeliveryAddressID:   addressID,
		DeliveryAddressText: addressText,
		EstimatedDelivery:   &estimated,
		Items:               orderItems,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		message := "Order confirmed"
		if err := s.orderRepo.WithTx(tx).AppendStatusEvent(ctx, &models.OrderStatusEvent{
			OrderID: order.ID,
			Status:  enums.OrderStatusConfirmed,
			Message: &message,
		}); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).DeleteAll(ctx, params.UserID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	if s.starter != nil {
		s.starter.Start(order.ID, now)
	}
	if s.logg != nil {
		orderCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(orderCtx, "order placed")
	}

	return order, nil
}

func (s *service) resolveAddress(ctx context.Context, params PlaceParams) (string, *uuid.UUID, error) {
	if params.AddressID != nil && *params.AddressID != uuid.Nil {
		saved, err := s.addresses.GetForUser(ctx, params.UserID, *params.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery address not found")
			}
			return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve delivery address")
		}
		return saved.FullText(), &saved.ID, nil
	}

	if params.Address == nil {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}

	form := DeliveryAddress{
		Name:        strings.TrimSpace(params.Address.Name),
		Phone:       strings.TrimSpace(params.Address.Phone),
		AddressLine: strings.TrimSpace(params.Address.AddressLine),
		Pincode:     strings.TrimSpace(params.Address.Pincode),
	}
	missing := map[string]string{}
	if form.Name == "" {
		missing["name"] = "is required"
	}
	if form.Phone == "" {
		missing["phone"] = "is required"
	}
	if form.AddressLine == "" {
		missing["addressLine"] = "is required"
	}
	if form.Pincode == "" {
		missing["pincode"] = "is required"
	}
	if len(missing) > 0 {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address incomplete").WithDetails(missing)
	}
	return form.fullText(), nil, nil
}
