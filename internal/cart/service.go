package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/pricing"
)

// Service defines cart mutation and read operations.
//
// Line prices are resolved against the catalog at read time, so a catalog
// price change is reflected in any cart still holding the item. The checkout
// snapshot is what freezes prices.
type Service interface {
	AddItem(ctx context.Context, userID, medicineID uuid.UUID, deltaQty int) (*Cart, error)
	SetQuantity(ctx context.Context, userID, medicineID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
}

// MedicineResolver is the slice of the catalog the cart needs.
type MedicineResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
}

type service struct {
	repo    Repository
	catalog MedicineResolver
}

// Line is one priced cart row.
type Line struct {
	MedicineID uuid.UUID        `json:"medicineId"`
	Medicine   *models.Medicine `json:"medicine,omitempty"`
	Quantity   int              `json:"quantity"`
	UnitPrice  int              `json:"unitPrice"`
	LineTotal  int              `json:"lineTotal"`
}

// Cart is the priced view of a user's cart.
type Cart struct {
	Items          []Line            `json:"items"`
	TotalItemCount int               `json:"totalItemCount"`
	Pricing        pricing.Breakdown `json:"pricing"`
}

// NewService wires cart dependencies.
func NewService(repo Repository, catalogRepo MedicineResolver) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart repository required")
	}
	if catalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	return &service{repo: repo, catalog: catalogRepo}, nil
}

func (s *service) AddItem(ctx context.Context, userID, medicineID uuid.UUID, deltaQty int) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if medicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine id required")
	}
	if deltaQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity to add must be positive")
	}

	if _, err := s.catalog.Get(ctx, medicineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve medicine")
	}

	existing, err := s.repo.Get(ctx, userID, medicineID)
	switch {
	case err == nil:
		if err := s.repo.UpdateQuantity(ctx, existing.ID, existing.Quantity+deltaQty); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart quantity")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := &models.CartItem{UserID: userID, MedicineID: medicineID, Quantity: deltaQty}
		if err := s.repo.Create(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	return s.Get(ctx, userID)
}

func (s *service) SetQuantity(ctx context.Context, userID, medicineID uuid.UUID, quantity int) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if medicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine id required")
	}

	// Zero or negative quantity removes the line.
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, medicineID)
	}

	existing, err := s.repo.Get(ctx, userID, medicineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent line is a no-op, not an implicit add.
			return s.Get(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if existing.Quantity != quantity {
		if err := s.repo.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart quantity")
		}
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if medicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine id required")
	}

	if err := s.repo.Delete(ctx, userID, medicineID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.repo.DeleteAll(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}

	cart := &Cart{Items: make([]Line, 0, len(items))}
	subtotal := 0
	for _, item := range items {
		line := Line{
			MedicineID: item.MedicineID,
			Medicine:   item.Medicine,
			Quantity:   item.Quantity,
		}
		if item.Medicine != nil {
			line.UnitPrice = item.Medicine.Price
			line.LineTotal = item.Medicine.Price * item.Quantity
		}
		subtotal += line.LineTotal
		cart.TotalItemCount += item.Quantity
		cart.Items = append(cart.Items, line)
	}
	cart.Pricing = pricing.Compute(subtotal)

	return cart, nil
}
