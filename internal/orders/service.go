package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medirush/medirush-backend/pkg/db/models"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/pagination"
)

const orderNumberAttempts = 5

// Service defines order read operations for the account that placed them.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for a user's order history.
type ListParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

// ListResult wraps returned orders and the cursor for the next page.
type ListResult struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

// NewService wires order dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listOrdersParams{
		UserID: params.UserID,
		Limit:  params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.GetForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get order")
	}
	return order, nil
}

// GenerateOrderNumber produces a customer-facing order number of the form
// ORD followed by eight digits, retrying on the rare collision.
func GenerateOrderNumber(ctx context.Context, repo Repository) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(100000000))
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		candidate := fmt.Sprintf("ORD%08d", n.Int64())

		exists, err := repo.OrderNumberExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "exhausted order number attempts")
}
