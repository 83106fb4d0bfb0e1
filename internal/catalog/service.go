package catalog

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

// Service defines catalog browsing operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	repo Repository
}

// ListParams configures catalog filtering and pagination.
type ListParams struct {
	Category string
	Search   string
	Limit    int
	Cursor   string
}

// ListResult wraps returned medicines and the cursor for the next page.
type ListResult struct {
	Items  []models.Medicine `json:"items"`
	Cursor string            `json:"cursor"`
}

// NewService wires catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listMedicinesParams{
		Category: strings.TrimSpace(params.Category),
		Search:   strings.TrimSpace(params.Search),
		Limit:    params.Limit,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list medicines")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine id required")
	}

	medicine, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get medicine")
	}
	return medicine, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}
