package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	catalogsvc "github.com/medirush/medirush-backend/internal/catalog"
	"github.com/medirush/medirush-backend/pkg/db/models"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
)

type stubCatalogService struct {
	result     *catalogsvc.ListResult
	medicine   *models.Medicine
	categories []string
	err        error
	gotParams  catalogsvc.ListParams
}

func (s *stubCatalogService) List(ctx context.Context, params catalogsvc.ListParams) (*catalogsvc.ListResult, error) {
	s.gotParams = params
	return s.result, s.err
}

func (s *stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	return s.medicine, s.err
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.categories, s.err
}

func TestMedicinesListForwardsFilters(t *testing.T) {
	svc := &stubCatalogService{result: &catalogsvc.ListResult{Items: []models.Medicine{}}}
	handler := MedicinesList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines?category=fever&search=para&limit=10", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotParams.Category != "fever" || svc.gotParams.Search != "para" || svc.gotParams.Limit != 10 {
		t.Fatalf("unexpected params %+v", svc.gotParams)
	}
}

func TestMedicinesListRejectsOversizedLimit(t *testing.T) {
	handler := MedicinesList(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines?limit=5000", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMedicineGetSuccess(t *testing.T) {
	medicine := &models.Medicine{ID: uuid.New(), Name: "Paracetamol 500mg", Price: 30}
	handler := MedicineGet(&stubCatalogService{medicine: medicine}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/"+medicine.ID.String(), nil)
	req = withURLParam(req, "id", medicine.ID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data models.Medicine `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != medicine.ID {
		t.Fatalf("unexpected medicine id %s", envelope.Data.ID)
	}
}

func TestMedicineGetNotFound(t *testing.T) {
	handler := MedicineGet(&stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")}, nil)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/"+id, nil)
	req = withURLParam(req, "id", id)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestMedicineGetInvalidID(t *testing.T) {
	handler := MedicineGet(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/not-a-uuid", nil)
	req = withURLParam(req, "id", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMedicineCategories(t *testing.T) {
	handler := MedicineCategories(&stubCatalogService{categories: []string{"fever", "first-aid"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/categories", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(envelope.Data.Categories))
	}
}
