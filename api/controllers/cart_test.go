package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medirush/medirush-backend/api/middleware"
	cartsvc "github.com/medirush/medirush-backend/internal/cart"
	pkgerrors "github.com/medirush/medirush-backend/pkg/errors"
	"github.com/medirush/medirush-backend/pkg/pricing"
)

type stubCartService struct {
	cart    *cartsvc.Cart
	err     error
	gotQty  int
	gotMedi uuid.UUID
}

func (s *stubCartService) AddItem(ctx context.Context, userID, medicineID uuid.UUID, deltaQty int) (*cartsvc.Cart, error) {
	s.gotMedi = medicineID
	s.gotQty = deltaQty
	return s.cart, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, userID, medicineID uuid.UUID, quantity int) (*cartsvc.Cart, error) {
	s.gotMedi = medicineID
	s.gotQty = quantity
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) (*cartsvc.Cart, error) {
	s.gotMedi = medicineID
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.Cart, error) {
	return s.cart, s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCartGetSuccess(t *testing.T) {
	svc := &stubCartService{cart: &cartsvc.Cart{
		Items:          []cartsvc.Line{},
		TotalItemCount: 0,
		Pricing:        pricing.Breakdown{},
	}}
	handler := CartGet(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.Cart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCartGetRequiresUser(t *testing.T) {
	handler := CartGet(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemForwardsPayload(t *testing.T) {
	medicineID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.Cart{}}
	handler := CartAddItem(svc, nil)

	body := `{"medicineId":"` + medicineID.String() + `","quantity":2}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotMedi != medicineID {
		t.Fatalf("expected medicine %s, got %s", medicineID, svc.gotMedi)
	}
	if svc.gotQty != 2 {
		t.Fatalf("expected quantity 2, got %d", svc.gotQty)
	}
}

func TestCartAddItemRejectsUnknownFields(t *testing.T) {
	handler := CartAddItem(&stubCartService{cart: &cartsvc.Cart{}}, nil)

	body := `{"medicineId":"` + uuid.NewString() + `","quantity":1,"price":50}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSetQuantityUsesPathParam(t *testing.T) {
	medicineID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.Cart{}}
	handler := CartSetQuantity(svc, nil)

	req := authedRequest(http.MethodPut, "/api/v1/cart/items/"+medicineID.String(), `{"quantity":0}`)
	req = withURLParam(req, "medicineID", medicineID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotMedi != medicineID {
		t.Fatalf("expected medicine %s, got %s", medicineID, svc.gotMedi)
	}
	if svc.gotQty != 0 {
		t.Fatalf("expected quantity 0, got %d", svc.gotQty)
	}
}

func TestCartRemoveItemInvalidQuantityError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")}
	handler := CartRemoveItem(svc, nil)

	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/"+uuid.NewString(), "")
	req = withURLParam(req, "medicineID", uuid.NewString())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
