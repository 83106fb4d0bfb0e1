package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeIdempotencyStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{values: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:idem:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func checkoutRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-1")
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"orderNumber":"ORD12345678"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(`{"paymentMethod":"upi"}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(`{"paymentMethod":"upi"}`))
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected handler called once, got %d", calls)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(`{"paymentMethod":"upi"}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(`{"paymentMethod":"cod"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	handler := Idempotency(newFakeIdempotencyStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a key")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	called := false
	handler := Idempotency(newFakeIdempotencyStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("unguarded route must pass through")
	}
}
