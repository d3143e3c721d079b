package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeCounterStore struct {
	counts map[string]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: map[string]int64{}}
}

func (f *fakeCounterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func limitedHandler(t *testing.T, policy AuthRateLimitPolicy, store *fakeCounterStore, inner http.HandlerFunc) http.Handler {
	t.Helper()
	return AuthRateLimit(policy, store, nil)(inner)
}

func TestAuthRateLimitBlocksIPOverLimit(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)

	var served int
	handler := limitedHandler(t, policy, store, func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i, rec.Code)
		}
	}
	if served != 2 {
		t.Fatalf("expected 2 served requests, got %d", served)
	}
}

func TestAuthRateLimitCountsEmailsAcrossIPs(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)

	handler := limitedHandler(t, policy, store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"Ann@Example.com"}`))
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:4000"); code != http.StatusOK {
		t.Fatalf("first attempt: expected 200, got %d", code)
	}
	// same normalized email from another IP shares the counter
	if code := send("10.0.0.2:4000"); code != http.StatusTooManyRequests {
		t.Fatalf("second attempt: expected 429, got %d", code)
	}

	for key := range store.counts {
		if strings.Contains(key, "example.com") || strings.Contains(key, "Ann") {
			t.Fatalf("raw email leaked into counter key %q", key)
		}
	}
}

func TestAuthRateLimitRestoresBodyForHandler(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewAuthRateLimitPolicy("register", time.Minute, 0, 5)

	var seen string
	handler := limitedHandler(t, policy, store, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("handler read failed: %v", err)
		}
		seen = string(body)
		w.WriteHeader(http.StatusOK)
	})

	payload := `{"email":"ben@example.com","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(payload))
	req.RemoteAddr = "10.0.0.1:4000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != payload {
		t.Fatalf("body not restored: %q", seen)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeCounterStore()
	policy := NewAuthRateLimitPolicy("login", 0, 10, 10)

	handler := limitedHandler(t, policy, store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("disabled policy must not touch the store: %v", store.counts)
	}
}
