package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterSpendsBurstThenRefills(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should fit the burst", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("expected rejection once the burst is spent")
	}

	now = now.Add(2 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("expected a token after refill")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first client should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("first client should be exhausted")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("second client has its own bucket")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	mw := RateLimit(1, 1)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/profiles", nil)
	req.Header.Set("X-Real-Ip", "200.105.1.1")
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 inside the burst, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the burst, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After hint, got %q", w.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddlewareKeysOnRealIP(t *testing.T) {
	mw := RateLimit(1, 1)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/profiles", nil)
	first.Header.Set("X-Real-Ip", "200.105.2.2")
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/profiles", nil)
	other.Header.Set("X-Real-Ip", "200.105.3.3")
	w = httptest.NewRecorder()
	mw.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Errorf("different IP should not share the bucket, got %d", w.Code)
	}
}
