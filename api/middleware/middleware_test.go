package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockLimiterStore struct {
	counts map[string]int64
}

func (m *mockLimiterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id header")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id = %q, want req-123", got)
	}
}

func TestRecoverer_ConvertsPanicTo500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	store := &mockLimiterStore{}
	policy := NewRateLimitPolicy("import", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions/batch", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transactions/batch", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}

	// a different client has its own window
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/transactions/batch", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", w.Code)
	}
}

func TestRateLimit_DisabledWithoutStore(t *testing.T) {
	policy := NewRateLimitPolicy("import", time.Minute, 1)
	handler := RateLimit(policy, nil, nil)(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 when limiter disabled", w.Code)
		}
	}
}

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("clientIP = %q, want 203.0.113.7", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientIP(req); got != "192.168.0.1" {
		t.Fatalf("clientIP = %q, want 192.168.0.1", got)
	}
}
