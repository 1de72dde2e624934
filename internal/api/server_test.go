package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetupRoutes(t *testing.T) {
	setupTestServer(t)
	mux := setupRoutes()

	tests := []struct {
		method   string
		path     string
		wantCode int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/segment", http.StatusMethodNotAllowed},
		{http.MethodGet, "/dictionaries", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != tt.wantCode {
			t.Errorf("%s %s: status = %d; want %d", tt.method, tt.path, w.Code, tt.wantCode)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Generated when absent
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing; want generated UUID")
	}

	// Client-supplied ID preserved
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "client-id-123" {
		t.Errorf("X-Request-ID = %q; want %q", got, "client-id-123")
	}
}

func TestBuildHandlerChain(t *testing.T) {
	setupTestServer(t)

	handler := buildHandler(Config{
		Auth:              AuthConfig{Enabled: true, APIKey: "test-key-0123456789abcdef"},
		RateLimitRequests: 600,
		RateLimitBurst:    100,
	})

	// Public endpoint passes without a key, with rate limit headers set
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("healthz status = %d; want %d", w.Code, http.StatusOK)
	}
	if w.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("X-RateLimit-Limit header missing")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	// Protected endpoint requires the key
	req = httptest.NewRequest(http.MethodGet, "/dictionaries", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d; want %d", w.Code, http.StatusUnauthorized)
	}
}
