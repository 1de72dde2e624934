package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucketAllow(t *testing.T) {
	bucket := newTokenBucket(3, 1.0)

	for i := 0; i < 3; i++ {
		if !bucket.allow() {
			t.Fatalf("request %d denied; want allowed (burst capacity 3)", i+1)
		}
	}
	if bucket.allow() {
		t.Error("request 4 allowed; want denied (bucket empty)")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	// 100 tokens/sec so the refill is observable without a long sleep
	bucket := newTokenBucket(1, 100.0)

	if !bucket.allow() {
		t.Fatal("first request denied; want allowed")
	}
	if bucket.allow() {
		t.Fatal("second request allowed; want denied")
	}

	time.Sleep(50 * time.Millisecond)
	if !bucket.allow() {
		t.Error("request after refill denied; want allowed")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 60, BurstSize: 1})

	if !rl.Allow("10.0.0.1") {
		t.Error("first request from 10.0.0.1 denied")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second request from 10.0.0.1 allowed; want denied")
	}
	// Different IP has its own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("first request from 10.0.0.2 denied")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 60, BurstSize: 2})
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/segment", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d; want %d", i+1, w.Code, http.StatusOK)
		}
		if w.Header().Get("X-RateLimit-Limit") != "60" {
			t.Errorf("X-RateLimit-Limit = %q; want %q", w.Header().Get("X-RateLimit-Limit"), "60")
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/segment", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("exhausted bucket status = %d; want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing on 429 response")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		want       string
	}{
		{"remote addr", "203.0.113.5:443", "", "", "203.0.113.5"},
		{"forwarded single", "10.0.0.1:80", "198.51.100.7", "", "198.51.100.7"},
		{"forwarded chain", "10.0.0.1:80", "198.51.100.7, 10.0.0.2", "", "198.51.100.7"},
		{"forwarded invalid falls through", "203.0.113.5:443", "not-an-ip", "", "203.0.113.5"},
		{"real ip", "10.0.0.1:80", "", "198.51.100.9", "198.51.100.9"},
		{"ipv6 remote", "[2001:db8::1]:443", "", "", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q; want %q", got, tt.want)
			}
		})
	}
}
