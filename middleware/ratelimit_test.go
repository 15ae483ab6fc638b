// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	now := time.Now()
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst was rejected", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request beyond burst was allowed")
	}

	// Other clients have their own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("a different client was rejected")
	}

	// One token refills after a second
	now = now.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("request after refill was rejected")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected with limiting disabled", i+1)
		}
	}
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(2 * limiterIdleTTL)
	rl.Allow("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle client was not swept")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("active client was swept")
	}
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	limited := 0
	rl.OnLimited = func() { limited++ }

	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		w := httptest.NewRecorder()
		handler(w, req)
		codes = append(codes, w.Code)

		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Error("429 response without Retry-After")
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: expected %d, got %d", i+1, want[i], codes[i])
		}
	}
	if limited != 1 {
		t.Errorf("expected OnLimited to fire once, got %d", limited)
	}
}

func TestRateLimiter_ForwardedHeaders(t *testing.T) {
	tests := []struct {
		name        string
		trustProxy  bool
		wantAllowed int
	}{
		// Rotating X-Forwarded-For must not buy a fresh bucket
		{"direct clients", false, 5},
		// Behind a proxy every forwarded address is its own client
		{"trusted proxy", true, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(1, 5)
			rl.TrustProxy = tt.trustProxy
			handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			allowed := 0
			for i := 0; i < 20; i++ {
				req := httptest.NewRequest("POST", "/api/auth/login", nil)
				req.RemoteAddr = "192.0.2.7:5555"
				req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
				req.Header.Set("X-Real-IP", "198.51.100."+strconv.Itoa(i))
				w := httptest.NewRecorder()
				handler(w, req)
				if w.Code == http.StatusOK {
					allowed++
				}
			}

			if allowed != tt.wantAllowed {
				t.Errorf("expected %d allowed requests, got %d", tt.wantAllowed, allowed)
			}
		})
	}
}

func TestRemoteHost(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.7:5555", "192.0.2.7"},
		{"[::1]:8080", "::1"},
		{"unix-socket", "unix-socket"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remoteAddr
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		if got := RemoteHost(req); got != tt.want {
			t.Errorf("RemoteHost(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
