package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestStripPort(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"127.0.0.1:8080", "127.0.0.1"},
		{"192.168.1.1", "192.168.1.1"},
		{"[::1]:8080", "::1"},
		{"[::1]", "::1"},
	}

	for _, tt := range tests {
		if got := stripPort(tt.input); got != tt.expected {
			t.Errorf("stripPort(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"X-Forwarded-For", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:1234", "10.0.0.1"},
		{"X-Forwarded-For single", map[string]string{"X-Forwarded-For": "  10.0.0.9  "}, "1.1.1.1:1234", "10.0.0.9"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:1234", "10.0.0.3"},
		{"Forwarded wins over real IP", map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "10.0.0.3"}, "1.1.1.1:1234", "10.0.0.1"},
		{"RemoteAddr", nil, "1.1.1.1:1234", "1.1.1.1"},
		{"RemoteAddr IPv6", nil, "[2001:db8::1]:443", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.expected {
				t.Errorf("getClientIP() = %q; want %q", got, tt.expected)
			}
		})
	}
}

// newManualRateLimiter returns a limiter whose clock is driven by the test.
func newManualRateLimiter(t *testing.T, rate int) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerWindow: rate, Window: time.Minute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, now := newManualRateLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d denied", i)
		}
	}
	if rl.Allow("a") {
		t.Error("fourth request in the window allowed")
	}
	if !rl.Allow("b") {
		t.Error("clients must be limited independently")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("request in a new window denied")
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl, now := newManualRateLimiter(t, 1)
	rl.Allow("idle")
	*now = now.Add(90 * time.Second)
	rl.Allow("recent")

	*now = now.Add(45 * time.Second)
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["idle"]; ok {
		t.Error("idle client was not evicted")
	}
	if _, ok := rl.clients["recent"]; !ok {
		t.Error("recent client was evicted")
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	defer rl.Stop()

	def := DefaultRateLimiterConfig()
	if rl.rate != def.RequestsPerWindow || rl.window != def.Window || rl.cleanup != def.CleanupInterval {
		t.Errorf("defaults not applied: rate=%d window=%v cleanup=%v", rl.rate, rl.window, rl.cleanup)
	}
	if rl.retryAfter() != 60 {
		t.Errorf("retryAfter() = %d, want 60", rl.retryAfter())
	}
	rl.Stop()
}
