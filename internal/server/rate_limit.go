package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/strassen/pkg/models"
)

// RateLimiter limits the number of requests each client (identified by IP)
// may make within a fixed window.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientWindow
	rate     int
	window   time.Duration
	cleanup  time.Duration
	now      func() time.Time
	stopOnce sync.Once
	stopChan chan struct{}
}

// clientWindow tracks the requests left in the current window of one client.
type clientWindow struct {
	remaining int
	start     time.Time
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	// RequestsPerWindow is the number of requests allowed per client and window.
	// Default: 60
	RequestsPerWindow int
	// Window is the length of a rate-limit window.
	// Default: 1 minute
	Window time.Duration
	// CleanupInterval is how often idle client entries are dropped.
	// Default: 5 minutes
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig returns the default rate limiter configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerWindow: 60,
		Window:            time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if config.RequestsPerWindow <= 0 {
		config.RequestsPerWindow = def.RequestsPerWindow
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		clients:  make(map[string]*clientWindow),
		rate:     config.RequestsPerWindow,
		window:   config.Window,
		cleanup:  config.CleanupInterval,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether a request from clientIP is allowed, consuming one
// request of its current window.
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.start) >= rl.window {
		rl.clients[clientIP] = &clientWindow{remaining: rl.rate - 1, start: now}
		return true
	}
	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

// retryAfter returns the whole seconds until a new window starts.
func (rl *RateLimiter) retryAfter() int {
	return int((rl.window + time.Second - 1) / time.Second)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopChan:
			return
		}
	}
}

// evictIdle drops clients whose window ended more than one window ago.
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, c := range rl.clients {
		if now.Sub(c.start) > 2*rl.window {
			delete(rl.clients, ip)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// RateLimitMiddleware answers 429 Too Many Requests once a client has used
// its window.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{
				Error:   http.StatusText(http.StatusTooManyRequests),
				Message: "Rate limit exceeded. Please try again later.",
			})
			return
		}
		next(w, r)
	}
}

// getClientIP extracts the client IP address from the request, in order of
// preference:
//  1. X-Forwarded-For header (first IP in the comma-separated list)
//  2. X-Real-IP header
//  3. RemoteAddr (with port stripped)
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return stripPort(r.RemoteAddr)
}

// stripPort removes the port from an IPv4 or IPv6 address.
//
// Examples:
//   - "127.0.0.1:8080" -> "127.0.0.1"
//   - "[::1]:8080" -> "::1"
//   - "192.168.1.1" -> "192.168.1.1" (no port)
func stripPort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
