package middleware

import (
	"sync"
	"time"

	"github.com/yourusername/blaze/pkg/blaze/core"
)

// RateLimit returns a middleware enforcing a per-key token-bucket rate limit.
// Grounded on bolt/middleware/ratelimit.go's tokenBucket/limiterStore pair,
// kept nearly verbatim (the algorithm itself is domain-agnostic); keyFunc
// replaces bolt's X-Forwarded-For/X-Real-IP header sniffing with direct use
// of the already-parsed RemoteAddr field (§3), since this engine's Request
// always carries the real peer address from the accepted connection rather
// than relying on proxy-set headers a client could forge.
func RateLimit(requestsPerSecond float64, burst int) core.Middleware {
	store := newLimiterStore(requestsPerSecond, burst, time.Minute, 5*time.Minute)
	go store.cleanup()

	return func(ctx *core.Context, next core.Handler, cancel <-chan struct{}) error {
		key := ctx.Request.RemoteAddr
		if key == "" {
			key = "unknown"
		}
		if !store.getLimiter(key).allow() {
			ctx.Response.Status = 429
			ctx.Response.Reason = "Too Many Requests"
			ctx.Response.Body = []byte("rate limit exceeded")
			ctx.Response.Stream = nil
			return nil
		}
		return next(ctx, cancel)
	}
}

type limiterStore struct {
	limiters        sync.Map
	rate            float64
	burst           int
	cleanupInterval time.Duration
	maxAge          time.Duration
}

func newLimiterStore(rate float64, burst int, cleanupInterval, maxAge time.Duration) *limiterStore {
	return &limiterStore{rate: rate, burst: burst, cleanupInterval: cleanupInterval, maxAge: maxAge}
}

type limiterEntry struct {
	limiter    *tokenBucket
	lastAccess time.Time
	mu         sync.Mutex
}

func (ls *limiterStore) getLimiter(key string) *tokenBucket {
	if entry, ok := ls.limiters.Load(key); ok {
		e := entry.(*limiterEntry)
		e.mu.Lock()
		e.lastAccess = time.Now()
		e.mu.Unlock()
		return e.limiter
	}

	entry := &limiterEntry{
		limiter:    newTokenBucket(ls.rate, ls.burst),
		lastAccess: time.Now(),
	}
	actual, loaded := ls.limiters.LoadOrStore(key, entry)
	if loaded {
		return actual.(*limiterEntry).limiter
	}
	return entry.limiter
}

func (ls *limiterStore) cleanup() {
	ticker := time.NewTicker(ls.cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		ls.limiters.Range(func(key, value any) bool {
			entry := value.(*limiterEntry)
			entry.mu.Lock()
			age := now.Sub(entry.lastAccess)
			entry.mu.Unlock()
			if age > ls.maxAge {
				ls.limiters.Delete(key)
			}
			return true
		})
	}
}

// tokenBucket is a classic token-bucket limiter: tokens refill continuously
// at rate per second up to burst capacity, and one token is consumed per
// allowed request.
type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}
