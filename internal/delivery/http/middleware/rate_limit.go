package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP. The order endpoints sit in
// front of a remote API we do not control, so a misbehaving caller hammering
// refresh must be cut off here rather than passed through.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit rate.Limit
	burst int

	sweepEvery time.Duration
	idleAfter  time.Duration

	cancel context.CancelFunc
}

// NewRateLimiter builds a per-IP limiter. Visitors idle for longer than
// idleAfter are dropped on a sweep every sweepEvery; Shutdown stops the
// sweeper goroutine.
func NewRateLimiter(ctx context.Context, limit rate.Limit, burst int, sweepEvery, idleAfter time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      limit,
		burst:      burst,
		sweepEvery: sweepEvery,
		idleAfter:  idleAfter,
	}
	ctx, rl.cancel = context.WithCancel(ctx)
	go rl.sweepLoop(ctx)
	return rl
}

func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(getClientIP(r)) {
				utils.WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

func (rl *RateLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > rl.idleAfter {
			delete(rl.visitors, ip)
		}
	}
}

// Shutdown stops the background sweeper.
func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}
