package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// MsgTooManyAttempts is the notice shown when the auth limiter trips
const MsgTooManyAttempts = "Too many attempts, please try again later."

// RateLimiter allows limit events per key in fixed windows. A key's window
// opens with its first event; the key then has limit tokens, which do not
// refill until the window closes.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*visitor
	limit   int
	window  time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

type visitor struct {
	// limiter has a zero refill rate, so it only spends its burst.
	limiter  *rate.Limiter
	resetsAt time.Time
}

// NewRateLimiter creates a limiter and starts its cleanup loop.
// Call Close to stop it.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*visitor),
		limit:   limit,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Limit returns the number of events allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Allow spends one event of key's current window
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	return rl.visitor(key, now).limiter.AllowN(now, 1)
}

// Remaining returns the events left in key's current window
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.clients[key]
	if !ok || !now.Before(v.resetsAt) {
		return rl.limit
	}
	return int(math.Max(0, math.Floor(v.limiter.TokensAt(now))))
}

// ResetIn returns how long until key's window closes; zero without one.
func (rl *RateLimiter) ResetIn(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.clients[key]
	if !ok {
		return 0
	}
	return max(0, v.resetsAt.Sub(rl.now()))
}

// Close stops the cleanup loop
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) visitor(key string, now time.Time) *visitor {
	v, ok := rl.clients[key]
	if !ok || !now.Before(v.resetsAt) {
		v = &visitor{
			limiter:  rate.NewLimiter(0, rl.limit),
			resetsAt: now.Add(rl.window),
		}
		rl.clients[key] = v
	}
	return v
}

// cleanup drops keys whose window has closed; they would start afresh anyway.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, v := range rl.clients {
		if !now.Before(v.resetsAt) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit limits requests per client IP. Rejected requests are handed to
// onLimit, which renders the 429 page.
func RateLimit(limiter *RateLimiter, onLimit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		allowed := limiter.Allow(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(math.Ceil(limiter.ResetIn(key).Seconds()))))

		if !allowed {
			if onLimit == nil {
				c.AbortWithStatus(http.StatusTooManyRequests)
				return
			}
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimit limits the login and registration pages and their
// submissions per client IP, sharing one budget. A rejected submission is
// sent back to the form with a notice; a rejected page view goes to onLimit,
// which renders the 429 page and shows that notice.
func AuthRateLimit(limiter *RateLimiter, notices *flash.Store, onLimit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow("auth:" + c.ClientIP()) {
			c.Next()
			return
		}
		if !isSafeMethod(c.Request.Method) {
			notices.Redirect(c, c.Request.URL.Path, flash.Error(MsgTooManyAttempts))
			return
		}
		if onLimit == nil {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		onLimit(c)
		c.Abort()
	}
}
