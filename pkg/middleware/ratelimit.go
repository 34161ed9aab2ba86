package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/staynest/service-booking/pkg/response"
)

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// ClientRateLimiter keeps a token bucket per client key. Buckets idle for
// longer than the idle TTL are evicted.
type ClientRateLimiter struct {
	mu    sync.Mutex
	store *gocache.Cache
	r     rate.Limit
	b     int
}

// NewClientRateLimiter creates a new ClientRateLimiter.
func NewClientRateLimiter(r rate.Limit, b int, idle time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{store: gocache.New(idle, idle), r: r, b: b}
}

// Limiter returns the bucket for key, creating it on first use. Each call
// restarts the bucket's idle timer.
func (l *ClientRateLimiter) Limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := l.store.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.r, l.b)
	}
	l.store.SetDefault(key, limiter)
	return limiter
}

// RateLimit throttles requests per authenticated user, falling back to the
// client IP for anonymous callers. A non-positive rate disables limiting.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	if r <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewClientRateLimiter(r, b, limiterIdleTTL)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = "user:" + strconv.FormatInt(userID, 10)
		}
		if !limiter.Limiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorBody{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
