package httpapi

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// empireIDKey is the gin context key holding the authenticated empire ID
const empireIDKey = "empireID"

// EmpireAuth resolves the calling empire from the X-Empire-ID header. There
// is no credential check; callers are trusted infrastructure.
func EmpireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Empire-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    string(shared.CodeInvalidRequest),
				"message": "missing X-Empire-ID header",
			})
			return
		}

		id, err := strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"code":    string(shared.CodeInvalidRequest),
				"message": "invalid X-Empire-ID header",
			})
			return
		}

		empireID, err := shared.NewEmpireID(id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"code":    string(shared.CodeInvalidRequest),
				"message": err.Error(),
			})
			return
		}

		c.Set(empireIDKey, empireID)
		c.Next()
	}
}

// empireFromContext returns the empire ID set by EmpireAuth
func empireFromContext(c *gin.Context) shared.EmpireID {
	return c.MustGet(empireIDKey).(shared.EmpireID)
}

// RateLimiter throttles requests per empire using a token bucket per caller
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a per-empire rate limiter
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (r *RateLimiter) limiterFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[key] = l
	}
	return l
}

// Middleware rejects requests exceeding the per-empire rate with 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Empire-ID")
		if key == "" {
			key = c.ClientIP()
		}

		if !r.limiterFor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"code":    string(shared.CodeInvalidRequest),
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
