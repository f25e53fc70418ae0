package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

var (
	limiters   = map[string]*ipLimiter{}
	limitersMu sync.Mutex
)

// RateLimit applies a per-IP token bucket allowing perMinute requests.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute < 1 {
		perMinute = 1
	}
	r := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute/2 + 1

	return func(c *gin.Context) {
		if !getLimiter(c.ClientIP(), r, burst).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}

func getLimiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	now := time.Now()
	for k, l := range limiters {
		if l.expires.Before(now) {
			delete(limiters, k)
		}
	}

	l, ok := limiters[key]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(limit, burst)}
		limiters[key] = l
	}
	l.expires = now.Add(5 * time.Minute)
	return l.limiter
}
