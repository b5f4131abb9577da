package middleware

import (
	"net/http"
	"sync"
	"time"

	"aviachat/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// clientLimiters tracks one token bucket per caller IP.
type clientLimiters struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

var limiters = &clientLimiters{buckets: make(map[string]*rate.Limiter)}

func requestsPerMinute() int {
	if n := config.AppConfig.MaxRequestsPerMin; n > 0 {
		return n
	}
	return 100
}

func (cl *clientLimiters) limiterFor(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if lim, ok := cl.buckets[ip]; ok {
		return lim
	}
	perMin := requestsPerMinute()
	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
	cl.buckets[ip] = lim
	return lim
}

// RateLimitMiddleware rejects callers that exceed the configured per-IP
// request rate with a 429.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !limiters.limiterFor(ip).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
