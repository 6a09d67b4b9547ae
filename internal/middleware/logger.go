package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/brokerfees/internal/logger"
)

// RequestLogger logs method, path, status, latency and request ID of every
// request once it has been handled. Responses with status 500 or above are
// logged at error level.
//
// Returns:
//   - gin.HandlerFunc: The middleware to register with router.Use.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	request_id=123e4567-e89b-12d3-a456-426614174000 method=POST path=/api/v1/tables/validate status=200 latency_ms=3
func RequestLogger() gin.HandlerFunc {
	log := logger.With("http")
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		rid, _ := c.Get(RequestIDKey)

		ev := log.Info()
		if status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int64("latency_ms", latency.Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// DefaultRateLimit is the number of requests per client IP per window.
const DefaultRateLimit = 60

var errRateLimited = errors.New("rate limit exceeded")

// client represents a rate-limited client with request count and last seen timestamp.
type client struct {
	lastSeen time.Time
	count    int
}

// In-memory store for rate limiting.
// NOTE: In production, consider Redis or another distributed store for multi-instance deployments.
var (
	clients         = make(map[string]*client)
	window          = time.Minute
	limit           = DefaultRateLimit
	rateLimiterLock sync.Mutex
)

// SetRateLimit changes the number of requests allowed per client IP per
// minute. Values below 1 restore DefaultRateLimit.
func SetRateLimit(n int) {
	rateLimiterLock.Lock()
	defer rateLimiterLock.Unlock()
	if n < 1 {
		n = DefaultRateLimit
	}
	limit = n
}

// RateLimiter limits the number of requests per client IP.
//
// Behavior:
//   - Allows up to `limit` requests per `window` (default: 60 requests per 1 minute).
//   - Identifies clients by their IP address.
//   - If limit exceeded, returns HTTP 429 with a dto.ErrorResponse.
//
// Returns:
//   - gin.HandlerFunc: The middleware to register with router.Use.
//
// Usage:
//
//	middleware.SetRateLimit(cfg.Server.RateLimitPerMinute)
//	router.Use(middleware.RateLimiter())
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rateLimiterLock.Lock()
		cl, ok := clients[ip]
		if !ok || now.Sub(cl.lastSeen) > window {
			cl = &client{lastSeen: now, count: 1}
			clients[ip] = cl
		} else {
			cl.count++
			cl.lastSeen = now
		}
		exceeded := cl.count > limit
		rateLimiterLock.Unlock()

		if exceeded {
			AbortWithError(c, http.StatusTooManyRequests, "Too many requests", errRateLimited)
			return
		}

		c.Next()
	}
}
