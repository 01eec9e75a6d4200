package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kabir-fx/abhiraksha/internal/common"
	"github.com/kabir-fx/abhiraksha/internal/metrics"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID adds a unique request ID to each request and its context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter returns nil when rps is not positive, which disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl != nil && !rl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// AccessLog records one line per request and feeds the HTTP metrics.
func AccessLog(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), elapsed)

		log := common.LoggerFromContext(c.Request.Context(), logger)
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"elapsed_ms", elapsed.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("http.request", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("http.request", attrs...)
		default:
			log.Info("http.request", attrs...)
		}
	}
}

// Recovery turns panics into a 500 without exposing the panic value.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		common.LoggerFromContext(c.Request.Context(), logger).Error("http.panic",
			"panic", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
