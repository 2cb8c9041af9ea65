package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	config "github.com/mwantia/codingrules/internal/config/server"
	"github.com/mwantia/codingrules/pkg/log"
	"github.com/mwantia/codingrules/pkg/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// RequestID propagates the client's X-Request-ID or generates a UUIDv4. The
// value is echoed in the response header and stored in the gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// AccessLog writes one line per request. Query strings are left out.
func AccessLog(logger log.LoggerService, cfg config.LogAccessConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if cfg.Skip(c.Request.URL.Path) {
			return
		}

		entry := logger.
			With("request_id", c.GetString(requestIDKey)).
			With("status", c.Writer.Status()).
			With("latency_ms", float64(time.Since(start))/float64(time.Millisecond)).
			With("ip", c.ClientIP()).
			With("size", c.Writer.Size())
		if len(c.Errors) > 0 {
			entry = entry.With("error", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("%s %s", c.Request.Method, c.Request.URL.Path)
		case status >= http.StatusBadRequest:
			entry.Warn("%s %s", c.Request.Method, c.Request.URL.Path)
		default:
			entry.Info("%s %s", c.Request.Method, c.Request.URL.Path)
		}
	}
}

// Metrics records every request by its route pattern.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// Recovery turns panics into a 500 response in the API envelope.
func Recovery(logger log.LoggerService) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.With("request_id", c.GetString(requestIDKey)).
			Error("Recovered from panic in %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			NewErrorResponse(ErrorCodeInternal, "internal server error"))
	})
}
