package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request through otelgin. Health probes
// are not traced. With telemetry disabled the global no-op provider is used.
func Tracing(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	opts = append(opts, otelgin.WithFilter(func(r *http.Request) bool {
		return !isProbePath(r.URL.Path)
	}))
	return otelgin.Middleware(serviceName, opts...)
}

func isProbePath(path string) bool {
	switch path {
	case "/health", "/healthz", "/ready":
		return true
	}
	return false
}

// SpanEnricher adds the caller identity to the active span and marks 5xx
// responses as errors. Place it after the JWT middleware.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if id := c.GetString(logger.GinRequestIDKey); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if id := c.GetString(JWTUserIDKey); id != "" {
			span.SetAttributes(attribute.String("user_id", id))
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
