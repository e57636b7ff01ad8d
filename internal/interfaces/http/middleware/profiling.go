package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// Profiling tags CPU samples taken while a request runs with its route,
// method and resource so Pyroscope can slice profiles per endpoint
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || isProbePath(route) {
			c.Next()
			return
		}
		telemetry.WithProfileLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			"route", route,
			"method", c.Request.Method,
			"resource", resourceFromRoute(route),
		)
	}
}

// resourceFromRoute returns the first static segment after /api, so
// "/api/admin/orders/:id" yields "admin"
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		return part
	}
	return "root"
}
