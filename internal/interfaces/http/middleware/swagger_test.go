package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.SwaggerConfig
		remoteAddr string
		status     int
	}{
		{"disabled", config.SwaggerConfig{Enabled: false}, "10.0.0.1:1234", http.StatusNotFound},
		{"open", config.SwaggerConfig{Enabled: true}, "10.0.0.1:1234", http.StatusOK},
		{"exact ip allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.1:1234", http.StatusOK},
		{"cidr allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "10.9.9.9:1234", http.StatusOK},
		{"outside list", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "10.0.0.1:1234", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/swagger/*any", SwaggerProtection(tt.cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			req.RemoteAddr = tt.remoteAddr
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
