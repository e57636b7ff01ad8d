package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// SwaggerProtection hides the docs when disabled and restricts them to
// AllowedIPs (plain IPs or CIDRs) when a list is configured
func SwaggerProtection(cfg config.SwaggerConfig) gin.HandlerFunc {
	var (
		nets []*net.IPNet
		ips  []net.IP
	)
	for _, entry := range cfg.AllowedIPs {
		if strings.Contains(entry, "/") {
			if _, n, err := net.ParseCIDR(entry); err == nil {
				nets = append(nets, n)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			abortWithError(c, http.StatusNotFound, "NOT_FOUND", "API documentation is not available")
			return
		}
		if len(cfg.AllowedIPs) > 0 && !isIPAllowed(net.ParseIP(c.ClientIP()), ips, nets) {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Access to API documentation is restricted")
			return
		}
		c.Next()
	}
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, n := range allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
