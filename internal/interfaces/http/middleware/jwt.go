package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = logger.GinUserIDKey
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	// TokenQueryParam carries the token for websocket upgrades, where
	// browsers cannot set headers.
	TokenQueryParam = "token"
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional; revoked tokens are rejected when set
	TokenBlacklist auth.TokenBlacklist
	// AllowQueryToken accepts ?token= when no Authorization header is sent
	AllowQueryToken bool
	// Optional lets unauthenticated requests through as guests. A token
	// that is present but invalid is still rejected.
	Optional bool
	Logger   *zap.Logger
}

// JWTAuthMiddleware requires a valid bearer token
func JWTAuthMiddleware(jwtService *auth.JWTService, blacklist auth.TokenBlacklist) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	})
}

// OptionalJWTAuthMiddleware authenticates when a token is present and lets
// guests through otherwise
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService, blacklist auth.TokenBlacklist) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Optional:       true,
	})
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		tokenString, err := extractToken(c, cfg.AllowQueryToken)
		if err != nil {
			if cfg.Optional && errors.Is(err, errNoToken) {
				c.Next()
				return
			}
			handleAuthError(c, cfg, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		if cfg.TokenBlacklist != nil && claims.ID != "" {
			revoked, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// fail open: a blacklist outage must not log everyone out
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

var errNoToken = errors.New("no token")

func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		if allowQuery {
			if token := c.Query(TokenQueryParam); token != "" {
				return token, nil
			}
		}
		return "", errNoToken
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	cfg.Logger.Debug("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		message = "Session expired, please sign in again"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		message = "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Invalid token"
	}
	abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// RequireAdmin rejects authenticated non-admin callers. Must run after
// JWTAuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !claims.IsAdmin() {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user id, or uuid.Nil and false
// for guests
func GetJWTUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IsAdmin reports whether the caller holds the admin role
func IsAdmin(c *gin.Context) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.IsAdmin()
}
