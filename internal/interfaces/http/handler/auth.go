package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthUseCase is the account flow behind the auth endpoints
type AuthUseCase interface {
	RequestOTP(ctx context.Context, req identityapp.SignupRequest) (*identityapp.RequestOTPResult, error)
	VerifyOTP(ctx context.Context, req identityapp.VerifyOTPRequest) (*identityapp.LoginResult, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResult, error)
	Logout(ctx context.Context, jti string, remaining time.Duration) error
}

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	BaseHandler
	auth AuthUseCase
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RequestOTP godoc
// @ID           requestSignupOTP
// @Summary      Start signup
// @Description  Emails a 6-digit code valid for 10 minutes. The account is created on verification.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.SignupRequest true "Signup details"
// @Success      200 {object} APIResponse[identityapp.RequestOTPResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/signup/request-otp [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req identityapp.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.auth.RequestOTP(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// VerifyOTP godoc
// @ID           verifySignupOTP
// @Summary      Complete signup
// @Description  Verifies the emailed code, creates the account and signs the user in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.VerifyOTPRequest true "Email and code"
// @Success      201 {object} APIResponse[identityapp.LoginResult]
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/signup/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req identityapp.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.auth.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @ID           login
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Success      200 {object} APIResponse[identityapp.LoginResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      Sign out
// @Description  Revokes the presented token until it would have expired
// @Tags         auth
// @Produce      json
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims.ID, claims.GetRemainingTTL()); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, nil)
}
