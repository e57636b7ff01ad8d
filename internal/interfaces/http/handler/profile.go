package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
)

// ProfileUseCase reads and edits the signed-in user's account
type ProfileUseCase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.UserResponse, error)
}

// ProfileHandler handles the account endpoints
type ProfileHandler struct {
	BaseHandler
	users ProfileUseCase
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(users ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Get godoc
// @ID           getProfile
// @Summary      Get my profile
// @Tags         profile
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	result, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Update godoc
// @ID           updateProfile
// @Summary      Update my profile
// @Description  Replaces name, phone and the saved address book
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateProfileRequest true "Profile"
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
