package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
)

// WishlistUseCase manages saved products
type WishlistUseCase interface {
	Get(ctx context.Context, customerID uuid.UUID) (*wishlistapp.Response, error)
	Add(ctx context.Context, customerID, productID uuid.UUID) (*wishlistapp.Response, error)
	Remove(ctx context.Context, customerID, productID uuid.UUID) (*wishlistapp.Response, error)
}

// WishlistHandler handles the wishlist endpoints
type WishlistHandler struct {
	BaseHandler
	wishlist WishlistUseCase
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlist WishlistUseCase) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

// Get godoc
// @ID           getWishlist
// @Summary      Get my wishlist
// @Tags         wishlist
// @Produce      json
// @Success      200 {object} APIResponse[wishlistapp.Response]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist [get]
func (h *WishlistHandler) Get(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	result, err := h.wishlist.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Add godoc
// @ID           addWishlistItem
// @Summary      Save a product
// @Description  Adding a product already saved is a no-op
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        request body wishlistapp.AddRequest true "Product"
// @Success      200 {object} APIResponse[wishlistapp.Response]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "WISHLIST_FULL"
// @Security     BearerAuth
// @Router       /wishlist/add [post]
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req wishlistapp.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.wishlist.Add(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Remove godoc
// @ID           removeWishlistItem
// @Summary      Unsave a product
// @Tags         wishlist
// @Produce      json
// @Param        productId path string true "Product ID"
// @Success      200 {object} APIResponse[wishlistapp.Response]
// @Security     BearerAuth
// @Router       /wishlist/remove/{productId} [delete]
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}

	result, err := h.wishlist.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
