package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
)

// CartUseCase is the server-side cart
type CartUseCase interface {
	Get(ctx context.Context, customerID uuid.UUID) (*cartapp.CartResponse, error)
	AddItem(ctx context.Context, customerID uuid.UUID, req cartapp.AddItemRequest) (*cartapp.CartResponse, error)
	UpdateQuantity(ctx context.Context, customerID uuid.UUID, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error)
	RemoveItem(ctx context.Context, customerID uuid.UUID, req cartapp.RemoveItemRequest) (*cartapp.CartResponse, error)
	Clear(ctx context.Context, customerID uuid.UUID) (*cartapp.CartResponse, error)
}

// CartHandler serves the signed-in customer's cart
type CartHandler struct {
	BaseHandler
	carts CartUseCase
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartUseCase) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get godoc
// @ID           getCart
// @Summary      Get the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/get [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// Add godoc
// @ID           addCartItem
// @Summary      Add an item
// @Description  Merges into an existing line for the same product, color and size. The unit price comes from the catalog.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.AddItemRequest true "Item"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INSUFFICIENT_STOCK"
// @Security     BearerAuth
// @Router       /cart/add [post]
func (h *CartHandler) Add(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// Update godoc
// @ID           updateCartItem
// @Summary      Set a line's quantity
// @Description  The quantity is clamped to available stock; zero or less removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.UpdateItemRequest true "Line and quantity"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/update [put]
func (h *CartHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cart, err := h.carts.UpdateQuantity(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// Remove godoc
// @ID           removeCartItem
// @Summary      Remove a line
// @Description  Removing a line that is not in the cart succeeds
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.RemoveItemRequest true "Line"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Security     BearerAuth
// @Router       /cart/remove [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req cartapp.RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @ID           clearCart
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Security     BearerAuth
// @Router       /cart/clear [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	cart, err := h.carts.Clear(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}
