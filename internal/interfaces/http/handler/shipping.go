package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
)

// ServiceabilityChecker quotes couriers for a delivery postcode
type ServiceabilityChecker interface {
	CheckServiceability(ctx context.Context, req shippingapp.ServiceabilityRequest) (*shippingapp.ServiceabilityResponse, error)
}

// ShippingHandler handles courier quotes
type ShippingHandler struct {
	BaseHandler
	shipping ServiceabilityChecker
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shipping ServiceabilityChecker) *ShippingHandler {
	return &ShippingHandler{shipping: shipping}
}

// CheckServiceability godoc
// @ID           checkServiceability
// @Summary      Quote couriers for a postcode
// @Description  Returns the courier list unwrapped, in provider order. pickup_postcode defaults to the warehouse. An empty list means nothing delivers there.
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body shippingapp.ServiceabilityRequest true "Destination and parcel"
// @Success      200 {object} shippingapp.ServiceabilityResponse
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /shiprocket/check-serviceability [post]
func (h *ShippingHandler) CheckServiceability(c *gin.Context) {
	var req shippingapp.ServiceabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.shipping.CheckServiceability(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
