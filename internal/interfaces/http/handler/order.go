package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ordersapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderUseCase is the customer-facing order lifecycle
type OrderUseCase interface {
	CreateOrder(ctx context.Context, caller *ordersapp.Caller, req ordersapp.CreateOrderRequest) (*ordersapp.CreateOrderResponse, error)
	ConfirmOrder(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*ordersapp.OrderResponse, error)
	ConfirmPayment(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*ordersapp.OrderResponse, error)
	GetOrders(ctx context.Context, caller *ordersapp.Caller, f ordersapp.OrderListFilter) (*ordersapp.OrderListResult, error)
	GetOrder(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*ordersapp.OrderResponse, error)
	GetOrderEntity(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID) (*order.Order, error)
	CancelOrder(ctx context.Context, caller *ordersapp.Caller, orderID uuid.UUID, reason string) (*ordersapp.OrderResponse, error)
}

// InvoiceRenderer renders a paid order as a PDF
type InvoiceRenderer interface {
	Invoice(ctx context.Context, o *order.Order) ([]byte, error)
}

// OrderHandler handles checkout and order history endpoints. Guests may
// place and confirm orders; the order id is their capability.
type OrderHandler struct {
	BaseHandler
	orders   OrderUseCase
	invoices InvoiceRenderer
}

// NewOrderHandler creates a new OrderHandler. invoices may be nil, which
// turns the invoice endpoint off.
func NewOrderHandler(orders OrderUseCase, invoices InvoiceRenderer) *OrderHandler {
	return &OrderHandler{orders: orders, invoices: invoices}
}

// Create godoc
// @ID           createOrder
// @Summary      Place an order
// @Description  Re-prices the items, checks the total (0.01 tolerance) and the courier rate, stores a Pending order and opens a hosted payment session
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body ordersapp.CreateOrderRequest true "Order"
// @Success      201 {object} APIResponse[ordersapp.CreateOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INSUFFICIENT_STOCK or NO_SERVICEABLE_COURIER"
// @Failure      502 {object} ErrorResponse
// @Router       /orders/create-order [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req ordersapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orders.CreateOrder(c.Request.Context(), caller(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// Confirm godoc
// @ID           confirmOrder
// @Summary      Confirm payment after in-page checkout
// @Description  Asks the gateway for the payment status. Idempotent.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body ordersapp.ConfirmRequest true "Order"
// @Success      200 {object} APIResponse[ordersapp.OrderResponse]
// @Failure      402 {object} ErrorResponse "PAYMENT_ERROR"
// @Failure      404 {object} ErrorResponse
// @Router       /orders/confirm-order [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.confirm(c, h.orders.ConfirmOrder)
}

// ConfirmPayment godoc
// @ID           confirmOrderPayment
// @Summary      Confirm payment after a gateway redirect
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body ordersapp.ConfirmRequest true "Order"
// @Success      200 {object} APIResponse[ordersapp.OrderResponse]
// @Failure      402 {object} ErrorResponse "PAYMENT_ERROR"
// @Failure      404 {object} ErrorResponse
// @Router       /orders/confirm-payment [post]
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	h.confirm(c, h.orders.ConfirmPayment)
}

func (h *OrderHandler) confirm(c *gin.Context, fn func(context.Context, *ordersapp.Caller, uuid.UUID) (*ordersapp.OrderResponse, error)) {
	var req ordersapp.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := fn(c.Request.Context(), caller(c), req.OrderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// List godoc
// @ID           listMyOrders
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        status   query string false "Order status"
// @Param        page     query int    false "Page number" default(1)
// @Param        pageSize query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ordersapp.OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/get-orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var f ordersapp.OrderListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orders.GetOrders(c.Request.Context(), caller(c), f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @ID           getOrder
// @Summary      Get an order
// @Description  Owners and admins only; other customers get NOT_FOUND
// @Tags         orders
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Success      200 {object} APIResponse[ordersapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /orders/get/{orderId} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "orderId")
	if !ok {
		return
	}

	result, err := h.orders.GetOrder(c.Request.Context(), caller(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel an order
// @Description  Allowed while Pending or Processing. Paid orders are restocked.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderId path string                       true "Order ID"
// @Param        request body ordersapp.CancelOrderRequest true "Reason"
// @Success      200 {object} APIResponse[ordersapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INVALID_STATE"
// @Router       /orders/cancel-order/{orderId} [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "orderId")
	if !ok {
		return
	}
	var req ordersapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orders.CancelOrder(c.Request.Context(), caller(c), id, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Invoice godoc
// @ID           getOrderInvoice
// @Summary      Download the invoice
// @Description  PDF invoice for a paid order
// @Tags         orders
// @Produce      application/pdf
// @Param        orderId path string true "Order ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INVALID_STATE when unpaid"
// @Router       /orders/invoice/{orderId} [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	if h.invoices == nil {
		h.Error(c, http.StatusNotFound, "NOT_FOUND", "Invoices are not available")
		return
	}
	id, ok := h.pathUUID(c, "orderId")
	if !ok {
		return
	}

	o, err := h.orders.GetOrderEntity(c.Request.Context(), caller(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	pdf, err := h.invoices.Invoice(c.Request.Context(), o)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-`+o.OrderNumber+`.pdf"`)
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
