package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
	ordersapp "github.com/storefront/backend/internal/application/order"
)

// AdminOrderUseCase is the back-office view of orders
type AdminOrderUseCase interface {
	AdminList(ctx context.Context, f ordersapp.OrderListFilter) (*ordersapp.OrderListResult, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, req ordersapp.UpdateStatusRequest) (*ordersapp.OrderResponse, error)
	Dashboard(ctx context.Context) (*ordersapp.DashboardResponse, error)
}

// UserDirectory lists accounts for admins
type UserDirectory interface {
	ListUsers(ctx context.Context, f identityapp.UserListFilter) (*identityapp.UserListResult, error)
}

// AdminHandler handles the admin order, dashboard and user endpoints.
// Product administration lives on ProductHandler.
type AdminHandler struct {
	BaseHandler
	orders AdminOrderUseCase
	users  UserDirectory
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(orders AdminOrderUseCase, users UserDirectory) *AdminHandler {
	return &AdminHandler{orders: orders, users: users}
}

// ListOrders godoc
// @ID           adminListOrders
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Param        status   query string false "Order status"
// @Param        search   query string false "Order number, customer name or email"
// @Param        page     query int    false "Page number" default(1)
// @Param        pageSize query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ordersapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var f ordersapp.OrderListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orders.AdminList(c.Request.Context(), f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpdateOrderStatus godoc
// @ID           adminUpdateOrderStatus
// @Summary      Change an order's status
// @Description  Any of the six statuses may be set; awb and pickup date are recorded when given
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        orderId path string                        true "Order ID"
// @Param        request body ordersapp.UpdateStatusRequest true "New status"
// @Success      200 {object} APIResponse[ordersapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{orderId}/status [put]
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "orderId")
	if !ok {
		return
	}
	var req ordersapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orders.AdminUpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Dashboard godoc
// @ID           adminDashboard
// @Summary      Store overview
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[ordersapp.DashboardResponse]
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	result, err := h.orders.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// ListUsers godoc
// @ID           adminListUsers
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Param        search   query string false "Name or email"
// @Param        role     query string false "customer or admin"
// @Param        page     query int    false "Page number" default(1)
// @Param        pageSize query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]identityapp.UserResponse]
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var f identityapp.UserListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.users.ListUsers(c.Request.Context(), f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
