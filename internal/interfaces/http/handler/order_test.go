package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	ordersapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderRouter(h *OrderHandler, mw ...gin.HandlerFunc) *gin.Engine {
	r := newTestRouter(mw...)
	g := r.Group("/orders")
	g.POST("/create-order", h.Create)
	g.POST("/confirm-order", h.Confirm)
	g.POST("/confirm-payment", h.ConfirmPayment)
	g.GET("/get-orders", h.List)
	g.GET("/get/:orderId", h.Get)
	g.POST("/cancel-order/:orderId", h.Cancel)
	g.GET("/invoice/:orderId", h.Invoice)
	return r
}

func validCreateOrderBody(productID uuid.UUID) map[string]any {
	return map[string]any{
		"products": []map[string]any{
			{"productId": productID, "color": "Red", "size": "M", "quantity": 2},
		},
		"totalAmount": "1239.00",
		"address": map[string]any{
			"firstName": "Asha", "lastName": "Rao", "email": "asha@example.com", "phone": "9876543210",
			"address": "12 MG Road", "city": "Pune", "state": "MH", "zipCode": "411001",
		},
		"shippingInfo": map[string]any{"courierId": 10, "courierName": "Delhivery", "rate": "59"},
	}
}

func TestOrderHandler_Create_Guest(t *testing.T) {
	orders := new(MockOrderUseCase)
	h := NewOrderHandler(orders, nil)
	r := setupOrderRouter(h)

	orderID := uuid.New()
	orders.On("CreateOrder", mock.Anything, (*ordersapp.Caller)(nil), mock.MatchedBy(func(req ordersapp.CreateOrderRequest) bool {
		return len(req.Products) == 1 && req.TotalAmount.Equal(decimal.RequireFromString("1239"))
	})).Return(&ordersapp.CreateOrderResponse{
		Order:            ordersapp.OrderResponse{ID: orderID, Status: "Pending"},
		PaymentSessionID: "session_abc",
	}, nil)

	w := doJSON(r, http.MethodPost, "/orders/create-order", validCreateOrderBody(uuid.New()))

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "session_abc")
	orders.AssertExpectations(t)
}

func TestOrderHandler_Create_SignedInPassesCaller(t *testing.T) {
	orders := new(MockOrderUseCase)
	userID := uuid.New()
	r := setupOrderRouter(NewOrderHandler(orders, nil), asUser(userID, "customer"))

	orders.On("CreateOrder", mock.Anything, &ordersapp.Caller{UserID: userID}, mock.Anything).
		Return(&ordersapp.CreateOrderResponse{}, nil)

	w := doJSON(r, http.MethodPost, "/orders/create-order", validCreateOrderBody(uuid.New()))

	assert.Equal(t, http.StatusCreated, w.Code)
	orders.AssertExpectations(t)
}

func TestOrderHandler_Create_Errors(t *testing.T) {
	t.Run("empty product list", func(t *testing.T) {
		orders := new(MockOrderUseCase)
		r := setupOrderRouter(NewOrderHandler(orders, nil))

		body := validCreateOrderBody(uuid.New())
		body["products"] = []any{}
		w := doJSON(r, http.MethodPost, "/orders/create-order", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidation, decodeEnvelope(t, w).Error.Code)
		orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		orders := new(MockOrderUseCase)
		r := setupOrderRouter(NewOrderHandler(orders, nil))
		orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeInsufficientStock, "Only 1 left of Tee (Red/M)"))

		w := doJSON(r, http.MethodPost, "/orders/create-order", validCreateOrderBody(uuid.New()))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, shared.CodeInsufficientStock, env.Error.Code)
		assert.Equal(t, "Only 1 left of Tee (Red/M)", env.Error.Message)
	})
}

func TestOrderHandler_Confirm(t *testing.T) {
	orders := new(MockOrderUseCase)
	r := setupOrderRouter(NewOrderHandler(orders, nil))
	orderID := uuid.New()

	orders.On("ConfirmOrder", mock.Anything, (*ordersapp.Caller)(nil), orderID).
		Return(&ordersapp.OrderResponse{ID: orderID, Status: "Processing", PaymentStatus: "paid"}, nil)
	orders.On("ConfirmPayment", mock.Anything, (*ordersapp.Caller)(nil), orderID).
		Return(nil, shared.NewDomainError(shared.CodePayment, "Payment was not completed"))

	w := doJSON(r, http.MethodPost, "/orders/confirm-order", map[string]any{"orderId": orderID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"status":"Processing"`)

	w = doJSON(r, http.MethodPost, "/orders/confirm-payment", map[string]any{"orderId": orderID})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = doJSON(r, http.MethodPost, "/orders/confirm-order", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	orders.AssertExpectations(t)
}

func TestOrderHandler_List(t *testing.T) {
	orders := new(MockOrderUseCase)
	userID := uuid.New()
	r := setupOrderRouter(NewOrderHandler(orders, nil), asUser(userID, "customer"))

	orders.On("GetOrders", mock.Anything, &ordersapp.Caller{UserID: userID}, ordersapp.OrderListFilter{Status: "Shipped", Page: 2, PageSize: 5}).
		Return(&ordersapp.OrderListResult{
			Items: []ordersapp.OrderResponse{{ID: uuid.New()}},
			Total: 6, Page: 2, PageSize: 5,
		}, nil)

	w := doJSON(r, http.MethodGet, "/orders/get-orders?status=Shipped&page=2&pageSize=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(6), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)
	orders.AssertExpectations(t)
}

func TestOrderHandler_List_GuestRejected(t *testing.T) {
	orders := new(MockOrderUseCase)
	r := setupOrderRouter(NewOrderHandler(orders, nil))
	orders.On("GetOrders", mock.Anything, (*ordersapp.Caller)(nil), mock.Anything).Return(nil, shared.ErrUnauthorized)

	w := doJSON(r, http.MethodGet, "/orders/get-orders", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_Get(t *testing.T) {
	orders := new(MockOrderUseCase)
	r := setupOrderRouter(NewOrderHandler(orders, nil), asUser(uuid.New(), "customer"))
	mine, theirs := uuid.New(), uuid.New()

	orders.On("GetOrder", mock.Anything, mock.Anything, mine).Return(&ordersapp.OrderResponse{ID: mine}, nil)
	orders.On("GetOrder", mock.Anything, mock.Anything, theirs).Return(nil, shared.ErrNotFound)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/orders/get/"+mine.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/orders/get/"+theirs.String(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/orders/get/not-a-uuid", nil).Code)
}

func TestOrderHandler_Cancel(t *testing.T) {
	orders := new(MockOrderUseCase)
	r := setupOrderRouter(NewOrderHandler(orders, nil))
	id := uuid.New()

	orders.On("CancelOrder", mock.Anything, (*ordersapp.Caller)(nil), id, "changed my mind").
		Return(&ordersapp.OrderResponse{ID: id, Status: "Cancelled", CancelReason: "changed my mind"}, nil)

	w := doJSON(r, http.MethodPost, "/orders/cancel-order/"+id.String(), map[string]string{"reason": "changed my mind"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"cancelReason":"changed my mind"`)
	orders.AssertExpectations(t)
}

func TestOrderHandler_Invoice(t *testing.T) {
	id := uuid.New()
	paid := &order.Order{OrderNumber: "SF-20261018-ABCD"}

	t.Run("streams the pdf", func(t *testing.T) {
		orders := new(MockOrderUseCase)
		invoices := new(MockInvoiceRenderer)
		r := setupOrderRouter(NewOrderHandler(orders, invoices))
		orders.On("GetOrderEntity", mock.Anything, (*ordersapp.Caller)(nil), id).Return(paid, nil)
		invoices.On("Invoice", mock.Anything, paid).Return([]byte("%PDF-1.7"), nil)

		w := doJSON(r, http.MethodGet, "/orders/invoice/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-SF-20261018-ABCD.pdf")
		assert.Equal(t, "%PDF-1.7", w.Body.String())
	})

	t.Run("unpaid order", func(t *testing.T) {
		orders := new(MockOrderUseCase)
		invoices := new(MockInvoiceRenderer)
		r := setupOrderRouter(NewOrderHandler(orders, invoices))
		orders.On("GetOrderEntity", mock.Anything, mock.Anything, id).Return(paid, nil)
		invoices.On("Invoice", mock.Anything, paid).Return(nil, shared.NewDomainError("INVALID_STATE", "Invoice is available once the order is paid"))

		w := doJSON(r, http.MethodGet, "/orders/invoice/"+id.String(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("renderer failure", func(t *testing.T) {
		orders := new(MockOrderUseCase)
		invoices := new(MockInvoiceRenderer)
		r := setupOrderRouter(NewOrderHandler(orders, invoices))
		orders.On("GetOrderEntity", mock.Anything, mock.Anything, id).Return(paid, nil)
		invoices.On("Invoice", mock.Anything, paid).Return(nil, errors.New("chrome crashed"))

		w := doJSON(r, http.MethodGet, "/orders/invoice/"+id.String(), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		orders := new(MockOrderUseCase)
		r := setupOrderRouter(NewOrderHandler(orders, nil))

		w := doJSON(r, http.MethodGet, "/orders/invoice/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		orders.AssertNotCalled(t, "GetOrderEntity", mock.Anything, mock.Anything, mock.Anything)
	})
}
