package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductPage is one page of the public product listing
type ProductPage struct {
	Items []catalogapp.ProductResponse
	Meta  dto.Meta
}

// ListProducts fetches a page of active products
func (c *Client) ListProducts(ctx context.Context, f catalogapp.ProductListFilter) (*ProductPage, error) {
	q := url.Values{}
	setString(q, "search", f.Search)
	setString(q, "category", f.Category)
	setInt(q, "page", f.Page)
	setInt(q, "pageSize", f.PageSize)
	setString(q, "orderBy", f.OrderBy)
	setString(q, "orderDir", f.OrderDir)

	var items []catalogapp.ProductResponse
	meta, err := c.call(ctx, http.MethodGet, withQuery("/products", q), nil, &items)
	if err != nil {
		return nil, err
	}
	page := &ProductPage{Items: items}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

// GetProduct fetches one product
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	var p catalogapp.ProductResponse
	if _, err := c.call(ctx, http.MethodGet, "/products/"+id.String(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetCart fetches the caller's cart
func (c *Client) GetCart(ctx context.Context) (*cartapp.CartResponse, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart/get", nil)
}

// AddToCart adds a variant; the server prices it
func (c *Client) AddToCart(ctx context.Context, req cartapp.AddItemRequest) (*cartapp.CartResponse, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/add", req)
}

// UpdateCartItem sets a line's quantity
func (c *Client) UpdateCartItem(ctx context.Context, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error) {
	return c.cartCall(ctx, http.MethodPut, "/cart/update", req)
}

// RemoveCartItem drops a line
func (c *Client) RemoveCartItem(ctx context.Context, req cartapp.RemoveItemRequest) (*cartapp.CartResponse, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/remove", req)
}

// ClearCart empties the cart
func (c *Client) ClearCart(ctx context.Context) (*cartapp.CartResponse, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/clear", nil)
}

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*cartapp.CartResponse, error) {
	var resp cartapp.CartResponse
	if _, err := c.call(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckServiceability quotes couriers for a parcel
func (c *Client) CheckServiceability(ctx context.Context, req shippingapp.ServiceabilityRequest) (*shippingapp.ServiceabilityResponse, error) {
	var resp shippingapp.ServiceabilityResponse
	if err := c.callRaw(ctx, http.MethodPost, "/shiprocket/check-serviceability", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOrder places an order and opens its payment session
func (c *Client) CreateOrder(ctx context.Context, req orderapp.CreateOrderRequest) (*orderapp.CreateOrderResponse, error) {
	var resp orderapp.CreateOrderResponse
	if _, err := c.call(ctx, http.MethodPost, "/orders/create-order", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmOrder verifies the payment after the hosted checkout reported success
func (c *Client) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	return c.orderCall(ctx, http.MethodPost, "/orders/confirm-order", orderapp.ConfirmRequest{OrderID: orderID})
}

// ConfirmPayment verifies the payment after a redirect back from the gateway
func (c *Client) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	return c.orderCall(ctx, http.MethodPost, "/orders/confirm-payment", orderapp.ConfirmRequest{OrderID: orderID})
}

// GetOrders lists the caller's orders, newest first
func (c *Client) GetOrders(ctx context.Context) ([]orderapp.OrderResponse, error) {
	var orders []orderapp.OrderResponse
	if _, err := c.call(ctx, http.MethodGet, "/orders/get-orders?pageSize=100", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
	return c.orderCall(ctx, http.MethodGet, "/orders/get/"+orderID.String(), nil)
}

// CancelOrder cancels an order with a reason
func (c *Client) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*orderapp.OrderResponse, error) {
	return c.orderCall(ctx, http.MethodPost, "/orders/cancel-order/"+orderID.String(), orderapp.CancelOrderRequest{Reason: reason})
}

func (c *Client) orderCall(ctx context.Context, method, path string, body any) (*orderapp.OrderResponse, error) {
	var resp orderapp.OrderResponse
	if _, err := c.call(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetWishlist fetches the caller's wishlist
func (c *Client) GetWishlist(ctx context.Context) (*wishlistapp.Response, error) {
	return c.wishlistCall(ctx, http.MethodGet, "/wishlist", nil)
}

// AddToWishlist saves a product
func (c *Client) AddToWishlist(ctx context.Context, productID uuid.UUID) (*wishlistapp.Response, error) {
	return c.wishlistCall(ctx, http.MethodPost, "/wishlist/add", wishlistapp.AddRequest{ProductID: productID})
}

// RemoveFromWishlist forgets a product
func (c *Client) RemoveFromWishlist(ctx context.Context, productID uuid.UUID) (*wishlistapp.Response, error) {
	return c.wishlistCall(ctx, http.MethodDelete, "/wishlist/remove/"+productID.String(), nil)
}

func (c *Client) wishlistCall(ctx context.Context, method, path string, body any) (*wishlistapp.Response, error) {
	var resp wishlistapp.Response
	if _, err := c.call(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListNotifications fetches a page of the caller's notifications
func (c *Client) ListNotifications(ctx context.Context, f notificationapp.ListFilter) (*notificationapp.ListResult, error) {
	q := url.Values{}
	if f.Unread {
		q.Set("unread", "true")
	}
	setInt(q, "page", f.Page)
	setInt(q, "pageSize", f.PageSize)

	var resp notificationapp.ListResult
	if _, err := c.call(ctx, http.MethodGet, withQuery("/notifications", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnreadNotificationCount returns the number of unread notifications
func (c *Client) UnreadNotificationCount(ctx context.Context) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if _, err := c.call(ctx, http.MethodGet, "/notifications/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkNotificationRead marks one notification read
func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	_, err := c.call(ctx, http.MethodPut, "/notifications/"+id.String()+"/read", nil, nil)
	return err
}

// MarkAllNotificationsRead marks every notification read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var resp notificationapp.MarkAllResult
	if _, err := c.call(ctx, http.MethodPut, "/notifications/read-all", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}
