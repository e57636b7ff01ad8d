package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	cashfreeDefaultAPIVersion = "2023-08-01"
	cashfreeOrdersPath        = "/orders"
	cashfreeOrderPath         = "/orders/%s"
	// Cashfree rejects expiry times closer than 15 minutes
	cashfreeMinExpiry = 15 * time.Minute
)

// Configuration errors
var (
	ErrCashfreeMissingAppID     = errors.New("cashfree: missing app ID")
	ErrCashfreeMissingSecretKey = errors.New("cashfree: missing secret key")
)

// CashfreeAdapter implements payment.Gateway over the Cashfree PG REST API
type CashfreeAdapter struct {
	appID      string
	secretKey  string
	apiVersion string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// CashfreeOption configures a CashfreeAdapter
type CashfreeOption func(*CashfreeAdapter)

// WithBaseURL overrides the environment URL, used by tests
func WithBaseURL(u string) CashfreeOption {
	return func(a *CashfreeAdapter) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) CashfreeOption {
	return func(a *CashfreeAdapter) { a.httpClient = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) CashfreeOption {
	return func(a *CashfreeAdapter) { a.logger = l }
}

// NewCashfreeAdapter creates a new Cashfree adapter
func NewCashfreeAdapter(cfg config.CashfreeConfig, opts ...CashfreeOption) (*CashfreeAdapter, error) {
	if cfg.AppID == "" {
		return nil, ErrCashfreeMissingAppID
	}
	if cfg.SecretKey == "" {
		return nil, ErrCashfreeMissingSecretKey
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = cashfreeDefaultAPIVersion
	}

	a := &CashfreeAdapter{
		appID:      cfg.AppID,
		secretKey:  cfg.SecretKey,
		apiVersion: apiVersion,
		baseURL:    cfg.BaseURL(),
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// CreateSession creates a Cashfree order. Our order number is the
// merchant order_id, so it doubles as the gateway order id.
func (a *CashfreeAdapter) CreateSession(ctx context.Context, req *payment.CreateSessionRequest) (*payment.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := cashfreeCreateOrderRequest{
		OrderID:       req.OrderNumber,
		OrderAmount:   req.Amount.Round(2).InexactFloat64(),
		OrderCurrency: req.Currency,
		CustomerDetails: cashfreeCustomer{
			CustomerID:    sanitizeCustomerID(req.Customer.ID),
			CustomerName:  req.Customer.Name,
			CustomerEmail: req.Customer.Email,
			CustomerPhone: req.Customer.Phone,
		},
		OrderTags: map[string]string{"order_uuid": req.OrderID.String()},
	}
	if body.OrderCurrency == "" {
		body.OrderCurrency = "INR"
	}
	if req.ReturnURL != "" || req.NotifyURL != "" {
		body.OrderMeta = &cashfreeOrderMeta{ReturnURL: req.ReturnURL, NotifyURL: req.NotifyURL}
	}
	if !req.ExpiresAt.IsZero() {
		expiry := req.ExpiresAt
		if earliest := a.now().Add(cashfreeMinExpiry); expiry.Before(earliest) {
			expiry = earliest
		}
		body.OrderExpiryTime = expiry.Format(time.RFC3339)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("cashfree: failed to marshal request: %w", err)
	}
	respBody, err := a.doRequest(ctx, http.MethodPost, cashfreeOrdersPath, payload)
	if err != nil {
		return nil, err
	}

	var order cashfreeOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	if order.PaymentSessionID == "" {
		return nil, fmt.Errorf("%w: missing payment_session_id", payment.ErrGatewayInvalidResponse)
	}

	session := &payment.Session{
		GatewayOrderID:   order.OrderID,
		PaymentSessionID: order.PaymentSessionID,
		Status:           payment.GatewayStatus(order.OrderStatus),
		ExpiresAt:        parseTime(order.OrderExpiryTime),
	}
	if session.GatewayOrderID == "" {
		session.GatewayOrderID = req.OrderNumber
	}

	a.logger.Info("cashfree order created",
		zap.String("order_id", session.GatewayOrderID),
		zap.String("cf_order_id", order.CFOrderID))
	return session, nil
}

// FetchOrder returns the gateway view of an order
func (a *CashfreeAdapter) FetchOrder(ctx context.Context, gatewayOrderID string) (*payment.OrderStatus, error) {
	if gatewayOrderID == "" {
		return nil, payment.ErrInvalidOrderNumber
	}
	respBody, err := a.doRequest(ctx, http.MethodGet, fmt.Sprintf(cashfreeOrderPath, url.PathEscape(gatewayOrderID)), nil)
	if err != nil {
		return nil, err
	}

	var order cashfreeOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	return &payment.OrderStatus{
		GatewayOrderID: order.OrderID,
		Status:         payment.GatewayStatus(order.OrderStatus),
		Amount:         order.OrderAmount,
	}, nil
}

// VerifyWebhook checks x-webhook-signature, the base64 HMAC-SHA256 of
// timestamp followed by the raw body, keyed with the secret key.
func (a *CashfreeAdapter) VerifyWebhook(payload []byte, timestamp, signature string) (*payment.Notification, error) {
	if timestamp == "" || signature == "" {
		return nil, payment.ErrGatewayInvalidCallback
	}
	expected := SignWebhook(a.secretKey, timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, payment.ErrGatewayInvalidCallback
	}

	var hook cashfreeWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}

	amount := hook.Data.Payment.PaymentAmount
	if amount.IsZero() {
		amount = hook.Data.Order.OrderAmount
	}
	n := &payment.Notification{
		Type:           hook.Type,
		GatewayOrderID: hook.Data.Order.OrderID,
		PaymentStatus:  hook.Data.Payment.PaymentStatus,
		Amount:         amount,
		ReceivedAt:     a.now(),
	}
	if id := hook.Data.Payment.CFPaymentID; id != "" {
		n.EventID = hook.Type + ":" + string(id)
	} else {
		n.EventID = hook.Type + ":" + hook.Data.Order.OrderID + ":" + timestamp
	}
	return n, nil
}

// SignWebhook computes the signature Cashfree sends for a webhook body
func SignWebhook(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (a *CashfreeAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("cashfree: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-client-id", a.appID)
	req.Header.Set("x-client-secret", a.secretKey)
	req.Header.Set("x-api-version", a.apiVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cashfree: failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var errResp cashfreeErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: %s - %s", payment.ErrGatewayRequestFailed, errResp.Code, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}
	return respBody, nil
}

// sanitizeCustomerID keeps the characters Cashfree accepts in customer_id
func sanitizeCustomerID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "guest"
	}
	return sb.String()
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

var _ payment.Gateway = (*CashfreeAdapter)(nil)
