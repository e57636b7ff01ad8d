package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	shiprocketLoginPath          = "/v1/external/auth/login"
	shiprocketServiceabilityPath = "/v1/external/courier/serviceability/"
	// maxResponseSize caps courier responses (2MB)
	maxResponseSize = 2 * 1024 * 1024
	// tokens are issued for 10 days; refresh well before that
	defaultTokenTTL = 9 * 24 * time.Hour
)

// Configuration errors
var (
	ErrShiprocketMissingEmail    = errors.New("shiprocket: missing account email")
	ErrShiprocketMissingPassword = errors.New("shiprocket: missing account password")
)

// ShiprocketAdapter implements shipping.CourierProvider. It logs in with the
// API user and caches the token until it expires.
type ShiprocketAdapter struct {
	baseURL    string
	email      string
	password   string
	tokenTTL   time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// Option configures a ShiprocketAdapter
type Option func(*ShiprocketAdapter)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(a *ShiprocketAdapter) { a.httpClient = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *ShiprocketAdapter) { a.logger = l }
}

// WithClock sets the clock used for token expiry
func WithClock(now func() time.Time) Option {
	return func(a *ShiprocketAdapter) { a.now = now }
}

// NewShiprocketAdapter creates a new Shiprocket adapter
func NewShiprocketAdapter(cfg config.ShiprocketConfig, opts ...Option) (*ShiprocketAdapter, error) {
	if cfg.Email == "" {
		return nil, ErrShiprocketMissingEmail
	}
	if cfg.Password == "" {
		return nil, ErrShiprocketMissingPassword
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	a := &ShiprocketAdapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		password:   cfg.Password,
		tokenTTL:   ttl,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type courierCompany struct {
	CourierCompanyID      int             `json:"courier_company_id"`
	CourierName           string          `json:"courier_name"`
	Rate                  decimal.Decimal `json:"rate"`
	EstimatedDeliveryDays json.RawMessage `json:"estimated_delivery_days"`
}

type serviceabilityResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AvailableCourierCompanies []courierCompany `json:"available_courier_companies"`
	} `json:"data"`
}

// Serviceability lists couriers for the route in provider order. An
// unserviceable route yields an empty slice, not an error.
func (a *ShiprocketAdapter) Serviceability(ctx context.Context, q shipping.Query) ([]shipping.Option, error) {
	token, err := a.authToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("pickup_postcode", q.PickupPostcode)
	params.Set("delivery_postcode", q.DeliveryPostcode)
	params.Set("weight", q.WeightKg.StringFixed(2))
	if q.COD {
		params.Set("cod", "1")
	} else {
		params.Set("cod", "0")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+shiprocketServiceabilityPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("shiprocket: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	status, body, err := a.do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		a.invalidateToken()
		return nil, fmt.Errorf("%w: token rejected", shipping.ErrProviderAuth)
	case status == http.StatusNotFound:
		return []shipping.Option{}, nil
	case status >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", shipping.ErrProviderUnavailable, status)
	case status >= 400:
		return nil, fmt.Errorf("%w: HTTP %d %s", shipping.ErrProviderRequestFailed, status, errorMessage(body))
	}

	var parsed serviceabilityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid serviceability response: %v", shipping.ErrProviderRequestFailed, err)
	}
	if parsed.Status == http.StatusNotFound {
		return []shipping.Option{}, nil
	}

	options := make([]shipping.Option, 0, len(parsed.Data.AvailableCourierCompanies))
	for _, c := range parsed.Data.AvailableCourierCompanies {
		options = append(options, shipping.Option{
			CourierID:             c.CourierCompanyID,
			CourierName:           c.CourierName,
			Rate:                  c.Rate.Round(2),
			EstimatedDeliveryDays: parseDays(c.EstimatedDeliveryDays),
		})
	}
	return options, nil
}

// authToken returns the cached token, logging in when it is missing or expired
func (a *ShiprocketAdapter) authToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token != "" && a.now().Before(a.expiresAt) {
		return a.token, nil
	}

	payload, err := json.Marshal(map[string]string{"email": a.email, "password": a.password})
	if err != nil {
		return "", fmt.Errorf("shiprocket: failed to marshal login: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+shiprocketLoginPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("shiprocket: failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := a.do(req)
	if err != nil {
		return "", err
	}
	if status >= 500 {
		return "", fmt.Errorf("%w: login HTTP %d", shipping.ErrProviderUnavailable, status)
	}
	var resp loginResponse
	if status >= 400 || json.Unmarshal(body, &resp) != nil || resp.Token == "" {
		return "", fmt.Errorf("%w: login HTTP %d %s", shipping.ErrProviderAuth, status, errorMessage(body))
	}

	a.token = resp.Token
	a.expiresAt = a.now().Add(a.tokenTTL)
	a.logger.Info("shiprocket token refreshed", zap.Time("expires_at", a.expiresAt))
	return a.token, nil
}

func (a *ShiprocketAdapter) invalidateToken() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

func (a *ShiprocketAdapter) do(req *http.Request) (int, []byte, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", shipping.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("shiprocket: failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// parseDays accepts the number or numeric string the API returns
func parseDays(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Message
	}
	return ""
}

var _ shipping.CourierProvider = (*ShiprocketAdapter)(nil)
