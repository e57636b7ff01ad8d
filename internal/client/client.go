// Package client is the storefront's Go client for the backend API: a typed
// HTTP client plus the Catalog, Cart, Order, Wishlist and Notification stores.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ErrNetwork matches every failed backend call
var ErrNetwork = shared.NewDomainError(shared.CodeNetwork, "Network request failed")

// APIError is a failed backend call. Code and Message come from the
// response envelope when the server sent one.
type APIError struct {
	Status    int // 0 when no response arrived
	Code      string
	Message   string
	RequestID string
	Details   []string
	cause     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Is matches ErrNetwork and any DomainError carrying the same code, so
// errors.Is(err, shared.ErrInsufficientStock) works across the wire.
func (e *APIError) Is(target error) bool {
	var d *shared.DomainError
	if !errors.As(target, &d) {
		return false
	}
	return d.Code == shared.CodeNetwork || d.Code == e.Code
}

// TokenSource returns the bearer token for the next request; empty sends none
type TokenSource func() string

// Client calls the storefront API under baseURL (e.g. https://shop.example.com/api)
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithToken sets where bearer tokens come from
func WithToken(src TokenSource) Option {
	return func(cl *Client) { cl.token = src }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// call sends body as JSON and decodes the envelope's data into out
func (c *Client) call(ctx context.Context, method, path string, body, out any) (*dto.Meta, error) {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Meta    *dto.Meta       `json:"meta"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, c.decodeError(method, path, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, c.decodeError(method, path, err)
		}
	}
	return env.Meta, nil
}

// callRaw decodes an endpoint that answers without the envelope
func (c *Client) callRaw(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.decodeError(method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("client: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &APIError{Code: shared.CodeNetwork, Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: shared.CodeNetwork, Message: err.Error(), cause: err}
	}
	if resp.StatusCode >= 400 {
		apiErr := errorFromBody(resp.StatusCode, raw)
		c.logger.Debug("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return nil, apiErr
	}
	return raw, nil
}

func (c *Client) decodeError(method, path string, err error) error {
	c.logger.Warn("undecodable response", zap.String("method", method), zap.String("path", path), zap.Error(err))
	return &APIError{Code: shared.CodeNetwork, Message: "Unexpected response from server", cause: err}
}

// errorFromBody prefers the envelope's error.message over the status text
func errorFromBody(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Code: shared.CodeNetwork, Message: http.StatusText(status)}
	var env dto.Response
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		if env.Error.Code != "" {
			apiErr.Code = env.Error.Code
		}
		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}
		apiErr.RequestID = env.Error.RequestID
		apiErr.Details = env.Error.Details
	}
	return apiErr
}
