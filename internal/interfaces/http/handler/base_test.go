package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// asUser simulates the JWT middleware for an authenticated request
func asUser(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: userID.String(), Email: "user@example.com", Role: role})
		c.Next()
	}
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestGetRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, getRequestID(c))

	c.Set(logger.GinRequestIDKey, "req-1")
	assert.Equal(t, "req-1", getRequestID(c))
}

func TestCaller(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, caller(c), "guest")

	id := uuid.New()
	c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: id.String(), Role: "admin"})
	got := caller(c)
	require.NotNil(t, got)
	assert.Equal(t, id, got.UserID)
	assert.True(t, got.IsAdmin)
}

func TestBaseHandler_HandleDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.NewDomainError(shared.CodeInsufficientStock, "Only 1 left")), http.StatusUnprocessableEntity, shared.CodeInsufficientStock},
		{"validation", shared.NewValidationError("Name is required", "name"), http.StatusBadRequest, shared.CodeValidation},
		{"no courier", shared.NewDomainError(shared.CodeNoServiceableCourier, "none"), http.StatusUnprocessableEntity, shared.CodeNoServiceableCourier},
		{"payment failed", shared.NewDomainError(shared.CodePayment, "declined"), http.StatusPaymentRequired, shared.CodePayment},
		{"bad webhook signature", fmt.Errorf("verify: %w", payment.ErrGatewayInvalidCallback), http.StatusUnauthorized, dto.ErrCodeBadSig},
		{"gateway down", fmt.Errorf("create session: %w", payment.ErrGatewayUnavailable), http.StatusBadGateway, dto.ErrCodeGateway},
		{"courier auth", shipping.ErrProviderAuth, http.StatusBadGateway, dto.ErrCodeGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-42")

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.Equal(t, "req-42", env.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleDomainError_HidesInternalMessage(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleDomainError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Len(t, c.Errors, 1)
}

func TestBaseHandler_BindError(t *testing.T) {
	type body struct {
		Email string `json:"email" binding:"required,email"`
		Count int    `json:"count" binding:"min=1"`
	}
	r := newTestRouter()
	r.POST("/", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			(&BaseHandler{}).BindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	t.Run("validation errors list fields by json name", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/", map[string]any{"email": "nope", "count": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, shared.CodeValidation, env.Error.Code)
		assert.Contains(t, env.Error.Details, "email: must be a valid email")
		assert.Contains(t, env.Error.Details, "count: must be at least 1")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeEnvelope(t, w).Error.Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/", `{"email":"a@b.co","count":"two"}`)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeEnvelope(t, w).Error.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBaseHandler_PathUUID(t *testing.T) {
	r := newTestRouter()
	r.GET("/things/:id", func(c *gin.Context) {
		id, ok := (&BaseHandler{}).pathUUID(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := doJSON(r, http.MethodGet, "/things/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	w = doJSON(r, http.MethodGet, "/things/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"id: must be a valid UUID"}, decodeEnvelope(t, w).Error.Details)
}
