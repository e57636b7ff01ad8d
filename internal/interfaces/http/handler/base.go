package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ordersapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// caller returns the authenticated user, or nil for guests
func caller(c *gin.Context) *ordersapp.Caller {
	id, ok := middleware.GetJWTUserID(c)
	if !ok {
		return nil
	}
	return &ordersapp.Caller{UserID: id, IsAdmin: middleware.IsAdmin(c)}
}

// requireUser returns the authenticated user id or writes a 401
func (h *BaseHandler) requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetJWTUserID(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a uuid path parameter or writes a 400
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ValidationError(c, "Invalid "+name, name+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message).WithRequestID(getRequestID(c)))
}

// ValidationError sends a 400 VALIDATION_ERROR listing the bad fields
func (h *BaseHandler) ValidationError(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(shared.CodeValidation, message).
		WithRequestID(getRequestID(c)).
		WithDetails(details...))
}

// BindError reports a failed ShouldBind* call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details, ok := middleware.ValidationDetails(err); ok {
		h.ValidationError(c, "Request validation failed", details...)
		return
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed JSON body")
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
}

// HandleDomainError converts service errors to HTTP responses. Domain
// errors keep their code; upstream outages become 502; anything else is
// logged and hidden behind a 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code), dto.NewErrorResponse(domainErr.Code, domainErr.Message).
			WithRequestID(getRequestID(c)).
			WithDetails(domainErr.Fields...))
		return
	}

	switch {
	case errors.Is(err, payment.ErrGatewayInvalidCallback):
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeBadSig, "Invalid webhook signature")
		return
	case errors.Is(err, payment.ErrGatewayUnavailable), errors.Is(err, payment.ErrGatewayRequestFailed),
		errors.Is(err, payment.ErrGatewayInvalidResponse), errors.Is(err, payment.ErrGatewayNotConfigured):
		h.logUnexpected(c, err)
		h.Error(c, http.StatusBadGateway, dto.ErrCodeGateway, "Payment gateway is unavailable, please try again")
		return
	case errors.Is(err, shipping.ErrProviderUnavailable), errors.Is(err, shipping.ErrProviderRequestFailed),
		errors.Is(err, shipping.ErrProviderAuth):
		h.logUnexpected(c, err)
		h.Error(c, http.StatusBadGateway, dto.ErrCodeGateway, "Courier service is unavailable, please try again")
		return
	}

	h.logUnexpected(c, err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

func (h *BaseHandler) logUnexpected(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
}
