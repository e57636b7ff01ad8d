package dto

import (
	"net/http"

	"github.com/storefront/backend/internal/domain/shared"
)

// Transport-level codes that have no domain counterpart
const (
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeBadSig      = "INVALID_SIGNATURE"
	ErrCodeGateway     = "GATEWAY_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// 400
	shared.CodeValidation: http.StatusBadRequest,
	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_NAME":        http.StatusBadRequest,
	"INVALID_PRICE":       http.StatusBadRequest,
	"INVALID_STOCK":       http.StatusBadRequest,
	"INVALID_WEIGHT":      http.StatusBadRequest,
	"DUPLICATE_VARIANT":   http.StatusBadRequest,
	"OTP_INVALID":         http.StatusBadRequest,
	"OTP_EXPIRED":         http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,

	// 401 / 403
	"UNAUTHORIZED":        http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	ErrCodeBadSig:         http.StatusUnauthorized,
	"FORBIDDEN":           http.StatusForbidden,

	// 402
	shared.CodePayment: http.StatusPaymentRequired,

	// 404
	"NOT_FOUND":           http.StatusNotFound,
	"CART_ITEM_NOT_FOUND": http.StatusNotFound,
	"VARIANT_NOT_FOUND":   http.StatusNotFound,

	// 409
	"ALREADY_EXISTS":          http.StatusConflict,
	"EMAIL_TAKEN":             http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,

	// 413
	ErrCodeTooLarge: http.StatusRequestEntityTooLarge,

	// 422
	shared.CodeInsufficientStock:    http.StatusUnprocessableEntity,
	shared.CodeNoServiceableCourier: http.StatusUnprocessableEntity,
	"INVALID_STATE":                 http.StatusUnprocessableEntity,
	"INVALID_TRANSITION":            http.StatusUnprocessableEntity,
	"PRODUCT_UNAVAILABLE":           http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":                http.StatusUnprocessableEntity,
	"ALREADY_INACTIVE":              http.StatusUnprocessableEntity,
	"WISHLIST_FULL":                 http.StatusUnprocessableEntity,

	// 429
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	"OTP_TOO_MANY_ATTEMPTS": http.StatusTooManyRequests,

	// 502 / 503
	ErrCodeGateway:           http.StatusBadGateway,
	"STORAGE_NOT_CONFIGURED": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
