package shared

import (
	"errors"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped sentinel
// comparisons work for errors created with NewDomainError.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR that lists the offending fields
func NewValidationError(message string, fields ...string) *DomainError {
	if message == "" && len(fields) > 0 {
		message = "Missing required fields: " + strings.Join(fields, ", ")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// Error codes shared by the server and the storefront client
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeNoServiceableCourier = "NO_SERVICEABLE_COURIER"
	CodeNetwork              = "NETWORK_ERROR"
	CodePayment              = "PAYMENT_ERROR"
	CodeSessionExpired       = "SESSION_EXPIRED"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrUnauthorized         = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden            = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrValidation           = NewDomainError(CodeValidation, "Validation failed")
	ErrInsufficientStock    = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrNoServiceableCourier = NewDomainError(CodeNoServiceableCourier, "No courier services this delivery postcode")
	ErrPayment              = NewDomainError(CodePayment, "Payment was not completed")
	ErrSessionExpired       = NewDomainError(CodeSessionExpired, "Checkout session expired")
)
