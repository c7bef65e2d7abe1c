package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryApproved       ErrorCategory = "approved"
	CategoryDeclined       ErrorCategory = "declined"
	CategoryInvalidCard    ErrorCategory = "invalid_card"
	CategoryInvalidAccount ErrorCategory = "invalid_account"
	CategoryExpiredCard    ErrorCategory = "expired_card"
	CategoryDuplicate      ErrorCategory = "duplicate"
	CategoryNotFound       ErrorCategory = "not_found"
	CategoryFraud          ErrorCategory = "fraud"
	CategorySystemError    ErrorCategory = "system_error"
	CategoryNetworkError   ErrorCategory = "network_error"
	CategoryInvalidRequest ErrorCategory = "invalid_request"
	CategoryUnsupported    ErrorCategory = "unsupported_operation"
)

// ErrUnsupportedOperation is matched by every UnsupportedOperationError.
var ErrUnsupportedOperation = stderrors.New("operation not supported by gateway")

// PaymentError represents a payment processing error with detailed context.
// Transport failures reaching the processor and profile API rejections are
// both reported as PaymentError; Category tells them apart.
type PaymentError struct {
	Code           string
	Message        string
	GatewayMessage string
	IsRetriable    bool
	Category       ErrorCategory
	Details        map[string]interface{}
	Fields         []*FieldError
	Err            error
}

func (e *PaymentError) Error() string {
	if e.GatewayMessage != "" {
		return fmt.Sprintf("%s: %s (gateway: %s)", e.Code, e.Message, e.GatewayMessage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying transport error, if any
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// IsRemoteCallFailure reports whether the processor could not be reached or
// returned something unreadable.
func (e *PaymentError) IsRemoteCallFailure() bool {
	return e.Category == CategoryNetworkError || e.Category == CategorySystemError
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, category ErrorCategory, retriable bool) *PaymentError {
	return &PaymentError{
		Code:        code,
		Message:     message,
		Category:    category,
		IsRetriable: retriable,
		Details:     make(map[string]interface{}),
	}
}

// NewRemoteCallError wraps a failure to obtain a usable processor response
func NewRemoteCallError(code, message string, err error) *PaymentError {
	pe := NewPaymentError(code, message, CategoryNetworkError, false)
	pe.Err = err
	if err != nil {
		pe.GatewayMessage = err.Error()
	}
	return pe
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ValidationErrors collects every field that failed validation
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Field returns the first error reported for field, or nil
func (v ValidationErrors) Field(field string) *ValidationError {
	for _, e := range v {
		if e.Field == field {
			return e
		}
	}
	return nil
}

// Err returns nil when no field failed, so callers can use the usual
// `if err := ...; err != nil` form.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// UnsupportedOperationError is returned before any network call when the
// selected gateway backend does not offer an operation.
type UnsupportedOperationError struct {
	Operation string
	Backend   string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported by the %s gateway", e.Operation, e.Backend)
}

// Is lets errors.Is(err, ErrUnsupportedOperation) match
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// NewUnsupportedOperationError creates a new unsupported operation error
func NewUnsupportedOperationError(operation, backend string) *UnsupportedOperationError {
	return &UnsupportedOperationError{Operation: operation, Backend: backend}
}

// FieldError is a processor decline or error reason translated to the
// caller-facing input field it concerns.
type FieldError struct {
	Field    string
	Code     string
	Message  string
	Category ErrorCategory
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Field, e.Code, e.Message)
}
