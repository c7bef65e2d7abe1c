package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode is a machine-readable reason the facade refused a request
type ErrorCode string

const (
	// Payment method dispatch (PM_*)
	ErrorCodePMRequired ErrorCode = "PM_REQUIRED"
	ErrorCodePMInvalid  ErrorCode = "PM_INVALID"

	// Stored account lookups (ACCOUNT_*)
	ErrorCodeAccountLookupFailed ErrorCode = "ACCOUNT_LOOKUP_FAILED"
)

// Sentinels for errors.Is; any DomainError with the same code matches.
var (
	ErrPaymentMethodRequired = &DomainError{Code: ErrorCodePMRequired}
	ErrPaymentMethodInvalid  = &DomainError{Code: ErrorCodePMInvalid}
	ErrAccountLookupFailed   = &DomainError{Code: ErrorCodeAccountLookupFailed}
)

// DomainError is a facade-level refusal carrying its code, the request
// context that explains it and, for lookups, the underlying cause.
type DomainError struct {
	Code    ErrorCode
	Message string
	Details map[string]string
	Err     error
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+e.Details[k])
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(pairs, " "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetail records one piece of request context on the error
func (e *DomainError) WithDetail(key, value string) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a domain error without a cause
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapError creates a domain error around cause
func WrapError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: cause}
}

// IsDomainError reports whether err carries a DomainError with code
func IsDomainError(err error, code ErrorCode) bool {
	return errors.Is(err, &DomainError{Code: code})
}

// CodeOf returns the code of the first DomainError in err's chain, or ""
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
