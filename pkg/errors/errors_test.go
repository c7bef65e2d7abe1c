package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentError_Error(t *testing.T) {
	pe := NewPaymentError("E00027", "declined", CategoryDeclined, false)
	assert.Equal(t, "E00027: declined", pe.Error())

	pe.GatewayMessage = "The transaction was unsuccessful."
	assert.Equal(t, "E00027: declined (gateway: The transaction was unsuccessful.)", pe.Error())
}

func TestNewRemoteCallError(t *testing.T) {
	cause := errors.New("connection refused")
	pe := NewRemoteCallError("NETWORK_ERROR", "request failed", cause)

	assert.True(t, pe.IsRemoteCallFailure())
	assert.ErrorIs(t, pe, cause)
	assert.Equal(t, "connection refused", pe.GatewayMessage)

	var target *PaymentError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", pe), &target))
}

func TestPaymentError_IsRemoteCallFailure(t *testing.T) {
	assert.True(t, NewPaymentError("X", "x", CategorySystemError, false).IsRemoteCallFailure())
	assert.False(t, NewPaymentError("X", "x", CategoryDeclined, false).IsRemoteCallFailure())
}

func TestValidationErrors(t *testing.T) {
	var none ValidationErrors
	assert.NoError(t, none.Err())

	errs := ValidationErrors{
		NewValidationError("login_id", "must be between 1 and 20 characters"),
		NewValidationError("transaction_key", "must be exactly 16 characters"),
	}
	assert.Error(t, errs.Err())
	assert.Contains(t, errs.Error(), "login_id")
	assert.Contains(t, errs.Error(), "; ")
	assert.Equal(t, "must be exactly 16 characters", errs.Field("transaction_key").Message)
	assert.Nil(t, errs.Field("api"))
}

func TestUnsupportedOperationError(t *testing.T) {
	err := NewUnsupportedOperationError("authorize", "aim")

	assert.Equal(t, "authorize is not supported by the aim gateway", err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	assert.ErrorIs(t, fmt.Errorf("facade: %w", err), ErrUnsupportedOperation)
}

func TestFieldError_Error(t *testing.T) {
	fe := &FieldError{Field: "card_number", Code: "6", Message: "invalid card", Category: CategoryInvalidCard}
	assert.Equal(t, "card_number [6]: invalid card", fe.Error())
}
