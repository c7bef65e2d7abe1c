package authnet

import (
	"errors"
	"net/url"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
	"github.com/shopspring/decimal"
)

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.NewValidationError("amount", "amount must be greater than zero")
	}
	return nil
}

func validateBankAccount(account models.BankAccount) error {
	if account.AccountNumber == "" {
		return pkgerrors.NewValidationError("account_number", "account number is required")
	}
	if account.RoutingNumber == "" {
		return pkgerrors.NewValidationError("routing_number", "routing number is required")
	}
	return nil
}

// invoiceNumber returns the id of the first allocation; the processor
// accepts a single invoice number per transaction.
func invoiceNumber(invoices []models.InvoiceAllocation) string {
	for _, inv := range invoices {
		if inv.InvoiceID != "" {
			return inv.InvoiceID
		}
	}
	return ""
}

// remoteFailureResult is returned alongside the error when the processor
// could not be reached or answered with something unreadable.
func remoteFailureResult(reference string, err error) *models.TransactionResult {
	result := &models.TransactionResult{
		Status:             models.StatusError,
		GatewayReferenceID: reference,
	}
	var pe *pkgerrors.PaymentError
	if errors.As(err, &pe) {
		result.Message = pe.Message
		result.ReasonCode = pe.Code
	} else {
		result.Message = err.Error()
	}
	return result
}

// valuesPayload flattens form values for an audit record
func valuesPayload(values url.Values) map[string]any {
	payload := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) == 1 {
			payload[k] = v[0]
			continue
		}
		payload[k] = append([]string(nil), v...)
	}
	return payload
}
