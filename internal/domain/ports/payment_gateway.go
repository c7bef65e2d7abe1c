package ports

import (
	"context"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/shopspring/decimal"
)

// Transaction operations return a non-nil result even when the processor
// could not be reached: the result then has StatusError and the error is a
// *errors.PaymentError describing the remote call failure. Validation and
// unsupported-operation errors return a nil result.

// CardDirectGateway processes raw card data without storing it
type CardDirectGateway interface {
	// ChargeCard authorizes and captures in one step
	ChargeCard(ctx context.Context, card models.CardDetails, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)

	// AuthorizeCard authorizes without capturing
	AuthorizeCard(ctx context.Context, card models.CardDetails, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)

	// CaptureCard captures a previous authorization
	CaptureCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)

	VoidCard(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error)
	RefundCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
}

// CardStoredGateway manages cards stored with the processor
type CardStoredGateway interface {
	StoreCard(ctx context.Context, card models.CardDetails, contact models.Contact, clientReferenceID string) (*models.StoredPaymentMethodHandle, error)
	UpdateCard(ctx context.Context, card models.CardDetails, contact models.Contact, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error)
	RemoveCard(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error)

	ChargeStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)
	AuthorizeStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)
	CaptureStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)
	VoidStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error)
	RefundStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
}

// OffsiteStorage is implemented by gateways that can tell the caller to use
// stored-profile operations exclusively.
type OffsiteStorage interface {
	RequiresOffsiteStorage() bool
}
