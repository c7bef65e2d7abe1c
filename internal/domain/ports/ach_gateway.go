package ports

import (
	"context"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/shopspring/decimal"
)

// AchDirectGateway debits raw bank account data without storing it
type AchDirectGateway interface {
	ChargeBankAccount(ctx context.Context, account models.BankAccount, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)
	VoidBankAccount(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error)

	// RefundBankAccount expects ref.ReferenceID in the "acct4:rtn4" form
	// returned by ChargeBankAccount.
	RefundBankAccount(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
}

// AchStoredGateway manages bank accounts stored with the processor
type AchStoredGateway interface {
	StoreBankAccount(ctx context.Context, account models.BankAccount, contact models.Contact, clientReferenceID string) (*models.StoredPaymentMethodHandle, error)
	UpdateBankAccount(ctx context.Context, account models.BankAccount, contact models.Contact, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error)
	RemoveBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error)

	ChargeStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)
	VoidStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error)
	RefundStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
}
