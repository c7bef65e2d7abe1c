package models

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
)

// TransactionStatus is the canonical outcome of a gateway call
type TransactionStatus string

const (
	StatusApproved TransactionStatus = "approved"
	StatusDeclined TransactionStatus = "declined"
	StatusError    TransactionStatus = "error"
	StatusPending  TransactionStatus = "pending"
	StatusVoid     TransactionStatus = "void"
	StatusRefunded TransactionStatus = "refunded"
)

// Valid reports whether s is one of the six canonical statuses
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusApproved, StatusDeclined, StatusError, StatusPending, StatusVoid, StatusRefunded:
		return true
	}
	return false
}

// OperationKind selects which status a processor "success" code maps to
type OperationKind string

const (
	OperationCharge  OperationKind = "charge"
	OperationCapture OperationKind = "capture"
	OperationVoid    OperationKind = "void"
	OperationRefund  OperationKind = "refund"
)

// InvoiceAllocation ties part of an amount to an invoice of the caller
type InvoiceAllocation struct {
	InvoiceID string
	Amount    decimal.Decimal
}

// TransactionReference addresses a previous transaction for capture, void
// and refund.
type TransactionReference struct {
	ReferenceID   string // gateway-only reference (last 4 digits, or "acct:rtn" for ACH)
	TransactionID string // processor transaction id
}

// TransactionResult is produced once per gateway call and never mutated
// after it is returned.
type TransactionResult struct {
	Status             TransactionStatus
	TransactionID      string
	GatewayReferenceID string
	Message            string
	ResponseCode       string
	ReasonCode         string
	FieldErrors        []*pkgerrors.FieldError
}

// Succeeded reports whether the processor accepted the requested operation
func (r *TransactionResult) Succeeded() bool {
	switch r.Status {
	case StatusApproved, StatusVoid, StatusRefunded:
		return true
	}
	return false
}
