package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kevin07696/merchant-gateway/internal/adapters/authnet"
	"github.com/kevin07696/merchant-gateway/internal/config"
	"github.com/kevin07696/merchant-gateway/internal/domain"
	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
	"github.com/kevin07696/merchant-gateway/pkg/observability"
	"github.com/kevin07696/merchant-gateway/pkg/resilience"
	"github.com/shopspring/decimal"
)

// backend is the processor interface selected once from GatewayConfig.API
type backend uint8

const (
	backendDirect backend = iota // AIM: raw data only
	backendStored                // CIM: stored profiles
)

func (b backend) String() string {
	if b == backendStored {
		return string(config.APICIM)
	}
	return string(config.APIAIM)
}

// Service is the caller-facing gateway. It is built per request with its own
// GatewayConfig, holds no shared state and builds each backing adapter at
// most once.
type Service struct {
	config     config.GatewayConfig
	endpoints  authnet.Endpoints
	httpClient ports.HTTPClient
	audit      ports.AuditLogger
	accounts   ports.StoredAccountDirectory
	logger     ports.Logger
	backend    backend
	currency   string
	timeouts   *resilience.TimeoutConfig

	aim *authnet.AIMAdapter
	cim *authnet.CIMAdapter
}

var (
	_ ports.CardDirectGateway = (*Service)(nil)
	_ ports.CardStoredGateway = (*Service)(nil)
	_ ports.AchDirectGateway  = (*Service)(nil)
	_ ports.AchStoredGateway  = (*Service)(nil)
	_ ports.OffsiteStorage    = (*Service)(nil)
)

// NewService creates a new gateway service
func NewService(
	cfg config.GatewayConfig,
	endpoints authnet.Endpoints,
	httpClient ports.HTTPClient,
	audit ports.AuditLogger,
	accounts ports.StoredAccountDirectory,
	logger ports.Logger,
) *Service {
	b := backendDirect
	if cfg.API == config.APICIM {
		b = backendStored
	}
	return &Service{
		config:     cfg,
		endpoints:  endpoints,
		httpClient: httpClient,
		audit:      audit,
		accounts:   accounts,
		logger:     logger,
		backend:    b,
		timeouts:   resilience.DefaultTimeoutConfig(),
	}
}

// RequiresOffsiteStorage reports whether callers must use the stored
// operations exclusively.
func (s *Service) RequiresOffsiteStorage() bool {
	return s.backend == backendStored
}

// SetCurrency sets the currency on the service and on any adapter already built
func (s *Service) SetCurrency(code string) {
	s.currency = code
	if s.aim != nil {
		s.aim.SetCurrency(code)
	}
	if s.cim != nil {
		s.cim.SetCurrency(code)
	}
}

// SetTimeouts replaces the per-request processor deadline on the service and
// on any adapter already built.
func (s *Service) SetTimeouts(timeouts *resilience.TimeoutConfig) {
	s.timeouts = timeouts
	if s.aim != nil {
		s.aim.SetTimeouts(timeouts)
	}
	if s.cim != nil {
		s.cim.SetTimeouts(timeouts)
	}
}

// Charge charges any payment method, dispatching on its kind
func (s *Service) Charge(ctx context.Context, method models.PaymentMethod, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	switch m := method.(type) {
	case nil:
		return nil, domain.NewDomainError(domain.ErrorCodePMRequired, "payment method required")
	case models.CardDetails:
		return s.ChargeCard(ctx, m, amount, invoices)
	case models.BankAccount:
		return s.ChargeBankAccount(ctx, m, amount, invoices)
	case models.StoredPaymentMethodHandle:
		if m.MethodKind == models.MethodKindACH {
			return s.ChargeStoredBankAccount(ctx, m, amount, invoices)
		}
		return s.ChargeStoredCard(ctx, m, amount, invoices)
	default:
		return nil, domain.NewDomainError(domain.ErrorCodePMInvalid, "unsupported payment method").
			WithDetail("type", fmt.Sprintf("%T", method))
	}
}

// Card, direct

// ChargeCard implements ports.CardDirectGateway
func (s *Service) ChargeCard(ctx context.Context, card models.CardDetails, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().ChargeCard(ctx, card, amount, invoices)
	return s.transaction(authnet.GatewayAIM, "charge", models.MethodKindCard, start, result, err)
}

// AuthorizeCard implements ports.CardDirectGateway
func (s *Service) AuthorizeCard(ctx context.Context, card models.CardDetails, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().AuthorizeCard(ctx, card, amount, invoices)
	return s.transaction(authnet.GatewayAIM, "authorize", models.MethodKindCard, start, result, err)
}

// CaptureCard implements ports.CardDirectGateway
func (s *Service) CaptureCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().CaptureCard(ctx, ref, amount, invoices)
	return s.transaction(authnet.GatewayAIM, "capture", models.MethodKindCard, start, result, err)
}

// VoidCard implements ports.CardDirectGateway
func (s *Service) VoidCard(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().VoidCard(ctx, ref)
	return s.transaction(authnet.GatewayAIM, "void", models.MethodKindCard, start, result, err)
}

// RefundCard implements ports.CardDirectGateway
func (s *Service) RefundCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().RefundCard(ctx, ref, amount)
	return s.transaction(authnet.GatewayAIM, "refund", models.MethodKindCard, start, result, err)
}

// ACH, direct

// ChargeBankAccount implements ports.AchDirectGateway
func (s *Service) ChargeBankAccount(ctx context.Context, account models.BankAccount, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().ChargeBankAccount(ctx, account, amount, invoices)
	return s.transaction(authnet.GatewayAIM, "charge", models.MethodKindACH, start, result, err)
}

// VoidBankAccount implements ports.AchDirectGateway
func (s *Service) VoidBankAccount(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().VoidBankAccount(ctx, ref)
	return s.transaction(authnet.GatewayAIM, "void", models.MethodKindACH, start, result, err)
}

// RefundBankAccount implements ports.AchDirectGateway
func (s *Service) RefundBankAccount(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	start := time.Now()
	result, err := s.direct().RefundBankAccount(ctx, ref, amount)
	return s.transaction(authnet.GatewayAIM, "refund", models.MethodKindACH, start, result, err)
}

// Card, stored

// StoreCard implements ports.CardStoredGateway. The contact's existing card
// references are looked up first and forwarded to the processor.
func (s *Service) StoreCard(ctx context.Context, card models.CardDetails, contact models.Contact, clientReferenceID string) (*models.StoredPaymentMethodHandle, error) {
	start := time.Now()
	cim, err := s.stored("store")
	if err != nil {
		return s.handle("store", models.MethodKindCard, start, nil, err)
	}
	existing, err := s.existingAccounts(ctx, contact, models.MethodKindCard)
	if err != nil {
		return nil, err
	}
	h, err := cim.StoreCard(ctx, card, contact, clientReferenceID, existing)
	return s.handle("store", models.MethodKindCard, start, h, err)
}

// UpdateCard implements ports.CardStoredGateway
func (s *Service) UpdateCard(ctx context.Context, card models.CardDetails, contact models.Contact, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	start := time.Now()
	cim, err := s.stored("update")
	if err != nil {
		return s.handle("update", models.MethodKindCard, start, nil, err)
	}
	h, err := cim.UpdateCard(ctx, card, contact, handle)
	return s.handle("update", models.MethodKindCard, start, h, err)
}

// RemoveCard implements ports.CardStoredGateway
func (s *Service) RemoveCard(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	return s.remove(ctx, withKind(handle, models.MethodKindCard))
}

// ChargeStoredCard implements ports.CardStoredGateway
func (s *Service) ChargeStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	return s.chargeStored(ctx, withKind(handle, models.MethodKindCard), amount, invoices)
}

// AuthorizeStoredCard implements ports.CardStoredGateway
func (s *Service) AuthorizeStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	start := time.Now()
	cim, err := s.stored("authorize")
	if err != nil {
		return s.transaction(authnet.GatewayCIM, "authorize", models.MethodKindCard, start, nil, err)
	}
	result, err := cim.Authorize(ctx, handle, amount, invoices)
	return s.transaction(authnet.GatewayCIM, "authorize", models.MethodKindCard, start, result, err)
}

// CaptureStoredCard implements ports.CardStoredGateway
func (s *Service) CaptureStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	start := time.Now()
	cim, err := s.stored("capture")
	if err != nil {
		return s.transaction(authnet.GatewayCIM, "capture", models.MethodKindCard, start, nil, err)
	}
	result, err := cim.Capture(ctx, withKind(handle, models.MethodKindCard), ref, amount, invoices)
	return s.transaction(authnet.GatewayCIM, "capture", models.MethodKindCard, start, result, err)
}

// VoidStoredCard implements ports.CardStoredGateway
func (s *Service) VoidStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error) {
	return s.voidStored(ctx, withKind(handle, models.MethodKindCard), ref)
}

// RefundStoredCard implements ports.CardStoredGateway
func (s *Service) RefundStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	return s.refundStored(ctx, withKind(handle, models.MethodKindCard), ref, amount)
}

// ACH, stored

// StoreBankAccount implements ports.AchStoredGateway. The contact's existing
// bank account references are looked up first and forwarded to the processor.
func (s *Service) StoreBankAccount(ctx context.Context, account models.BankAccount, contact models.Contact, clientReferenceID string) (*models.StoredPaymentMethodHandle, error) {
	start := time.Now()
	cim, err := s.stored("store")
	if err != nil {
		return s.handle("store", models.MethodKindACH, start, nil, err)
	}
	existing, err := s.existingAccounts(ctx, contact, models.MethodKindACH)
	if err != nil {
		return nil, err
	}
	h, err := cim.StoreBankAccount(ctx, account, contact, clientReferenceID, existing)
	return s.handle("store", models.MethodKindACH, start, h, err)
}

// UpdateBankAccount implements ports.AchStoredGateway
func (s *Service) UpdateBankAccount(ctx context.Context, account models.BankAccount, contact models.Contact, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	start := time.Now()
	cim, err := s.stored("update")
	if err != nil {
		return s.handle("update", models.MethodKindACH, start, nil, err)
	}
	h, err := cim.UpdateBankAccount(ctx, account, contact, handle)
	return s.handle("update", models.MethodKindACH, start, h, err)
}

// RemoveBankAccount implements ports.AchStoredGateway
func (s *Service) RemoveBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	return s.remove(ctx, withKind(handle, models.MethodKindACH))
}

// ChargeStoredBankAccount implements ports.AchStoredGateway
func (s *Service) ChargeStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	return s.chargeStored(ctx, withKind(handle, models.MethodKindACH), amount, invoices)
}

// VoidStoredBankAccount implements ports.AchStoredGateway
func (s *Service) VoidStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error) {
	return s.voidStored(ctx, withKind(handle, models.MethodKindACH), ref)
}

// RefundStoredBankAccount implements ports.AchStoredGateway
func (s *Service) RefundStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	return s.refundStored(ctx, withKind(handle, models.MethodKindACH), ref, amount)
}

func (s *Service) remove(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	start := time.Now()
	cim, err := s.stored("remove")
	if err != nil {
		return s.handle("remove", handle.MethodKind, start, nil, err)
	}
	h, err := cim.Remove(ctx, handle)
	return s.handle("remove", handle.MethodKind, start, h, err)
}

func (s *Service) chargeStored(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	start := time.Now()
	cim, err := s.stored("charge")
	if err != nil {
		return s.transaction(authnet.GatewayCIM, "charge", handle.MethodKind, start, nil, err)
	}
	result, err := cim.Charge(ctx, handle, amount, invoices)
	return s.transaction(authnet.GatewayCIM, "charge", handle.MethodKind, start, result, err)
}

func (s *Service) voidStored(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error) {
	start := time.Now()
	cim, err := s.stored("void")
	if err != nil {
		return s.transaction(authnet.GatewayCIM, "void", handle.MethodKind, start, nil, err)
	}
	result, err := cim.Void(ctx, handle, ref)
	return s.transaction(authnet.GatewayCIM, "void", handle.MethodKind, start, result, err)
}

func (s *Service) refundStored(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	start := time.Now()
	cim, err := s.stored("refund")
	if err != nil {
		return s.transaction(authnet.GatewayCIM, "refund", handle.MethodKind, start, nil, err)
	}
	result, err := cim.Refund(ctx, handle, ref, amount)
	return s.transaction(authnet.GatewayCIM, "refund", handle.MethodKind, start, result, err)
}

// direct returns the direct API adapter, building it on first use
func (s *Service) direct() *authnet.AIMAdapter {
	if s.aim == nil {
		s.aim = authnet.NewAIMAdapter(s.config, s.endpoints.AIM, s.httpClient, s.audit, s.logger)
		s.aim.SetTimeouts(s.timeouts)
		if s.currency != "" {
			s.aim.SetCurrency(s.currency)
		}
	}
	return s.aim
}

// stored returns the profile API adapter, building it on first use. Stored
// operations are refused on a direct-only gateway.
func (s *Service) stored(operation string) (*authnet.CIMAdapter, error) {
	if s.backend != backendStored {
		return nil, pkgerrors.NewUnsupportedOperationError(operation, s.backend.String())
	}
	if s.cim == nil {
		s.cim = authnet.NewCIMAdapter(s.config, s.endpoints.CIM, s.httpClient, s.audit, s.logger)
		s.cim.SetTimeouts(s.timeouts)
		if s.currency != "" {
			s.cim.SetCurrency(s.currency)
		}
	}
	return s.cim, nil
}

// existingAccounts fetches the contact's stored account references of kind
func (s *Service) existingAccounts(ctx context.Context, contact models.Contact, kind models.MethodKind) ([]string, error) {
	if s.accounts == nil {
		return nil, nil
	}
	refs, err := s.accounts.ExistingAccountReferences(ctx, contact, kind)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeAccountLookupFailed, "failed to list stored accounts", err).
			WithDetail("contact_id", contact.ContactID).
			WithDetail("kind", string(kind))
	}
	return refs, nil
}

// transaction records metrics for a transaction operation and passes its
// outcome through unchanged.
func (s *Service) transaction(gateway, operation string, kind models.MethodKind, start time.Time, result *models.TransactionResult, err error) (*models.TransactionResult, error) {
	status := "failed"
	if result != nil {
		status = string(result.Status)
	}
	s.observe(gateway, operation, kind, start, status, err)
	return result, err
}

// handle records metrics for a store, update or remove operation
func (s *Service) handle(operation string, kind models.MethodKind, start time.Time, h *models.StoredPaymentMethodHandle, err error) (*models.StoredPaymentMethodHandle, error) {
	status := "failed"
	if err == nil {
		status = operation + "d"
	}
	s.observe(authnet.GatewayCIM, operation, kind, start, status, err)
	return h, err
}

func (s *Service) observe(gateway, operation string, kind models.MethodKind, start time.Time, status string, err error) {
	if reason := rejectionReason(err); reason != "" {
		observability.RecordGatewayRejection(gateway, operation, reason)
		if s.logger != nil {
			s.logger.Warn("gateway operation rejected",
				ports.String("gateway", gateway),
				ports.String("operation", operation),
				ports.String("reason", reason),
				ports.Err(err),
			)
		}
		return
	}
	observability.RecordGatewayCall(gateway, operation, string(kind), status, time.Since(start))
}

func rejectionReason(err error) string {
	if err == nil {
		return ""
	}
	var validationErr *pkgerrors.ValidationError
	if errors.As(err, &validationErr) {
		return "validation"
	}
	if errors.Is(err, pkgerrors.ErrUnsupportedOperation) {
		return "unsupported"
	}
	return ""
}

func withKind(handle models.StoredPaymentMethodHandle, kind models.MethodKind) models.StoredPaymentMethodHandle {
	if handle.MethodKind == "" {
		handle.MethodKind = kind
	}
	return handle
}
