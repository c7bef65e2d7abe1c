package authnet

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/kevin07696/merchant-gateway/internal/config"
	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
	"github.com/kevin07696/merchant-gateway/pkg/resilience"
	"github.com/shopspring/decimal"
)

const (
	aimVersion     = "3.1"
	formURLEncoded = "application/x-www-form-urlencoded"
	backendAIM     = "aim"
)

// AIM transaction types
const (
	aimTypeAuthCapture = "AUTH_CAPTURE"
	aimTypeVoid        = "VOID"
	aimTypeCredit      = "CREDIT"

	aimMethodCard  = "CC"
	aimMethodCheck = "ECHECK"
)

// AIMAdapter charges, voids and refunds raw card and bank data through the
// direct API. The direct API only captures together with the authorization,
// so authorize-only and capture are rejected without a call.
type AIMAdapter struct {
	config     config.GatewayConfig
	baseURL    string
	httpClient ports.HTTPClient
	audit      auditTrail
	logger     ports.Logger
	currency   string
	timeouts   *resilience.TimeoutConfig
}

var (
	_ ports.CardDirectGateway = (*AIMAdapter)(nil)
	_ ports.AchDirectGateway  = (*AIMAdapter)(nil)
)

// NewAIMAdapter creates a direct API adapter with dependency injection
func NewAIMAdapter(cfg config.GatewayConfig, baseURL string, httpClient ports.HTTPClient, audit ports.AuditLogger, logger ports.Logger) *AIMAdapter {
	return &AIMAdapter{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: httpClient,
		audit:      newAuditTrail(GatewayAIM, audit, logger),
		logger:     logger,
	}
}

// SetTimeouts bounds each processor request by timeouts.GatewayCall
func (a *AIMAdapter) SetTimeouts(timeouts *resilience.TimeoutConfig) {
	a.timeouts = timeouts
}

// SetCurrency sets the ISO currency code forwarded on every call
func (a *AIMAdapter) SetCurrency(code string) {
	a.currency = strings.ToUpper(code)
}

// Currency returns the configured currency code
func (a *AIMAdapter) Currency() string {
	return a.currency
}

// ChargeCard implements CardDirectGateway.ChargeCard
func (a *AIMAdapter) ChargeCard(ctx context.Context, card models.CardDetails, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	if err := a.requireCurrency(); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if card.CardNumber == "" {
		return nil, pkgerrors.NewValidationError("card_number", "card number is required")
	}
	expiry, err := card.ExpirationDate()
	if err != nil {
		return nil, pkgerrors.NewValidationError("card_exp", err.Error())
	}

	form := a.baseForm(aimTypeAuthCapture, aimMethodCard)
	form.Set("x_amount", amount.StringFixed(2))
	form.Set("x_card_num", card.CardNumber)
	form.Set("x_exp_date", expiry)
	if card.SecurityCode != "" {
		form.Set("x_card_code", card.SecurityCode)
	}
	setBilling(form, card.FirstName, card.LastName, card.Address)
	setInvoice(form, invoices)

	return a.send(ctx, form, models.OperationCharge, models.LastFour(card.CardNumber))
}

// AuthorizeCard is not offered by the direct API
func (a *AIMAdapter) AuthorizeCard(ctx context.Context, card models.CardDetails, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	return nil, pkgerrors.NewUnsupportedOperationError("authorize", backendAIM)
}

// CaptureCard is not offered by the direct API
func (a *AIMAdapter) CaptureCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	return nil, pkgerrors.NewUnsupportedOperationError("capture", backendAIM)
}

// VoidCard implements CardDirectGateway.VoidCard
func (a *AIMAdapter) VoidCard(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error) {
	return a.void(ctx, ref, aimMethodCard)
}

// RefundCard implements CardDirectGateway.RefundCard. ref.ReferenceID holds
// the last four card digits returned by ChargeCard.
func (a *AIMAdapter) RefundCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	if ref.TransactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	form := a.baseForm(aimTypeCredit, aimMethodCard)
	form.Set("x_trans_id", ref.TransactionID)
	form.Set("x_amount", amount.StringFixed(2))
	form.Set("x_card_num", ref.ReferenceID)

	return a.send(ctx, form, models.OperationRefund, ref.ReferenceID)
}

// ChargeBankAccount implements AchDirectGateway.ChargeBankAccount. The
// result's gateway reference is "acct4:rtn4".
func (a *AIMAdapter) ChargeBankAccount(ctx context.Context, account models.BankAccount, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	if err := a.requireCurrency(); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateBankAccount(account); err != nil {
		return nil, err
	}

	form := a.baseForm(aimTypeAuthCapture, aimMethodCheck)
	form.Set("x_amount", amount.StringFixed(2))
	form.Set("x_bank_aba_code", account.RoutingNumber)
	form.Set("x_bank_acct_num", account.AccountNumber)
	form.Set("x_bank_acct_type", aimAccountType(account.AccountType))
	form.Set("x_bank_acct_name", strings.TrimSpace(account.FirstName+" "+account.LastName))
	if account.BankName != "" {
		form.Set("x_bank_name", account.BankName)
	}
	form.Set("x_echeck_type", "WEB")
	setBilling(form, account.FirstName, account.LastName, account.Address)
	setInvoice(form, invoices)

	return a.send(ctx, form, models.OperationCharge, account.GatewayReference())
}

// VoidBankAccount implements AchDirectGateway.VoidBankAccount
func (a *AIMAdapter) VoidBankAccount(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error) {
	return a.void(ctx, ref, aimMethodCheck)
}

// RefundBankAccount implements AchDirectGateway.RefundBankAccount. The
// "acct4:rtn4" reference is split back into its account and routing parts.
func (a *AIMAdapter) RefundBankAccount(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	if ref.TransactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	accountLast4, routingLast4, err := models.ParseACHGatewayReference(ref.ReferenceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("reference_id", err.Error())
	}

	form := a.baseForm(aimTypeCredit, aimMethodCheck)
	form.Set("x_trans_id", ref.TransactionID)
	form.Set("x_amount", amount.StringFixed(2))
	form.Set("x_bank_acct_num", accountLast4)
	form.Set("x_bank_aba_code", routingLast4)

	return a.send(ctx, form, models.OperationRefund, ref.ReferenceID)
}

func (a *AIMAdapter) void(ctx context.Context, ref models.TransactionReference, method string) (*models.TransactionResult, error) {
	if ref.TransactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}

	form := a.baseForm(aimTypeVoid, method)
	form.Set("x_trans_id", ref.TransactionID)

	return a.send(ctx, form, models.OperationVoid, ref.ReferenceID)
}

// baseForm returns the fields sent on every direct request
func (a *AIMAdapter) baseForm(tranType, method string) url.Values {
	form := url.Values{}
	form.Set("x_login", a.config.LoginID)
	form.Set("x_tran_key", a.config.TransactionKey)
	form.Set("x_version", aimVersion)
	form.Set("x_delim_data", "TRUE")
	form.Set("x_delim_char", DelimChar)
	form.Set("x_encap_char", "")
	form.Set("x_relay_response", "FALSE")
	form.Set("x_type", tranType)
	form.Set("x_method", method)
	if a.currency != "" {
		form.Set("x_currency_code", a.currency)
	}
	if a.config.TestMode {
		form.Set("x_test_request", "TRUE")
	}
	return form
}

// send audits the request, calls the processor once and maps the response.
// The output record is written before the result is returned.
func (a *AIMAdapter) send(ctx context.Context, form url.Values, op models.OperationKind, reference string) (*models.TransactionResult, error) {
	start := time.Now()
	a.audit.input(ctx, a.baseURL, valuesPayload(form))

	if a.logger != nil {
		a.logger.Info("sending direct gateway request",
			ports.String("type", form.Get("x_type")),
			ports.String("method", form.Get("x_method")),
			ports.String("amount", form.Get("x_amount")),
		)
	}

	callCtx, cancel := callContext(ctx, a.timeouts)
	body, err := post(callCtx, a.httpClient, a.baseURL, formURLEncoded, []byte(form.Encode()))
	cancel()
	if err != nil {
		return a.failed(ctx, op, reference, err)
	}

	resp, err := ParseDirectResponse(string(body), DelimChar)
	if err != nil {
		return a.failed(ctx, op, reference, malformedResponse(err))
	}

	result := resp.Result(op, reference)
	a.audit.output(ctx, a.baseURL, resp.Fields(), result.Succeeded())

	if a.logger != nil {
		a.logger.Info("direct gateway response",
			ports.String("type", form.Get("x_type")),
			ports.String("status", string(result.Status)),
			ports.String("response_code", resp.ResponseCode),
			ports.String("reason_code", resp.ReasonCode),
			ports.String("transaction_id", resp.TransactionID),
			ports.Duration("duration", time.Since(start)),
		)
	}
	return result, nil
}

// failed records a remote call failure and returns it with an error result
func (a *AIMAdapter) failed(ctx context.Context, op models.OperationKind, reference string, err error) (*models.TransactionResult, error) {
	a.audit.output(ctx, a.baseURL, errorPayload(err), false)
	if a.logger != nil {
		a.logger.Error("direct gateway request failed",
			ports.String("operation", string(op)),
			ports.Err(err),
		)
	}
	return remoteFailureResult(reference, err), err
}

func (a *AIMAdapter) requireCurrency() error {
	if a.currency == "" {
		return pkgerrors.NewValidationError("currency", "currency must be set before charging")
	}
	return nil
}

func aimAccountType(t models.ACHAccountType) string {
	switch t {
	case models.AccountTypeSavings:
		return "SAVINGS"
	case models.AccountTypeBusinessChecking:
		return "BUSINESSCHECKING"
	default:
		return "CHECKING"
	}
}

func setBilling(form url.Values, firstName, lastName string, addr models.Address) {
	fields := map[string]string{
		"x_first_name": firstName,
		"x_last_name":  lastName,
		"x_address":    strings.TrimSpace(addr.Line1 + " " + addr.Line2),
		"x_city":       addr.City,
		"x_state":      addr.State,
		"x_zip":        addr.Zip,
		"x_country":    addr.Country,
	}
	for k, v := range fields {
		if v != "" {
			form.Set(k, v)
		}
	}
}

func setInvoice(form url.Values, invoices []models.InvoiceAllocation) {
	if number := invoiceNumber(invoices); number != "" {
		form.Set("x_invoice_num", number)
	}
}
