package authnet

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"regexp"
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
	textXML    = "text/xml"
	backendCIM = "cim"
)

// Profile API message codes the adapter acts on
const (
	codeTransactionDeclined = "E00027"
	codeDuplicateRecord     = "E00039"
	codeRecordNotFound      = "E00040"
	codeAuthenticationError = "E00007"
)

var cimMessageCategories = map[string]pkgerrors.ErrorCategory{
	codeTransactionDeclined: pkgerrors.CategoryDeclined,
	codeDuplicateRecord:     pkgerrors.CategoryDuplicate,
	codeRecordNotFound:      pkgerrors.CategoryNotFound,
	codeAuthenticationError: pkgerrors.CategoryInvalidRequest,
}

var (
	duplicateIDPattern = regexp.MustCompile(`ID (\d+)`)
	utf8BOM            = []byte("\xef\xbb\xbf")
)

// CIMAdapter manages stored card and bank account profiles through the
// profile API and transacts against them.
type CIMAdapter struct {
	config     config.GatewayConfig
	baseURL    string
	httpClient ports.HTTPClient
	audit      auditTrail
	logger     ports.Logger
	currency   string
	timeouts   *resilience.TimeoutConfig
}

// NewCIMAdapter creates a profile API adapter with dependency injection
func NewCIMAdapter(cfg config.GatewayConfig, baseURL string, httpClient ports.HTTPClient, audit ports.AuditLogger, logger ports.Logger) *CIMAdapter {
	return &CIMAdapter{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: httpClient,
		audit:      newAuditTrail(GatewayCIM, audit, logger),
		logger:     logger,
	}
}

// SetTimeouts bounds each processor request by timeouts.GatewayCall
func (c *CIMAdapter) SetTimeouts(timeouts *resilience.TimeoutConfig) {
	c.timeouts = timeouts
}

// SetCurrency sets the ISO currency code forwarded on every transaction
func (c *CIMAdapter) SetCurrency(code string) {
	c.currency = strings.ToUpper(code)
}

// Currency returns the configured currency code
func (c *CIMAdapter) Currency() string {
	return c.currency
}

// StoreCard stores a card for contact. With an empty clientReferenceID a new
// customer profile is created; otherwise the card is added to that profile.
// existingAccountRefs are forwarded as duplicate-avoidance hints.
func (c *CIMAdapter) StoreCard(ctx context.Context, card models.CardDetails, contact models.Contact, clientReferenceID string, existingAccountRefs []string) (*models.StoredPaymentMethodHandle, error) {
	if card.CardNumber == "" {
		return nil, pkgerrors.NewValidationError("card_number", "card number is required")
	}
	expiry, err := card.ExpirationDate()
	if err != nil {
		return nil, pkgerrors.NewValidationError("card_exp", err.Error())
	}

	profile := c.cardProfile(card, contact, expiry)
	return c.store(ctx, profile, contact, clientReferenceID, existingAccountRefs, models.MethodKindCard)
}

// StoreBankAccount stores a bank account for contact, as StoreCard does
func (c *CIMAdapter) StoreBankAccount(ctx context.Context, account models.BankAccount, contact models.Contact, clientReferenceID string, existingAccountRefs []string) (*models.StoredPaymentMethodHandle, error) {
	if err := validateBankAccount(account); err != nil {
		return nil, err
	}

	profile := c.bankProfile(account, contact)
	return c.store(ctx, profile, contact, clientReferenceID, existingAccountRefs, models.MethodKindACH)
}

// UpdateCard replaces the stored card addressed by handle. A card number is
// required; a masked number keeps the stored one.
func (c *CIMAdapter) UpdateCard(ctx context.Context, card models.CardDetails, contact models.Contact, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	if card.CardNumber == "" {
		return nil, pkgerrors.NewValidationError("card_number", "card number is required")
	}
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	// A masked expiration date keeps the stored one
	expiry := "XXXX"
	if card.Expiry != "" {
		var err error
		if expiry, err = card.ExpirationDate(); err != nil {
			return nil, pkgerrors.NewValidationError("card_exp", err.Error())
		}
	}

	profile := c.cardProfile(card, contact, expiry)
	return c.update(ctx, profile, handle, models.MethodKindCard)
}

// UpdateBankAccount replaces the stored bank account addressed by handle
func (c *CIMAdapter) UpdateBankAccount(ctx context.Context, account models.BankAccount, contact models.Contact, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	if err := validateBankAccount(account); err != nil {
		return nil, err
	}
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	profile := c.bankProfile(account, contact)
	return c.update(ctx, profile, handle, models.MethodKindACH)
}

// Remove deletes a stored payment method. Removing one that no longer exists
// succeeds; the handle is always echoed back.
func (c *CIMAdapter) Remove(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	req := &deleteCustomerPaymentProfileRequest{
		MerchantAuthentication:   c.auth(),
		CustomerProfileID:        handle.ClientReferenceID,
		CustomerPaymentProfileID: handle.AccountReferenceID,
	}
	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() && resp.message().Code != codeRecordNotFound {
		return nil, c.rejection(resp)
	}

	removed := handle
	return &removed, nil
}

// Charge authorizes and captures against a stored payment method. The
// gateway reference is the last four digits the processor reports.
func (c *CIMAdapter) Charge(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	if err := c.requireCurrency(); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	tx := &cimProfileTransaction{
		Amount:                   amount.StringFixed(2),
		CustomerProfileID:        handle.ClientReferenceID,
		CustomerPaymentProfileID: handle.AccountReferenceID,
		Order:                    orderFor(invoices),
	}
	return c.transact(ctx, cimTransaction{AuthCapture: tx}, models.OperationCharge, "")
}

// Authorize is not offered for stored payment methods
func (c *CIMAdapter) Authorize(ctx context.Context, handle models.StoredPaymentMethodHandle, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	return nil, pkgerrors.NewUnsupportedOperationError("authorize", backendCIM)
}

// Capture captures a prior authorization made against a stored payment method
func (c *CIMAdapter) Capture(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateTransaction(handle, ref); err != nil {
		return nil, err
	}

	tx := &cimProfileTransaction{
		Amount:                   amount.StringFixed(2),
		CustomerProfileID:        handle.ClientReferenceID,
		CustomerPaymentProfileID: handle.AccountReferenceID,
		TransID:                  ref.TransactionID,
	}
	return c.transact(ctx, cimTransaction{PriorAuthCapture: tx}, models.OperationCapture, ref.ReferenceID)
}

// Void voids a transaction made against a stored payment method
func (c *CIMAdapter) Void(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error) {
	if err := validateTransaction(handle, ref); err != nil {
		return nil, err
	}

	tx := &cimProfileTransaction{
		CustomerProfileID:        handle.ClientReferenceID,
		CustomerPaymentProfileID: handle.AccountReferenceID,
		TransID:                  ref.TransactionID,
	}
	return c.transact(ctx, cimTransaction{Void: tx}, models.OperationVoid, ref.ReferenceID)
}

// Refund credits a transaction made against a stored payment method.
// ref.ReferenceID is the last four digits returned by Charge, or "acct4:rtn4"
// for a bank account.
func (c *CIMAdapter) Refund(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateTransaction(handle, ref); err != nil {
		return nil, err
	}

	tx := &cimProfileTransaction{
		Amount:                   amount.StringFixed(2),
		CustomerProfileID:        handle.ClientReferenceID,
		CustomerPaymentProfileID: handle.AccountReferenceID,
		TransID:                  ref.TransactionID,
	}

	switch {
	case strings.Contains(ref.ReferenceID, ":"):
		accountLast4, routingLast4, err := models.ParseACHGatewayReference(ref.ReferenceID)
		if err != nil {
			return nil, pkgerrors.NewValidationError("reference_id", err.Error())
		}
		tx.BankAccountNumberMasked = "XXXX" + accountLast4
		tx.BankRoutingNumberMasked = "XXXX" + routingLast4
	case handle.MethodKind == models.MethodKindACH:
		tx.BankAccountNumberMasked = "XXXX" + ref.ReferenceID
	default:
		tx.CreditCardNumberMasked = "XXXX" + ref.ReferenceID
	}

	return c.transact(ctx, cimTransaction{Refund: tx}, models.OperationRefund, ref.ReferenceID)
}

func (c *CIMAdapter) store(ctx context.Context, profile cimPaymentProfile, contact models.Contact, clientReferenceID string, existingAccountRefs []string, kind models.MethodKind) (*models.StoredPaymentMethodHandle, error) {
	hints := existingHints(existingAccountRefs)

	if clientReferenceID == "" {
		req := &createCustomerProfileRequest{
			MerchantAuthentication: c.auth(),
			Profile: cimProfile{
				MerchantCustomerID: contact.ContactID,
				Description:        profileDescription(contact),
				Email:              contact.Email,
				PaymentProfiles:    []cimPaymentProfile{profile},
			},
			ExistingProfiles: hints,
			ValidationMode:   c.validationMode(),
		}
		resp, err := c.call(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.ok() {
			return &models.StoredPaymentMethodHandle{
				ClientReferenceID:  resp.CustomerProfileID,
				AccountReferenceID: resp.paymentProfileID(),
				MethodKind:         kind,
			}, nil
		}

		// The owner already has a profile: add the payment method to it
		existing := duplicateProfileID(resp)
		if existing == "" {
			return nil, c.rejection(resp)
		}
		if c.logger != nil {
			c.logger.Info("customer profile already exists, adding payment profile",
				ports.String("client_reference_id", existing),
			)
		}
		clientReferenceID = existing
	}

	req := &createCustomerPaymentProfileRequest{
		MerchantAuthentication: c.auth(),
		CustomerProfileID:      clientReferenceID,
		PaymentProfile:         profile,
		ExistingProfiles:       hints,
		ValidationMode:         c.validationMode(),
	}
	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	// A duplicate payment profile still reports the id it duplicates
	duplicate := resp.message().Code == codeDuplicateRecord && resp.paymentProfileID() != ""
	if !resp.ok() && !duplicate {
		return nil, c.rejection(resp)
	}

	return &models.StoredPaymentMethodHandle{
		ClientReferenceID:  firstNonEmpty(resp.CustomerProfileID, clientReferenceID),
		AccountReferenceID: resp.paymentProfileID(),
		MethodKind:         kind,
	}, nil
}

func (c *CIMAdapter) update(ctx context.Context, profile cimPaymentProfile, handle models.StoredPaymentMethodHandle, kind models.MethodKind) (*models.StoredPaymentMethodHandle, error) {
	profile.CustomerPaymentProfileID = handle.AccountReferenceID

	req := &updateCustomerPaymentProfileRequest{
		MerchantAuthentication: c.auth(),
		CustomerProfileID:      handle.ClientReferenceID,
		PaymentProfile:         profile,
		ValidationMode:         c.validationMode(),
	}
	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, c.rejection(resp)
	}

	return &models.StoredPaymentMethodHandle{
		ClientReferenceID:  handle.ClientReferenceID,
		AccountReferenceID: handle.AccountReferenceID,
		MethodKind:         kind,
	}, nil
}

// transact runs a profile transaction and maps its embedded direct response.
// A rejection without a direct response is mapped to an error result.
func (c *CIMAdapter) transact(ctx context.Context, txn cimTransaction, op models.OperationKind, reference string) (*models.TransactionResult, error) {
	req := &createCustomerProfileTransactionRequest{
		MerchantAuthentication: c.auth(),
		Transaction:            txn,
		ExtraOptions:           c.extraOptions(),
	}
	resp, err := c.call(ctx, req)
	if err != nil {
		return remoteFailureResult(reference, err), err
	}

	if resp.DirectResponse != "" {
		dr, err := ParseDirectResponse(resp.DirectResponse, DelimChar)
		if err == nil {
			gatewayRef := reference
			if last4 := dr.Last4(); last4 != "" && !strings.Contains(reference, ":") {
				gatewayRef = last4
			}
			return dr.Result(op, gatewayRef), nil
		}
		if c.logger != nil {
			c.logger.Warn("unreadable direct response in profile transaction", ports.Err(err))
		}
	}

	msg := resp.message()
	status := models.StatusError
	return &models.TransactionResult{
		Status:             status,
		GatewayReferenceID: reference,
		Message:            msg.Text,
		ResponseCode:       ResponseError,
		ReasonCode:         msg.Code,
		FieldErrors:        TranslateFieldErrors(status, msg.Code, msg.Text),
	}, nil
}

// call sends one profile API request. The input record is written before the
// request and the output record before call returns.
func (c *CIMAdapter) call(ctx context.Context, req any) (*cimResponse, error) {
	body, err := xml.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile request: %w", err)
	}
	body = append([]byte(xml.Header), body...)

	requestName := fmt.Sprintf("%T", req)
	start := time.Now()
	c.audit.input(ctx, c.baseURL, requestPayload(req))

	callCtx, cancel := callContext(ctx, c.timeouts)
	respBody, err := post(callCtx, c.httpClient, c.baseURL, textXML, body)
	cancel()
	if err != nil {
		c.audit.output(ctx, c.baseURL, errorPayload(err), false)
		if c.logger != nil {
			c.logger.Error("profile gateway request failed",
				ports.String("request", requestName),
				ports.Err(err),
			)
		}
		return nil, err
	}

	var resp cimResponse
	if err := xml.Unmarshal(bytes.TrimPrefix(respBody, utf8BOM), &resp); err != nil || resp.Messages.ResultCode == "" {
		if err == nil {
			err = fmt.Errorf("response has no result code")
		}
		pe := malformedResponse(err)
		c.audit.output(ctx, c.baseURL, errorPayload(pe), false)
		return nil, pe
	}

	c.audit.output(ctx, c.baseURL, resp.fields(), resp.ok())

	if c.logger != nil {
		msg := resp.message()
		c.logger.Info("profile gateway response",
			ports.String("request", requestName),
			ports.String("result_code", resp.Messages.ResultCode),
			ports.String("message_code", msg.Code),
			ports.Duration("duration", time.Since(start)),
		)
	}
	return &resp, nil
}

// rejection converts a refused profile request into a PaymentError, with
// field errors taken from the validation response when there is one.
func (c *CIMAdapter) rejection(resp *cimResponse) *pkgerrors.PaymentError {
	msg := resp.message()
	category, ok := cimMessageCategories[msg.Code]
	if !ok {
		category = pkgerrors.CategoryInvalidRequest
	}

	pe := pkgerrors.NewPaymentError(msg.Code, "Payment profile request was rejected", category, false)
	pe.GatewayMessage = msg.Text

	// Store and update send no extraOptions, so validation responses arrive
	// with the processor's default delimiter.
	if raw := resp.validationResponse(); raw != "" {
		if dr, err := ParseDirectResponse(raw, DetectDelimiter(raw)); err == nil {
			status := MapStatus(dr.ResponseCode, models.OperationCharge)
			pe.Fields = TranslateFieldErrors(status, dr.ReasonCode, dr.ReasonText)
		}
	}
	if len(pe.Fields) == 0 {
		pe.Fields = []*pkgerrors.FieldError{{
			Field:    "general",
			Code:     msg.Code,
			Message:  msg.Text,
			Category: category,
		}}
	}
	return pe
}

func (c *CIMAdapter) auth() merchantAuthentication {
	return merchantAuthentication{
		Name:           c.config.LoginID,
		TransactionKey: c.config.TransactionKey,
	}
}

func (c *CIMAdapter) validationMode() string {
	return string(c.config.ValidationMode)
}

// extraOptions carries direct API settings into profile transactions
func (c *CIMAdapter) extraOptions() string {
	opts := []string{"x_delim_char=" + DelimChar, "x_encap_char="}
	if c.currency != "" {
		opts = append(opts, "x_currency_code="+c.currency)
	}
	if c.config.TestMode {
		opts = append(opts, "x_test_request=TRUE")
	}
	return strings.Join(opts, "&")
}

func (c *CIMAdapter) requireCurrency() error {
	if c.currency == "" {
		return pkgerrors.NewValidationError("currency", "currency must be set before charging")
	}
	return nil
}

func (c *CIMAdapter) cardProfile(card models.CardDetails, contact models.Contact, expiry string) cimPaymentProfile {
	return cimPaymentProfile{
		CustomerType: customerType(contact),
		BillTo:       billTo(card.FirstName, card.LastName, contact, card.Address),
		Payment: cimPayment{
			CreditCard: &cimCreditCard{
				CardNumber:     card.CardNumber,
				ExpirationDate: expiry,
				CardCode:       card.SecurityCode,
			},
		},
	}
}

func (c *CIMAdapter) bankProfile(account models.BankAccount, contact models.Contact) cimPaymentProfile {
	return cimPaymentProfile{
		CustomerType: customerType(contact),
		BillTo:       billTo(account.FirstName, account.LastName, contact, account.Address),
		Payment: cimPayment{
			BankAccount: &cimBankAccount{
				AccountType:   cimAccountType(account.AccountType),
				RoutingNumber: account.RoutingNumber,
				AccountNumber: account.AccountNumber,
				NameOnAccount: truncate(strings.TrimSpace(account.FirstName+" "+account.LastName), 22),
				EcheckType:    "WEB",
				BankName:      account.BankName,
			},
		},
	}
}

func cimAccountType(t models.ACHAccountType) string {
	switch t {
	case models.AccountTypeSavings:
		return "savings"
	case models.AccountTypeBusinessChecking:
		return "businessChecking"
	default:
		return "checking"
	}
}

func customerType(contact models.Contact) string {
	if contact.Company != "" {
		return "business"
	}
	return "individual"
}

// billTo uses the payment method's address, or the contact's when the
// method has none.
func billTo(firstName, lastName string, contact models.Contact, addr models.Address) *cimAddress {
	if addr == (models.Address{}) {
		addr = contact.Address
	}
	return &cimAddress{
		FirstName: firstNonEmpty(firstName, contact.FirstName),
		LastName:  firstNonEmpty(lastName, contact.LastName),
		Company:   contact.Company,
		Address:   strings.TrimSpace(addr.Line1 + " " + addr.Line2),
		City:      addr.City,
		State:     addr.State,
		Zip:       addr.Zip,
		Country:   addr.Country,
	}
}

func profileDescription(contact models.Contact) string {
	name := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	if contact.Company != "" {
		name = strings.TrimSpace(name + " " + contact.Company)
	}
	return truncate(name, 255)
}

func orderFor(invoices []models.InvoiceAllocation) *cimOrder {
	number := invoiceNumber(invoices)
	if number == "" {
		return nil
	}
	return &cimOrder{InvoiceNumber: truncate(number, 20)}
}

func existingHints(refs []string) *existingProfileIDs {
	if len(refs) == 0 {
		return nil
	}
	return &existingProfileIDs{IDs: append([]string(nil), refs...)}
}

// duplicateProfileID extracts the existing profile id from a duplicate
// customer profile rejection.
func duplicateProfileID(resp *cimResponse) string {
	msg := resp.message()
	if msg.Code != codeDuplicateRecord {
		return ""
	}
	if resp.CustomerProfileID != "" {
		return resp.CustomerProfileID
	}
	if m := duplicateIDPattern.FindStringSubmatch(msg.Text); len(m) == 2 {
		return m[1]
	}
	return ""
}

// requestPayload converts a request document into a map for auditing
func requestPayload(req any) map[string]any {
	data, err := json.Marshal(req)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return map[string]any{"error": err.Error()}
	}
	return payload
}

func validateHandle(handle models.StoredPaymentMethodHandle) error {
	if handle.ClientReferenceID == "" {
		return pkgerrors.NewValidationError("client_reference_id", "client reference id is required")
	}
	if handle.AccountReferenceID == "" {
		return pkgerrors.NewValidationError("account_reference_id", "account reference id is required")
	}
	return nil
}

func validateTransaction(handle models.StoredPaymentMethodHandle, ref models.TransactionReference) error {
	if err := validateHandle(handle); err != nil {
		return err
	}
	if ref.TransactionID == "" {
		return pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
