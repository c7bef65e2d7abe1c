package authnet

import (
	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
)

// Processor response codes, shared by both APIs
const (
	ResponseApproved = "1"
	ResponseDeclined = "2"
	ResponseError    = "3"
	ResponseHeld     = "4"
)

// MapStatus maps a raw response code to a canonical status. The processor
// reuses "1" for every successful operation, so its meaning depends on op.
// Unknown and empty codes map to StatusError.
func MapStatus(rawCode string, op models.OperationKind) models.TransactionStatus {
	switch rawCode {
	case ResponseApproved:
		switch op {
		case models.OperationVoid:
			return models.StatusVoid
		case models.OperationRefund:
			return models.StatusRefunded
		default:
			return models.StatusApproved
		}
	case ResponseDeclined:
		return models.StatusDeclined
	case ResponseError:
		return models.StatusError
	case ResponseHeld:
		return models.StatusPending
	default:
		return models.StatusError
	}
}

// ReasonCodeInfo contains the caller-facing meaning of a response reason code
type ReasonCodeInfo struct {
	Code        string
	Field       string
	Description string
	Category    pkgerrors.ErrorCategory
	UserMessage string
}

// Reason codes the processor uses to point at a specific input field
var reasonCodes = map[string]ReasonCodeInfo{
	"5": {
		Code:        "5",
		Field:       "amount",
		Description: "A valid amount is required",
		Category:    pkgerrors.CategoryInvalidRequest,
		UserMessage: "The amount is invalid.",
	},
	"6": {
		Code:        "6",
		Field:       "card_number",
		Description: "The credit card number is invalid",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Invalid card number. Please check your card details.",
	},
	"7": {
		Code:        "7",
		Field:       "card_exp",
		Description: "The credit card expiration date is invalid",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Invalid expiration date. Please check your card details.",
	},
	"8": {
		Code:        "8",
		Field:       "card_exp",
		Description: "The credit card has expired",
		Category:    pkgerrors.CategoryExpiredCard,
		UserMessage: "Your card has expired. Please use a different payment method.",
	},
	"9": {
		Code:        "9",
		Field:       "routing_number",
		Description: "The ABA code is invalid",
		Category:    pkgerrors.CategoryInvalidAccount,
		UserMessage: "Invalid routing number. Please check your bank routing number.",
	},
	"10": {
		Code:        "10",
		Field:       "account_number",
		Description: "The account number is invalid",
		Category:    pkgerrors.CategoryInvalidAccount,
		UserMessage: "Invalid account number. Please verify your account details.",
	},
	"11": {
		Code:        "11",
		Field:       "transaction",
		Description: "A duplicate transaction has been submitted",
		Category:    pkgerrors.CategoryDuplicate,
		UserMessage: "This transaction looks like a duplicate of a recent one.",
	},
	"16": {
		Code:        "16",
		Field:       "transaction_id",
		Description: "The transaction cannot be found",
		Category:    pkgerrors.CategoryNotFound,
		UserMessage: "The original transaction could not be found.",
	},
	"17": {
		Code:        "17",
		Field:       "card_type",
		Description: "The merchant does not accept this type of credit card",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "This card type is not accepted.",
	},
	"27": {
		Code:        "27",
		Field:       "address",
		Description: "The transaction resulted in an AVS mismatch",
		Category:    pkgerrors.CategoryFraud,
		UserMessage: "The billing address does not match the card.",
	},
	"28": {
		Code:        "28",
		Field:       "card_type",
		Description: "The merchant does not accept this type of credit card",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "This card type is not accepted.",
	},
	"37": {
		Code:        "37",
		Field:       "card_number",
		Description: "The credit card number is invalid",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Invalid card number. Please check your card details.",
	},
	"44": {
		Code:        "44",
		Field:       "card_security_code",
		Description: "The card code is invalid",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Incorrect security code. Please check the code on your card.",
	},
	"45": {
		Code:        "45",
		Field:       "card_security_code",
		Description: "The card code and AVS filters rejected the transaction",
		Category:    pkgerrors.CategoryFraud,
		UserMessage: "The security code or billing address does not match the card.",
	},
	"65": {
		Code:        "65",
		Field:       "card_security_code",
		Description: "The card code does not match",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Incorrect security code. Please check the code on your card.",
	},
	"78": {
		Code:        "78",
		Field:       "card_security_code",
		Description: "The card code is invalid",
		Category:    pkgerrors.CategoryInvalidCard,
		UserMessage: "Incorrect security code. Please check the code on your card.",
	},
	"127": {
		Code:        "127",
		Field:       "address",
		Description: "The transaction resulted in an AVS mismatch and could not be voided",
		Category:    pkgerrors.CategoryFraud,
		UserMessage: "The billing address does not match the card.",
	},
}

// GetReasonCode retrieves field information for a reason code
func GetReasonCode(code string) (ReasonCodeInfo, bool) {
	info, ok := reasonCodes[code]
	return info, ok
}

// TranslateFieldErrors turns a declined or errored response into field
// errors. Approved, held and mapped-success statuses never produce any.
// An error response with an unlisted reason still yields a "general" error
// so the caller sees something; an unlisted decline yields none.
func TranslateFieldErrors(status models.TransactionStatus, reasonCode, reasonText string) []*pkgerrors.FieldError {
	if status != models.StatusDeclined && status != models.StatusError {
		return nil
	}

	if info, ok := reasonCodes[reasonCode]; ok {
		msg := info.UserMessage
		if reasonText != "" {
			msg = reasonText
		}
		return []*pkgerrors.FieldError{{
			Field:    info.Field,
			Code:     info.Code,
			Message:  msg,
			Category: info.Category,
		}}
	}

	if status == models.StatusError {
		msg := reasonText
		if msg == "" {
			msg = "The payment processor returned an error."
		}
		return []*pkgerrors.FieldError{{
			Field:    "general",
			Code:     reasonCode,
			Message:  msg,
			Category: pkgerrors.CategorySystemError,
		}}
	}
	return nil
}
