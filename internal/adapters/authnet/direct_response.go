package authnet

import (
	"fmt"
	"strings"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
)

// DelimChar separates fields of a delimited direct response
const DelimChar = "|"

// DefaultDelimChar is the processor's delimiter when a request sets none, as
// for the validation responses returned by profile store and update.
const DefaultDelimChar = ","

// Positions of the fields read from a delimited direct response
const (
	posResponseCode   = 0
	posReasonCode     = 2
	posReasonText     = 3
	posAuthCode       = 4
	posAVSResult      = 5
	posTransactionID  = 6
	posAccountNumber  = 50
	minResponseFields = posTransactionID + 1
)

// DirectResponse is the parsed delimited response of the direct API. The
// profile API embeds the same format in its directResponse element.
type DirectResponse struct {
	ResponseCode  string
	ReasonCode    string
	ReasonText    string
	AuthCode      string
	AVSResult     string
	TransactionID string
	AccountNumber string // masked, e.g. XXXX1111
}

// ParseDirectResponse splits a delimited response. Responses with fewer than
// seven fields are rejected as malformed.
func ParseDirectResponse(raw, delim string) (*DirectResponse, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty direct response")
	}
	if delim == "" {
		delim = DelimChar
	}

	parts := strings.Split(raw, delim)
	if len(parts) < minResponseFields {
		return nil, fmt.Errorf("malformed direct response: %d fields", len(parts))
	}

	resp := &DirectResponse{
		ResponseCode:  parts[posResponseCode],
		ReasonCode:    parts[posReasonCode],
		ReasonText:    parts[posReasonText],
		AuthCode:      parts[posAuthCode],
		AVSResult:     parts[posAVSResult],
		TransactionID: parts[posTransactionID],
	}
	if len(parts) > posAccountNumber {
		resp.AccountNumber = parts[posAccountNumber]
	}
	return resp, nil
}

// DetectDelimiter returns DelimChar when raw holds enough of it to be a full
// response, and DefaultDelimChar otherwise.
func DetectDelimiter(raw string) string {
	if strings.Count(raw, DelimChar) >= minResponseFields-1 {
		return DelimChar
	}
	return DefaultDelimChar
}

// Last4 returns the last four characters of the masked account number
func (r *DirectResponse) Last4() string {
	return models.LastFour(r.AccountNumber)
}

// Fields returns the response under the x_ names callers know it by
func (r *DirectResponse) Fields() map[string]any {
	return map[string]any{
		"x_response_code":        r.ResponseCode,
		"x_response_reason_code": r.ReasonCode,
		"x_response_reason_text": r.ReasonText,
		"x_auth_code":            r.AuthCode,
		"x_avs_code":             r.AVSResult,
		"x_trans_id":             r.TransactionID,
		"x_last4":                r.Last4(),
	}
}

// Result maps the response to a TransactionResult for op. Field errors are
// attached whenever the status is declined or error.
func (r *DirectResponse) Result(op models.OperationKind, gatewayReferenceID string) *models.TransactionResult {
	status := MapStatus(r.ResponseCode, op)
	return &models.TransactionResult{
		Status:             status,
		TransactionID:      r.TransactionID,
		GatewayReferenceID: gatewayReferenceID,
		Message:            r.ReasonText,
		ResponseCode:       r.ResponseCode,
		ReasonCode:         r.ReasonCode,
		FieldErrors:        TranslateFieldErrors(status, r.ReasonCode, r.ReasonText),
	}
}
