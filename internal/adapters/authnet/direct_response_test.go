package authnet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
)

// directResponse builds a delimited response with the account number at its
// real position.
func directResponse(code, reasonCode, reasonText, transID, account string) string {
	return delimitedResponse(DelimChar, code, reasonCode, reasonText, transID, account)
}

// delimitedResponse builds the same response joined with delim
func delimitedResponse(delim, code, reasonCode, reasonText, transID, account string) string {
	parts := make([]string, 69)
	parts[posResponseCode] = code
	parts[1] = "1"
	parts[posReasonCode] = reasonCode
	parts[posReasonText] = reasonText
	parts[posAuthCode] = "ABC123"
	parts[posAVSResult] = "Y"
	parts[posTransactionID] = transID
	parts[posAccountNumber] = account
	return strings.Join(parts, delim)
}

func TestParseDirectResponse(t *testing.T) {
	raw := directResponse("1", "1", "This transaction has been approved.", "2149186775", "XXXX1111")

	resp, err := ParseDirectResponse(raw, DelimChar)
	require.NoError(t, err)

	assert.Equal(t, "1", resp.ResponseCode)
	assert.Equal(t, "1", resp.ReasonCode)
	assert.Equal(t, "This transaction has been approved.", resp.ReasonText)
	assert.Equal(t, "ABC123", resp.AuthCode)
	assert.Equal(t, "Y", resp.AVSResult)
	assert.Equal(t, "2149186775", resp.TransactionID)
	assert.Equal(t, "XXXX1111", resp.AccountNumber)
	assert.Equal(t, "1111", resp.Last4())
}

func TestParseDirectResponse_ShortButValid(t *testing.T) {
	resp, err := ParseDirectResponse("2,1,2,declined,,N,0", ",")
	require.NoError(t, err)
	assert.Equal(t, "2", resp.ResponseCode)
	assert.Empty(t, resp.AccountNumber)
}

func TestParseDirectResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace", raw: "   \n"},
		{name: "too few fields", raw: "1|1|1|ok"},
		{name: "html error page", raw: "<html>Service Unavailable</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDirectResponse(tt.raw, DelimChar)
			assert.Error(t, err)
		})
	}
}

func TestDirectResponse_Result(t *testing.T) {
	resp, err := ParseDirectResponse(directResponse("2", "8", "The credit card has expired.", "0", "XXXX0002"), DelimChar)
	require.NoError(t, err)

	result := resp.Result(models.OperationCharge, "0002")

	assert.Equal(t, models.StatusDeclined, result.Status)
	assert.Equal(t, "0002", result.GatewayReferenceID)
	assert.Equal(t, "The credit card has expired.", result.Message)
	assert.Equal(t, "8", result.ReasonCode)
	require.Len(t, result.FieldErrors, 1)
	assert.Equal(t, "card_exp", result.FieldErrors[0].Field)
	assert.False(t, result.Succeeded())
}

func TestDirectResponse_Fields(t *testing.T) {
	resp, err := ParseDirectResponse(directResponse("1", "1", "ok", "42", "XXXX4242"), DelimChar)
	require.NoError(t, err)

	fields := resp.Fields()
	assert.Equal(t, "42", fields["x_trans_id"])
	assert.Equal(t, "4242", fields["x_last4"])
	assert.NotContains(t, fields, "x_card_num")
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, DelimChar, DetectDelimiter(directResponse("1", "1", "ok", "42", "XXXX4242")))
	assert.Equal(t, DefaultDelimChar, DetectDelimiter(delimitedResponse(DefaultDelimChar, "3", "8", "The credit card has expired.", "0", "XXXX1111")))
	assert.Equal(t, DefaultDelimChar, DetectDelimiter("1|2"))
}
