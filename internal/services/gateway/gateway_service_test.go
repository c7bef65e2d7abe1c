package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/merchant-gateway/internal/adapters/authnet"
	"github.com/kevin07696/merchant-gateway/internal/config"
	"github.com/kevin07696/merchant-gateway/internal/domain"
	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
	"github.com/kevin07696/merchant-gateway/pkg/resilience"
	"github.com/kevin07696/merchant-gateway/test/mocks"
)

var testEndpoints = authnet.Endpoints{AIM: "http://aim.test/transact.dll", CIM: "http://cim.test/request.api"}

func approvedDirect(transID, account string) string {
	parts := make([]string, 69)
	parts[0], parts[2], parts[3], parts[6], parts[50] = "1", "1", "This transaction has been approved.", transID, account
	return strings.Join(parts, "|")
}

func newTestService(api config.API, httpClient *mocks.MockHTTPClient, accounts *mocks.MockAccountDirectory) (*Service, *mocks.MockAuditLogger) {
	cfg := config.GatewayConfig{
		LoginID:        "login5678",
		TransactionKey: "abcdefghijklmnop",
		API:            api,
		ValidationMode: config.ValidationModeNone,
	}
	audit := mocks.NewMockAuditLogger()
	var dir ports.StoredAccountDirectory
	if accounts != nil {
		dir = accounts
	}
	svc := NewService(cfg, testEndpoints, httpClient, audit, dir, mocks.NewMockLogger())
	svc.SetCurrency("USD")
	return svc, audit
}

func TestService_RequiresOffsiteStorage(t *testing.T) {
	aim, _ := newTestService(config.APIAIM, mocks.NewStaticHTTPClient(http.StatusOK, ""), nil)
	cim, _ := newTestService(config.APICIM, mocks.NewStaticHTTPClient(http.StatusOK, ""), nil)

	assert.False(t, aim.RequiresOffsiteStorage())
	assert.True(t, cim.RequiresOffsiteStorage())
}

func TestService_BuildsDirectAdapterOnce(t *testing.T) {
	httpClient := mocks.NewStaticHTTPClient(http.StatusOK, approvedDirect("1", "XXXX1111"))
	svc, _ := newTestService(config.APIAIM, httpClient, nil)
	assert.Nil(t, svc.aim)

	card := models.CardDetails{CardNumber: "4111111111111111", Expiry: "203012"}
	_, err := svc.ChargeCard(context.Background(), card, decimal.NewFromInt(1), nil)
	require.NoError(t, err)
	first := svc.aim
	require.NotNil(t, first)

	_, err = svc.ChargeCard(context.Background(), card, decimal.NewFromInt(1), nil)
	require.NoError(t, err)
	assert.Same(t, first, svc.aim)
	assert.Nil(t, svc.cim)

	for _, req := range httpClient.Calls {
		assert.Equal(t, testEndpoints.AIM, req.URL.String())
	}
}

func TestService_SetCurrencyPropagates(t *testing.T) {
	httpClient := mocks.NewStaticHTTPClient(http.StatusOK, approvedDirect("1", "XXXX1111"))
	svc, _ := newTestService(config.APIAIM, httpClient, nil)

	_, err := svc.ChargeCard(context.Background(), models.CardDetails{CardNumber: "4111111111111111", Expiry: "203012"}, decimal.NewFromInt(1), nil)
	require.NoError(t, err)

	svc.SetCurrency("cad")
	assert.Equal(t, "CAD", svc.aim.Currency())
}

func TestService_GatewayCallDeadline(t *testing.T) {
	var deadlines []time.Duration
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		deadline, ok := req.Context().Deadline()
		require.True(t, ok)
		deadlines = append(deadlines, time.Until(deadline))
		return mocks.Response(http.StatusOK, approvedDirect("1", "XXXX1111")), nil
	})
	svc, _ := newTestService(config.APIAIM, httpClient, nil)
	card := models.CardDetails{CardNumber: "4111111111111111", Expiry: "203012"}

	_, err := svc.ChargeCard(context.Background(), card, decimal.NewFromInt(1), nil)
	require.NoError(t, err)

	timeouts := resilience.TestTimeoutConfig()
	svc.SetTimeouts(timeouts)
	_, err = svc.ChargeCard(context.Background(), card, decimal.NewFromInt(1), nil)
	require.NoError(t, err)

	require.Len(t, deadlines, 2)
	assert.Greater(t, deadlines[0], timeouts.GatewayCall, "default deadline applies before SetTimeouts")
	assert.LessOrEqual(t, deadlines[1], timeouts.GatewayCall)
}

func TestService_StoredOperationsRefusedOnDirectGateway(t *testing.T) {
	httpClient := mocks.NewStaticHTTPClient(http.StatusOK, "")
	accounts := &mocks.MockAccountDirectory{}
	svc, audit := newTestService(config.APIAIM, httpClient, accounts)
	handle := models.StoredPaymentMethodHandle{ClientReferenceID: "1", AccountReferenceID: "2"}

	_, err := svc.StoreCard(context.Background(), models.CardDetails{CardNumber: "4111111111111111", Expiry: "203012"}, models.Contact{}, "")
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

	_, err = svc.ChargeStoredCard(context.Background(), handle, decimal.NewFromInt(1), nil)
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

	_, err = svc.RemoveBankAccount(context.Background(), handle)
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

	assert.Empty(t, httpClient.Calls)
	assert.Empty(t, audit.Records)
	assert.Empty(t, accounts.Lookups)
	assert.Nil(t, svc.cim)
}

func TestService_AuthorizeUnsupportedEverywhere(t *testing.T) {
	for _, api := range []config.API{config.APIAIM, config.APICIM} {
		t.Run(string(api), func(t *testing.T) {
			httpClient := mocks.NewStaticHTTPClient(http.StatusOK, "")
			svc, audit := newTestService(api, httpClient, nil)

			_, err := svc.AuthorizeCard(context.Background(), models.CardDetails{CardNumber: "4111111111111111", Expiry: "203012"}, decimal.NewFromInt(1), nil)
			assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

			_, err = svc.AuthorizeStoredCard(context.Background(), models.StoredPaymentMethodHandle{ClientReferenceID: "1", AccountReferenceID: "2"}, decimal.NewFromInt(1), nil)
			assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedOperation)

			assert.Empty(t, httpClient.Calls)
			assert.Empty(t, audit.Records)
		})
	}
}

func TestService_StoreBankAccountForwardsExistingAccounts(t *testing.T) {
	httpClient := mocks.NewStaticHTTPClient(http.StatusOK, `<?xml version="1.0" encoding="utf-8"?>
<createCustomerProfileResponse xmlns="AnetApi/xml/v1/schema/AnetApiSchema.xsd"><messages><resultCode>Ok</resultCode><message><code>I00001</code><text>Successful.</text></message></messages><customerProfileId>900100</customerProfileId><customerPaymentProfileIdList><numericString>800200</numericString></customerPaymentProfileIdList></createCustomerProfileResponse>`)
	accounts := &mocks.MockAccountDirectory{References: []string{"ref-1", "ref-2"}}
	svc, audit := newTestService(config.APICIM, httpClient, accounts)
	contact := models.Contact{ContactID: "contact-42", FirstName: "Jane", LastName: "Doe"}

	handle, err := svc.StoreBankAccount(context.Background(), models.BankAccount{
		FirstName: "Jane", LastName: "Doe", AccountNumber: "123456789", RoutingNumber: "021000021",
	}, contact, "")

	require.NoError(t, err)
	assert.Equal(t, "900100", handle.ClientReferenceID)
	assert.Equal(t, "800200", handle.AccountReferenceID)
	assert.Equal(t, []models.MethodKind{models.MethodKindACH}, accounts.Kinds)
	assert.Equal(t, "contact-42", accounts.Lookups[0].ContactID)

	require.Len(t, httpClient.Bodies, 1)
	assert.Contains(t, httpClient.Bodies[0], "<numericString>ref-1</numericString><numericString>ref-2</numericString>")
	assert.Equal(t, testEndpoints.CIM, httpClient.Calls[0].URL.String())
	assert.Len(t, audit.Records, 2)
}

func TestService_StoreFailsWhenAccountLookupFails(t *testing.T) {
	httpClient := mocks.NewStaticHTTPClient(http.StatusOK, "")
	accounts := &mocks.MockAccountDirectory{Err: errors.New("directory offline")}
	svc, _ := newTestService(config.APICIM, httpClient, accounts)

	_, err := svc.StoreCard(context.Background(), models.CardDetails{CardNumber: "4111111111111111", Expiry: "203012"}, models.Contact{ContactID: "c-1"}, "")

	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeAccountLookupFailed))
	assert.Empty(t, httpClient.Calls)
}

func TestService_UpdateCardValidationMakesNoCall(t *testing.T) {
	httpClient := mocks.NewStaticHTTPClient(http.StatusOK, "")
	svc, audit := newTestService(config.APICIM, httpClient, nil)

	_, err := svc.UpdateCard(context.Background(), models.CardDetails{}, models.Contact{},
		models.StoredPaymentMethodHandle{ClientReferenceID: "1", AccountReferenceID: "2"})

	var verr *pkgerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "card_number", verr.Field)
	assert.Empty(t, audit.Records)
	assert.Empty(t, httpClient.Calls)
}

func TestService_ChargeDispatch(t *testing.T) {
	cimReply := `<?xml version="1.0"?><createCustomerProfileTransactionResponse><messages><resultCode>Ok</resultCode><message><code>I00001</code><text>Successful.</text></message></messages><directResponse>` +
		approvedDirect("70001", "XXXX6789") + `</directResponse></createCustomerProfileTransactionResponse>`
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.String() == testEndpoints.CIM {
			return mocks.Response(http.StatusOK, cimReply), nil
		}
		return mocks.Response(http.StatusOK, approvedDirect("60001", "XXXX1111")), nil
	})
	svc, _ := newTestService(config.APICIM, httpClient, nil)
	ctx := context.Background()
	amount := decimal.NewFromInt(10)

	result, err := svc.Charge(ctx, models.CardDetails{CardNumber: "4111111111111111", Expiry: "203012"}, amount, nil)
	require.NoError(t, err)
	assert.Equal(t, "60001", result.TransactionID)
	assert.Equal(t, testEndpoints.AIM, httpClient.Calls[0].URL.String())

	result, err = svc.Charge(ctx, models.BankAccount{AccountNumber: "123456789", RoutingNumber: "021000021"}, amount, nil)
	require.NoError(t, err)
	assert.Equal(t, "6789:0021", result.GatewayReferenceID)

	result, err = svc.Charge(ctx, models.StoredPaymentMethodHandle{ClientReferenceID: "1", AccountReferenceID: "2", MethodKind: models.MethodKindACH}, amount, nil)
	require.NoError(t, err)
	assert.Equal(t, "70001", result.TransactionID)
	assert.Equal(t, testEndpoints.CIM, httpClient.Calls[2].URL.String())

	_, err = svc.Charge(ctx, nil, amount, nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodePMRequired))
}

func TestService_RemoveDefaultsMethodKind(t *testing.T) {
	httpClient := mocks.NewStaticHTTPClient(http.StatusOK, `<?xml version="1.0"?><deleteCustomerPaymentProfileResponse><messages><resultCode>Error</resultCode><message><code>E00040</code><text>The record cannot be found.</text></message></messages></deleteCustomerPaymentProfileResponse>`)
	svc, _ := newTestService(config.APICIM, httpClient, nil)

	handle, err := svc.RemoveBankAccount(context.Background(), models.StoredPaymentMethodHandle{ClientReferenceID: "1", AccountReferenceID: "2"})

	require.NoError(t, err)
	assert.Equal(t, models.MethodKindACH, handle.MethodKind)
}
