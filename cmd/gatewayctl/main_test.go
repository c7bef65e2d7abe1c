package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
)

// recordingGateway records which operation each action reached
type recordingGateway struct {
	paymentGateway
	calls  []string
	refs   []models.TransactionReference
	amount decimal.Decimal
}

func (g *recordingGateway) note(name string, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	g.calls = append(g.calls, name)
	g.refs = append(g.refs, ref)
	g.amount = amount
	return &models.TransactionResult{Status: models.StatusApproved}, nil
}

func (g *recordingGateway) VoidCard(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error) {
	return g.note("VoidCard", ref, decimal.Zero)
}

func (g *recordingGateway) RefundCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	return g.note("RefundCard", ref, amount)
}

func (g *recordingGateway) VoidBankAccount(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error) {
	return g.note("VoidBankAccount", ref, decimal.Zero)
}

func (g *recordingGateway) RefundBankAccount(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	return g.note("RefundBankAccount", ref, amount)
}

func (g *recordingGateway) VoidStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error) {
	return g.note("VoidStoredCard", ref, decimal.Zero)
}

func (g *recordingGateway) RefundStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	return g.note("RefundStoredCard", ref, amount)
}

func (g *recordingGateway) VoidStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error) {
	return g.note("VoidStoredBankAccount", ref, decimal.Zero)
}

func (g *recordingGateway) RefundStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error) {
	return g.note("RefundStoredBankAccount", ref, amount)
}

func TestPerform_VoidAndRefundFollowReferenceForm(t *testing.T) {
	cardRef := models.TransactionReference{ReferenceID: "1111", TransactionID: "60001"}
	achRef := models.TransactionReference{ReferenceID: "6789:0021", TransactionID: "60002"}
	cardHandle := models.StoredPaymentMethodHandle{ClientReferenceID: "900100", AccountReferenceID: "800200", MethodKind: models.MethodKindCard}
	achHandle := models.StoredPaymentMethodHandle{ClientReferenceID: "900100", AccountReferenceID: "800300", MethodKind: models.MethodKindACH}

	tests := []struct {
		name   string
		action string
		req    request
		want   string
	}{
		{name: "card void", action: "void", req: request{Reference: cardRef}, want: "VoidCard"},
		{name: "card refund", action: "refund", req: request{Reference: cardRef}, want: "RefundCard"},
		{name: "bank account void", action: "void", req: request{Reference: achRef}, want: "VoidBankAccount"},
		{name: "bank account refund", action: "refund", req: request{Reference: achRef}, want: "RefundBankAccount"},
		{name: "malformed bank reference stays card", action: "refund", req: request{Reference: models.TransactionReference{ReferenceID: "6789:", TransactionID: "1"}}, want: "RefundCard"},
		{name: "stored card void", action: "void", req: request{Handle: cardHandle, Reference: cardRef}, want: "VoidStoredCard"},
		{name: "stored card refund", action: "refund", req: request{Handle: cardHandle, Reference: cardRef}, want: "RefundStoredCard"},
		{name: "stored bank account void", action: "void", req: request{Handle: achHandle, Reference: achRef}, want: "VoidStoredBankAccount"},
		{name: "stored bank account refund", action: "refund", req: request{Handle: achHandle, Reference: achRef}, want: "RefundStoredBankAccount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &recordingGateway{}

			out, err := perform(context.Background(), gw, tt.action, tt.req, decimal.NewFromInt(5))

			require.NoError(t, err)
			require.NotNil(t, out)
			assert.Equal(t, []string{tt.want}, gw.calls)
			assert.Equal(t, tt.req.Reference, gw.refs[0])
		})
	}
}

func TestPerform_RefundForwardsAmount(t *testing.T) {
	gw := &recordingGateway{}
	req := request{Reference: models.TransactionReference{ReferenceID: "6789:0021", TransactionID: "60002"}}

	_, err := perform(context.Background(), gw, "refund", req, decimal.RequireFromString("12.34"))

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.34").Equal(gw.amount))
}

func TestPerform_StoreNeedsPaymentDetails(t *testing.T) {
	gw := &recordingGateway{}

	_, err := perform(context.Background(), gw, "store", request{}, decimal.Zero)

	require.Error(t, err)
	assert.Empty(t, gw.calls)
}

func TestPerform_UnknownAction(t *testing.T) {
	_, err := perform(context.Background(), &recordingGateway{}, "capture", request{}, decimal.Zero)
	assert.Error(t, err)
}

func TestIsACHReference(t *testing.T) {
	assert.True(t, isACHReference("6789:0021"))
	assert.False(t, isACHReference("1111"))
	assert.False(t, isACHReference(":0021"))
	assert.False(t, isACHReference(""))
}

func TestDecodeJSON(t *testing.T) {
	const body = `{"amount":"10.00","reference":{"ReferenceID":"6789:0021","TransactionID":"60002"}}`

	t.Run("stdin", func(t *testing.T) {
		var req request
		require.NoError(t, decodeJSON("-", strings.NewReader(body), &req))
		assert.Equal(t, "10.00", req.Amount)
		assert.Equal(t, "6789:0021", req.Reference.ReferenceID)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		var req request
		require.NoError(t, decodeJSON(path, strings.NewReader("ignored"), &req))
		assert.Equal(t, "60002", req.Reference.TransactionID)
	})

	t.Run("missing path", func(t *testing.T) {
		var req request
		assert.Error(t, decodeJSON("", strings.NewReader(body), &req))
	})

	t.Run("invalid stdin", func(t *testing.T) {
		var req request
		err := decodeJSON("-", strings.NewReader("{"), &req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stdin")
	})
}
