package authnet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
	"github.com/kevin07696/merchant-gateway/pkg/resilience"
)

// maxResponseBytes bounds how much of a processor response is read
const maxResponseBytes = 1 << 20

// callContext bounds a single processor request. Without timeouts the
// caller's context is used as is.
func callContext(ctx context.Context, timeouts *resilience.TimeoutConfig) (context.Context, context.CancelFunc) {
	if timeouts == nil || timeouts.GatewayCall <= 0 {
		return ctx, func() {}
	}
	return timeouts.GatewayCallContext(ctx)
}

// post sends body to endpoint once and returns the response body. Every
// failure to obtain a usable body is a *PaymentError.
func post(ctx context.Context, client ports.HTTPClient, endpoint, contentType string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewRemoteCallError("REQUEST_ERROR", "Failed to build gateway request", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.NewRemoteCallError("NETWORK_ERROR", "Failed to connect to payment gateway", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, pkgerrors.NewRemoteCallError("NETWORK_ERROR", "Failed to read gateway response", err)
	}

	if httpResp.StatusCode >= 400 {
		pe := pkgerrors.NewPaymentError("GATEWAY_ERROR", "Payment gateway error", pkgerrors.CategorySystemError, false)
		pe.GatewayMessage = fmt.Sprintf("HTTP %d", httpResp.StatusCode)
		return nil, pe
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, pkgerrors.NewPaymentError("EMPTY_RESPONSE", "Payment gateway returned an empty response", pkgerrors.CategorySystemError, false)
	}

	return respBody, nil
}

// malformedResponse reports a response body that could not be parsed
func malformedResponse(err error) *pkgerrors.PaymentError {
	pe := pkgerrors.NewPaymentError("INVALID_RESPONSE", "Payment gateway returned an unreadable response", pkgerrors.CategorySystemError, false)
	pe.Err = err
	pe.GatewayMessage = err.Error()
	return pe
}
