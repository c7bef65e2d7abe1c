package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDoer struct {
	calls int
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls++
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestNewHTTPClient_UsesTimeout(t *testing.T) {
	client := NewHTTPClient(GatewayClientConfig(), 7*time.Second)
	assert.Equal(t, 7*time.Second, client.Timeout)
	assert.NotNil(t, client.Transport)
}

func TestRateLimitedClient_PassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewRateLimitedClient(NewHTTPClient(GatewayClientConfig(), time.Second), 0, 0)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRateLimitedClient_ContextEndsWhileWaiting(t *testing.T) {
	doer := &countingDoer{}
	// one token per minute, burst 1: the second request must wait
	client := NewRateLimitedClient(doer, 1.0/60, 1)

	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	_, err := client.Do(req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Do(req.WithContext(ctx))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
	assert.Equal(t, 1, doer.calls, "a request refused by the limiter is never sent")
}
