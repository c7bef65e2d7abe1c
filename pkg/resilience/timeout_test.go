package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTimeoutConfig(t *testing.T) {
	config := DefaultTimeoutConfig()

	assert.Equal(t, 30*time.Second, config.GatewayCall)
	assert.Greater(t, config.Action, 2*config.GatewayCall, "action must outlive two processor calls")
	assert.Less(t, config.KeyFetch, config.GatewayCall)
}

func TestNewTimeoutConfig(t *testing.T) {
	config := NewTimeoutConfig(10 * time.Second)
	assert.Equal(t, 10*time.Second, config.GatewayCall)
	assert.Equal(t, 25*time.Second, config.Action)

	fallback := NewTimeoutConfig(0)
	assert.Equal(t, 30*time.Second, fallback.GatewayCall)
}

func TestTestTimeoutConfig(t *testing.T) {
	config := TestTimeoutConfig()

	assert.Less(t, config.Action, 10*time.Second)
	assert.Greater(t, config.Action, config.GatewayCall)
}

func TestContexts(t *testing.T) {
	config := DefaultTimeoutConfig()

	tests := []struct {
		name    string
		create  func(context.Context) (context.Context, context.CancelFunc)
		timeout time.Duration
	}{
		{"action", config.ActionContext, config.Action},
		{"gateway call", config.GatewayCallContext, config.GatewayCall},
		{"key fetch", config.KeyFetchContext, config.KeyFetch},
		{"audit write", config.AuditWriteContext, config.AuditWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.create(context.Background())
			defer cancel()

			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(tt.timeout), deadline, 100*time.Millisecond)
		})
	}
}

func TestContextRespectsParentCancellation(t *testing.T) {
	config := DefaultTimeoutConfig()
	parent, cancelParent := context.WithCancel(context.Background())

	ctx, cancel := config.ActionContext(parent)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("context should be cancelled with its parent")
	}
}
