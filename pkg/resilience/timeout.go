package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines the timeout hierarchy for one gateway action
//
// Timeout Hierarchy (from outermost to innermost):
//
//	Action (2x gateway call)
//	  ↓
//	Gateway call (processor round trip, default: 30s)
//	  ↓
//	Key fetch / audit write (5s)
//
// A stored-method store may make two processor calls, so the action bound
// covers both.
type TimeoutConfig struct {
	Action      time.Duration // whole CLI action
	GatewayCall time.Duration // one processor request
	KeyFetch    time.Duration // sealing key from the key provider
	AuditWrite  time.Duration // audit schema and record writes
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return NewTimeoutConfig(30 * time.Second)
}

// NewTimeoutConfig derives the hierarchy from the processor call timeout
func NewTimeoutConfig(gatewayCall time.Duration) *TimeoutConfig {
	if gatewayCall <= 0 {
		gatewayCall = 30 * time.Second
	}
	return &TimeoutConfig{
		Action:      2*gatewayCall + 5*time.Second,
		GatewayCall: gatewayCall,
		KeyFetch:    5 * time.Second,
		AuditWrite:  5 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Action:      5 * time.Second,
		GatewayCall: 2 * time.Second,
		KeyFetch:    1 * time.Second,
		AuditWrite:  1 * time.Second,
	}
}

// ActionContext creates a context with timeout for a whole gateway action
func (tc *TimeoutConfig) ActionContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Action)
}

// GatewayCallContext creates a context for one processor request
func (tc *TimeoutConfig) GatewayCallContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.GatewayCall)
}

// KeyFetchContext creates a context for reading the sealing key
func (tc *TimeoutConfig) KeyFetchContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.KeyFetch)
}

// AuditWriteContext creates a context for audit database setup
func (tc *TimeoutConfig) AuditWriteContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.AuditWrite)
}
