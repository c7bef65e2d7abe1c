package mocks

import (
	"context"
	"sync"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
)

// MockAuditLogger captures audit records in order
type MockAuditLogger struct {
	mu      sync.Mutex
	Records []*models.AuditRecord
	Err     error
}

// NewMockAuditLogger creates a new mock audit logger
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

// Record implements ports.AuditLogger
func (m *MockAuditLogger) Record(ctx context.Context, record *models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, record)
	return m.Err
}

// Directions returns the direction of every captured record in order
func (m *MockAuditLogger) Directions() []models.AuditDirection {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuditDirection, 0, len(m.Records))
	for _, r := range m.Records {
		out = append(out, r.Direction)
	}
	return out
}
