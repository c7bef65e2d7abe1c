package mocks

import (
	"context"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
)

// MockAccountDirectory returns fixed account references and records lookups
type MockAccountDirectory struct {
	References []string
	Err        error
	Lookups    []models.Contact
	Kinds      []models.MethodKind
}

// ExistingAccountReferences implements ports.StoredAccountDirectory
func (m *MockAccountDirectory) ExistingAccountReferences(ctx context.Context, contact models.Contact, kind models.MethodKind) ([]string, error) {
	m.Lookups = append(m.Lookups, contact)
	m.Kinds = append(m.Kinds, kind)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.References, nil
}
