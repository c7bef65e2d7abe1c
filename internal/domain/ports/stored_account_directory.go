package ports

import (
	"context"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
)

// StoredAccountDirectory is owned by the calling application. It lists the
// account reference ids already stored for a contact so a new profile is not
// created twice for the same owner.
type StoredAccountDirectory interface {
	ExistingAccountReferences(ctx context.Context, contact models.Contact, kind models.MethodKind) ([]string, error)
}
