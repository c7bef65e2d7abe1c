package ports

import (
	"context"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
)

// AuditLogger receives one record per masked gateway request and response.
// Implementations only append; records are never updated or deleted.
type AuditLogger interface {
	Record(ctx context.Context, record *models.AuditRecord) error
}
