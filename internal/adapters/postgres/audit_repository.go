package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
)

// CreateAuditTableSQL creates the append-only gateway audit table
const CreateAuditTableSQL = `
CREATE TABLE IF NOT EXISTS gateway_audit_log (
    id           UUID PRIMARY KEY,
    gateway      TEXT        NOT NULL,
    endpoint_url TEXT        NOT NULL,
    direction    TEXT        NOT NULL CHECK (direction IN ('input', 'output')),
    payload      JSONB       NOT NULL,
    success      BOOLEAN     NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gateway_audit_log_created_at ON gateway_audit_log (created_at);
`

const insertAuditRecordSQL = `
INSERT INTO gateway_audit_log (id, gateway, endpoint_url, direction, payload, success, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// AuditRepository persists audit records. It only ever inserts.
type AuditRepository struct {
	db Execer
}

var _ ports.AuditLogger = (*AuditRepository)(nil)

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db Execer) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the audit table if it does not exist
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, CreateAuditTableSQL); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Record implements ports.AuditLogger
func (r *AuditRepository) Record(ctx context.Context, record *models.AuditRecord) error {
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	_, err = r.db.Exec(ctx, insertAuditRecordSQL,
		record.ID.String(),
		record.Gateway,
		record.EndpointURL,
		string(record.Direction),
		payload,
		record.Success,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}
