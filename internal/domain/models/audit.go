package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditDirection tells whether a record holds what was sent or what came back
type AuditDirection string

const (
	AuditDirectionInput  AuditDirection = "input"
	AuditDirectionOutput AuditDirection = "output"
)

// AuditRecord is one masked request or response of a gateway call.
// Records are append-only.
type AuditRecord struct {
	ID          uuid.UUID
	Gateway     string
	EndpointURL string
	Direction   AuditDirection
	Payload     map[string]any
	Success     bool
	CreatedAt   time.Time
}
