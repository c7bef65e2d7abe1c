package authnet

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	"github.com/kevin07696/merchant-gateway/pkg/security"
)

// auditTrail writes the masked input and output of every processor call.
// Payloads are masked here, so sinks only ever see redacted data.
type auditTrail struct {
	gateway string
	sink    ports.AuditLogger
	logger  ports.Logger
	rules   []security.MaskRule
}

func newAuditTrail(gateway string, sink ports.AuditLogger, logger ports.Logger) auditTrail {
	return auditTrail{
		gateway: gateway,
		sink:    sink,
		logger:  logger,
		rules:   security.DefaultMaskRules(),
	}
}

// input records what is about to be sent
func (a auditTrail) input(ctx context.Context, endpoint string, payload map[string]any) {
	a.record(ctx, endpoint, models.AuditDirectionInput, payload, true)
}

// output records what came back, or why nothing usable did
func (a auditTrail) output(ctx context.Context, endpoint string, payload map[string]any, success bool) {
	a.record(ctx, endpoint, models.AuditDirectionOutput, payload, success)
}

func (a auditTrail) record(ctx context.Context, endpoint string, direction models.AuditDirection, payload map[string]any, success bool) {
	if a.sink == nil {
		return
	}

	record := &models.AuditRecord{
		ID:          uuid.New(),
		Gateway:     a.gateway,
		EndpointURL: endpoint,
		Direction:   direction,
		Payload:     security.Mask(payload, a.rules),
		Success:     success,
		CreatedAt:   time.Now().UTC(),
	}

	// A failing sink never fails the payment call
	if err := a.sink.Record(ctx, record); err != nil && a.logger != nil {
		a.logger.Warn("failed to write gateway audit record",
			ports.String("gateway", a.gateway),
			ports.String("direction", string(direction)),
			ports.Err(err),
		)
	}
}

// errorPayload describes a failed call for the output record
func errorPayload(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
