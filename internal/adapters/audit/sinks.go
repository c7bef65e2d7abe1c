package audit

import (
	"context"
	"errors"

	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
)

// LoggerSink writes audit records to the structured log. Payloads arrive
// masked; the sink does not mask again.
type LoggerSink struct {
	logger ports.Logger
}

var _ ports.AuditLogger = (*LoggerSink)(nil)

// NewLoggerSink creates a new logger sink
func NewLoggerSink(logger ports.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

// Record implements ports.AuditLogger
func (s *LoggerSink) Record(ctx context.Context, record *models.AuditRecord) error {
	s.logger.Info("gateway audit",
		ports.String("audit_id", record.ID.String()),
		ports.String("gateway", record.Gateway),
		ports.String("endpoint", record.EndpointURL),
		ports.String("direction", string(record.Direction)),
		ports.Bool("success", record.Success),
		ports.Any("payload", record.Payload),
	)
	return nil
}

// Fanout forwards every record to each sink in order
type Fanout struct {
	sinks []ports.AuditLogger
}

var _ ports.AuditLogger = (*Fanout)(nil)

// NewFanout creates a fan-out over sinks, skipping nil entries
func NewFanout(sinks ...ports.AuditLogger) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Record implements ports.AuditLogger. Every sink is tried; their errors are
// joined.
func (f *Fanout) Record(ctx context.Context, record *models.AuditRecord) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Record(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
