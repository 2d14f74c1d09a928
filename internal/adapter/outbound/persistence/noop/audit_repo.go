package noop

import (
	"context"
	"log/slog"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

// AuditRepo logs audit entries instead of storing them. Used when no audit
// database is configured.
type AuditRepo struct {
	logger *slog.Logger
}

var _ outbound.AuditRepository = (*AuditRepo)(nil)

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(logger *slog.Logger) *AuditRepo {
	return &AuditRepo{logger: logger}
}

func (r *AuditRepo) Create(_ context.Context, log model.AuditLog) error {
	r.logger.Info("noop: audit entry",
		"event", log.EventType,
		"invocation", log.InvocationID,
		"session", log.SessionID,
		"tool", log.ToolName,
		"actor", log.Actor,
		"description", log.Description,
	)
	return nil
}

func (r *AuditRepo) List(context.Context, outbound.AuditFilter) ([]model.AuditLog, error) {
	return nil, nil
}
