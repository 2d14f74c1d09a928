package outbound

import (
	"context"
	"time"

	"github.com/jonny/hookbridge/internal/domain/model"
)

type AuditFilter struct {
	SessionID string
	ToolName  string
	Since     *time.Time
	Limit     int
}

// AuditRepository stores how each request was resolved. It is write-mostly;
// hookbridge itself never reads it back while handling a request.
type AuditRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, error)
}
