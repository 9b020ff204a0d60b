package ports

import (
	"context"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditRepository persists the audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	// List returns the newest events first, at most limit of them.
	List(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
