package ports

import (
	"context"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// SecurityEventRepository persists the security audit trail.
type SecurityEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.SecurityEvent) error
	// ListByUsername returns the newest events of username first.
	ListByUsername(ctx context.Context, username string, limit int64) ([]domain.SecurityEvent, error)
}

// SecurityEventSink accepts audit events without blocking the caller.
type SecurityEventSink interface {
	Record(event domain.SecurityEvent)
}
