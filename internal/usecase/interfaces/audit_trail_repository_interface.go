package interfaces

import (
	"context"

	"tripmarket/internal/domain/entities"
)

//go:generate mockgen -source=audit_trail_repository_interface.go -destination=mocks/mock_audit_trail_repository.go -package=mock_interfaces

// IAuditTrailRepository is the append-only sink for audit entries. There is
// deliberately no update or delete: entries are immutable and outlive the
// entities they describe.
type IAuditTrailRepository interface {
	Append(ctx context.Context, e entities.AuditEntry) error
	ListByEntity(ctx context.Context, entityType entities.AuditEntityType, entityID string) ([]entities.AuditEntry, error)
}
