package interfaces

import (
	"context"

	"tripmarket/internal/domain/entities"
)

//go:generate mockgen -source=refund_repository_interface.go -destination=mocks/mock_refund_repository.go -package=mock_interfaces

// IRefundRepository abstracts DynamoDB persistence for Refund. Update follows
// the same optimistic-concurrency contract as IBookingRepository.
type IRefundRepository interface {
	Create(ctx context.Context, r entities.Refund) (entities.Refund, error)
	GetByID(ctx context.Context, id string) (entities.Refund, error)
	Update(ctx context.Context, r entities.Refund, expectedVersion int64) (entities.Refund, error)
	ListByBookingID(ctx context.Context, bookingID string) ([]entities.Refund, error)
}
