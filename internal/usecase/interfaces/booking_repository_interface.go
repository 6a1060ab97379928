package interfaces

import (
	"context"

	"tripmarket/internal/domain/entities"
)

//go:generate mockgen -source=booking_repository_interface.go -destination=mocks/mock_booking_repository.go -package=mock_interfaces

// IBookingRepository abstracts DynamoDB persistence for Booking.
//
// Update is conditioned on expectedVersion: implementations must fail with
// ErrVersionConflict when the stored version differs, so two concurrent
// transition attempts on the same booking cannot both succeed.
type IBookingRepository interface {
	Create(ctx context.Context, b entities.Booking) (entities.Booking, error)
	GetByID(ctx context.Context, id string) (entities.Booking, error)
	Update(ctx context.Context, b entities.Booking, expectedVersion int64) (entities.Booking, error)
	ListByUserID(ctx context.Context, userID string) ([]entities.Booking, error)
}
