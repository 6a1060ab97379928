package interfaces

import "context"

//go:generate mockgen -source=event_publisher_interface.go -destination=mocks/mock_event_publisher.go -package=mock_interfaces

// IEventPublisher abstracts the event bus (RabbitMQ in production). Publish is
// best-effort from the caller's point of view: failures are captured by the
// dead letter store, never propagated into the business transaction.
type IEventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, correlationID string) error
}
