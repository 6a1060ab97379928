package interfaces

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=payment_processor_interface.go -destination=mocks/mock_payment_processor.go -package=mock_interfaces

// IPaymentProcessor abstracts the external payment processor (e.g. Mercado
// Pago). All amounts are integer cents; adapters convert to provider units at
// the very edge. Every call carries the caller's idempotency key so the
// processor deduplicates independently of our own guard.
//
// Calls through this port are expected to be wrapped by the circuit breaker;
// the port itself stays breaker-unaware.
type IPaymentProcessor interface {
	// CreateOrder opens a checkout order/session for the total amount and
	// returns the processor's order reference.
	CreateOrder(ctx context.Context, idempotencyKey string, amountCents int64, metadata map[string]string) (string, error)
	// CreateRefund issues a refund against a captured payment and returns the
	// processor's refund reference.
	CreateRefund(ctx context.Context, idempotencyKey, paymentRef string, amountCents int64) (string, error)
	// VerifyWebhookSignature authenticates an inbound processor webhook.
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// ProcessorError wraps a failure reported by the external processor and
// classifies it retryable or not from the upstream status code.
type ProcessorError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("payment processor error status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
}

// Retryable reports whether the caller may retry: 5xx and 429 are transient,
// 4xx are not.
func (e *ProcessorError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
