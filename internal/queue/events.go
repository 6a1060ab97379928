// Package queue defines the event types exchanged over the message broker and
// the background consumer that reacts to refund approvals.
package queue

// Event type constants shared by publisher, consumer and dead letter triage.
const (
	EventBookingCheckoutInitiated = "booking.checkout_initiated"
	EventBookingCancelled         = "booking.cancelled"
	EventBookingAgentConfirmed    = "booking.agent_confirmed"
	EventBookingStarted           = "booking.started"
	EventBookingCompleted         = "booking.completed"
	EventBookingSettled           = "booking.settled"
	EventBookingDisputed          = "booking.disputed"
	EventBookingDisputeResolved   = "booking.dispute_resolved"
	EventPaymentConfirmed         = "payment.confirmed"
	EventPaymentRefundIssued      = "payment.refund_issued"
	EventRefundRequested          = "refund.requested"
	EventRefundApproved           = "refund.approved"
	EventRefundDenied             = "refund.denied"
)

// BookingEvent is the payload for booking lifecycle events. Amounts are
// integer cents; no floating-point money crosses this boundary.
type BookingEvent struct {
	BookingID        string `json:"booking_id"`
	UserID           string `json:"user_id"`
	AgentID          string `json:"agent_id"`
	State            string `json:"state"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	AgentPayoutCents int64  `json:"agent_payout_cents,omitempty"`
	OrderRef         string `json:"order_ref,omitempty"`
	OccurredAt       string `json:"occurred_at"`
}

// RefundEvent is the payload for refund lifecycle events, including the
// refund.approved event the dispute domain emits and this core consumes to
// initiate processing.
type RefundEvent struct {
	RefundID    string `json:"refund_id"`
	BookingID   string `json:"booking_id"`
	PaymentRef  string `json:"payment_ref"`
	Reason      string `json:"reason"`
	AmountCents int64  `json:"amount_cents"`
	IsPartial   bool   `json:"is_partial"`
	RefundRef   string `json:"refund_ref,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
