package entities

import "time"

// Booking is the marketplace booking entity persisted by the financial core.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (user_id-index): user_id
//
// Monetary representation:
//   - All amounts are integer minor units (cents). Floating point never touches
//     money anywhere in this core.
//
// Invariants (enforced by the fee calculator at creation time and never
// recomputed afterwards):
//   - TotalAmountCents == BasePriceCents + BookingFeeCents
//   - AgentPayoutCents == BasePriceCents - PlatformCommissionCents
//
// Bookings are never deleted; cancellation is a state, not a delete. Version is
// the optimistic-concurrency token: every applied state transition increments
// it by exactly one.
type Booking struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	AgentID       string `json:"agent_id"`
	TripStart     string `json:"trip_start"`
	TripEnd       string `json:"trip_end"`
	TravelerCount int    `json:"traveler_count"`

	BasePriceCents          int64 `json:"base_price_cents"`
	BookingFeeCents         int64 `json:"booking_fee_cents"`
	PlatformCommissionCents int64 `json:"platform_commission_cents"`
	TotalAmountCents        int64 `json:"total_amount_cents"`
	AgentPayoutCents        int64 `json:"agent_payout_cents"`

	State BookingState `json:"state"`

	ProcessorOrderRef   string `json:"processor_order_ref,omitempty"`
	ProcessorPaymentRef string `json:"processor_payment_ref,omitempty"`

	// AgentConfirmedAt survives later transitions (including cancellation) so
	// refund sizing can tell whether the agent had confirmed.
	AgentConfirmedAt *time.Time `json:"agent_confirmed_at,omitempty"`

	CancelledBy  string     `json:"cancelled_by,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	DisputeID string `json:"dispute_id,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
