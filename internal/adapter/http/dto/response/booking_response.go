package response

import (
	"time"

	"tripmarket/internal/domain/entities"
)

type BookingResponse struct {
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

	State string `json:"state"`

	ProcessorOrderRef   string `json:"processor_order_ref,omitempty"`
	ProcessorPaymentRef string `json:"processor_payment_ref,omitempty"`

	AgentConfirmedAt *time.Time `json:"agent_confirmed_at,omitempty"`

	CancelledBy  string     `json:"cancelled_by,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	DisputeID string `json:"dispute_id,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromBooking(b entities.Booking) BookingResponse {
	return BookingResponse{
		ID:                      b.ID,
		UserID:                  b.UserID,
		AgentID:                 b.AgentID,
		TripStart:               b.TripStart,
		TripEnd:                 b.TripEnd,
		TravelerCount:           b.TravelerCount,
		BasePriceCents:          b.BasePriceCents,
		BookingFeeCents:         b.BookingFeeCents,
		PlatformCommissionCents: b.PlatformCommissionCents,
		TotalAmountCents:        b.TotalAmountCents,
		AgentPayoutCents:        b.AgentPayoutCents,
		State:                   string(b.State),
		ProcessorOrderRef:       b.ProcessorOrderRef,
		ProcessorPaymentRef:     b.ProcessorPaymentRef,
		AgentConfirmedAt:        b.AgentConfirmedAt,
		CancelledBy:             b.CancelledBy,
		CancelReason:            b.CancelReason,
		CancelledAt:             b.CancelledAt,
		DisputeID:               b.DisputeID,
		Version:                 b.Version,
		CreatedAt:               b.CreatedAt,
		UpdatedAt:               b.UpdatedAt,
	}
}

type AuditEntryResponse struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	ActorID       string    `json:"actor_id"`
	ActorType     string    `json:"actor_type"`
	Action        string    `json:"action"`
	PreviousState string    `json:"previous_state,omitempty"`
	NewState      string    `json:"new_state"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CorrelationID string    `json:"correlation_id"`
}

func FromAuditEntries(entries []entities.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:            e.ID,
			Timestamp:     e.Timestamp,
			EntityType:    string(e.EntityType),
			EntityID:      e.EntityID,
			ActorID:       e.ActorID,
			ActorType:     e.ActorType,
			Action:        e.Action,
			PreviousState: e.PreviousState,
			NewState:      e.NewState,
			AmountCents:   e.AmountCents,
			Reason:        e.Reason,
			CorrelationID: e.CorrelationID,
		})
	}
	return out
}
