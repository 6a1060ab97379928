package request

// CreateBookingRequest is the checkout initiation payload. All amounts are
// integer cents.
type CreateBookingRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	AgentID        string `json:"agent_id" binding:"required"`
	TripStart      string `json:"trip_start" binding:"required"`
	TripEnd        string `json:"trip_end" binding:"required"`
	TravelerCount  int    `json:"traveler_count" binding:"required"`
	BasePriceCents int64  `json:"base_price_cents" binding:"required"`
}

// AgentActionRequest identifies the agent performing a lifecycle action.
type AgentActionRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
}

// CancelBookingRequest carries the cancellation metadata recorded on the
// booking.
type CancelBookingRequest struct {
	ActorID   string `json:"actor_id" binding:"required"`
	ActorType string `json:"actor_type" binding:"required"`
	Reason    string `json:"reason"`
}

// DisputeRequest opens a dispute against a booking.
type DisputeRequest struct {
	DisputeID string `json:"dispute_id" binding:"required"`
}
