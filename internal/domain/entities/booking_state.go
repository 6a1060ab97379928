package entities

import "errors"

// ErrInvalidStateTransition is returned when a requested transition is not an
// edge of the lifecycle graph. The entity must be left untouched.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// BookingState is the booking lifecycle state.
type BookingState string

const (
	BookingStatePendingPayment    BookingState = "PENDING_PAYMENT"
	BookingStatePaymentProcessing BookingState = "PAYMENT_PROCESSING"
	BookingStatePaymentConfirmed  BookingState = "PAYMENT_CONFIRMED"
	BookingStateAgentConfirmed    BookingState = "AGENT_CONFIRMED"
	BookingStateInProgress        BookingState = "IN_PROGRESS"
	BookingStateCompleted         BookingState = "COMPLETED"
	BookingStateSettled           BookingState = "SETTLED"
	BookingStateCancelled         BookingState = "CANCELLED"
	BookingStateDisputed          BookingState = "DISPUTED"
	BookingStateDisputeResolved   BookingState = "DISPUTE_RESOLVED"
)

// bookingTransitions is the static adjacency table of the booking lifecycle.
// A transition is legal iff the target appears in the source's list. CANCELLED
// is reachable from every state up to and including AGENT_CONFIRMED; DISPUTED
// from AGENT_CONFIRMED onward. CANCELLED and SETTLED are terminal.
var bookingTransitions = map[BookingState][]BookingState{
	BookingStatePendingPayment:    {BookingStatePaymentProcessing, BookingStateCancelled},
	BookingStatePaymentProcessing: {BookingStatePaymentConfirmed, BookingStateCancelled},
	BookingStatePaymentConfirmed:  {BookingStateAgentConfirmed, BookingStateCancelled},
	BookingStateAgentConfirmed:    {BookingStateInProgress, BookingStateCancelled, BookingStateDisputed},
	BookingStateInProgress:        {BookingStateCompleted, BookingStateDisputed},
	BookingStateCompleted:         {BookingStateSettled, BookingStateDisputed},
	BookingStateDisputed:          {BookingStateDisputeResolved},
	BookingStateDisputeResolved:   {BookingStateSettled},
	BookingStateCancelled:         {},
	BookingStateSettled:           {},
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func (from BookingState) CanTransition(to BookingState) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the state. Note DISPUTED is
// not terminal.
func (s BookingState) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// IsKnown reports whether s is one of the declared lifecycle states.
func (s BookingState) IsKnown() bool {
	_, ok := bookingTransitions[s]
	return ok
}
