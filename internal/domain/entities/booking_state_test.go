package entities

import "testing"

var allBookingStates = []BookingState{
	BookingStatePendingPayment,
	BookingStatePaymentProcessing,
	BookingStatePaymentConfirmed,
	BookingStateAgentConfirmed,
	BookingStateInProgress,
	BookingStateCompleted,
	BookingStateSettled,
	BookingStateCancelled,
	BookingStateDisputed,
	BookingStateDisputeResolved,
}

func TestBookingState_HappyPath(t *testing.T) {
	path := []BookingState{
		BookingStatePendingPayment,
		BookingStatePaymentProcessing,
		BookingStatePaymentConfirmed,
		BookingStateAgentConfirmed,
		BookingStateInProgress,
		BookingStateCompleted,
		BookingStateSettled,
	}
	for i := 0; i < len(path)-1; i++ {
		if !path[i].CanTransition(path[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", path[i], path[i+1])
		}
	}
}

func TestBookingState_CancellationWindow(t *testing.T) {
	cancellable := []BookingState{
		BookingStatePendingPayment,
		BookingStatePaymentProcessing,
		BookingStatePaymentConfirmed,
		BookingStateAgentConfirmed,
	}
	for _, s := range cancellable {
		if !s.CanTransition(BookingStateCancelled) {
			t.Fatalf("expected %s -> CANCELLED to be legal", s)
		}
	}
	for _, s := range []BookingState{BookingStateInProgress, BookingStateCompleted, BookingStateSettled, BookingStateDisputed} {
		if s.CanTransition(BookingStateCancelled) {
			t.Fatalf("expected %s -> CANCELLED to be illegal", s)
		}
	}
}

func TestBookingState_DisputeReachability(t *testing.T) {
	for _, s := range []BookingState{BookingStateAgentConfirmed, BookingStateInProgress, BookingStateCompleted} {
		if !s.CanTransition(BookingStateDisputed) {
			t.Fatalf("expected %s -> DISPUTED to be legal", s)
		}
	}
	for _, s := range []BookingState{BookingStatePendingPayment, BookingStatePaymentProcessing, BookingStatePaymentConfirmed} {
		if s.CanTransition(BookingStateDisputed) {
			t.Fatalf("expected %s -> DISPUTED to be illegal", s)
		}
	}
	if !BookingStateDisputed.CanTransition(BookingStateDisputeResolved) {
		t.Fatal("expected DISPUTED -> DISPUTE_RESOLVED to be legal")
	}
	if !BookingStateDisputeResolved.CanTransition(BookingStateSettled) {
		t.Fatal("expected DISPUTE_RESOLVED -> SETTLED to be legal")
	}
}

func TestBookingState_TerminalStates(t *testing.T) {
	for _, s := range allBookingStates {
		terminal := s == BookingStateCancelled || s == BookingStateSettled
		if s.IsTerminal() != terminal {
			t.Fatalf("state %s: expected terminal=%v", s, terminal)
		}
	}
	if BookingStateDisputed.IsTerminal() {
		t.Fatal("DISPUTED must not be terminal")
	}
}

// Every (from, to) pair not in the adjacency table must be rejected.
func TestBookingState_NonEdgesRejected(t *testing.T) {
	for _, from := range allBookingStates {
		allowed := map[BookingState]bool{}
		for _, to := range bookingTransitions[from] {
			allowed[to] = true
		}
		for _, to := range allBookingStates {
			if got := from.CanTransition(to); got != allowed[to] {
				t.Fatalf("%s -> %s: expected %v, got %v", from, to, allowed[to], got)
			}
		}
	}
}

func TestBookingState_UnknownState(t *testing.T) {
	if BookingState("SHIPPED").IsKnown() {
		t.Fatal("unexpected known state")
	}
	if BookingState("SHIPPED").CanTransition(BookingStateSettled) {
		t.Fatal("unknown state must not transition anywhere")
	}
}
