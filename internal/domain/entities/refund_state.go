package entities

// RefundState is the refund lifecycle state.
type RefundState string

const (
	RefundStatePending       RefundState = "PENDING"
	RefundStateAwaitingAdmin RefundState = "AWAITING_ADMIN"
	RefundStateApproved      RefundState = "APPROVED"
	RefundStateProcessing    RefundState = "PROCESSING"
	RefundStateCompleted     RefundState = "COMPLETED"
	RefundStateDenied        RefundState = "DENIED"
	RefundStateFailed        RefundState = "FAILED"
)

// refundTransitions is the static adjacency table of the refund lifecycle.
// FAILED is re-enterable into PROCESSING (retry) or convertible to DENIED;
// a failure is never silently dropped. DENIED and COMPLETED are terminal.
var refundTransitions = map[RefundState][]RefundState{
	RefundStatePending:       {RefundStateAwaitingAdmin, RefundStateApproved},
	RefundStateAwaitingAdmin: {RefundStateApproved, RefundStateDenied},
	RefundStateApproved:      {RefundStateProcessing},
	RefundStateProcessing:    {RefundStateCompleted, RefundStateFailed},
	RefundStateFailed:        {RefundStateProcessing, RefundStateDenied},
	RefundStateCompleted:     {},
	RefundStateDenied:        {},
}

// CanTransition reports whether from -> to is an edge of the refund graph.
func (from RefundState) CanTransition(to RefundState) bool {
	for _, next := range refundTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the state.
func (s RefundState) IsTerminal() bool {
	return len(refundTransitions[s]) == 0
}
