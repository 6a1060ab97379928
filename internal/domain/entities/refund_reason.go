package entities

// RefundReason is the closed enumeration of reasons a refund may be requested
// under. The classification table below is the single authoritative source for
// refund policy: it drives refundability, admin-approval derivation and refund
// sizing. The disputes domain consumes this enum instead of maintaining its own
// "subjective complaint" list.
type RefundReason string

const (
	// Agent-fault reasons: full refund including the booking fee, no approval.
	RefundReasonAgentNoShow         RefundReason = "AGENT_NO_SHOW"
	RefundReasonServiceNotDelivered RefundReason = "SERVICE_NOT_DELIVERED"
	RefundReasonDuplicateCharge     RefundReason = "DUPLICATE_CHARGE"
	RefundReasonAgentCancelled      RefundReason = "AGENT_CANCELLED"

	// User cancellation: refund size depends on whether the agent had already
	// confirmed the booking.
	RefundReasonUserCancelled RefundReason = "USER_CANCELLED"

	// Admin-discretion reasons: amount chosen by the admin (default full) and an
	// explicit admin decision is always required.
	RefundReasonQualityIssue  RefundReason = "QUALITY_ISSUE"
	RefundReasonAdminOverride RefundReason = "ADMIN_OVERRIDE"

	// Subjective reasons: never refundable, regardless of admin discretion.
	RefundReasonExpectationsMismatch RefundReason = "EXPECTATIONS_MISMATCH"
	RefundReasonPersonalPreference   RefundReason = "PERSONAL_PREFERENCE"
	RefundReasonChangeOfMind         RefundReason = "CHANGE_OF_MIND"
)

// ReasonClass partitions refund reasons by policy.
type ReasonClass int

const (
	ReasonClassAgentFault ReasonClass = iota
	ReasonClassUserCancellation
	ReasonClassAdminDiscretion
	ReasonClassSubjective
)

var refundReasonClasses = map[RefundReason]ReasonClass{
	RefundReasonAgentNoShow:          ReasonClassAgentFault,
	RefundReasonServiceNotDelivered:  ReasonClassAgentFault,
	RefundReasonDuplicateCharge:      ReasonClassAgentFault,
	RefundReasonAgentCancelled:       ReasonClassAgentFault,
	RefundReasonUserCancelled:        ReasonClassUserCancellation,
	RefundReasonQualityIssue:         ReasonClassAdminDiscretion,
	RefundReasonAdminOverride:        ReasonClassAdminDiscretion,
	RefundReasonExpectationsMismatch: ReasonClassSubjective,
	RefundReasonPersonalPreference:   ReasonClassSubjective,
	RefundReasonChangeOfMind:         ReasonClassSubjective,
}

// Class returns the policy class of the reason and whether the reason is part
// of the closed enumeration at all.
func (r RefundReason) Class() (ReasonClass, bool) {
	c, ok := refundReasonClasses[r]
	return c, ok
}

// Refundable reports whether a refund may ever be granted for the reason.
// Subjective reasons are non-refundable by policy.
func (r RefundReason) Refundable() bool {
	c, ok := refundReasonClasses[r]
	return ok && c != ReasonClassSubjective
}

// RequiresAdminApproval reports whether an explicit admin decision is required
// before the refund can be approved. Derived once at refund creation.
func (r RefundReason) RequiresAdminApproval() bool {
	c, ok := refundReasonClasses[r]
	return ok && c == ReasonClassAdminDiscretion
}
