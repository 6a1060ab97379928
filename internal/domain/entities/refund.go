package entities

import (
	"errors"
	"time"
)

// ErrReasonNotRefundable is returned by NewRefund for reasons classified as
// subjective. The refund value is never constructed for such reasons, so no
// refund instance holding a non-refundable-but-approved combination can exist.
var ErrReasonNotRefundable = errors.New("refund reason is not refundable")

// ErrUnknownRefundReason is returned for reasons outside the closed enumeration.
var ErrUnknownRefundReason = errors.New("unknown refund reason")

// Refund is a refund request against a booking's payment.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (booking_id-index): booking_id
//
// RequiresAdminApproval is derived from the reason once at construction and is
// immutable thereafter. Version is the optimistic-concurrency token, bumped on
// every applied state transition.
type Refund struct {
	ID          string       `json:"id"`
	BookingID   string       `json:"booking_id"`
	PaymentRef  string       `json:"payment_ref"`
	RequestedBy string       `json:"requested_by"`
	Reason      RefundReason `json:"reason"`
	Detail      string       `json:"detail,omitempty"`

	AmountCents int64 `json:"amount_cents"`
	IsPartial   bool  `json:"is_partial"`

	State                 RefundState `json:"state"`
	RequiresAdminApproval bool        `json:"requires_admin_approval"`

	DecidedBy  string     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	DenialNote string     `json:"denial_note,omitempty"`

	ProcessorRefundRef string `json:"processor_refund_ref,omitempty"`
	FailureDetail      string `json:"failure_detail,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRefund builds a refund in PENDING. Reasons outside the closed enumeration
// and subjective reasons are rejected here, structurally, before any state
// machine exists. The use case immediately advances PENDING to APPROVED or
// AWAITING_ADMIN (an audited transition), so persisted refunds are never seen
// in PENDING for long.
func NewRefund(id, bookingID, paymentRef, requestedBy string, reason RefundReason, detail string, amountCents int64, isPartial bool, now time.Time) (Refund, error) {
	class, ok := reason.Class()
	if !ok {
		return Refund{}, ErrUnknownRefundReason
	}
	if class == ReasonClassSubjective {
		return Refund{}, ErrReasonNotRefundable
	}

	return Refund{
		ID:                    id,
		BookingID:             bookingID,
		PaymentRef:            paymentRef,
		RequestedBy:           requestedBy,
		Reason:                reason,
		Detail:                detail,
		AmountCents:           amountCents,
		IsPartial:             isPartial,
		State:                 RefundStatePending,
		RequiresAdminApproval: reason.RequiresAdminApproval(),
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}
