package response

import (
	"time"

	"tripmarket/internal/domain/entities"
)

type RefundResponse struct {
	ID          string `json:"id"`
	BookingID   string `json:"booking_id"`
	PaymentRef  string `json:"payment_ref"`
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
	Detail      string `json:"detail,omitempty"`

	AmountCents int64 `json:"amount_cents"`
	IsPartial   bool  `json:"is_partial"`

	State                 string `json:"state"`
	RequiresAdminApproval bool   `json:"requires_admin_approval"`

	DecidedBy  string     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	DenialNote string     `json:"denial_note,omitempty"`

	ProcessorRefundRef string `json:"processor_refund_ref,omitempty"`
	FailureDetail      string `json:"failure_detail,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromRefund(r entities.Refund) RefundResponse {
	return RefundResponse{
		ID:                    r.ID,
		BookingID:             r.BookingID,
		PaymentRef:            r.PaymentRef,
		RequestedBy:           r.RequestedBy,
		Reason:                string(r.Reason),
		Detail:                r.Detail,
		AmountCents:           r.AmountCents,
		IsPartial:             r.IsPartial,
		State:                 string(r.State),
		RequiresAdminApproval: r.RequiresAdminApproval,
		DecidedBy:             r.DecidedBy,
		DecidedAt:             r.DecidedAt,
		DenialNote:            r.DenialNote,
		ProcessorRefundRef:    r.ProcessorRefundRef,
		FailureDetail:         r.FailureDetail,
		Version:               r.Version,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func FromRefunds(refunds []entities.Refund) []RefundResponse {
	out := make([]RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, FromRefund(r))
	}
	return out
}
