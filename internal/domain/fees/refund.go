package fees

import (
	"fmt"

	"tripmarket/internal/domain/entities"
)

// RefundAmount sizes a refund. This table is the single source of truth for
// refund sizing; it encodes business policy:
//
//   - agent-fault reasons (no-show, non-delivery, duplicate charge, agent
//     cancellation): full refund including the booking fee;
//   - user cancellation before agent confirmation: total minus fee;
//   - user cancellation after agent confirmation: floor(50%) of total minus fee;
//   - admin-discretion reasons (quality issue, admin override): the
//     admin-specified amount, defaulting to full when zero.
//
// adminAmountCents is only consulted for admin-discretion reasons and must not
// exceed the total. Subjective reasons never reach this function: the refund
// constructor rejects them, but the classification is re-checked here so the
// table stays authoritative on its own.
func (c *Calculator) RefundAmount(reason entities.RefundReason, totalAmountCents, bookingFeeCents int64, agentConfirmed bool, adminAmountCents int64) (entities.RefundAmount, error) {
	class, ok := reason.Class()
	if !ok {
		return entities.RefundAmount{}, entities.ErrUnknownRefundReason
	}

	switch class {
	case entities.ReasonClassAgentFault:
		return entities.RefundAmount{AmountCents: totalAmountCents, IsPartial: false}, nil

	case entities.ReasonClassUserCancellation:
		base := totalAmountCents - bookingFeeCents
		if agentConfirmed {
			base /= 2
		}
		return entities.RefundAmount{AmountCents: base, IsPartial: true}, nil

	case entities.ReasonClassAdminDiscretion:
		amount := adminAmountCents
		if amount == 0 {
			amount = totalAmountCents
		}
		if amount < 0 || amount > totalAmountCents {
			return entities.RefundAmount{}, fmt.Errorf("%w: %d not in [0, %d]", ErrAdminAmountInvalid, amount, totalAmountCents)
		}
		return entities.RefundAmount{AmountCents: amount, IsPartial: amount < totalAmountCents}, nil

	default:
		return entities.RefundAmount{}, entities.ErrReasonNotRefundable
	}
}
