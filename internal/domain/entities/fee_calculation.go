package entities

// FeeCalculation is the value object produced by the fee calculator. It is a
// pure function of the base price and the static rate configuration; it is
// never persisted on its own, its figures are copied onto the booking at
// creation time.
//
// ProcessorFeeEstimateCents is informational only (margin reporting); it is
// not part of the amount charged.
type FeeCalculation struct {
	BasePriceCents            int64 `json:"base_price_cents"`
	BookingFeeCents           int64 `json:"booking_fee_cents"`
	TotalAmountCents          int64 `json:"total_amount_cents"`
	PlatformCommissionCents   int64 `json:"platform_commission_cents"`
	AgentPayoutCents          int64 `json:"agent_payout_cents"`
	ProcessorFeeEstimateCents int64 `json:"processor_fee_estimate_cents"`
}

// RefundAmount is the sizing decision for a refund request.
type RefundAmount struct {
	AmountCents int64 `json:"amount_cents"`
	IsPartial   bool  `json:"is_partial"`
}
