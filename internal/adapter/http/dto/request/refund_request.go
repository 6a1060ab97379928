package request

// CreateRefundRequest requests a refund against a booking. AdminAmountCents is
// only honored for the ADMIN_OVERRIDE reason; zero means "refund the total".
type CreateRefundRequest struct {
	BookingID        string `json:"booking_id" binding:"required"`
	RequestedBy      string `json:"requested_by" binding:"required"`
	Reason           string `json:"reason" binding:"required"`
	Detail           string `json:"detail"`
	AdminAmountCents int64  `json:"admin_amount_cents"`
}

// RefundDecisionRequest is an explicit admin approve/deny.
type RefundDecisionRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
	Note    string `json:"note"`
}
