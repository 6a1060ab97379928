package request

// PaymentWebhookRequest is the body of the processor's payment notification.
// The raw body, not this struct, is what the signature covers.
type PaymentWebhookRequest struct {
	BookingID  string `json:"booking_id"`
	PaymentRef string `json:"payment_ref"`
	Status     string `json:"status"`
}
