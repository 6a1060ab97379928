package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"tripmarket/internal/adapter/http/dto/request"
	"tripmarket/internal/adapter/http/dto/response"
	"tripmarket/internal/usecase"
	"tripmarket/internal/usecase/interfaces"
	"tripmarket/pkg"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives processor notifications. The signature check runs
// over the raw body before anything is parsed; a rejected signature never
// touches booking state.

type WebhookHandler struct {
	bookings  usecase.IBookingUseCase
	processor interfaces.IPaymentProcessor
}

func NewWebhookHandler(bookings usecase.IBookingUseCase, processor interfaces.IPaymentProcessor) *WebhookHandler {
	return &WebhookHandler{bookings: bookings, processor: processor}
}

func (h *WebhookHandler) PaymentNotification(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	signature := c.GetHeader("X-Signature")
	if h.processor == nil || !h.processor.VerifyWebhookSignature(raw, signature) {
		log.Printf("[webhook][handler] signature rejected payload_len=%d", len(raw))
		appErr := pkg.NewDomainErrorSimple("INVALID_SIGNATURE", "Webhook signature verification failed", http.StatusUnauthorized)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	var req request.PaymentWebhookRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.BookingID == "" || req.PaymentRef == "" {
		log.Printf("[webhook][handler] invalid payload err=%v", err)
		respondError(c, usecase.ErrValidation)
		return
	}

	if req.Status != "" && req.Status != "approved" {
		// Only approvals move bookings; other notifications are acknowledged so
		// the processor stops retrying them.
		log.Printf("[webhook][handler] ignoring notification booking_id=%s status=%s", req.BookingID, req.Status)
		c.Status(http.StatusNoContent)
		return
	}

	b, err := h.bookings.ConfirmPayment(c.Request.Context(), req.BookingID, req.PaymentRef)
	if err != nil {
		log.Printf("[webhook][handler] confirm failed booking_id=%s err=%v", req.BookingID, err)
		respondError(c, err)
		return
	}
	log.Printf("[webhook][handler] payment confirmed booking_id=%s payment_ref=%s", b.ID, req.PaymentRef)
	c.JSON(http.StatusOK, response.FromBooking(b))
}
