package routes

import (
	"tripmarket/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathBookings    = "/bookings"
	PathRefunds     = "/refunds"
	PathWebhooks    = "/webhooks"
	PathDeadLetters = "/dead-letters"
)

func addBookingRoutes(
	rg *gin.RouterGroup,
	bookingHandler *handlers.BookingHandler,
	refundHandler *handlers.RefundHandler,
	webhookHandler *handlers.WebhookHandler,
	deadLetterHandler *handlers.DeadLetterHandler,
) {
	bookings := rg.Group(PathBookings)
	{
		bookings.POST("", bookingHandler.Create)
		bookings.GET("/:booking_id", bookingHandler.Get)
		bookings.GET("/:booking_id/audit", bookingHandler.ListAudit)
		bookings.GET("/:booking_id/refunds", refundHandler.ListByBooking)
		bookings.PATCH("/:booking_id/agent-confirm", bookingHandler.ConfirmByAgent)
		bookings.PATCH("/:booking_id/start", bookingHandler.StartTrip)
		bookings.PATCH("/:booking_id/complete", bookingHandler.CompleteTrip)
		bookings.PATCH("/:booking_id/settle", bookingHandler.Settle)
		bookings.PATCH("/:booking_id/cancel", bookingHandler.Cancel)
		bookings.PATCH("/:booking_id/dispute", bookingHandler.MarkDisputed)
		bookings.PATCH("/:booking_id/dispute/resolve", bookingHandler.ResolveDispute)
	}

	refunds := rg.Group(PathRefunds)
	{
		refunds.POST("", refundHandler.Create)
		refunds.GET("/:refund_id", refundHandler.Get)
		refunds.PATCH("/:refund_id/approve", refundHandler.Approve)
		refunds.PATCH("/:refund_id/deny", refundHandler.Deny)
		refunds.POST("/:refund_id/process", refundHandler.Process)
	}

	webhooks := rg.Group(PathWebhooks)
	{
		webhooks.POST("/payments", webhookHandler.PaymentNotification)
	}

	deadLetters := rg.Group(PathDeadLetters)
	{
		deadLetters.GET("", deadLetterHandler.List)
		deadLetters.GET("/:dead_letter_id", deadLetterHandler.Get)
		deadLetters.POST("/:dead_letter_id/requeue", deadLetterHandler.Requeue)
		deadLetters.DELETE("/:dead_letter_id", deadLetterHandler.Remove)
		deadLetters.POST("/purge", deadLetterHandler.Purge)
	}
}
