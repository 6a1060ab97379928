package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tripmarket/internal/circuitbreaker"
	"tripmarket/internal/domain/entities"
	"tripmarket/internal/idempotency"
	"tripmarket/internal/usecase"
	"tripmarket/internal/usecase/interfaces"
	"tripmarket/pkg"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto the HTTP taxonomy and writes the
// envelope. Open-breaker rejections additionally carry a Retry-After header.
func respondError(c *gin.Context, err error) {
	var openErr *circuitbreaker.OpenError
	if errors.As(err, &openErr) {
		retryAfter := int(openErr.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		appErr := pkg.NewDomainErrorSimple("DEPENDENCY_UNAVAILABLE", "Upstream dependency temporarily unavailable, retry later", http.StatusServiceUnavailable)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	appErr := mapError(err)
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapError(err error) *pkg.AppError {
	var procErr *interfaces.ProcessorError
	switch {
	case errors.Is(err, usecase.ErrMissingIdempotencyKey):
		return pkg.NewDomainErrorSimple("MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, entities.ErrUnknownRefundReason):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrAgentMismatch):
		return pkg.NewDomainErrorSimple("AGENT_MISMATCH", "Agent does not own this booking", http.StatusForbidden)
	case errors.Is(err, usecase.ErrBookingNotFound):
		return pkg.NewDomainErrorSimple("BOOKING_NOT_FOUND", "Booking not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrRefundNotFound):
		return pkg.NewDomainErrorSimple("REFUND_NOT_FOUND", "Refund not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrDeadLetterNotFound), errors.Is(err, usecase.ErrInvalidDeadLetterID):
		return pkg.NewDomainErrorSimple("DEAD_LETTER_NOT_FOUND", "Dead letter record not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidStateTransition):
		return pkg.NewDomainErrorSimple("INVALID_STATE_TRANSITION", "Operation not allowed in the current state", http.StatusConflict)
	case errors.Is(err, interfaces.ErrVersionConflict):
		return pkg.NewDomainErrorSimple("VERSION_CONFLICT", "Concurrent update detected, retry with fresh state", http.StatusConflict)
	case errors.Is(err, idempotency.ErrConflict):
		return pkg.NewDomainErrorSimple("IDEMPOTENCY_KEY_REUSED", "Idempotency key reused with a different payload", http.StatusUnprocessableEntity)
	case errors.Is(err, idempotency.ErrInProgress):
		return pkg.NewDomainErrorSimple("REQUEST_IN_PROGRESS", "An identical request is still being processed", http.StatusConflict)
	case errors.Is(err, entities.ErrReasonNotRefundable):
		return pkg.NewDomainErrorSimple("REASON_NOT_REFUNDABLE", "Refund reason is not refundable", http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrBookingNotRefundable):
		return pkg.NewDomainErrorSimple("BOOKING_NOT_REFUNDABLE", "Booking has no captured payment to refund", http.StatusConflict)
	case errors.Is(err, usecase.ErrRefundNotProcessable):
		return pkg.NewDomainErrorSimple("REFUND_NOT_PROCESSABLE", "Refund is not in a processable state", http.StatusConflict)
	case errors.Is(err, usecase.ErrRefundDecisionInvalid):
		return pkg.NewDomainErrorSimple("REFUND_DECISION_INVALID", "Refund is not awaiting an admin decision", http.StatusConflict)
	case errors.As(err, &procErr):
		return pkg.NewDomainError("PAYMENT_PROVIDER_ERROR", "Payment provider rejected the operation", err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func idempotencyKey(c *gin.Context) string {
	return c.GetHeader("Idempotency-Key")
}
