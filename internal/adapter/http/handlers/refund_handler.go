package handlers

import (
	"log"
	"net/http"

	"tripmarket/internal/adapter/http/dto/request"
	"tripmarket/internal/adapter/http/dto/response"
	"tripmarket/internal/domain/entities"
	"tripmarket/internal/usecase"

	"github.com/gin-gonic/gin"
)

// RefundHandler handles HTTP requests for the refund lifecycle.

type RefundHandler struct {
	usecase usecase.IRefundUseCase
}

func NewRefundHandler(uc usecase.IRefundUseCase) *RefundHandler {
	return &RefundHandler{usecase: uc}
}

func (h *RefundHandler) Create(c *gin.Context) {
	var req request.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	key := idempotencyKey(c)
	log.Printf("[refund][handler] create start key=%s booking_id=%s reason=%s", key, req.BookingID, req.Reason)

	r, replayed, err := h.usecase.CreateRefund(c.Request.Context(), key, usecase.CreateRefundInput{
		BookingID:        req.BookingID,
		RequestedBy:      req.RequestedBy,
		Reason:           entities.RefundReason(req.Reason),
		Detail:           req.Detail,
		AdminAmountCents: req.AdminAmountCents,
	})
	if err != nil {
		log.Printf("[refund][handler] create failed key=%s err=%v", key, err)
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	log.Printf("[refund][handler] create success refund_id=%s state=%s replayed=%v", r.ID, r.State, replayed)
	c.JSON(status, response.FromRefund(r))
}

func (h *RefundHandler) Get(c *gin.Context) {
	id := c.Param("refund_id")
	r, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRefund(r))
}

func (h *RefundHandler) ListByBooking(c *gin.Context) {
	bookingID := c.Param("booking_id")
	refunds, err := h.usecase.ListByBookingID(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRefunds(refunds))
}

func (h *RefundHandler) Approve(c *gin.Context) {
	id := c.Param("refund_id")
	var req request.RefundDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	r, err := h.usecase.ApproveRefund(c.Request.Context(), id, req.AdminID)
	if err != nil {
		log.Printf("[refund][handler] approve failed refund_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRefund(r))
}

func (h *RefundHandler) Deny(c *gin.Context) {
	id := c.Param("refund_id")
	var req request.RefundDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	r, err := h.usecase.DenyRefund(c.Request.Context(), id, req.AdminID, req.Note)
	if err != nil {
		log.Printf("[refund][handler] deny failed refund_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRefund(r))
}

// Process issues the refund with the processor. Usually driven by the
// refund.approved consumer; this endpoint is the manual/ops entry point.
func (h *RefundHandler) Process(c *gin.Context) {
	id := c.Param("refund_id")

	r, _, err := h.usecase.ProcessRefund(c.Request.Context(), idempotencyKey(c), id)
	if err != nil {
		log.Printf("[refund][handler] process failed refund_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRefund(r))
}
