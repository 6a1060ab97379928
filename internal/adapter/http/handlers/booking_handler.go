package handlers

import (
	"log"
	"net/http"

	"tripmarket/internal/adapter/http/dto/request"
	"tripmarket/internal/adapter/http/dto/response"
	"tripmarket/internal/usecase"

	"github.com/gin-gonic/gin"
)

// BookingHandler handles HTTP requests for the booking lifecycle.

type BookingHandler struct {
	usecase usecase.IBookingUseCase
}

func NewBookingHandler(uc usecase.IBookingUseCase) *BookingHandler {
	return &BookingHandler{usecase: uc}
}

// Create initiates checkout. The Idempotency-Key header is mandatory; a replay
// answers 200 with the original booking instead of 201.
func (h *BookingHandler) Create(c *gin.Context) {
	var req request.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[booking][handler] create invalid body err=%v", err)
		respondError(c, usecase.ErrValidation)
		return
	}

	key := idempotencyKey(c)
	log.Printf("[booking][handler] create start key=%s user_id=%s", key, req.UserID)

	b, replayed, err := h.usecase.CreateBooking(c.Request.Context(), key, usecase.CreateBookingInput{
		UserID:         req.UserID,
		AgentID:        req.AgentID,
		TripStart:      req.TripStart,
		TripEnd:        req.TripEnd,
		TravelerCount:  req.TravelerCount,
		BasePriceCents: req.BasePriceCents,
	})
	if err != nil {
		log.Printf("[booking][handler] create failed key=%s err=%v", key, err)
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	log.Printf("[booking][handler] create success booking_id=%s state=%s replayed=%v", b.ID, b.State, replayed)
	c.JSON(status, response.FromBooking(b))
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("booking_id")
	b, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

// ListAudit returns the entity's full audit trail in timestamp order.
func (h *BookingHandler) ListAudit(c *gin.Context) {
	id := c.Param("booking_id")
	entries, err := h.usecase.ListAudit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromAuditEntries(entries))
}

func (h *BookingHandler) ConfirmByAgent(c *gin.Context) {
	id := c.Param("booking_id")
	var req request.AgentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	b, err := h.usecase.ConfirmByAgent(c.Request.Context(), id, req.AgentID)
	if err != nil {
		log.Printf("[booking][handler] agent-confirm failed booking_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

func (h *BookingHandler) StartTrip(c *gin.Context) {
	id := c.Param("booking_id")
	var req request.AgentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	b, err := h.usecase.StartTrip(c.Request.Context(), id, req.AgentID)
	if err != nil {
		log.Printf("[booking][handler] start failed booking_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

func (h *BookingHandler) CompleteTrip(c *gin.Context) {
	id := c.Param("booking_id")
	var req request.AgentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	b, err := h.usecase.CompleteTrip(c.Request.Context(), id, req.AgentID)
	if err != nil {
		log.Printf("[booking][handler] complete failed booking_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

// Settle releases the agent payout.
func (h *BookingHandler) Settle(c *gin.Context) {
	id := c.Param("booking_id")
	b, err := h.usecase.SettleBooking(c.Request.Context(), id)
	if err != nil {
		log.Printf("[booking][handler] settle failed booking_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

// Cancel is idempotency-guarded like Create: a retried cancellation replays
// the first outcome.
func (h *BookingHandler) Cancel(c *gin.Context) {
	id := c.Param("booking_id")
	var req request.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	b, _, err := h.usecase.CancelBooking(c.Request.Context(), idempotencyKey(c), id, req.ActorID, req.ActorType, req.Reason)
	if err != nil {
		log.Printf("[booking][handler] cancel failed booking_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

func (h *BookingHandler) MarkDisputed(c *gin.Context) {
	id := c.Param("booking_id")
	var req request.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, usecase.ErrValidation)
		return
	}

	b, err := h.usecase.MarkDisputed(c.Request.Context(), id, req.DisputeID)
	if err != nil {
		log.Printf("[booking][handler] dispute failed booking_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

func (h *BookingHandler) ResolveDispute(c *gin.Context) {
	id := c.Param("booking_id")
	b, err := h.usecase.ResolveDispute(c.Request.Context(), id)
	if err != nil {
		log.Printf("[booking][handler] dispute-resolve failed booking_id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}
