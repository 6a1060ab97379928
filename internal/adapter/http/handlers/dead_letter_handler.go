package handlers

import (
	"log"
	"net/http"

	"tripmarket/internal/adapter/http/dto/response"
	"tripmarket/internal/usecase"

	"github.com/gin-gonic/gin"
)

// DeadLetterHandler is the operational triage surface for parked events.

type DeadLetterHandler struct {
	usecase usecase.IDeadLetterUseCase
}

func NewDeadLetterHandler(uc usecase.IDeadLetterUseCase) *DeadLetterHandler {
	return &DeadLetterHandler{usecase: uc}
}

// List returns parked events, optionally filtered with ?event_type=.
func (h *DeadLetterHandler) List(c *gin.Context) {
	recs, err := h.usecase.List(c.Request.Context(), c.Query("event_type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDeadLetters(recs))
}

func (h *DeadLetterHandler) Get(c *gin.Context) {
	rec, err := h.usecase.GetByID(c.Request.Context(), c.Param("dead_letter_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDeadLetter(rec))
}

// Requeue re-publishes a parked event; on success the record is removed.
func (h *DeadLetterHandler) Requeue(c *gin.Context) {
	id := c.Param("dead_letter_id")
	rec, err := h.usecase.Requeue(c.Request.Context(), id)
	if err != nil {
		log.Printf("[deadletter][handler] requeue failed id=%s err=%v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDeadLetter(rec))
}

func (h *DeadLetterHandler) Remove(c *gin.Context) {
	id := c.Param("dead_letter_id")
	if err := h.usecase.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Purge removes records older than the retention window.
func (h *DeadLetterHandler) Purge(c *gin.Context) {
	n, err := h.usecase.PurgeOld(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": n})
}
