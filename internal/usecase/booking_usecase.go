package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tripmarket/internal/circuitbreaker"
	"tripmarket/internal/domain/entities"
	"tripmarket/internal/domain/fees"
	"tripmarket/internal/idempotency"
	"tripmarket/internal/queue"
	"tripmarket/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrMissingIdempotencyKey = errors.New("missing idempotency key")
	ErrAgentMismatch         = errors.New("agent does not own this booking")
)

// Actor types recorded on audit entries.
const (
	ActorTypeUser      = "user"
	ActorTypeAgent     = "agent"
	ActorTypeAdmin     = "admin"
	ActorTypeSystem    = "system"
	ActorTypeProcessor = "processor"
)

const breakerPaymentProcessor = "payment-processor"

// CreateBookingInput is the checkout initiation request.
type CreateBookingInput struct {
	UserID         string `json:"user_id"`
	AgentID        string `json:"agent_id"`
	TripStart      string `json:"trip_start"`
	TripEnd        string `json:"trip_end"`
	TravelerCount  int    `json:"traveler_count"`
	BasePriceCents int64  `json:"base_price_cents"`
}

// IBookingUseCase exposes the booking lifecycle operations of the financial
// core. Mutating operations that create processor side effects require a
// caller-supplied idempotency key.
type IBookingUseCase interface {
	CreateBooking(ctx context.Context, idempotencyKey string, in CreateBookingInput) (entities.Booking, bool, error)
	ConfirmPayment(ctx context.Context, bookingID, paymentRef string) (entities.Booking, error)
	ConfirmByAgent(ctx context.Context, bookingID, agentID string) (entities.Booking, error)
	StartTrip(ctx context.Context, bookingID, agentID string) (entities.Booking, error)
	CompleteTrip(ctx context.Context, bookingID, agentID string) (entities.Booking, error)
	SettleBooking(ctx context.Context, bookingID string) (entities.Booking, error)
	CancelBooking(ctx context.Context, idempotencyKey, bookingID, actorID, actorType, reason string) (entities.Booking, bool, error)
	MarkDisputed(ctx context.Context, bookingID, disputeID string) (entities.Booking, error)
	ResolveDispute(ctx context.Context, bookingID string) (entities.Booking, error)
	GetByID(ctx context.Context, id string) (entities.Booking, error)
	ListAudit(ctx context.Context, bookingID string) ([]entities.AuditEntry, error)
}

type BookingUseCase struct {
	repo      interfaces.IBookingRepository
	audit     interfaces.IAuditTrailRepository
	processor interfaces.IPaymentProcessor
	guard     *idempotency.Guard
	breakers  *circuitbreaker.Manager
	emitter   *EventEmitter
	calc      *fees.Calculator
}

var _ IBookingUseCase = (*BookingUseCase)(nil)

func NewBookingUseCase(
	repo interfaces.IBookingRepository,
	audit interfaces.IAuditTrailRepository,
	processor interfaces.IPaymentProcessor,
	guard *idempotency.Guard,
	breakers *circuitbreaker.Manager,
	emitter *EventEmitter,
	calc *fees.Calculator,
) *BookingUseCase {
	return &BookingUseCase{
		repo:      repo,
		audit:     audit,
		processor: processor,
		guard:     guard,
		breakers:  breakers,
		emitter:   emitter,
		calc:      calc,
	}
}

// CreateBooking initiates checkout: computes the fee breakdown, persists the
// booking, opens a processor order through the circuit breaker (forwarding the
// same idempotency key) and moves the booking to PAYMENT_PROCESSING.
//
// The whole operation runs under the idempotency guard; the returned bool is
// true when the response was replayed from a previously completed attempt.
func (u *BookingUseCase) CreateBooking(ctx context.Context, idempotencyKey string, in CreateBookingInput) (entities.Booking, bool, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		return entities.Booking{}, false, ErrMissingIdempotencyKey
	}
	if err := validateCreateBooking(in); err != nil {
		return entities.Booking{}, false, err
	}

	fingerprint, err := fingerprintOf("booking.create", in)
	if err != nil {
		return entities.Booking{}, false, err
	}

	log.Printf("[booking][usecase] create start key=%s user_id=%s agent_id=%s base=%d", idempotencyKey, in.UserID, in.AgentID, in.BasePriceCents)

	res, err := u.guard.Execute(ctx, idempotencyKey, fingerprint, func(ctx context.Context) ([]byte, error) {
		b, err := u.createBooking(ctx, idempotencyKey, in)
		if err != nil {
			return nil, err
		}
		return json.Marshal(b)
	})
	if err != nil {
		return entities.Booking{}, false, err
	}

	var b entities.Booking
	if err := json.Unmarshal(res.Response, &b); err != nil {
		return entities.Booking{}, false, err
	}
	log.Printf("[booking][usecase] create done key=%s booking_id=%s state=%s replayed=%v", idempotencyKey, b.ID, b.State, res.Replayed)
	return b, res.Replayed, nil
}

func (u *BookingUseCase) createBooking(ctx context.Context, idempotencyKey string, in CreateBookingInput) (entities.Booking, error) {
	fc, err := u.calc.Calculate(in.BasePriceCents)
	if err != nil {
		return entities.Booking{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now().UTC()
	b := entities.Booking{
		ID:                      uuid.NewString(),
		UserID:                  in.UserID,
		AgentID:                 in.AgentID,
		TripStart:               in.TripStart,
		TripEnd:                 in.TripEnd,
		TravelerCount:           in.TravelerCount,
		BasePriceCents:          fc.BasePriceCents,
		BookingFeeCents:         fc.BookingFeeCents,
		PlatformCommissionCents: fc.PlatformCommissionCents,
		TotalAmountCents:        fc.TotalAmountCents,
		AgentPayoutCents:        fc.AgentPayoutCents,
		State:                   entities.BookingStatePendingPayment,
		Version:                 1,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	created, err := u.repo.Create(ctx, b)
	if err != nil {
		log.Printf("[booking][usecase] repository create failed booking_id=%s err=%v", b.ID, err)
		return entities.Booking{}, err
	}
	u.appendAudit(ctx, entities.AuditEntry{
		ID:            uuid.NewString(),
		Timestamp:     now,
		EntityType:    entities.AuditEntityBooking,
		EntityID:      created.ID,
		ActorID:       in.UserID,
		ActorType:     ActorTypeUser,
		Action:        "booking.create",
		PreviousState: "",
		NewState:      string(created.State),
		AmountCents:   created.TotalAmountCents,
		CorrelationID: idempotencyKey,
	})

	orderRef, err := u.createProcessorOrder(ctx, idempotencyKey, created)
	if err != nil {
		// The booking stays in PENDING_PAYMENT; the failed attempt is audited
		// with previous == new so it is traceable.
		u.appendAudit(ctx, entities.AuditEntry{
			ID:            uuid.NewString(),
			Timestamp:     time.Now().UTC(),
			EntityType:    entities.AuditEntityBooking,
			EntityID:      created.ID,
			ActorID:       in.UserID,
			ActorType:     ActorTypeUser,
			Action:        "checkout.initiate",
			PreviousState: string(created.State),
			NewState:      string(created.State),
			AmountCents:   created.TotalAmountCents,
			Reason:        err.Error(),
			CorrelationID: idempotencyKey,
		})
		return entities.Booking{}, err
	}

	updated, err := u.transition(ctx, created, entities.BookingStatePaymentProcessing, in.UserID, ActorTypeUser, "checkout.initiate", "", created.TotalAmountCents, idempotencyKey, func(b *entities.Booking) {
		b.ProcessorOrderRef = orderRef
	})
	if err != nil {
		return entities.Booking{}, err
	}

	u.emitter.Emit(ctx, queue.EventBookingCheckoutInitiated, queue.BookingEvent{
		BookingID:        updated.ID,
		UserID:           updated.UserID,
		AgentID:          updated.AgentID,
		State:            string(updated.State),
		TotalAmountCents: updated.TotalAmountCents,
		OrderRef:         updated.ProcessorOrderRef,
		OccurredAt:       updated.UpdatedAt.Format(time.RFC3339Nano),
	}, updated.ID)

	return updated, nil
}

func (u *BookingUseCase) createProcessorOrder(ctx context.Context, idempotencyKey string, b entities.Booking) (string, error) {
	if u.processor == nil {
		log.Printf("[booking][usecase] payment processor not configured booking_id=%s", b.ID)
		return "", errors.New("payment processor not configured")
	}
	var orderRef string
	err := u.breakers.GetOrCreate(breakerPaymentProcessor, circuitbreaker.DefaultConfig()).Execute(func() error {
		ref, err := u.processor.CreateOrder(ctx, idempotencyKey, b.TotalAmountCents, map[string]string{
			"booking_id": b.ID,
			"user_id":    b.UserID,
			"agent_id":   b.AgentID,
		})
		if err != nil {
			return err
		}
		orderRef = ref
		return nil
	})
	if err != nil {
		log.Printf("[booking][usecase] processor order failed booking_id=%s err=%v", b.ID, err)
		return "", err
	}
	return orderRef, nil
}

// ConfirmPayment is driven by the verified processor webhook.
func (u *BookingUseCase) ConfirmPayment(ctx context.Context, bookingID, paymentRef string) (entities.Booking, error) {
	b, err := u.mustGet(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		return entities.Booking{}, fmt.Errorf("%w: empty payment reference", ErrValidation)
	}

	updated, err := u.transition(ctx, b, entities.BookingStatePaymentConfirmed, paymentRef, ActorTypeProcessor, "payment.confirm", "", b.TotalAmountCents, b.ID, func(b *entities.Booking) {
		b.ProcessorPaymentRef = paymentRef
	})
	if err != nil {
		return entities.Booking{}, err
	}

	u.emitter.Emit(ctx, queue.EventPaymentConfirmed, bookingEventOf(updated), updated.ID)
	return updated, nil
}

func (u *BookingUseCase) ConfirmByAgent(ctx context.Context, bookingID, agentID string) (entities.Booking, error) {
	b, err := u.mustGet(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	if err := u.checkAgent(b, agentID); err != nil {
		return entities.Booking{}, err
	}

	updated, err := u.transition(ctx, b, entities.BookingStateAgentConfirmed, agentID, ActorTypeAgent, "booking.agent_confirm", "", 0, b.ID, func(b *entities.Booking) {
		now := time.Now().UTC()
		b.AgentConfirmedAt = &now
	})
	if err != nil {
		return entities.Booking{}, err
	}

	u.emitter.Emit(ctx, queue.EventBookingAgentConfirmed, bookingEventOf(updated), updated.ID)
	return updated, nil
}

func (u *BookingUseCase) StartTrip(ctx context.Context, bookingID, agentID string) (entities.Booking, error) {
	b, err := u.mustGet(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	if err := u.checkAgent(b, agentID); err != nil {
		return entities.Booking{}, err
	}

	updated, err := u.transition(ctx, b, entities.BookingStateInProgress, agentID, ActorTypeAgent, "booking.start_trip", "", 0, b.ID, nil)
	if err != nil {
		return entities.Booking{}, err
	}

	u.emitter.Emit(ctx, queue.EventBookingStarted, bookingEventOf(updated), updated.ID)
	return updated, nil
}

func (u *BookingUseCase) CompleteTrip(ctx context.Context, bookingID, agentID string) (entities.Booking, error) {
	b, err := u.mustGet(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	if err := u.checkAgent(b, agentID); err != nil {
		return entities.Booking{}, err
	}

	updated, err := u.transition(ctx, b, entities.BookingStateCompleted, agentID, ActorTypeAgent, "booking.complete_trip", "", 0, b.ID, nil)
	if err != nil {
		return entities.Booking{}, err
	}

	u.emitter.Emit(ctx, queue.EventBookingCompleted, bookingEventOf(updated), updated.ID)
	return updated, nil
}

// SettleBooking releases the agent payout. Reachable from COMPLETED and from
// DISPUTE_RESOLVED.
func (u *BookingUseCase) SettleBooking(ctx context.Context, bookingID string) (entities.Booking, error) {
	b, err := u.mustGet(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}

	updated, err := u.transition(ctx, b, entities.BookingStateSettled, "settlement", ActorTypeSystem, "booking.settle", "", b.AgentPayoutCents, b.ID, nil)
	if err != nil {
		return entities.Booking{}, err
	}

	ev := bookingEventOf(updated)
	ev.AgentPayoutCents = updated.AgentPayoutCents
	u.emitter.Emit(ctx, queue.EventBookingSettled, ev, updated.ID)
	return updated, nil
}

// CancelBooking cancels from any cancellable state. Idempotency-guarded so a
// retried cancellation replays the first outcome instead of failing on the
// already-terminal state.
func (u *BookingUseCase) CancelBooking(ctx context.Context, idempotencyKey, bookingID, actorID, actorType, reason string) (entities.Booking, bool, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		return entities.Booking{}, false, ErrMissingIdempotencyKey
	}
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Booking{}, false, fmt.Errorf("%w: empty booking id", ErrValidation)
	}

	fingerprint, err := fingerprintOf("booking.cancel", map[string]string{
		"booking_id": bookingID, "actor_id": actorID, "actor_type": actorType, "reason": reason,
	})
	if err != nil {
		return entities.Booking{}, false, err
	}

	res, err := u.guard.Execute(ctx, idempotencyKey, fingerprint, func(ctx context.Context) ([]byte, error) {
		b, err := u.mustGet(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		updated, err := u.transition(ctx, b, entities.BookingStateCancelled, actorID, actorType, "booking.cancel", reason, 0, idempotencyKey, func(b *entities.Booking) {
			now := time.Now().UTC()
			b.CancelledBy = actorID
			b.CancelReason = reason
			b.CancelledAt = &now
		})
		if err != nil {
			return nil, err
		}
		u.emitter.Emit(ctx, queue.EventBookingCancelled, bookingEventOf(updated), updated.ID)
		return json.Marshal(updated)
	})
	if err != nil {
		return entities.Booking{}, false, err
	}

	var b entities.Booking
	if err := json.Unmarshal(res.Response, &b); err != nil {
		return entities.Booking{}, false, err
	}
	return b, res.Replayed, nil
}

// MarkDisputed is the dispute domain's entry hook into the booking graph.
func (u *BookingUseCase) MarkDisputed(ctx context.Context, bookingID, disputeID string) (entities.Booking, error) {
	b, err := u.mustGet(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}

	updated, err := u.transition(ctx, b, entities.BookingStateDisputed, disputeID, ActorTypeAdmin, "booking.dispute_open", "", 0, b.ID, func(b *entities.Booking) {
		b.DisputeID = disputeID
	})
	if err != nil {
		return entities.Booking{}, err
	}

	u.emitter.Emit(ctx, queue.EventBookingDisputed, bookingEventOf(updated), updated.ID)
	return updated, nil
}

func (u *BookingUseCase) ResolveDispute(ctx context.Context, bookingID string) (entities.Booking, error) {
	b, err := u.mustGet(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}

	updated, err := u.transition(ctx, b, entities.BookingStateDisputeResolved, b.DisputeID, ActorTypeAdmin, "booking.dispute_resolve", "", 0, b.ID, nil)
	if err != nil {
		return entities.Booking{}, err
	}

	u.emitter.Emit(ctx, queue.EventBookingDisputeResolved, bookingEventOf(updated), updated.ID)
	return updated, nil
}

func (u *BookingUseCase) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	return u.mustGet(ctx, id)
}

func (u *BookingUseCase) ListAudit(ctx context.Context, bookingID string) ([]entities.AuditEntry, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: empty booking id", ErrValidation)
	}
	return u.audit.ListByEntity(ctx, entities.AuditEntityBooking, bookingID)
}

// transition validates the edge, applies mutate, bumps the version under the
// optimistic-concurrency condition and appends exactly one audit entry.
// Rejected or conflicting attempts are audited with previous == new.
func (u *BookingUseCase) transition(ctx context.Context, b entities.Booking, to entities.BookingState, actorID, actorType, action, reason string, amountCents int64, correlationID string, mutate func(*entities.Booking)) (entities.Booking, error) {
	now := time.Now().UTC()

	if !b.State.CanTransition(to) {
		u.appendAudit(ctx, entities.AuditEntry{
			ID:            uuid.NewString(),
			Timestamp:     now,
			EntityType:    entities.AuditEntityBooking,
			EntityID:      b.ID,
			ActorID:       actorID,
			ActorType:     actorType,
			Action:        action,
			PreviousState: string(b.State),
			NewState:      string(b.State),
			Reason:        fmt.Sprintf("transition %s -> %s not allowed", b.State, to),
			CorrelationID: correlationID,
		})
		log.Printf("[booking][usecase] invalid transition booking_id=%s %s -> %s", b.ID, b.State, to)
		return entities.Booking{}, fmt.Errorf("%w: booking %s -> %s", entities.ErrInvalidStateTransition, b.State, to)
	}

	previous := b.State
	expectedVersion := b.Version
	b.State = to
	if mutate != nil {
		mutate(&b)
	}
	b.Version = expectedVersion + 1
	b.UpdatedAt = now

	updated, err := u.repo.Update(ctx, b, expectedVersion)
	if err != nil {
		u.appendAudit(ctx, entities.AuditEntry{
			ID:            uuid.NewString(),
			Timestamp:     now,
			EntityType:    entities.AuditEntityBooking,
			EntityID:      b.ID,
			ActorID:       actorID,
			ActorType:     actorType,
			Action:        action,
			PreviousState: string(previous),
			NewState:      string(previous),
			Reason:        err.Error(),
			CorrelationID: correlationID,
		})
		log.Printf("[booking][usecase] transition persist failed booking_id=%s %s -> %s err=%v", b.ID, previous, to, err)
		return entities.Booking{}, err
	}

	u.appendAudit(ctx, entities.AuditEntry{
		ID:            uuid.NewString(),
		Timestamp:     now,
		EntityType:    entities.AuditEntityBooking,
		EntityID:      updated.ID,
		ActorID:       actorID,
		ActorType:     actorType,
		Action:        action,
		PreviousState: string(previous),
		NewState:      string(updated.State),
		AmountCents:   amountCents,
		Reason:        reason,
		CorrelationID: correlationID,
	})
	log.Printf("[booking][usecase] transition applied booking_id=%s %s -> %s version=%d", updated.ID, previous, updated.State, updated.Version)
	return updated, nil
}

// appendAudit never fails the business operation: the transition already
// committed (or was already rejected); a sink outage must not mask that.
func (u *BookingUseCase) appendAudit(ctx context.Context, e entities.AuditEntry) {
	if err := u.audit.Append(ctx, e); err != nil {
		log.Printf("[booking][usecase] audit append failed entity_id=%s action=%s err=%v", e.EntityID, e.Action, err)
	}
}

func (u *BookingUseCase) mustGet(ctx context.Context, id string) (entities.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Booking{}, fmt.Errorf("%w: empty booking id", ErrValidation)
	}
	b, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Booking{}, err
	}
	if b.ID == "" {
		return entities.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (u *BookingUseCase) checkAgent(b entities.Booking, agentID string) error {
	if strings.TrimSpace(agentID) == "" {
		return fmt.Errorf("%w: empty agent id", ErrValidation)
	}
	if b.AgentID != agentID {
		return ErrAgentMismatch
	}
	return nil
}

func validateCreateBooking(in CreateBookingInput) error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return fmt.Errorf("%w: empty user id", ErrValidation)
	case strings.TrimSpace(in.AgentID) == "":
		return fmt.Errorf("%w: empty agent id", ErrValidation)
	case strings.TrimSpace(in.TripStart) == "" || strings.TrimSpace(in.TripEnd) == "":
		return fmt.Errorf("%w: missing trip dates", ErrValidation)
	case in.TravelerCount <= 0:
		return fmt.Errorf("%w: traveler count must be positive", ErrValidation)
	case in.BasePriceCents <= 0:
		return fmt.Errorf("%w: base price must be positive", ErrValidation)
	}
	return nil
}

// fingerprintOf scopes the payload hash by operation path so the same body
// sent to a different operation still counts as key reuse.
func fingerprintOf(operation string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return idempotency.Fingerprint(append([]byte(operation+"|"), body...)), nil
}

func bookingEventOf(b entities.Booking) queue.BookingEvent {
	return queue.BookingEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		AgentID:          b.AgentID,
		State:            string(b.State),
		TotalAmountCents: b.TotalAmountCents,
		OrderRef:         b.ProcessorOrderRef,
		OccurredAt:       b.UpdatedAt.Format(time.RFC3339Nano),
	}
}
