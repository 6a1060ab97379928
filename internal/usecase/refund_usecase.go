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
	ErrRefundNotFound        = errors.New("refund not found")
	ErrBookingNotRefundable  = errors.New("booking has no captured payment to refund")
	ErrRefundNotProcessable  = errors.New("refund is not in a processable state")
	ErrRefundDecisionInvalid = errors.New("refund is not awaiting an admin decision")
)

// CreateRefundInput is a refund request against a booking.
type CreateRefundInput struct {
	BookingID        string                `json:"booking_id"`
	RequestedBy      string                `json:"requested_by"`
	Reason           entities.RefundReason `json:"reason"`
	Detail           string                `json:"detail,omitempty"`
	AdminAmountCents int64                 `json:"admin_amount_cents,omitempty"`
}

// IRefundUseCase exposes the refund lifecycle. ProcessRefund is also reachable
// through the refund.approved event consumed from the dispute domain.
type IRefundUseCase interface {
	CreateRefund(ctx context.Context, idempotencyKey string, in CreateRefundInput) (entities.Refund, bool, error)
	ApproveRefund(ctx context.Context, refundID, adminID string) (entities.Refund, error)
	DenyRefund(ctx context.Context, refundID, adminID, note string) (entities.Refund, error)
	ProcessRefund(ctx context.Context, idempotencyKey, refundID string) (entities.Refund, bool, error)
	GetByID(ctx context.Context, id string) (entities.Refund, error)
	ListByBookingID(ctx context.Context, bookingID string) ([]entities.Refund, error)
}

type RefundUseCase struct {
	repo      interfaces.IRefundRepository
	bookings  interfaces.IBookingRepository
	audit     interfaces.IAuditTrailRepository
	processor interfaces.IPaymentProcessor
	guard     *idempotency.Guard
	breakers  *circuitbreaker.Manager
	emitter   *EventEmitter
	calc      *fees.Calculator
}

var _ IRefundUseCase = (*RefundUseCase)(nil)

func NewRefundUseCase(
	repo interfaces.IRefundRepository,
	bookings interfaces.IBookingRepository,
	audit interfaces.IAuditTrailRepository,
	processor interfaces.IPaymentProcessor,
	guard *idempotency.Guard,
	breakers *circuitbreaker.Manager,
	emitter *EventEmitter,
	calc *fees.Calculator,
) *RefundUseCase {
	return &RefundUseCase{
		repo:      repo,
		bookings:  bookings,
		audit:     audit,
		processor: processor,
		guard:     guard,
		breakers:  breakers,
		emitter:   emitter,
		calc:      calc,
	}
}

// CreateRefund validates refundability, sizes the refund from the policy
// table and persists it. Refunds that need no admin decision auto-advance to
// APPROVED; the rest wait in AWAITING_ADMIN. Both the creation and the
// auto-advance are audited.
func (u *RefundUseCase) CreateRefund(ctx context.Context, idempotencyKey string, in CreateRefundInput) (entities.Refund, bool, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		return entities.Refund{}, false, ErrMissingIdempotencyKey
	}
	if strings.TrimSpace(in.BookingID) == "" {
		return entities.Refund{}, false, fmt.Errorf("%w: empty booking id", ErrValidation)
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		return entities.Refund{}, false, fmt.Errorf("%w: empty requester", ErrValidation)
	}

	fingerprint, err := fingerprintOf("refund.create", in)
	if err != nil {
		return entities.Refund{}, false, err
	}

	log.Printf("[refund][usecase] create start key=%s booking_id=%s reason=%s", idempotencyKey, in.BookingID, in.Reason)

	res, err := u.guard.Execute(ctx, idempotencyKey, fingerprint, func(ctx context.Context) ([]byte, error) {
		r, err := u.createRefund(ctx, idempotencyKey, in)
		if err != nil {
			return nil, err
		}
		return json.Marshal(r)
	})
	if err != nil {
		return entities.Refund{}, false, err
	}

	var r entities.Refund
	if err := json.Unmarshal(res.Response, &r); err != nil {
		return entities.Refund{}, false, err
	}
	log.Printf("[refund][usecase] create done key=%s refund_id=%s state=%s replayed=%v", idempotencyKey, r.ID, r.State, res.Replayed)
	return r, res.Replayed, nil
}

func (u *RefundUseCase) createRefund(ctx context.Context, idempotencyKey string, in CreateRefundInput) (entities.Refund, error) {
	b, err := u.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return entities.Refund{}, err
	}
	if b.ID == "" {
		return entities.Refund{}, ErrBookingNotFound
	}
	if b.ProcessorPaymentRef == "" {
		return entities.Refund{}, ErrBookingNotRefundable
	}

	amount, err := u.calc.RefundAmount(in.Reason, b.TotalAmountCents, b.BookingFeeCents, b.AgentConfirmedAt != nil, in.AdminAmountCents)
	if err != nil {
		if errors.Is(err, entities.ErrReasonNotRefundable) || errors.Is(err, entities.ErrUnknownRefundReason) {
			return entities.Refund{}, err
		}
		return entities.Refund{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now().UTC()
	r, err := entities.NewRefund(uuid.NewString(), b.ID, b.ProcessorPaymentRef, in.RequestedBy, in.Reason, in.Detail, amount.AmountCents, amount.IsPartial, now)
	if err != nil {
		return entities.Refund{}, err
	}

	created, err := u.repo.Create(ctx, r)
	if err != nil {
		log.Printf("[refund][usecase] repository create failed refund_id=%s err=%v", r.ID, err)
		return entities.Refund{}, err
	}
	u.appendAudit(ctx, entities.AuditEntry{
		ID:            uuid.NewString(),
		Timestamp:     now,
		EntityType:    entities.AuditEntityRefund,
		EntityID:      created.ID,
		ActorID:       in.RequestedBy,
		ActorType:     ActorTypeUser,
		Action:        "refund.request",
		PreviousState: "",
		NewState:      string(created.State),
		AmountCents:   created.AmountCents,
		Reason:        string(created.Reason),
		CorrelationID: idempotencyKey,
	})

	// PENDING auto-advances: straight to APPROVED unless the reason demands an
	// explicit admin decision.
	target := entities.RefundStateApproved
	action := "refund.auto_approve"
	if created.RequiresAdminApproval {
		target = entities.RefundStateAwaitingAdmin
		action = "refund.await_admin"
	}
	advanced, err := u.transition(ctx, created, target, "policy", ActorTypeSystem, action, "", created.AmountCents, idempotencyKey, nil)
	if err != nil {
		return entities.Refund{}, err
	}

	u.emitter.Emit(ctx, queue.EventRefundRequested, refundEventOf(advanced), advanced.ID)
	if advanced.State == entities.RefundStateApproved {
		u.emitter.Emit(ctx, queue.EventRefundApproved, refundEventOf(advanced), advanced.ID)
	}
	return advanced, nil
}

// ApproveRefund records an explicit admin decision.
func (u *RefundUseCase) ApproveRefund(ctx context.Context, refundID, adminID string) (entities.Refund, error) {
	r, err := u.mustGet(ctx, refundID)
	if err != nil {
		return entities.Refund{}, err
	}
	if strings.TrimSpace(adminID) == "" {
		return entities.Refund{}, fmt.Errorf("%w: empty admin id", ErrValidation)
	}
	if r.State != entities.RefundStateAwaitingAdmin {
		return entities.Refund{}, fmt.Errorf("%w: state %s", ErrRefundDecisionInvalid, r.State)
	}

	updated, err := u.transition(ctx, r, entities.RefundStateApproved, adminID, ActorTypeAdmin, "refund.approve", "", r.AmountCents, r.ID, func(r *entities.Refund) {
		now := time.Now().UTC()
		r.DecidedBy = adminID
		r.DecidedAt = &now
	})
	if err != nil {
		return entities.Refund{}, err
	}

	u.emitter.Emit(ctx, queue.EventRefundApproved, refundEventOf(updated), updated.ID)
	return updated, nil
}

// DenyRefund denies from AWAITING_ADMIN, or converts a FAILED refund into a
// denial instead of retrying it.
func (u *RefundUseCase) DenyRefund(ctx context.Context, refundID, adminID, note string) (entities.Refund, error) {
	r, err := u.mustGet(ctx, refundID)
	if err != nil {
		return entities.Refund{}, err
	}
	if strings.TrimSpace(adminID) == "" {
		return entities.Refund{}, fmt.Errorf("%w: empty admin id", ErrValidation)
	}

	updated, err := u.transition(ctx, r, entities.RefundStateDenied, adminID, ActorTypeAdmin, "refund.deny", note, 0, r.ID, func(r *entities.Refund) {
		now := time.Now().UTC()
		r.DecidedBy = adminID
		r.DecidedAt = &now
		r.DenialNote = note
	})
	if err != nil {
		return entities.Refund{}, err
	}

	u.emitter.Emit(ctx, queue.EventRefundDenied, refundEventOf(updated), updated.ID)
	return updated, nil
}

// ProcessRefund issues the refund with the processor. Reachable from APPROVED
// and, for retries, from FAILED. The processor call runs through the circuit
// breaker and carries the caller's idempotency key, and the whole operation is
// idempotency-guarded, so a retried event cannot double-refund.
func (u *RefundUseCase) ProcessRefund(ctx context.Context, idempotencyKey, refundID string) (entities.Refund, bool, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		return entities.Refund{}, false, ErrMissingIdempotencyKey
	}
	refundID = strings.TrimSpace(refundID)
	if refundID == "" {
		return entities.Refund{}, false, fmt.Errorf("%w: empty refund id", ErrValidation)
	}

	fingerprint, err := fingerprintOf("refund.process", map[string]string{"refund_id": refundID})
	if err != nil {
		return entities.Refund{}, false, err
	}

	res, err := u.guard.Execute(ctx, idempotencyKey, fingerprint, func(ctx context.Context) ([]byte, error) {
		r, err := u.processRefund(ctx, idempotencyKey, refundID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(r)
	})
	if err != nil {
		return entities.Refund{}, false, err
	}

	var r entities.Refund
	if err := json.Unmarshal(res.Response, &r); err != nil {
		return entities.Refund{}, false, err
	}
	return r, res.Replayed, nil
}

func (u *RefundUseCase) processRefund(ctx context.Context, idempotencyKey, refundID string) (entities.Refund, error) {
	r, err := u.mustGet(ctx, refundID)
	if err != nil {
		return entities.Refund{}, err
	}
	if r.State != entities.RefundStateApproved && r.State != entities.RefundStateFailed {
		return entities.Refund{}, fmt.Errorf("%w: state %s", ErrRefundNotProcessable, r.State)
	}

	processing, err := u.transition(ctx, r, entities.RefundStateProcessing, "processing", ActorTypeSystem, "refund.process", "", r.AmountCents, idempotencyKey, func(r *entities.Refund) {
		r.FailureDetail = ""
	})
	if err != nil {
		return entities.Refund{}, err
	}

	refundRef, procErr := u.createProcessorRefund(ctx, idempotencyKey, processing)
	if procErr != nil {
		// Never silently dropped: the refund lands in FAILED with the cause and
		// can be retried or converted to a denial.
		if _, err := u.transition(ctx, processing, entities.RefundStateFailed, "processing", ActorTypeSystem, "refund.fail", procErr.Error(), processing.AmountCents, idempotencyKey, func(r *entities.Refund) {
			r.FailureDetail = procErr.Error()
		}); err != nil {
			log.Printf("[refund][usecase] failed-state persist failed refund_id=%s err=%v", processing.ID, err)
			return entities.Refund{}, err
		}
		return entities.Refund{}, procErr
	}

	completed, err := u.transition(ctx, processing, entities.RefundStateCompleted, "processing", ActorTypeSystem, "refund.complete", "", processing.AmountCents, idempotencyKey, func(r *entities.Refund) {
		r.ProcessorRefundRef = refundRef
	})
	if err != nil {
		return entities.Refund{}, err
	}

	u.emitter.Emit(ctx, queue.EventPaymentRefundIssued, refundEventOf(completed), completed.ID)
	return completed, nil
}

func (u *RefundUseCase) createProcessorRefund(ctx context.Context, idempotencyKey string, r entities.Refund) (string, error) {
	if u.processor == nil {
		log.Printf("[refund][usecase] payment processor not configured refund_id=%s", r.ID)
		return "", errors.New("payment processor not configured")
	}
	var refundRef string
	err := u.breakers.GetOrCreate(breakerPaymentProcessor, circuitbreaker.DefaultConfig()).Execute(func() error {
		ref, err := u.processor.CreateRefund(ctx, idempotencyKey, r.PaymentRef, r.AmountCents)
		if err != nil {
			return err
		}
		refundRef = ref
		return nil
	})
	if err != nil {
		log.Printf("[refund][usecase] processor refund failed refund_id=%s err=%v", r.ID, err)
		return "", err
	}
	return refundRef, nil
}

func (u *RefundUseCase) GetByID(ctx context.Context, id string) (entities.Refund, error) {
	return u.mustGet(ctx, id)
}

func (u *RefundUseCase) ListByBookingID(ctx context.Context, bookingID string) ([]entities.Refund, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: empty booking id", ErrValidation)
	}
	return u.repo.ListByBookingID(ctx, bookingID)
}

func (u *RefundUseCase) mustGet(ctx context.Context, id string) (entities.Refund, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Refund{}, fmt.Errorf("%w: empty refund id", ErrValidation)
	}
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Refund{}, err
	}
	if r.ID == "" {
		return entities.Refund{}, ErrRefundNotFound
	}
	return r, nil
}

// transition mirrors the booking transition helper for refunds: adjacency
// check, version bump under optimistic concurrency, exactly one audit entry,
// failed attempts audited with previous == new.
func (u *RefundUseCase) transition(ctx context.Context, r entities.Refund, to entities.RefundState, actorID, actorType, action, reason string, amountCents int64, correlationID string, mutate func(*entities.Refund)) (entities.Refund, error) {
	now := time.Now().UTC()

	if !r.State.CanTransition(to) {
		u.appendAudit(ctx, entities.AuditEntry{
			ID:            uuid.NewString(),
			Timestamp:     now,
			EntityType:    entities.AuditEntityRefund,
			EntityID:      r.ID,
			ActorID:       actorID,
			ActorType:     actorType,
			Action:        action,
			PreviousState: string(r.State),
			NewState:      string(r.State),
			Reason:        fmt.Sprintf("transition %s -> %s not allowed", r.State, to),
			CorrelationID: correlationID,
		})
		log.Printf("[refund][usecase] invalid transition refund_id=%s %s -> %s", r.ID, r.State, to)
		return entities.Refund{}, fmt.Errorf("%w: refund %s -> %s", entities.ErrInvalidStateTransition, r.State, to)
	}

	previous := r.State
	expectedVersion := r.Version
	r.State = to
	if mutate != nil {
		mutate(&r)
	}
	r.Version = expectedVersion + 1
	r.UpdatedAt = now

	updated, err := u.repo.Update(ctx, r, expectedVersion)
	if err != nil {
		u.appendAudit(ctx, entities.AuditEntry{
			ID:            uuid.NewString(),
			Timestamp:     now,
			EntityType:    entities.AuditEntityRefund,
			EntityID:      r.ID,
			ActorID:       actorID,
			ActorType:     actorType,
			Action:        action,
			PreviousState: string(previous),
			NewState:      string(previous),
			Reason:        err.Error(),
			CorrelationID: correlationID,
		})
		log.Printf("[refund][usecase] transition persist failed refund_id=%s %s -> %s err=%v", r.ID, previous, to, err)
		return entities.Refund{}, err
	}

	u.appendAudit(ctx, entities.AuditEntry{
		ID:            uuid.NewString(),
		Timestamp:     now,
		EntityType:    entities.AuditEntityRefund,
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
	log.Printf("[refund][usecase] transition applied refund_id=%s %s -> %s version=%d", updated.ID, previous, updated.State, updated.Version)
	return updated, nil
}

func (u *RefundUseCase) appendAudit(ctx context.Context, e entities.AuditEntry) {
	if err := u.audit.Append(ctx, e); err != nil {
		log.Printf("[refund][usecase] audit append failed entity_id=%s action=%s err=%v", e.EntityID, e.Action, err)
	}
}

func refundEventOf(r entities.Refund) queue.RefundEvent {
	return queue.RefundEvent{
		RefundID:    r.ID,
		BookingID:   r.BookingID,
		PaymentRef:  r.PaymentRef,
		Reason:      string(r.Reason),
		AmountCents: r.AmountCents,
		IsPartial:   r.IsPartial,
		RefundRef:   r.ProcessorRefundRef,
		OccurredAt:  r.UpdatedAt.Format(time.RFC3339Nano),
	}
}
