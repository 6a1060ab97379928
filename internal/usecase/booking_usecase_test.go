package usecase

import (
	"context"
	"errors"
	"testing"

	"tripmarket/internal/circuitbreaker"
	"tripmarket/internal/domain/entities"
	"tripmarket/internal/domain/fees"
	"tripmarket/internal/idempotency"
	"tripmarket/internal/usecase/interfaces"
	mock_interfaces "tripmarket/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type bookingDeps struct {
	repo      *mock_interfaces.MockIBookingRepository
	audit     *mock_interfaces.MockIAuditTrailRepository
	processor *mock_interfaces.MockIPaymentProcessor
	publisher *mock_interfaces.MockIEventPublisher
	dlq       *mock_interfaces.MockIDeadLetterRepository
}

func newBookingUseCaseForTest(ctrl *gomock.Controller) (*BookingUseCase, bookingDeps) {
	deps := bookingDeps{
		repo:      mock_interfaces.NewMockIBookingRepository(ctrl),
		audit:     mock_interfaces.NewMockIAuditTrailRepository(ctrl),
		processor: mock_interfaces.NewMockIPaymentProcessor(ctrl),
		publisher: mock_interfaces.NewMockIEventPublisher(ctrl),
		dlq:       mock_interfaces.NewMockIDeadLetterRepository(ctrl),
	}
	breakers := circuitbreaker.NewManager()
	emitter := NewEventEmitter(deps.publisher, deps.dlq, breakers.GetOrCreate("event-bus", circuitbreaker.DefaultConfig()))
	uc := NewBookingUseCase(
		deps.repo,
		deps.audit,
		deps.processor,
		idempotency.NewGuard(idempotency.NewMemoryStore()),
		breakers,
		emitter,
		fees.NewCalculator(fees.DefaultConfig()),
	)
	return uc, deps
}

func validCreateInput() CreateBookingInput {
	return CreateBookingInput{
		UserID:         "user-1",
		AgentID:        "agent-1",
		TripStart:      "2026-09-10",
		TripEnd:        "2026-09-17",
		TravelerCount:  2,
		BasePriceCents: 100_000,
	}
}

func echoBookingCreate(ctx context.Context, b entities.Booking) (entities.Booking, error) { return b, nil }

func echoBookingUpdate(ctx context.Context, b entities.Booking, expectedVersion int64) (entities.Booking, error) {
	return b, nil
}

func TestBookingUseCase_CreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("missing idempotency key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newBookingUseCaseForTest(ctrl)

		_, _, err := uc.CreateBooking(ctx, "  ", validCreateInput())
		if !errors.Is(err, ErrMissingIdempotencyKey) {
			t.Fatalf("expected ErrMissingIdempotencyKey, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newBookingUseCaseForTest(ctrl)

		in := validCreateInput()
		in.TravelerCount = 0
		if _, _, err := uc.CreateBooking(ctx, "key-1", in); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("base price out of range", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, _ := newBookingUseCaseForTest(ctrl)

		in := validCreateInput()
		in.BasePriceCents = 1 // below the configured minimum
		if _, _, err := uc.CreateBooking(ctx, "key-1", in); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("happy path computes fees and reaches payment processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoBookingCreate)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(1)).DoAndReturn(echoBookingUpdate)
		deps.processor.EXPECT().CreateOrder(gomock.Any(), "key-1", int64(103_050), gomock.Any()).Return("order-1", nil)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "booking.checkout_initiated", gomock.Any(), gomock.Any()).Return(nil)

		b, replayed, err := uc.CreateBooking(ctx, "key-1", validCreateInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if replayed {
			t.Fatal("first execution must not be a replay")
		}
		if b.State != entities.BookingStatePaymentProcessing {
			t.Fatalf("expected PAYMENT_PROCESSING, got %s", b.State)
		}
		if b.Version != 2 {
			t.Fatalf("expected version 2, got %d", b.Version)
		}
		if b.ProcessorOrderRef != "order-1" {
			t.Fatalf("expected order ref, got %q", b.ProcessorOrderRef)
		}
		if b.BookingFeeCents != 3050 || b.TotalAmountCents != 103_050 || b.PlatformCommissionCents != 10_000 || b.AgentPayoutCents != 90_000 {
			t.Fatalf("unexpected fee breakdown: %+v", b)
		}
		if b.BasePriceCents+b.BookingFeeCents != b.TotalAmountCents {
			t.Fatalf("total invariant violated: %+v", b)
		}
		if b.BasePriceCents-b.PlatformCommissionCents != b.AgentPayoutCents {
			t.Fatalf("payout invariant violated: %+v", b)
		}
	})

	t.Run("retry with same key replays without re-executing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		// Each side effect is expected exactly once.
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoBookingCreate)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(1)).DoAndReturn(echoBookingUpdate)
		deps.processor.EXPECT().CreateOrder(gomock.Any(), "key-1", gomock.Any(), gomock.Any()).Return("order-1", nil)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		first, _, err := uc.CreateBooking(ctx, "key-1", validCreateInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, replayed, err := uc.CreateBooking(ctx, "key-1", validCreateInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !replayed {
			t.Fatal("expected a replayed response")
		}
		if second.ID != first.ID {
			t.Fatalf("replay returned a different booking: %s vs %s", second.ID, first.ID)
		}
	})

	t.Run("same key different payload conflicts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoBookingCreate)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(echoBookingUpdate)
		deps.processor.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("order-1", nil)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		if _, _, err := uc.CreateBooking(ctx, "key-1", validCreateInput()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		other := validCreateInput()
		other.BasePriceCents = 200_000
		if _, _, err := uc.CreateBooking(ctx, "key-1", other); !errors.Is(err, idempotency.ErrConflict) {
			t.Fatalf("expected idempotency.ErrConflict, got %v", err)
		}
	})

	t.Run("processor failure leaves booking pending and is audited", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		procErr := &interfaces.ProcessorError{StatusCode: 503, Code: "unavailable", Message: "down"}
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoBookingCreate)
		deps.processor.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", procErr)

		var failureAudit *entities.AuditEntry
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e entities.AuditEntry) error {
			if e.Reason != "" && e.PreviousState == e.NewState {
				failureAudit = &e
			}
			return nil
		}).AnyTimes()

		_, _, err := uc.CreateBooking(ctx, "key-1", validCreateInput())
		var pe *interfaces.ProcessorError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ProcessorError, got %v", err)
		}
		if !pe.Retryable() {
			t.Fatal("503 must classify retryable")
		}
		if failureAudit == nil {
			t.Fatal("expected a failed-attempt audit entry with previous == new")
		}
		if failureAudit.PreviousState != string(entities.BookingStatePendingPayment) {
			t.Fatalf("unexpected audited state: %+v", failureAudit)
		}
	})
}

func TestBookingUseCase_Transitions(t *testing.T) {
	ctx := context.Background()

	stored := func(state entities.BookingState, version int64) entities.Booking {
		b := entities.Booking{
			ID: "b-1", UserID: "user-1", AgentID: "agent-1",
			BasePriceCents: 100_000, BookingFeeCents: 3050, TotalAmountCents: 103_050,
			PlatformCommissionCents: 10_000, AgentPayoutCents: 90_000,
			State: state, Version: version,
		}
		return b
	}

	t.Run("confirm payment from processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(stored(entities.BookingStatePaymentProcessing, 2), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(2)).DoAndReturn(echoBookingUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "payment.confirmed", gomock.Any(), gomock.Any()).Return(nil)

		b, err := uc.ConfirmPayment(ctx, "b-1", "pay-9")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.State != entities.BookingStatePaymentConfirmed || b.Version != 3 || b.ProcessorPaymentRef != "pay-9" {
			t.Fatalf("unexpected booking: %+v", b)
		}
	})

	t.Run("invalid transition leaves state and version unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(stored(entities.BookingStatePendingPayment, 1), nil)
		// No Update expectation: persistence must not be touched.
		var denied *entities.AuditEntry
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e entities.AuditEntry) error {
			denied = &e
			return nil
		})

		_, err := uc.ConfirmPayment(ctx, "b-1", "pay-9")
		if !errors.Is(err, entities.ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
		if denied == nil || denied.PreviousState != denied.NewState {
			t.Fatalf("expected denial audit with previous == new, got %+v", denied)
		}
	})

	t.Run("version conflict surfaces and is audited", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(stored(entities.BookingStatePaymentProcessing, 2), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(2)).Return(entities.Booking{}, interfaces.ErrVersionConflict)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		_, err := uc.ConfirmPayment(ctx, "b-1", "pay-9")
		if !errors.Is(err, interfaces.ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("agent mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(stored(entities.BookingStatePaymentConfirmed, 3), nil)

		if _, err := uc.ConfirmByAgent(ctx, "b-1", "someone-else"); !errors.Is(err, ErrAgentMismatch) {
			t.Fatalf("expected ErrAgentMismatch, got %v", err)
		}
	})

	t.Run("agent confirmation records the confirmation time", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(stored(entities.BookingStatePaymentConfirmed, 3), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(echoBookingUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "booking.agent_confirmed", gomock.Any(), gomock.Any()).Return(nil)

		b, err := uc.ConfirmByAgent(ctx, "b-1", "agent-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.State != entities.BookingStateAgentConfirmed || b.AgentConfirmedAt == nil {
			t.Fatalf("unexpected booking: %+v", b)
		}
	})

	t.Run("cancel records metadata", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(stored(entities.BookingStateAgentConfirmed, 4), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(4)).DoAndReturn(echoBookingUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "booking.cancelled", gomock.Any(), gomock.Any()).Return(nil)

		b, replayed, err := uc.CancelBooking(ctx, "cancel-key-1", "b-1", "user-1", ActorTypeUser, "change of plans")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if replayed {
			t.Fatal("first cancel must not be a replay")
		}
		if b.State != entities.BookingStateCancelled || b.CancelledBy != "user-1" || b.CancelledAt == nil {
			t.Fatalf("unexpected booking: %+v", b)
		}
	})

	t.Run("settle from dispute resolution", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "b-1").Return(stored(entities.BookingStateDisputeResolved, 7), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(7)).DoAndReturn(echoBookingUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "booking.settled", gomock.Any(), gomock.Any()).Return(nil)

		b, err := uc.SettleBooking(ctx, "b-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.State != entities.BookingStateSettled {
			t.Fatalf("expected SETTLED, got %s", b.State)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newBookingUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Booking{}, nil)

		if _, err := uc.GetByID(ctx, "missing"); !errors.Is(err, ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
	})
}
