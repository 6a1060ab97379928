package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripmarket/internal/circuitbreaker"
	"tripmarket/internal/domain/entities"
	"tripmarket/internal/domain/fees"
	"tripmarket/internal/idempotency"
	"tripmarket/internal/usecase/interfaces"
	mock_interfaces "tripmarket/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type refundDeps struct {
	repo      *mock_interfaces.MockIRefundRepository
	bookings  *mock_interfaces.MockIBookingRepository
	audit     *mock_interfaces.MockIAuditTrailRepository
	processor *mock_interfaces.MockIPaymentProcessor
	publisher *mock_interfaces.MockIEventPublisher
	dlq       *mock_interfaces.MockIDeadLetterRepository
}

func newRefundUseCaseForTest(ctrl *gomock.Controller) (*RefundUseCase, refundDeps) {
	deps := refundDeps{
		repo:      mock_interfaces.NewMockIRefundRepository(ctrl),
		bookings:  mock_interfaces.NewMockIBookingRepository(ctrl),
		audit:     mock_interfaces.NewMockIAuditTrailRepository(ctrl),
		processor: mock_interfaces.NewMockIPaymentProcessor(ctrl),
		publisher: mock_interfaces.NewMockIEventPublisher(ctrl),
		dlq:       mock_interfaces.NewMockIDeadLetterRepository(ctrl),
	}
	breakers := circuitbreaker.NewManager()
	emitter := NewEventEmitter(deps.publisher, deps.dlq, breakers.GetOrCreate("event-bus", circuitbreaker.DefaultConfig()))
	uc := NewRefundUseCase(
		deps.repo,
		deps.bookings,
		deps.audit,
		deps.processor,
		idempotency.NewGuard(idempotency.NewMemoryStore()),
		breakers,
		emitter,
		fees.NewCalculator(fees.DefaultConfig()),
	)
	return uc, deps
}

func paidBooking(agentConfirmed bool) entities.Booking {
	b := entities.Booking{
		ID: "b-1", UserID: "user-1", AgentID: "agent-1",
		BasePriceCents: 100_000, BookingFeeCents: 3050, TotalAmountCents: 103_050,
		PlatformCommissionCents: 10_000, AgentPayoutCents: 90_000,
		ProcessorPaymentRef: "pay-9",
		State:               entities.BookingStatePaymentConfirmed,
		Version:             3,
	}
	if agentConfirmed {
		now := time.Now().UTC()
		b.AgentConfirmedAt = &now
		b.State = entities.BookingStateAgentConfirmed
		b.Version = 4
	}
	return b
}

func echoRefundCreate(ctx context.Context, r entities.Refund) (entities.Refund, error) { return r, nil }

func echoRefundUpdate(ctx context.Context, r entities.Refund, expectedVersion int64) (entities.Refund, error) {
	return r, nil
}

func TestRefundUseCase_CreateRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("agent fault refunds the full amount and auto-approves", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(paidBooking(true), nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoRefundCreate)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(1)).DoAndReturn(echoRefundUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "refund.requested", gomock.Any(), gomock.Any()).Return(nil)
		deps.publisher.EXPECT().Publish(gomock.Any(), "refund.approved", gomock.Any(), gomock.Any()).Return(nil)

		r, replayed, err := uc.CreateRefund(ctx, "rk-1", CreateRefundInput{
			BookingID: "b-1", RequestedBy: "user-1", Reason: entities.RefundReasonAgentNoShow,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if replayed {
			t.Fatal("first execution must not be a replay")
		}
		if r.State != entities.RefundStateApproved {
			t.Fatalf("expected APPROVED, got %s", r.State)
		}
		if r.AmountCents != 103_050 || r.IsPartial {
			t.Fatalf("agent fault must refund the full total: %+v", r)
		}
		if r.Version != 2 {
			t.Fatalf("expected version 2 after auto-advance, got %d", r.Version)
		}
	})

	t.Run("user cancellation after agent confirmation halves and keeps the fee", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(paidBooking(true), nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoRefundCreate)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(1)).DoAndReturn(echoRefundUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

		r, _, err := uc.CreateRefund(ctx, "rk-1", CreateRefundInput{
			BookingID: "b-1", RequestedBy: "user-1", Reason: entities.RefundReasonUserCancelled,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// (103050 - 3050) / 2
		if r.AmountCents != 50_000 || !r.IsPartial {
			t.Fatalf("unexpected refund sizing: %+v", r)
		}
	})

	t.Run("admin override waits for an admin decision", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(paidBooking(false), nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoRefundCreate)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(1)).DoAndReturn(echoRefundUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "refund.requested", gomock.Any(), gomock.Any()).Return(nil)

		r, _, err := uc.CreateRefund(ctx, "rk-1", CreateRefundInput{
			BookingID: "b-1", RequestedBy: "admin-1", Reason: entities.RefundReasonAdminOverride, AdminAmountCents: 40_000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.State != entities.RefundStateAwaitingAdmin {
			t.Fatalf("expected AWAITING_ADMIN, got %s", r.State)
		}
		if r.AmountCents != 40_000 || !r.IsPartial {
			t.Fatalf("unexpected refund sizing: %+v", r)
		}
	})

	t.Run("subjective reason is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(paidBooking(true), nil)

		_, _, err := uc.CreateRefund(ctx, "rk-1", CreateRefundInput{
			BookingID: "b-1", RequestedBy: "user-1", Reason: entities.RefundReasonChangeOfMind,
		})
		if !errors.Is(err, entities.ErrReasonNotRefundable) {
			t.Fatalf("expected ErrReasonNotRefundable, got %v", err)
		}
	})

	t.Run("booking without captured payment is not refundable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		b := paidBooking(false)
		b.ProcessorPaymentRef = ""
		deps.bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(b, nil)

		_, _, err := uc.CreateRefund(ctx, "rk-1", CreateRefundInput{
			BookingID: "b-1", RequestedBy: "user-1", Reason: entities.RefundReasonAgentNoShow,
		})
		if !errors.Is(err, ErrBookingNotRefundable) {
			t.Fatalf("expected ErrBookingNotRefundable, got %v", err)
		}
	})
}

func TestRefundUseCase_Decisions(t *testing.T) {
	ctx := context.Background()

	storedRefund := func(state entities.RefundState, version int64) entities.Refund {
		return entities.Refund{
			ID: "r-1", BookingID: "b-1", PaymentRef: "pay-9",
			RequestedBy: "user-1", Reason: entities.RefundReasonAdminOverride,
			AmountCents: 40_000, IsPartial: true,
			RequiresAdminApproval: true,
			State:                 state, Version: version,
		}
	}

	t.Run("approve from awaiting admin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(storedRefund(entities.RefundStateAwaitingAdmin, 2), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(2)).DoAndReturn(echoRefundUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "refund.approved", gomock.Any(), gomock.Any()).Return(nil)

		r, err := uc.ApproveRefund(ctx, "r-1", "admin-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.State != entities.RefundStateApproved || r.DecidedBy != "admin-1" || r.DecidedAt == nil {
			t.Fatalf("unexpected refund: %+v", r)
		}
	})

	t.Run("approve outside awaiting admin is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(storedRefund(entities.RefundStateApproved, 2), nil)

		if _, err := uc.ApproveRefund(ctx, "r-1", "admin-1"); !errors.Is(err, ErrRefundDecisionInvalid) {
			t.Fatalf("expected ErrRefundDecisionInvalid, got %v", err)
		}
	})

	t.Run("deny a failed refund instead of retrying", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(storedRefund(entities.RefundStateFailed, 4), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(4)).DoAndReturn(echoRefundUpdate)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "refund.denied", gomock.Any(), gomock.Any()).Return(nil)

		r, err := uc.DenyRefund(ctx, "r-1", "admin-1", "charge already reversed by issuer")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.State != entities.RefundStateDenied || r.DenialNote == "" {
			t.Fatalf("unexpected refund: %+v", r)
		}
	})

	t.Run("deny a completed refund is an invalid transition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(storedRefund(entities.RefundStateCompleted, 5), nil)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

		if _, err := uc.DenyRefund(ctx, "r-1", "admin-1", "nope"); !errors.Is(err, entities.ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
	})
}

func TestRefundUseCase_ProcessRefund(t *testing.T) {
	ctx := context.Background()

	approvedRefund := func(version int64) entities.Refund {
		return entities.Refund{
			ID: "r-1", BookingID: "b-1", PaymentRef: "pay-9",
			RequestedBy: "user-1", Reason: entities.RefundReasonAgentNoShow,
			AmountCents: 103_050,
			State:       entities.RefundStateApproved, Version: version,
		}
	}

	t.Run("happy path completes with the processor reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(approvedRefund(2), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(2)).DoAndReturn(echoRefundUpdate)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(echoRefundUpdate)
		deps.processor.EXPECT().CreateRefund(gomock.Any(), "pk-1", "pay-9", int64(103_050)).Return("ref-7", nil)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), "payment.refund_issued", gomock.Any(), gomock.Any()).Return(nil)

		r, replayed, err := uc.ProcessRefund(ctx, "pk-1", "r-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if replayed {
			t.Fatal("first execution must not be a replay")
		}
		if r.State != entities.RefundStateCompleted || r.ProcessorRefundRef != "ref-7" || r.Version != 4 {
			t.Fatalf("unexpected refund: %+v", r)
		}
	})

	t.Run("retry with same key does not hit the processor twice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(approvedRefund(2), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(echoRefundUpdate).Times(2)
		deps.processor.EXPECT().CreateRefund(gomock.Any(), "pk-1", "pay-9", gomock.Any()).Return("ref-7", nil)
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		if _, _, err := uc.ProcessRefund(ctx, "pk-1", "r-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		r, replayed, err := uc.ProcessRefund(ctx, "pk-1", "r-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !replayed || r.State != entities.RefundStateCompleted {
			t.Fatalf("expected replayed completed refund, got replayed=%v %+v", replayed, r)
		}
	})

	t.Run("processor failure lands in FAILED with the cause", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		procErr := &interfaces.ProcessorError{StatusCode: 500, Code: "internal", Message: "boom"}
		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(approvedRefund(2), nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(2)).DoAndReturn(echoRefundUpdate)
		deps.processor.EXPECT().CreateRefund(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", procErr)

		var failed *entities.Refund
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(func(_ context.Context, r entities.Refund, _ int64) (entities.Refund, error) {
			failed = &r
			return r, nil
		})
		deps.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		_, _, err := uc.ProcessRefund(ctx, "pk-1", "r-1")
		var pe *interfaces.ProcessorError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ProcessorError, got %v", err)
		}
		if failed == nil || failed.State != entities.RefundStateFailed || failed.FailureDetail == "" {
			t.Fatalf("expected persisted FAILED refund with detail, got %+v", failed)
		}
	})

	t.Run("processing a denied refund is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc, deps := newRefundUseCaseForTest(ctrl)

		r := approvedRefund(3)
		r.State = entities.RefundStateDenied
		deps.repo.EXPECT().GetByID(gomock.Any(), "r-1").Return(r, nil)

		if _, _, err := uc.ProcessRefund(ctx, "pk-1", "r-1"); !errors.Is(err, ErrRefundNotProcessable) {
			t.Fatalf("expected ErrRefundNotProcessable, got %v", err)
		}
	})
}
