package fees

import (
	"errors"
	"testing"

	"tripmarket/internal/domain/entities"
)

func TestCalculator_Calculate(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	t.Run("worked example", func(t *testing.T) {
		// 3% + 50¢ fee, 10% commission on a R$1000.00 base price.
		fc, err := calc.Calculate(100_000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fc.BookingFeeCents != 3050 {
			t.Fatalf("booking fee: expected 3050, got %d", fc.BookingFeeCents)
		}
		if fc.TotalAmountCents != 103_050 {
			t.Fatalf("total: expected 103050, got %d", fc.TotalAmountCents)
		}
		if fc.PlatformCommissionCents != 10_000 {
			t.Fatalf("commission: expected 10000, got %d", fc.PlatformCommissionCents)
		}
		if fc.AgentPayoutCents != 90_000 {
			t.Fatalf("payout: expected 90000, got %d", fc.AgentPayoutCents)
		}
	})

	t.Run("fee rounds up, commission rounds down", func(t *testing.T) {
		// 3% of 1001 = 30.03 -> 31; 10% of 1001 = 100.1 -> 100.
		fc, err := calc.Calculate(1001)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fc.BookingFeeCents != 31+50 {
			t.Fatalf("booking fee: expected 81, got %d", fc.BookingFeeCents)
		}
		if fc.PlatformCommissionCents != 100 {
			t.Fatalf("commission: expected 100, got %d", fc.PlatformCommissionCents)
		}
	})

	t.Run("invariants hold across the range", func(t *testing.T) {
		for _, base := range []int64{500, 501, 999, 1000, 33_333, 100_000, 4_999_999, 5_000_000} {
			fc, err := calc.Calculate(base)
			if err != nil {
				t.Fatalf("base=%d: unexpected error: %v", base, err)
			}
			if fc.BasePriceCents+fc.BookingFeeCents != fc.TotalAmountCents {
				t.Fatalf("base=%d: total invariant violated: %+v", base, fc)
			}
			if fc.BasePriceCents-fc.PlatformCommissionCents != fc.AgentPayoutCents {
				t.Fatalf("base=%d: payout invariant violated: %+v", base, fc)
			}
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, base := range []int64{-1, 0, 499, 5_000_001} {
			if _, err := calc.Calculate(base); !errors.Is(err, ErrBasePriceOutOfRange) {
				t.Fatalf("base=%d: expected ErrBasePriceOutOfRange, got %v", base, err)
			}
		}
	})
}

func TestCalculator_RefundAmount(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	const total, fee = int64(103_050), int64(3050)

	t.Run("agent fault is always full", func(t *testing.T) {
		for _, reason := range []entities.RefundReason{
			entities.RefundReasonAgentNoShow,
			entities.RefundReasonServiceNotDelivered,
			entities.RefundReasonDuplicateCharge,
			entities.RefundReasonAgentCancelled,
		} {
			ra, err := calc.RefundAmount(reason, total, fee, true, 0)
			if err != nil {
				t.Fatalf("reason=%s: unexpected error: %v", reason, err)
			}
			if ra.AmountCents != total || ra.IsPartial {
				t.Fatalf("reason=%s: expected full %d, got %+v", reason, total, ra)
			}
		}
	})

	t.Run("user cancellation before confirmation", func(t *testing.T) {
		ra, err := calc.RefundAmount(entities.RefundReasonUserCancelled, total, fee, false, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ra.AmountCents != 100_000 || !ra.IsPartial {
			t.Fatalf("expected partial 100000, got %+v", ra)
		}
	})

	t.Run("user cancellation after confirmation halves and floors", func(t *testing.T) {
		ra, err := calc.RefundAmount(entities.RefundReasonUserCancelled, total, 3049, true, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// (103050-3049)/2 = 50000.5 -> 50000
		if ra.AmountCents != 50_000 || !ra.IsPartial {
			t.Fatalf("expected partial 50000, got %+v", ra)
		}
	})

	t.Run("admin discretion defaults to full", func(t *testing.T) {
		ra, err := calc.RefundAmount(entities.RefundReasonQualityIssue, total, fee, true, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ra.AmountCents != total || ra.IsPartial {
			t.Fatalf("expected full %d, got %+v", total, ra)
		}
	})

	t.Run("admin discretion honors admin amount", func(t *testing.T) {
		ra, err := calc.RefundAmount(entities.RefundReasonAdminOverride, total, fee, true, 25_000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ra.AmountCents != 25_000 || !ra.IsPartial {
			t.Fatalf("expected partial 25000, got %+v", ra)
		}
	})

	t.Run("admin amount above total rejected", func(t *testing.T) {
		if _, err := calc.RefundAmount(entities.RefundReasonAdminOverride, total, fee, true, total+1); !errors.Is(err, ErrAdminAmountInvalid) {
			t.Fatalf("expected ErrAdminAmountInvalid, got %v", err)
		}
	})

	t.Run("subjective reasons never size", func(t *testing.T) {
		for _, reason := range []entities.RefundReason{
			entities.RefundReasonExpectationsMismatch,
			entities.RefundReasonPersonalPreference,
			entities.RefundReasonChangeOfMind,
		} {
			if _, err := calc.RefundAmount(reason, total, fee, false, 0); !errors.Is(err, entities.ErrReasonNotRefundable) {
				t.Fatalf("reason=%s: expected ErrReasonNotRefundable, got %v", reason, err)
			}
		}
	})

	t.Run("unknown reason", func(t *testing.T) {
		if _, err := calc.RefundAmount("SOMETHING_ELSE", total, fee, false, 0); !errors.Is(err, entities.ErrUnknownRefundReason) {
			t.Fatalf("expected ErrUnknownRefundReason, got %v", err)
		}
	})
}
