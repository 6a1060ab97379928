// Package fees computes booking fees, platform commission and refund amounts.
// All arithmetic is integer cents; rates are basis points. No floating point
// is used anywhere in this package, to avoid rounding drift.
package fees

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"tripmarket/internal/domain/entities"
)

var (
	ErrBasePriceOutOfRange = errors.New("base price out of allowed range")
	ErrAdminAmountInvalid  = errors.New("admin refund amount out of range")
)

const bpsDenominator = 10_000

// Config is the static rate configuration. Rates are basis points
// (300 = 3.00%). Defaults match production policy; every field is
// env-overridable through ConfigFromEnv.
type Config struct {
	FeeRateBps          int64
	FixedFeeCents       int64
	CommissionRateBps   int64
	ProcessorRateBps    int64
	ProcessorFixedCents int64
	MinBasePriceCents   int64
	MaxBasePriceCents   int64
}

// DefaultConfig returns the production policy: 3% + 50¢ booking fee, 10%
// platform commission, 2.9% + 30¢ processor fee estimate, base price between
// R$5.00 and R$50,000.00 equivalents in cents.
func DefaultConfig() Config {
	return Config{
		FeeRateBps:          300,
		FixedFeeCents:       50,
		CommissionRateBps:   1000,
		ProcessorRateBps:    290,
		ProcessorFixedCents: 30,
		MinBasePriceCents:   500,
		MaxBasePriceCents:   5_000_000,
	}
}

// ConfigFromEnv returns DefaultConfig with any FEE_* environment overrides
// applied. Malformed values are ignored in favor of the default.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	envInt64(&cfg.FeeRateBps, "FEE_RATE_BPS")
	envInt64(&cfg.FixedFeeCents, "FEE_FIXED_CENTS")
	envInt64(&cfg.CommissionRateBps, "FEE_COMMISSION_RATE_BPS")
	envInt64(&cfg.ProcessorRateBps, "FEE_PROCESSOR_RATE_BPS")
	envInt64(&cfg.ProcessorFixedCents, "FEE_PROCESSOR_FIXED_CENTS")
	envInt64(&cfg.MinBasePriceCents, "FEE_MIN_BASE_PRICE_CENTS")
	envInt64(&cfg.MaxBasePriceCents, "FEE_MAX_BASE_PRICE_CENTS")
	return cfg
}

func envInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// Calculator derives all booking amounts from a base price. It is
// deterministic and has no side effects.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate computes the fee breakdown for a base price.
//
//	bookingFee = ceil(base * feeRate) + fixedFee
//	total      = base + bookingFee
//	commission = floor(base * commissionRate)
//	payout     = base - commission
func (c *Calculator) Calculate(basePriceCents int64) (entities.FeeCalculation, error) {
	if basePriceCents < c.cfg.MinBasePriceCents || basePriceCents > c.cfg.MaxBasePriceCents {
		return entities.FeeCalculation{}, fmt.Errorf("%w: %d not in [%d, %d]",
			ErrBasePriceOutOfRange, basePriceCents, c.cfg.MinBasePriceCents, c.cfg.MaxBasePriceCents)
	}

	bookingFee := ceilBps(basePriceCents, c.cfg.FeeRateBps) + c.cfg.FixedFeeCents
	total := basePriceCents + bookingFee
	commission := floorBps(basePriceCents, c.cfg.CommissionRateBps)

	return entities.FeeCalculation{
		BasePriceCents:            basePriceCents,
		BookingFeeCents:           bookingFee,
		TotalAmountCents:          total,
		PlatformCommissionCents:   commission,
		AgentPayoutCents:          basePriceCents - commission,
		ProcessorFeeEstimateCents: ceilBps(total, c.cfg.ProcessorRateBps) + c.cfg.ProcessorFixedCents,
	}, nil
}

func ceilBps(amount, bps int64) int64 {
	return (amount*bps + bpsDenominator - 1) / bpsDenominator
}

func floorBps(amount, bps int64) int64 {
	return amount * bps / bpsDenominator
}
