/*
Package costcomponent computes what each lifecycle action of a loan costs.

PURPOSE:
  Given the charges scheduled for an action and the current balances,
  decide how much each charge moves and between which accounts. The same
  computation drives both immediate booking (one action, real balances)
  and forward projection (the whole term, simulated balances).

HOW IT WORKS:
  For every scheduled charge, in order of application:
    1. Accrue occurrences are skipped when accrual accounting is off.
    2. The incurral of an accrued charge books what was accrued.
    3. Otherwise the proportional base is resolved (principal, requested
       repayment, ...); a charge whose range excludes the base is skipped.
    4. The method turns the base into an amount, rounded half-even to the
       currency's minor digits.
    5. The payment builder clamps and books the amount.

KEY CONCEPTS:
  - Balances "net of this computation": a charge sized against principal
    sees the principal after the adjustments booked before it
  - Level payment: the annuity installment that repays the principal net
    of disbursement fees at the geometric mean of the period rates

SEE ALSO:
  - payment/builder.go: clamping and booking
  - charge/period.go: per-occurrence rates
  - plan/planner.go: forward projection
*/
package costcomponent

import (
	"context"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/payment"
	"github.com/warp/loan-engine/rate"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine is stateless; one instance may serve concurrent computations.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns an engine logging to logger. A nil logger discards.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{logger: logger}
}

// Input is everything one computation depends on.
type Input struct {
	ScheduledCharges []charge.ScheduledCharge
	Balances         balance.RunningBalances

	MaximumBalance        decimal.Decimal
	ContractualRepayment  decimal.Decimal
	RequestedDisbursement decimal.Decimal
	RequestedRepayment    decimal.Decimal

	// InterestRate is the annual rate in percentage points.
	InterestRate        decimal.Decimal
	MinorCurrencyDigits int32
	AccrualAccounting   bool
}

// ForScheduledCharges costs the scheduled charges and returns the builder
// holding the result. The input charges are not modified.
func (e *Engine) ForScheduledCharges(ctx context.Context, in Input) (*payment.Builder, error) {
	builder := payment.NewBuilder(in.Balances, in.AccrualAccounting)

	charges := make([]charge.ScheduledCharge, len(in.ScheduledCharges))
	copy(charges, in.ScheduledCharges)
	charge.Sort(charges)

	for _, sc := range charges {
		if err := e.apply(ctx, in, builder, sc); err != nil {
			return nil, err
		}
	}
	return builder, nil
}

func (e *Engine) apply(ctx context.Context, in Input, builder *payment.Builder, sc charge.ScheduledCharge) error {
	def := sc.Definition
	if sc.IsAccrual() && !in.AccrualAccounting {
		return nil
	}

	var amount decimal.Decimal
	if in.AccrualAccounting && sc.IsIncurral() {
		accrued, err := e.accruedAmount(ctx, in, builder, def)
		if err != nil {
			return err
		}
		amount = accrued
	} else {
		base, err := e.proportionalBase(ctx, in, builder, def)
		if err != nil {
			return err
		}
		if sc.Range != nil && !sc.Range.AmountIsWithinRange(base) {
			e.logger.Debug("charge outside range",
				"charge", def.Identifier, "action", sc.Action.Action, "base", base.String(), "range", sc.Range.String())
			return nil
		}
		amount = e.chargeAmount(sc, base, in.InterestRate)
	}
	amount = amount.RoundBank(in.MinorCurrencyDigits)

	booked, err := builder.AdjustBalances(ctx, sc.Action.Action, def, amount)
	if err != nil {
		return err
	}
	if booked.LessThan(amount) {
		e.logger.Debug("charge clamped",
			"charge", def.Identifier, "action", sc.Action.Action, "proposed", amount.String(), "booked", booked.String())
	}
	return nil
}

// accruedAmount is what an accrued charge books on incurral: what was
// accrued before this computation plus what this computation accrued.
func (e *Engine) accruedAmount(ctx context.Context, in Input, builder *payment.Builder, def *charge.Definition) (decimal.Decimal, error) {
	accrued, err := in.Balances.AccruedBalanceForCharge(ctx, def)
	if err != nil {
		return decimal.Zero, err
	}
	sign := in.Balances.AccountSign(def.AccrualAccount).Decimal()
	return accrued.Add(sign.Mul(builder.Adjustment(def.AccrualAccount))), nil
}

// chargeAmount applies the charge method to the resolved base.
func (e *Engine) chargeAmount(sc charge.ScheduledCharge, base, interestRate decimal.Decimal) decimal.Decimal {
	def := sc.Definition
	switch def.Method {
	case charge.MethodFixed:
		return def.Amount
	case charge.MethodProportional:
		return base.Mul(charge.PerOccurrenceRate(sc, def.Amount, rate.RunningCalculationPrecision))
	case charge.MethodInterest:
		return base.Mul(charge.PerOccurrenceRate(sc, interestRate, rate.RunningCalculationPrecision))
	default:
		return decimal.Zero
	}
}

// =============================================================================
// LOAN PAYMENT SIZE
// =============================================================================

// extraPrecision digits are carried above the currency for rate work.
const extraPrecision = 4

// PaymentSizeInput parameterizes LoanPaymentSize.
type PaymentSizeInput struct {
	// ScheduledCharges is the hypothetical schedule of the whole term.
	ScheduledCharges []charge.ScheduledCharge
	Pattern          *account.Pattern

	MaximumBalance      decimal.Decimal
	DisbursementSize    decimal.Decimal
	InterestRate        decimal.Decimal
	MinorCurrencyDigits int32
}

// LoanPaymentSize solves the level installment of a loan: the annuity
// payment repaying the disbursement, plus fees financed at disbursement,
// over the repayment periods at the geometric mean of their interest rates.
// Without repayment periods the whole disbursement is due at once.
func (e *Engine) LoanPaymentSize(ctx context.Context, in PaymentSizeInput) (decimal.Decimal, error) {
	precision := int32(integerDigits(in.DisbursementSize)) + in.MinorCurrencyDigits + extraPrecision
	if precision < 8 {
		precision = 8
	}

	periodRates := charge.PeriodAccrualInterestRates(in.ScheduledCharges, in.InterestRate, precision)
	if len(periodRates) == 0 {
		return in.DisbursementSize, nil
	}
	mean := rate.NewGeometricMean(precision)
	for _, pr := range periodRates {
		mean.Add(pr.Rate)
	}

	var disbursementCharges []charge.ScheduledCharge
	for _, sc := range in.ScheduledCharges {
		if sc.Action.Action == schedule.ActionDisburse {
			disbursementCharges = append(disbursementCharges, sc)
		}
	}
	builder, err := e.ForScheduledCharges(ctx, Input{
		ScheduledCharges:      disbursementCharges,
		Balances:              balance.NewSimulated(in.Pattern, schedule.Date{}),
		MaximumBalance:        in.MaximumBalance,
		RequestedDisbursement: in.DisbursementSize,
		InterestRate:          in.InterestRate,
		MinorCurrencyDigits:   in.MinorCurrencyDigits,
		AccrualAccounting:     false,
	})
	if err != nil {
		return decimal.Zero, err
	}
	principal := builder.Adjustment(account.CustomerLoanPrincipal).Add(builder.Adjustment(account.CustomerLoanFees)).Neg()

	size, err := rate.AnnuityPayment(principal, mean.Result(), len(periodRates), in.MinorCurrencyDigits)
	if err != nil {
		return decimal.Zero, err
	}
	e.logger.Debug("loan payment size",
		"principal", principal.String(), "periods", len(periodRates), "payment", size.String())
	return size, nil
}

func integerDigits(x decimal.Decimal) int {
	s := x.Abs().Truncate(0).String()
	if s == "0" {
		return 1
	}
	return len(s)
}
