package rate

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoPeriods is returned when a level payment is requested over fewer
// than one period.
var ErrNoPeriods = errors.New("annuity needs at least one period")

// AnnuityPayment solves the level installment that amortizes principal
// over periods installments at the per-period rate.
//
//	payment = P·r / (1 − (1+r)^−n)     (r ≠ 0)
//	payment = P / n                    (r = 0)
//
// The rate is a fraction (0.01 for 1%). The result is rounded half-even to
// precision fractional digits.
func AnnuityPayment(principal, periodRate decimal.Decimal, periods int, precision int32) (decimal.Decimal, error) {
	if periods < 1 {
		return decimal.Zero, ErrNoPeriods
	}
	n := decimal.NewFromInt(int64(periods))
	if periodRate.IsZero() {
		return Divide(principal, n, precision), nil
	}

	working := precision + RunningCalculationPrecision
	growth := Pow(one.Add(periodRate), periods, working)
	discount := one.Sub(Divide(one, growth, working))
	return Divide(principal.Mul(periodRate), discount, precision), nil
}
