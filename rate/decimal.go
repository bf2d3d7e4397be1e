/*
Package rate holds the numeric primitives of the cost engine.

PURPOSE:
  Percentages become per-period rates here, per-period rates are reduced
  to effective rates, and the level installment of an annuity is solved.
  Nothing in this package knows about accounts or charges.

KEY CONCEPTS:
  - Divide: exact half-even division at an explicit precision
  - Compound / GeometricMean: mergeable reducers over per-period rates
  - AnnuityPayment: closed-form level payment

PRECISION:
  Callers pass the number of fractional digits to keep. Intermediate
  products are carried with extra guard digits and only the final result
  is rounded half-even, so long chains of small daily rates do not drift.

SEE ALSO:
  - charge/period.go: turns a charge amount into a per-occurrence rate
  - costcomponent/service.go: solves the loan payment size
*/
package rate

import (
	"math"

	"github.com/shopspring/decimal"
)

// RunningCalculationPrecision is the working precision used for rates
// before they are applied to a booked amount.
const RunningCalculationPrecision int32 = 20

// guardDigits are carried on top of the requested precision for
// intermediate values.
const guardDigits int32 = 10

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Divide returns a / b rounded half-even to precision fractional digits.
// Unlike decimal.DivRound, ties go to the even neighbour. b must not be zero.
func Divide(a, b decimal.Decimal, precision int32) decimal.Decimal {
	q, r := a.QuoRem(b, precision)
	if r.IsZero() {
		return q
	}
	unit := decimal.New(1, -precision)
	cmp := r.Abs().Mul(two).Cmp(b.Abs().Mul(unit))
	if cmp < 0 || (cmp == 0 && !isOdd(q, precision)) {
		return q
	}
	if a.Sign()*b.Sign() < 0 {
		return q.Sub(unit)
	}
	return q.Add(unit)
}

func isOdd(q decimal.Decimal, precision int32) bool {
	return q.Shift(precision).Abs().BigInt().Bit(0) == 1
}

// PercentToFraction converts percentage points to a fraction
// (10 becomes 0.1), rounded half-even to precision digits.
func PercentToFraction(points decimal.Decimal, precision int32) decimal.Decimal {
	return Divide(points, hundred, precision)
}

// Pow raises x to a non-negative integer power by squaring, rounding every
// intermediate to precision digits.
func Pow(x decimal.Decimal, n int, precision int32) decimal.Decimal {
	result := one
	base := x
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).RoundBank(precision)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base).RoundBank(precision)
		}
	}
	return result
}

// Root returns the n-th root of a positive x at the given precision,
// refined by Newton iteration from a float64 estimate.
func Root(x decimal.Decimal, n int, precision int32) decimal.Decimal {
	if n == 1 || x.IsZero() {
		return x
	}
	guess := decimal.NewFromFloat(math.Pow(x.InexactFloat64(), 1/float64(n)))
	if !guess.IsPositive() {
		guess = one
	}
	nd := decimal.NewFromInt(int64(n))
	nMinusOne := decimal.NewFromInt(int64(n - 1))
	epsilon := decimal.New(1, -precision)
	for i := 0; i < 100; i++ {
		// x_{k+1} = ((n-1) x_k + x / x_k^(n-1)) / n
		next := Divide(nMinusOne.Mul(guess).Add(Divide(x, Pow(guess, n-1, precision), precision)), nd, precision)
		done := next.Sub(guess).Abs().LessThanOrEqual(epsilon)
		guess = next
		if done {
			break
		}
	}
	return guess
}
