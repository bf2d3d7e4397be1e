/*
Package balance answers "how much is on this account?" for the cost engine.

PURPOSE:
  Charges are clamped so that non-exempt accounts never cross zero, and
  proportional charges are sized against balances. Both need a balance
  oracle. RunningBalances is that oracle; the engine never talks to a
  ledger directly.

IMPLEMENTATIONS:
  - Simulated: in-memory balances for forward projection
  - Real: balances read from the ledger through a short-lived cache
  - Limited: caps the balances of a delegate (e.g. the maximum a customer
    may repay)

KEY CONCEPTS:
  - Natural balance: positive when the account holds its normal balance
  - Absent balance: the account is not assigned; this is not zero, and
    clamps treat it as "no limit"
  - Clamp exemption: loss allowances and expense may go past zero, the
    customer entry may always be debited

SEE ALSO:
  - payment/builder.go: clamps every adjustment through MaxDebit/MaxCredit
  - account/pattern.go: signs, groups and exemptions
*/
package balance

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// RUNNING BALANCES
// =============================================================================

// RunningBalances is the balance oracle of one computation.
type RunningBalances interface {
	// Pattern returns the account roles the balances are classified by.
	Pattern() *account.Pattern

	// AccountSign returns the natural polarity of a role.
	AccountSign(d account.Designator) account.Sign

	// AccountBalance returns the natural balance of a plain role. The bool
	// is false when the role has no account.
	AccountBalance(ctx context.Context, d account.Designator) (decimal.Decimal, bool, error)

	// AccruedBalanceForCharge returns what has been accrued for an accrued
	// charge since the start of term and not yet applied.
	AccruedBalanceForCharge(ctx context.Context, def *charge.Definition) (decimal.Decimal, error)

	// StartOfTerm returns the date of the first disbursement, if known.
	StartOfTerm(ctx context.Context) (schedule.Date, bool, error)
}

// Balance returns the balance of d, summing the members of a group. A group
// is absent only when all its members are.
func Balance(ctx context.Context, rb RunningBalances, d account.Designator) (decimal.Decimal, bool, error) {
	pattern := rb.Pattern()
	if !pattern.IsGroup(d) {
		return rb.AccountBalance(ctx, d)
	}
	sum, found := decimal.Zero, false
	for _, m := range pattern.Members(d) {
		b, ok, err := rb.AccountBalance(ctx, m)
		if err != nil {
			return decimal.Zero, false, err
		}
		if ok {
			sum = sum.Add(b)
			found = true
		}
	}
	return sum, found, nil
}

// BalanceOrZero is Balance with absent read as zero.
func BalanceOrZero(ctx context.Context, rb RunningBalances, d account.Designator) (decimal.Decimal, error) {
	b, _, err := Balance(ctx, rb, d)
	return b, err
}

// AvailableBalance returns the balance of d, or requested when d is absent.
func AvailableBalance(ctx context.Context, rb RunningBalances, d account.Designator, requested decimal.Decimal) (decimal.Decimal, error) {
	b, ok, err := Balance(ctx, rb, d)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return requested, nil
	}
	return b, nil
}

// MaxDebit clamps a proposed debit of d. Exempt and debit-normal roles take
// any debit; credit-normal roles are debited at most their balance.
// The debit-exempt roles are the loss allowances, EXPENSE and also ENTRY,
// since the customer's side of a payment has no balance to exhaust.
func MaxDebit(ctx context.Context, rb RunningBalances, d account.Designator, amount decimal.Decimal) (decimal.Decimal, error) {
	if rb.Pattern().DebitExempt(d) || rb.AccountSign(d) == account.Negative {
		return amount, nil
	}
	available, err := AvailableBalance(ctx, rb, d, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Min(amount, available), nil
}

// MaxCredit clamps a proposed credit of d. Exempt and credit-normal roles
// take any credit; debit-normal roles are credited at most their balance.
func MaxCredit(ctx context.Context, rb RunningBalances, d account.Designator, amount decimal.Decimal) (decimal.Decimal, error) {
	if rb.Pattern().CreditExempt(d) || rb.AccountSign(d) == account.Positive {
		return amount, nil
	}
	available, err := AvailableBalance(ctx, rb, d, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Min(amount, available), nil
}

// NaturalBalanceAfter returns the balance of d (zero when absent) after a
// credit-positive adjustment: balance + sign × adjustment.
func NaturalBalanceAfter(ctx context.Context, rb RunningBalances, d account.Designator, adjustment decimal.Decimal) (decimal.Decimal, error) {
	b, err := BalanceOrZero(ctx, rb, d)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Add(rb.AccountSign(d).Decimal().Mul(adjustment)), nil
}

// StartOfTermOrErr is StartOfTerm with absence reported as ErrStartOfTermMissing.
func StartOfTermOrErr(ctx context.Context, rb RunningBalances) (schedule.Date, error) {
	d, ok, err := rb.StartOfTerm(ctx)
	if err != nil {
		return schedule.Date{}, err
	}
	if !ok {
		return schedule.Date{}, ErrStartOfTermMissing
	}
	return d, nil
}
