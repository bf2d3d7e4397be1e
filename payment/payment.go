/*
Package payment accumulates the outcome of costing one lifecycle action.

PURPOSE:
  The cost engine proposes charge amounts; the Builder clamps them against
  running balances, books them between accounts and keeps per-charge
  totals. The result is a Payment for immediate booking, or a
  PlannedPayment when projecting a schedule.

SIGN CONVENTION:
  Balance adjustments are credit-positive: a debit of x on an account is
  -x, a credit +x. Cost components are positive amounts per charge.

SEE ALSO:
  - builder.go: the accumulator
  - costcomponent/service.go: drives the builder
  - ledger/entry.go: turns adjustments into a journal entry
*/
package payment

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/schedule"
)

// CostComponent is the total booked for one charge.
type CostComponent struct {
	ChargeIdentifier string
	Amount           decimal.Decimal
}

// Payment is the costed outcome of one action.
type Payment struct {
	Action             schedule.Action
	Date               schedule.Date
	CostComponents     []CostComponent
	BalanceAdjustments map[account.Designator]decimal.Decimal
}

// CostComponent returns the amount booked for a charge.
func (p Payment) CostComponent(chargeIdentifier string) (decimal.Decimal, bool) {
	for _, c := range p.CostComponents {
		if c.ChargeIdentifier == chargeIdentifier {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}

// Adjustment returns the credit-positive adjustment of d.
func (p Payment) Adjustment(d account.Designator) decimal.Decimal {
	return p.BalanceAdjustments[d]
}

// Total sums the cost components.
func (p Payment) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range p.CostComponents {
		total = total.Add(c.Amount)
	}
	return total
}

// AdjustedDesignators lists the roles with a non-zero adjustment, sorted.
func (p Payment) AdjustedDesignators() []account.Designator {
	out := make([]account.Designator, 0, len(p.BalanceAdjustments))
	for d := range p.BalanceAdjustments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PlannedPayment is a projected payment and the balances right after it.
type PlannedPayment struct {
	Payment  Payment
	Balances map[account.Designator]decimal.Decimal
}

// Balance returns a projected balance, zero when absent.
func (pp PlannedPayment) Balance(d account.Designator) decimal.Decimal {
	return pp.Balances[d]
}
