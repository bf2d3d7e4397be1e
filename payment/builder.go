package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// BUILDER - Accumulates one action's adjustments
// =============================================================================

// Builder accumulates clamped adjustments for one computation. Its maps are
// never handed out; outputs are copies. Not safe for concurrent use.
type Builder struct {
	balances          balance.RunningBalances
	accrualAccounting bool

	definitions map[string]*charge.Definition
	components  map[string]decimal.Decimal
	order       []string

	adjustments map[account.Designator]decimal.Decimal
}

// NewBuilder returns an empty builder clamping against balances.
func NewBuilder(balances balance.RunningBalances, accrualAccounting bool) *Builder {
	return &Builder{
		balances:          balances,
		accrualAccounting: accrualAccounting,
		definitions:       make(map[string]*charge.Definition),
		components:        make(map[string]decimal.Decimal),
		adjustments:       make(map[account.Designator]decimal.Decimal),
	}
}

// Balances returns the balances the builder clamps against.
func (b *Builder) Balances() balance.RunningBalances { return b.balances }

// AccrualAccounting reports whether accrued charges book through their
// accrual accounts.
func (b *Builder) AccrualAccounting() bool { return b.accrualAccounting }

// Adjustment returns the adjustment made so far to d, summing group members.
func (b *Builder) Adjustment(d account.Designator) decimal.Decimal {
	pattern := b.balances.Pattern()
	if !pattern.IsGroup(d) {
		return b.adjustments[d]
	}
	sum := decimal.Zero
	for _, m := range pattern.Members(d) {
		sum = sum.Add(b.adjustments[m])
	}
	return sum
}

// AdjustBalances books a proposed charge amount for action.
//
// With accrual accounting, an accrued charge moves from its from account into
// its accrual account on its accrue action, and from the accrual account to
// its to account on its charge action. Otherwise the charge moves from→to on
// its charge action. Other actions book nothing.
//
// The amount is clamped so neither account crosses zero, counting what this
// builder already booked on them. The booked amount is returned.
func (b *Builder) AdjustBalances(ctx context.Context, action schedule.Action, def *charge.Definition, amount decimal.Decimal) (decimal.Decimal, error) {
	from, to, ok := b.accounts(action, def)
	if !ok {
		return decimal.Zero, nil
	}

	booked, err := b.maxCharge(ctx, from, to, amount)
	if err != nil {
		return decimal.Zero, err
	}
	if booked.IsZero() {
		return booked, nil
	}

	b.adjustments[from] = b.adjustments[from].Sub(booked)
	b.adjustments[to] = b.adjustments[to].Add(booked)
	b.addCostComponent(def, booked)
	return booked, nil
}

func (b *Builder) accounts(action schedule.Action, def *charge.Definition) (from, to account.Designator, ok bool) {
	accrued := b.accrualAccounting && def.IsAccrued()
	switch {
	case accrued && action == def.AccrueAction:
		return def.FromAccount, def.AccrualAccount, true
	case accrued && action == def.ChargeAction:
		return def.AccrualAccount, def.ToAccount, true
	case action == def.ChargeAction:
		return def.FromAccount, def.ToAccount, true
	default:
		return "", "", false
	}
}

// maxCharge clamps planned against both accounts. Adjustments already in
// the builder count towards the clamp: what is left to debit is the clamp
// of the total debit less what was already debited, likewise for credit.
func (b *Builder) maxCharge(ctx context.Context, from, to account.Designator, planned decimal.Decimal) (decimal.Decimal, error) {
	if !planned.IsPositive() {
		return decimal.Zero, nil
	}
	fromAdj := b.adjustments[from]
	toAdj := b.adjustments[to]

	maxDebit, err := balance.MaxDebit(ctx, b.balances, from, planned.Sub(fromAdj))
	if err != nil {
		return decimal.Zero, err
	}
	maxCredit, err := balance.MaxCredit(ctx, b.balances, to, planned.Add(toAdj))
	if err != nil {
		return decimal.Zero, err
	}

	allowed := decimal.Min(maxDebit.Add(fromAdj), maxCredit.Sub(toAdj), planned)
	if allowed.IsNegative() {
		return decimal.Zero, nil
	}
	return allowed, nil
}

func (b *Builder) addCostComponent(def *charge.Definition, amount decimal.Decimal) {
	if _, seen := b.components[def.Identifier]; !seen {
		b.order = append(b.order, def.Identifier)
		b.definitions[def.Identifier] = def
	}
	b.components[def.Identifier] = b.components[def.Identifier].Add(amount)
}

// =============================================================================
// OUTPUTS
// =============================================================================

// BuildPayment returns the payment for action. With forAccounts, only cost
// components of charges touching one of those roles (groups expanded) are
// included. Zero components are never included.
func (b *Builder) BuildPayment(action schedule.Action, date schedule.Date, forAccounts ...account.Designator) Payment {
	var filter map[account.Designator]bool
	if len(forAccounts) > 0 {
		filter = b.balances.Pattern().Expand(forAccounts...)
	}

	p := Payment{
		Action:             action,
		Date:               date,
		BalanceAdjustments: make(map[account.Designator]decimal.Decimal, len(b.adjustments)),
	}
	for _, id := range b.order {
		amount := b.components[id]
		if amount.IsZero() {
			continue
		}
		if filter != nil && !b.definitions[id].Touches(b.balances.Pattern(), filter) {
			continue
		}
		p.CostComponents = append(p.CostComponents, CostComponent{ChargeIdentifier: id, Amount: amount})
	}
	for d, a := range b.adjustments {
		if !a.IsZero() {
			p.BalanceAdjustments[d] = a
		}
	}
	return p
}

// AccumulatePlannedPayment folds the builder's adjustments into sim and
// returns the payment together with a snapshot of the balances after it.
func (b *Builder) AccumulatePlannedPayment(sim *balance.Simulated, date schedule.Date) PlannedPayment {
	p := b.BuildPayment("", date)
	sim.Apply(p.BalanceAdjustments)
	return PlannedPayment{Payment: p, Balances: sim.Snapshot()}
}

// Definitions returns the definitions of the charges booked, in booking order.
func (b *Builder) Definitions() []*charge.Definition {
	out := make([]*charge.Definition, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.definitions[id])
	}
	return out
}
