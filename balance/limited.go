package balance

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
)

// Limit caps the balance reported for one role.
type Limit struct {
	Designator account.Designator
	Amount     decimal.Decimal
}

type limited struct {
	delegate RunningBalances
	limits   map[account.Designator]decimal.Decimal
}

// Limited wraps delegate so the balance of each limited role is reported
// as min(balance, limit), or the limit when the role is absent. Every clamp
// computed against the result honours the limits.
func Limited(delegate RunningBalances, limits ...Limit) RunningBalances {
	l := &limited{delegate: delegate, limits: make(map[account.Designator]decimal.Decimal, len(limits))}
	for _, lim := range limits {
		l.limits[lim.Designator] = lim.Amount
	}
	return l
}

func (l *limited) Pattern() *account.Pattern { return l.delegate.Pattern() }

func (l *limited) AccountSign(d account.Designator) account.Sign { return l.delegate.AccountSign(d) }

func (l *limited) AccountBalance(ctx context.Context, d account.Designator) (decimal.Decimal, bool, error) {
	b, ok, err := l.delegate.AccountBalance(ctx, d)
	if err != nil {
		return decimal.Zero, false, err
	}
	limit, capped := l.limits[d]
	switch {
	case !capped:
		return b, ok, nil
	case !ok:
		return limit, true, nil
	default:
		return decimal.Min(b, limit), true, nil
	}
}

func (l *limited) AccruedBalanceForCharge(ctx context.Context, def *charge.Definition) (decimal.Decimal, error) {
	return l.delegate.AccruedBalanceForCharge(ctx, def)
}

func (l *limited) StartOfTerm(ctx context.Context) (schedule.Date, bool, error) {
	return l.delegate.StartOfTerm(ctx)
}
