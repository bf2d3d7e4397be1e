package costcomponent

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/payment"
)

// proportionalBase resolves what def is sized against. Balances are read
// net of what this computation has already booked on them. Designators
// outside the fixed set resolve to zero.
func (e *Engine) proportionalBase(ctx context.Context, in Input, builder *payment.Builder, def *charge.Definition) (decimal.Decimal, error) {
	netBalance := func(d account.Designator) (decimal.Decimal, error) {
		return balance.NaturalBalanceAfter(ctx, in.Balances, d, builder.Adjustment(d))
	}

	switch def.ProportionalTo {
	case charge.NotProportional:
		return decimal.Zero, nil
	case charge.MaximumBalance:
		return in.MaximumBalance, nil
	case charge.RunningBalance:
		return netBalance(account.CustomerLoanGroup)
	case charge.PrincipalBalance:
		return netBalance(account.CustomerLoanPrincipal)
	case charge.ContractualRepayment:
		return in.ContractualRepayment, nil
	case charge.RequestedDisbursement:
		return in.RequestedDisbursement, nil
	case charge.RequestedRepayment:
		return in.RequestedRepayment.Add(builder.Adjustment(account.Entry)), nil
	case charge.ToAccount:
		return netBalance(def.ToAccount)
	case charge.FromAccount:
		return netBalance(def.FromAccount)
	default:
		e.logger.Debug("unsupported proportional designator", "charge", def.Identifier, "proportional_to", string(def.ProportionalTo))
		return decimal.Zero, nil
	}
}
