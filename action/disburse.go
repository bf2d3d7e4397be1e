package action

import (
	"context"
	"fmt"

	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/payment"
	"github.com/warp/loan-engine/schedule"
)

// DisburseService costs a disbursement.
//
// The amount defaults to the maximum balance. The principal after the
// disbursement may not exceed the maximum balance. When the product
// provisions for losses at day 0, the provision is charged on the
// disbursed amount.
type DisburseService struct {
	base
}

func NewDisburseService(engine *costcomponent.Engine) *DisburseService {
	return &DisburseService{base: base{action: schedule.ActionDisburse, engine: engine}}
}

func (s *DisburseService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	requested := cc.Parameters.MaximumBalance
	if req.Amount != nil {
		requested = *req.Amount
	}
	principal, err := balance.BalanceOrZero(ctx, rb, account.CustomerLoanPrincipal)
	if err != nil {
		return payment.Payment{}, err
	}
	if principal.Add(requested).GreaterThan(cc.Parameters.MaximumBalance) {
		return payment.Payment{}, fmt.Errorf("%w: %s disbursed, %s requested, maximum %s",
			ErrExceedsMaximumBalance, principal, requested, cc.Parameters.MaximumBalance)
	}

	var extra []*charge.Definition
	if step, ok := cc.Product.LossProvisionStep(0); ok {
		extra = append(extra, ProvisionForLosses(schedule.ActionDisburse, charge.RequestedDisbursement, step.PercentProvision))
	}

	sa := schedule.NewScheduledAction(s.action, req.Date)
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{requestedDisbursement: requested}, extra...)
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}
