package action

import (
	"context"
	"fmt"

	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/payment"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// OPEN / APPROVE / DENY
// =============================================================================

// ScheduleOnlyService costs an action with no preconditions: the configured
// charges of the action at the request date.
type ScheduleOnlyService struct {
	base
}

// NewScheduleOnlyService returns the service of action.
func NewScheduleOnlyService(action schedule.Action, engine *costcomponent.Engine) *ScheduleOnlyService {
	return &ScheduleOnlyService{base: base{action: action, engine: engine}}
}

func (s *ScheduleOnlyService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	sa := schedule.NewScheduledAction(s.action, req.Date)
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{})
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}

// =============================================================================
// CLOSE
// =============================================================================

// CloseService costs closing a loan. The loan must be fully repaid.
type CloseService struct {
	base
}

func NewCloseService(engine *costcomponent.Engine) *CloseService {
	return &CloseService{base: base{action: schedule.ActionClose, engine: engine}}
}

func (s *CloseService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	loanBalance, err := balance.BalanceOrZero(ctx, rb, account.CustomerLoanGroup)
	if err != nil {
		return payment.Payment{}, err
	}
	if !loanBalance.Round(cc.Product.MinorCurrencyDigits).IsZero() {
		return payment.Payment{}, fmt.Errorf("%w: %s outstanding on case %s", ErrBalanceNotZero, loanBalance, cc.CaseID)
	}

	sa := schedule.NewScheduledAction(s.action, req.Date)
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{})
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}
