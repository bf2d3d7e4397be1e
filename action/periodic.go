package action

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/payment"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// APPLY INTEREST
// =============================================================================

// ApplyInterestService accrues one day of interest ending at the request
// date.
type ApplyInterestService struct {
	base
}

func NewApplyInterestService(engine *costcomponent.Engine) *ApplyInterestService {
	return &ApplyInterestService{base: base{action: schedule.ActionApplyInterest, engine: engine}}
}

func (s *ApplyInterestService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	sa, err := repaymentAction(ctx, cc, rb, s.action, req.Date, func(schedule.Period) schedule.Period {
		return schedule.PeriodEndingOn(1, req.Date)
	})
	if err != nil {
		return payment.Payment{}, err
	}
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{})
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}

// =============================================================================
// ACCEPT PAYMENT
// =============================================================================

// AcceptPaymentService costs a repayment within the period the request
// date falls in.
//
// A requested amount is capped at the loan balance. Without one, the last
// period settles the whole balance and earlier periods the payment size.
type AcceptPaymentService struct {
	base
}

func NewAcceptPaymentService(engine *costcomponent.Engine) *AcceptPaymentService {
	return &AcceptPaymentService{base: base{action: schedule.ActionAcceptPayment, engine: engine}}
}

func (s *AcceptPaymentService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	if len(req.AccountLimits) > 0 {
		rb = balance.Limited(rb, req.AccountLimits...)
	}
	sa, err := repaymentAction(ctx, cc, rb, s.action, req.Date, func(repayment schedule.Period) schedule.Period {
		return repayment
	})
	if err != nil {
		return payment.Payment{}, err
	}

	loanBalance, err := balance.BalanceOrZero(ctx, rb, account.CustomerLoanGroup)
	if err != nil {
		return payment.Payment{}, err
	}
	var requested decimal.Decimal
	switch {
	case req.Amount != nil:
		requested = decimal.Min(*req.Amount, loanBalance)
	case sa.IsLastPeriod():
		requested = loanBalance
	default:
		requested = decimal.Min(cc.PaymentSize, loanBalance)
	}

	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{
		requestedRepayment:   requested,
		contractualRepayment: cc.PaymentSize,
	})
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}

// =============================================================================
// MARK LATE
// =============================================================================

// MarkLateService costs marking a payment late. Late fees are sized
// against the contractual repayment.
type MarkLateService struct {
	base
}

func NewMarkLateService(engine *costcomponent.Engine) *MarkLateService {
	return &MarkLateService{base: base{action: schedule.ActionMarkLate, engine: engine}}
}

func (s *MarkLateService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	sa, err := repaymentAction(ctx, cc, rb, s.action, req.Date, func(repayment schedule.Period) schedule.Period {
		return repayment
	})
	if err != nil {
		return payment.Payment{}, err
	}
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{contractualRepayment: cc.PaymentSize})
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}
