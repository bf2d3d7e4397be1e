package action

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/payment"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// SYNTHETIC CHARGES - Built per request, never configured
// =============================================================================

var hundred = decimal.NewFromInt(100)

// ProvisionForLosses moves percent of the base from the product to the
// general loss allowance on action.
func ProvisionForLosses(action schedule.Action, proportionalTo charge.Proportional, percent decimal.Decimal) *charge.Definition {
	return &charge.Definition{
		Identifier:     charge.ProvisionForLossesID,
		Name:           "Provision for losses",
		ChargeAction:   action,
		Method:         charge.MethodProportional,
		Amount:         percent,
		ProportionalTo: proportionalTo,
		FromAccount:    account.ProductLossAllowance,
		ToAccount:      account.GeneralLossAllowance,
		ReadOnly:       true,
	}
}

func writeOffCharges() []*charge.Definition {
	return []*charge.Definition{
		{
			Identifier:     charge.WriteOffPrincipalID,
			Name:           "Write off principal",
			ChargeAction:   schedule.ActionWriteOff,
			Method:         charge.MethodProportional,
			Amount:         hundred,
			ProportionalTo: charge.PrincipalBalance,
			FromAccount:    account.GeneralLossAllowance,
			ToAccount:      account.CustomerLoanPrincipal,
			ReadOnly:       true,
		},
		{
			Identifier:     charge.WriteOffInterestID,
			Name:           "Write off interest",
			ChargeAction:   schedule.ActionWriteOff,
			Method:         charge.MethodProportional,
			Amount:         hundred,
			ProportionalTo: charge.ToAccount,
			FromAccount:    account.Expense,
			ToAccount:      account.CustomerLoanInterest,
			ReadOnly:       true,
		},
		{
			Identifier:     charge.WriteOffFeesID,
			Name:           "Write off fees",
			ChargeAction:   schedule.ActionWriteOff,
			Method:         charge.MethodProportional,
			Amount:         hundred,
			ProportionalTo: charge.ToAccount,
			FromAccount:    account.Expense,
			ToAccount:      account.CustomerLoanFees,
			ReadOnly:       true,
		},
	}
}

func recoverLossCharge() *charge.Definition {
	return &charge.Definition{
		Identifier:     charge.RecoverLossID,
		Name:           "Recover loss",
		ChargeAction:   schedule.ActionRecover,
		Method:         charge.MethodProportional,
		Amount:         hundred,
		ProportionalTo: charge.RequestedRepayment,
		FromAccount:    account.Entry,
		ToAccount:      account.GeneralLossAllowance,
		ReadOnly:       true,
	}
}

// SyntheticChargeDefinitions lists the charges the services build per
// request, for display next to the product catalog. The provision is
// listed at 0%; its percentage comes from the product's steps.
func SyntheticChargeDefinitions() []*charge.Definition {
	out := []*charge.Definition{
		ProvisionForLosses(schedule.ActionMarkInArrears, charge.PrincipalBalance, decimal.Zero),
	}
	out = append(out, writeOffCharges()...)
	return append(out, recoverLossCharge())
}

// =============================================================================
// MARK IN ARREARS
// =============================================================================

// MarkInArrearsService provisions for losses at the product step matching
// the days late.
type MarkInArrearsService struct {
	base
}

func NewMarkInArrearsService(engine *costcomponent.Engine) *MarkInArrearsService {
	return &MarkInArrearsService{base: base{action: schedule.ActionMarkInArrears, engine: engine}}
}

func (s *MarkInArrearsService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	step, ok := cc.Product.LossProvisionStep(req.DaysLate)
	if !ok {
		return payment.Payment{}, fmt.Errorf("%w: %d days late on product %s", ErrNoProvisionStep, req.DaysLate, cc.Product.Identifier)
	}
	provision := ProvisionForLosses(s.action, charge.PrincipalBalance, step.PercentProvision)

	sa := schedule.NewScheduledAction(s.action, req.Date)
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{}, provision)
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}

// =============================================================================
// WRITE OFF
// =============================================================================

// WriteOffService writes off the whole outstanding loan: principal against
// the general loss allowance, interest and fees against expense.
type WriteOffService struct {
	base
}

func NewWriteOffService(engine *costcomponent.Engine) *WriteOffService {
	return &WriteOffService{base: base{action: schedule.ActionWriteOff, engine: engine}}
}

func (s *WriteOffService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	sa := schedule.NewScheduledAction(s.action, req.Date)
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{}, writeOffCharges()...)
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}

// =============================================================================
// RECOVER
// =============================================================================

// RecoverService books money recovered on a written-off loan back into
// the general loss allowance.
type RecoverService struct {
	base
}

func NewRecoverService(engine *costcomponent.Engine) *RecoverService {
	return &RecoverService{base: base{action: schedule.ActionRecover, engine: engine}}
}

func (s *RecoverService) CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error) {
	recovered := decimal.Zero
	if req.Amount != nil {
		recovered = *req.Amount
	}
	sa := schedule.NewScheduledAction(s.action, req.Date)
	b, err := s.compute(ctx, cc, rb, []schedule.ScheduledAction{sa}, amounts{requestedRepayment: recovered}, recoverLossCharge())
	if err != nil {
		return payment.Payment{}, err
	}
	return b.BuildPayment(s.action, req.Date), nil
}
