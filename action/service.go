/*
Package action costs the lifecycle actions of a loan case.

PURPOSE:
  Each lifecycle action has its own preconditions and seeds the cost
  engine differently: which actions are scheduled, which synthetic
  charges are added, what the requested amounts are. This package keeps
  that variability in one small service per action, behind a common
  interface and a registry that enforces the case state machine.

FLOW:
  registry.Apply(ctx, caseContext, balances, ACCEPT_PAYMENT, request)
    1. The case state must allow the action (else a configuration error)
    2. The action's service schedules the action and calls the engine
    3. The result is the payment to book and the next case state

KEY CONCEPTS:
  - CaseContext: the product plus the case parameters
  - Request: the date and the caller-supplied amounts
  - Synthetic charges: provisioning, write-off and recovery charges are
    built per request rather than configured

SEE ALSO:
  - costcomponent/service.go: the engine
  - ledger/entry.go: turning a payment into a journal entry
*/
package action

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/payment"
	"github.com/warp/loan-engine/product"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// CASE CONTEXT & REQUEST
// =============================================================================

// CaseContext is what the services know about a case.
type CaseContext struct {
	Product    *product.Product
	CaseID     string
	State      State
	Parameters schedule.CaseParameters

	// InterestRate is the annual rate in percentage points.
	InterestRate decimal.Decimal

	// PaymentSize is the level installment, set after disbursement.
	PaymentSize decimal.Decimal
}

// Request carries the caller-supplied inputs of one action.
type Request struct {
	Date schedule.Date

	// Amount is the requested disbursement, repayment or recovery. Nil
	// selects the action's default.
	Amount *decimal.Decimal

	// DaysLate selects the loss provisioning step of MARK_IN_ARREARS.
	DaysLate int

	// AccountLimits caps what ACCEPT_PAYMENT may settle per account.
	AccountLimits []balance.Limit
}

// Service costs one lifecycle action.
type Service interface {
	Action() schedule.Action
	CostComponents(ctx context.Context, cc CaseContext, rb balance.RunningBalances, req Request) (payment.Payment, error)
}

// =============================================================================
// SHARED COMPUTATION
// =============================================================================

// amounts seed the proportional bases of one computation.
type amounts struct {
	requestedDisbursement decimal.Decimal
	requestedRepayment    decimal.Decimal
	contractualRepayment  decimal.Decimal
}

// base is embedded by every service.
type base struct {
	action schedule.Action
	engine *costcomponent.Engine
}

func (b base) Action() schedule.Action { return b.action }

// compute schedules the configured charges of actions, plus extra synthetic
// definitions, and runs the engine.
func (b base) compute(ctx context.Context, cc CaseContext, rb balance.RunningBalances, actions []schedule.ScheduledAction, a amounts, extra ...*charge.Definition) (*payment.Builder, error) {
	catalog := cc.Product.Catalog
	if len(extra) > 0 {
		catalog = catalog.With(extra...)
	}
	return b.engine.ForScheduledCharges(ctx, costcomponent.Input{
		ScheduledCharges:      catalog.ScheduledCharges(actions),
		Balances:              rb,
		MaximumBalance:        cc.Parameters.MaximumBalance,
		ContractualRepayment:  a.contractualRepayment,
		RequestedDisbursement: a.requestedDisbursement,
		RequestedRepayment:    a.requestedRepayment,
		InterestRate:          cc.InterestRate,
		MinorCurrencyDigits:   cc.Product.MinorCurrencyDigits,
		AccrualAccounting:     cc.Product.AccrualAccounting,
	})
}

// repaymentAction anchors action at date within the repayment period the
// date falls in.
func repaymentAction(ctx context.Context, cc CaseContext, rb balance.RunningBalances, action schedule.Action, date schedule.Date, actionPeriod func(repayment schedule.Period) schedule.Period) (schedule.ScheduledAction, error) {
	start, err := balance.StartOfTermOrErr(ctx, rb)
	if err != nil {
		return schedule.ScheduledAction{}, err
	}
	end := cc.Parameters.RoughEndOfTerm(start)
	next, ok := schedule.NextScheduledPayment(start, date, end, cc.Parameters)
	if !ok {
		return schedule.NewScheduledAction(action, date), nil
	}
	repayment := *next.RepaymentPeriod
	return schedule.NewPeriodicAction(action, date, actionPeriod(repayment), repayment), nil
}

// =============================================================================
// REGISTRY
// =============================================================================

// Result is the outcome of an action: the payment to book and the state
// the case moves to once it is booked.
type Result struct {
	Payment   payment.Payment
	NextState State
}

// Registry dispatches actions to their services.
type Registry struct {
	services map[schedule.Action]Service
	logger   *slog.Logger
}

// NewRegistry returns a registry with a service for every lifecycle action.
// A nil logger discards.
func NewRegistry(engine *costcomponent.Engine, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Registry{services: make(map[schedule.Action]Service), logger: logger}
	for _, a := range []schedule.Action{schedule.ActionOpen, schedule.ActionApprove, schedule.ActionDeny} {
		r.Register(NewScheduleOnlyService(a, engine))
	}
	r.Register(NewDisburseService(engine))
	r.Register(NewApplyInterestService(engine))
	r.Register(NewAcceptPaymentService(engine))
	r.Register(NewMarkLateService(engine))
	r.Register(NewMarkInArrearsService(engine))
	r.Register(NewWriteOffService(engine))
	r.Register(NewRecoverService(engine))
	r.Register(NewCloseService(engine))
	return r
}

// Register adds or replaces the service of its action.
func (r *Registry) Register(s Service) {
	r.services[s.Action()] = s
}

// Service returns the service of action.
func (r *Registry) Service(action schedule.Action) (Service, bool) {
	s, ok := r.services[action]
	return s, ok
}

// Apply checks the case state allows action and costs it.
func (r *Registry) Apply(ctx context.Context, cc CaseContext, rb balance.RunningBalances, action schedule.Action, req Request) (Result, error) {
	next, err := cc.State.Next(action)
	if err != nil {
		r.logger.Warn("action rejected", "case", cc.CaseID, "action", action, "state", cc.State, "error", err)
		return Result{}, err
	}
	svc, ok := r.services[action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNoService, action)
	}

	p, err := svc.CostComponents(ctx, cc, rb, req)
	if err != nil {
		if IsConfigurationError(err) {
			r.logger.Warn("case misconfigured", "case", cc.CaseID, "action", action, "error", err)
		}
		return Result{}, err
	}
	return Result{Payment: p, NextState: next}, nil
}

// =============================================================================
// BOOKING
// =============================================================================

// Book posts the payment's balance adjustments as one journal entry. A
// payment without adjustments posts nothing and returns an empty id.
func Book(ctx context.Context, w ledger.Writer, resolver ledger.AccountResolver, cc CaseContext, p payment.Payment, note string) (string, error) {
	if len(p.BalanceAdjustments) == 0 {
		return "", nil
	}
	entry, err := ledger.EntryForAdjustments(ledger.Booking{
		ProductID: cc.Product.Identifier,
		CaseID:    cc.CaseID,
		Action:    p.Action,
		Date:      p.Date,
		Note:      note,
	}, p.BalanceAdjustments, resolver)
	if err != nil {
		return "", err
	}
	return w.Post(ctx, entry)
}
