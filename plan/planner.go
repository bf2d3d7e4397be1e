/*
Package plan projects the repayment schedule of a loan.

PURPOSE:
  Before and after disbursement, a customer is shown the payments the loan
  will take if repaid on schedule. The projection runs the same cost engine
  as real bookings, period by period, over simulated balances.

HOW IT WORKS:
  1. Lay out the hypothetical actions of the term and schedule the
     product's charges on them
  2. Solve the level payment size
  3. Group the scheduled charges by repayment period, pre-term first
  4. For each group, cost the charges against the running simulation:
     the pre-term group disburses the initial balance, middle groups
     repay the payment size, the last group repays up to twice that so
     whatever rounding left over is settled
  5. Record the payment and the balances after it

KEY INVARIANTS:
  - The principal never grows after disbursement
  - The last planned payment leaves a zero principal

SEE ALSO:
  - costcomponent/service.go: LoanPaymentSize and ForScheduledCharges
  - page.go: paging of planned payments
*/
package plan

import (
	"context"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/payment"
	"github.com/warp/loan-engine/product"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// PLANNER
// =============================================================================

// Planner projects repayment schedules. It holds no per-loan state.
type Planner struct {
	engine *costcomponent.Engine
	logger *slog.Logger
}

// NewPlanner returns a planner costing with engine. A nil logger discards.
func NewPlanner(engine *costcomponent.Engine, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Planner{engine: engine, logger: logger}
}

// Input describes the loan to project.
type Input struct {
	Product      *product.Product
	Parameters   schedule.CaseParameters
	InterestRate decimal.Decimal

	// InitialDisbursalDate is the start of term.
	InitialDisbursalDate schedule.Date

	// InitialBalance is the amount disbursed at the start of term. Zero
	// disburses the maximum balance.
	InitialBalance decimal.Decimal
}

func (in Input) initialBalance() decimal.Decimal {
	if in.InitialBalance.IsZero() {
		return in.Parameters.MaximumBalance
	}
	return in.InitialBalance
}

// Schedule is a projected repayment schedule.
type Schedule struct {
	PaymentSize decimal.Decimal

	// ChargeDefinitions lists the charges booked anywhere in the schedule,
	// in order of first booking.
	ChargeDefinitions []*charge.Definition
	Payments          []payment.PlannedPayment
}

// PlannedPayments projects every payment of the loan.
func (p *Planner) PlannedPayments(ctx context.Context, in Input) (Schedule, error) {
	prod := in.Product
	initial := in.initialBalance()
	actions := schedule.HypotheticalScheduledActions(in.InitialDisbursalDate, in.Parameters)
	scheduledCharges := prod.Catalog.ScheduledCharges(actions)

	paymentSize, err := p.engine.LoanPaymentSize(ctx, costcomponent.PaymentSizeInput{
		ScheduledCharges:    scheduledCharges,
		Pattern:             prod.Pattern,
		MaximumBalance:      in.Parameters.MaximumBalance,
		DisbursementSize:    initial,
		InterestRate:        in.InterestRate,
		MinorCurrencyDigits: prod.MinorCurrencyDigits,
	})
	if err != nil {
		return Schedule{}, err
	}

	sim := balance.NewSimulated(prod.Pattern, in.InitialDisbursalDate)
	sim.SetZero(prod.Pattern.Designators()...)

	keys, groups := charge.GroupByRepaymentPeriod(scheduledCharges)
	out := Schedule{PaymentSize: paymentSize}
	seen := make(map[string]bool)
	twice := paymentSize.Mul(decimal.NewFromInt(2))

	for i, key := range keys {
		engineIn := costcomponent.Input{
			ScheduledCharges:     groups[key],
			Balances:             sim,
			MaximumBalance:       in.Parameters.MaximumBalance,
			ContractualRepayment: paymentSize,
			InterestRate:         in.InterestRate,
			MinorCurrencyDigits:  prod.MinorCurrencyDigits,
			AccrualAccounting:    prod.AccrualAccounting,
		}
		date := key.End
		switch {
		case key.IsZero():
			engineIn.RequestedDisbursement = initial
			date = in.InitialDisbursalDate
		case i == len(keys)-1:
			engineIn.RequestedRepayment = twice
		default:
			engineIn.RequestedRepayment = paymentSize
		}

		builder, err := p.engine.ForScheduledCharges(ctx, engineIn)
		if err != nil {
			return Schedule{}, err
		}
		out.Payments = append(out.Payments, builder.AccumulatePlannedPayment(sim, date))
		for _, def := range builder.Definitions() {
			if !seen[def.Identifier] {
				seen[def.Identifier] = true
				out.ChargeDefinitions = append(out.ChargeDefinitions, def)
			}
		}
	}

	p.logger.Debug("planned payments",
		"product", prod.Identifier, "payments", len(out.Payments), "payment_size", paymentSize.String())
	return out, nil
}

// PaymentSizeAfterDisbursement recomputes the level payment once another
// disbursement is made on a running loan: the current principal plus the
// new amount, repaid over the periods left after the disbursement date.
func (p *Planner) PaymentSizeAfterDisbursement(ctx context.Context, in Input, disbursementDate schedule.Date, currentPrincipal, disbursement decimal.Decimal) (decimal.Decimal, error) {
	prod := in.Product
	start := in.InitialDisbursalDate
	end := in.Parameters.RoughEndOfTerm(start)

	actions := []schedule.ScheduledAction{schedule.NewScheduledAction(schedule.ActionDisburse, disbursementDate)}
	for _, sa := range schedule.ScheduledActionsForDisbursedLoan(start, end, in.Parameters) {
		if sa.When.After(disbursementDate) {
			actions = append(actions, sa)
		}
	}

	return p.engine.LoanPaymentSize(ctx, costcomponent.PaymentSizeInput{
		ScheduledCharges:    prod.Catalog.ScheduledCharges(actions),
		Pattern:             prod.Pattern,
		MaximumBalance:      in.Parameters.MaximumBalance,
		DisbursementSize:    currentPrincipal.Add(disbursement),
		InterestRate:        in.InterestRate,
		MinorCurrencyDigits: prod.MinorCurrencyDigits,
	})
}
