package schedule

// =============================================================================
// SCHEDULER - Lays lifecycle actions out over a loan term
// =============================================================================

// HypotheticalScheduledActions returns the actions a loan would go through
// if disbursed in full at startOfTerm and repaid on schedule:
// OPEN, APPROVE and DISBURSE at the start, then for every repayment period a
// daily APPLY_INTEREST and a closing ACCEPT_PAYMENT.
func HypotheticalScheduledActions(startOfTerm Date, params CaseParameters) []ScheduledAction {
	endOfTerm := params.RoughEndOfTerm(startOfTerm)
	actions := []ScheduledAction{
		NewScheduledAction(ActionOpen, startOfTerm),
		NewScheduledAction(ActionApprove, startOfTerm),
		NewScheduledAction(ActionDisburse, startOfTerm),
	}
	return append(actions, ScheduledActionsForDisbursedLoan(startOfTerm, endOfTerm, params)...)
}

// ScheduledActionsForDisbursedLoan returns the periodic actions between the
// start and end of a term.
func ScheduledActionsForDisbursedLoan(startOfTerm, endOfTerm Date, params CaseParameters) []ScheduledAction {
	var actions []ScheduledAction
	for _, repaymentPeriod := range RepaymentPeriods(startOfTerm, endOfTerm, params.PaymentCycle) {
		actions = append(actions, actionsForRepaymentPeriod(repaymentPeriod)...)
	}
	return actions
}

// RepaymentPeriods splits [startOfTerm, endOfTerm) into installment periods.
// The final period ends at the first payment date on or after endOfTerm and
// is flagged as the last period.
func RepaymentPeriods(startOfTerm, endOfTerm Date, cycle PaymentCycle) []Period {
	var periods []Period
	last := startOfTerm
	next := cycle.NextPaymentDate(last)
	for next.Before(endOfTerm) {
		periods = append(periods, Period{Start: last, End: next})
		last = next
		next = cycle.NextPaymentDate(last)
	}
	return append(periods, Period{Start: last, End: next, LastPeriod: true})
}

func actionsForRepaymentPeriod(repaymentPeriod Period) []ScheduledAction {
	days := repaymentPeriod.Days()
	actions := make([]ScheduledAction, 0, days+1)
	for i := 1; i <= days; i++ {
		day := repaymentPeriod.Start.AddDays(i)
		actions = append(actions, NewPeriodicAction(ActionApplyInterest, day, PeriodEndingOn(1, day), repaymentPeriod))
	}
	return append(actions, NewPeriodicAction(ActionAcceptPayment, repaymentPeriod.End, repaymentPeriod, repaymentPeriod))
}

// NextScheduledPayment returns the first scheduled ACCEPT_PAYMENT on or
// after from. If from is past the end of term, the schedule is extended so a
// late payment still lands in a (final) period.
func NextScheduledPayment(startOfTerm, from, endOfTerm Date, params CaseParameters) (ScheduledAction, bool) {
	effectiveEnd := endOfTerm
	if from.After(endOfTerm) {
		effectiveEnd = from
	}
	for _, repaymentPeriod := range RepaymentPeriods(startOfTerm, effectiveEnd, params.PaymentCycle) {
		if repaymentPeriod.End.AfterOrEqual(from) {
			return NewPeriodicAction(ActionAcceptPayment, repaymentPeriod.End, repaymentPeriod, repaymentPeriod), true
		}
	}
	return ScheduledAction{}, false
}
