package charge_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/rate"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func processingFee() *charge.Definition {
	return &charge.Definition{
		Identifier:     charge.ProcessingFeeID,
		ChargeAction:   schedule.ActionDisburse,
		Method:         charge.MethodFixed,
		Amount:         d("1"),
		ProportionalTo: charge.MaximumBalance,
		FromAccount:    account.CustomerLoanFees,
		ToAccount:      account.ProcessingFeeIncome,
	}
}

func disbursePayment() *charge.Definition {
	return &charge.Definition{
		Identifier:     charge.DisbursePaymentID,
		ChargeAction:   schedule.ActionDisburse,
		Method:         charge.MethodProportional,
		Amount:         d("100"),
		ProportionalTo: charge.RequestedDisbursement,
		FromAccount:    account.CustomerLoanPrincipal,
		ToAccount:      account.Entry,
	}
}

func interest() *charge.Definition {
	return &charge.Definition{
		Identifier:       charge.InterestID,
		ChargeAction:     schedule.ActionAcceptPayment,
		AccrueAction:     schedule.ActionApplyInterest,
		AccrualAccount:   account.InterestAccrual,
		Method:           charge.MethodInterest,
		ProportionalTo:   charge.PrincipalBalance,
		FromAccount:      account.CustomerLoanInterest,
		ToAccount:        account.InterestIncome,
		ForCycleSizeUnit: schedule.Years,
	}
}

func at(action schedule.Action, when string) schedule.ScheduledAction {
	return schedule.NewScheduledAction(action, schedule.MustParseDate(when))
}

// =============================================================================
// RANGES
// =============================================================================

func TestRange_AmountIsWithinRange(t *testing.T) {
	// GIVEN: A range with minimum 10 and no maximum
	open := charge.Range{Minimum: d("10")}

	// THEN: 5 is below it, 10 and 15 are in it
	assert.False(t, open.AmountIsWithinRange(d("5")))
	assert.True(t, open.AmountIsWithinRange(d("10")))
	assert.True(t, open.AmountIsWithinRange(d("15")))

	max := d("20")
	bounded := charge.Range{Minimum: d("10"), Maximum: &max}
	assert.True(t, bounded.AmountIsWithinRange(d("19.99")))
	assert.False(t, bounded.AmountIsWithinRange(d("20")))
}

func TestSegmentSet_Range(t *testing.T) {
	set := charge.NewSegmentSet("loan-size",
		charge.Segment{Identifier: "large", LowerBound: d("5000")},
		charge.Segment{Identifier: "small", LowerBound: d("0")},
		charge.Segment{Identifier: "medium", LowerBound: d("1000")},
	)

	r, err := set.Range("small", "medium")
	require.NoError(t, err)
	assert.True(t, r.Minimum.IsZero())
	require.NotNil(t, r.Maximum)
	assert.True(t, d("5000").Equal(*r.Maximum))

	r, err = set.Range("large", "large")
	require.NoError(t, err)
	assert.True(t, d("5000").Equal(r.Minimum))
	assert.Nil(t, r.Maximum)

	_, err = set.Range("tiny", "large")
	assert.ErrorIs(t, err, charge.ErrUnknownSegment)
}

// =============================================================================
// ORDERING & CATALOG
// =============================================================================

func TestProportional_OrderOfApplication(t *testing.T) {
	assert.Equal(t, 0, charge.NotProportional.OrderOfApplication())
	assert.Equal(t, 1, charge.MaximumBalance.OrderOfApplication())
	assert.Equal(t, 1, charge.RequestedDisbursement.OrderOfApplication())
	assert.Equal(t, 2, charge.PrincipalBalance.OrderOfApplication())
	assert.Equal(t, 3, charge.RequestedRepayment.OrderOfApplication())
	assert.Greater(t, charge.Proportional("late-fee").OrderOfApplication(), 3)
	assert.False(t, charge.Proportional("late-fee").Known())
}

func TestCompare_DateThenActionThenProportionThenIdentifier(t *testing.T) {
	fee := processingFee()
	fee.ProportionalTo = charge.PrincipalBalance
	charges := []charge.ScheduledCharge{
		{Action: at(schedule.ActionAcceptPayment, "2025-01-02"), Definition: interest()},
		{Action: at(schedule.ActionDisburse, "2025-01-01"), Definition: fee},
		{Action: at(schedule.ActionDisburse, "2025-01-01"), Definition: disbursePayment()},
		{Action: at(schedule.ActionOpen, "2025-01-01"), Definition: processingFee()},
	}

	charge.Sort(charges)

	assert.Equal(t, schedule.ActionOpen, charges[0].Action.Action)
	assert.Equal(t, charge.DisbursePaymentID, charges[1].Definition.Identifier)
	assert.Equal(t, charge.ProcessingFeeID, charges[2].Definition.Identifier)
	assert.Equal(t, charge.InterestID, charges[3].Definition.Identifier)
}

func TestCatalog_ScheduledCharges(t *testing.T) {
	// GIVEN: A catalog with a disbursement fee and accrued interest
	catalog, err := charge.NewCatalog(account.IndividualLending(),
		[]*charge.Definition{processingFee(), disbursePayment(), interest()}, nil)
	require.NoError(t, err)

	// WHEN: Scheduling a disbursement and an interest application
	period := schedule.Period{Start: schedule.MustParseDate("2025-01-01"), End: schedule.MustParseDate("2025-02-01")}
	day := schedule.MustParseDate("2025-01-02")
	charges := catalog.ScheduledCharges([]schedule.ScheduledAction{
		schedule.NewPeriodicAction(schedule.ActionApplyInterest, day, schedule.PeriodEndingOn(1, day), period),
		at(schedule.ActionDisburse, "2025-01-01"),
	})

	// THEN: Disbursement charges first, interest accrues on APPLY_INTEREST
	require.Len(t, charges, 3)
	assert.Equal(t, charge.DisbursePaymentID, charges[0].Definition.Identifier)
	assert.Equal(t, charge.ProcessingFeeID, charges[1].Definition.Identifier)
	assert.Equal(t, charge.InterestID, charges[2].Definition.Identifier)
	assert.True(t, charges[2].IsAccrual())
	assert.False(t, charges[2].IsIncurral())

	assert.Len(t, catalog.ForAction(schedule.ActionAcceptPayment), 1)
	_, ok := catalog.Lookup(charge.InterestID)
	assert.True(t, ok)
}

func TestCatalog_ResolvesRanges(t *testing.T) {
	fee := processingFee()
	fee.SegmentSet, fee.FromSegment, fee.ToSegment = "loan-size", "medium", "medium"
	sets := []charge.SegmentSet{charge.NewSegmentSet("loan-size",
		charge.Segment{Identifier: "small", LowerBound: d("0")},
		charge.Segment{Identifier: "medium", LowerBound: d("1000")},
		charge.Segment{Identifier: "large", LowerBound: d("5000")},
	)}

	catalog, err := charge.NewCatalog(account.IndividualLending(), []*charge.Definition{fee}, sets)
	require.NoError(t, err)

	charges := catalog.ScheduledCharges([]schedule.ScheduledAction{at(schedule.ActionDisburse, "2025-01-01")})
	require.Len(t, charges, 1)
	require.NotNil(t, charges[0].Range)
	assert.True(t, charges[0].Range.AmountIsWithinRange(d("1000")))
	assert.False(t, charges[0].Range.AmountIsWithinRange(d("5000")))
}

func TestCatalog_RejectsInvalidDefinitions(t *testing.T) {
	pattern := account.IndividualLending()

	_, err := charge.NewCatalog(pattern, []*charge.Definition{processingFee(), processingFee()}, nil)
	assert.ErrorIs(t, err, charge.ErrDuplicateCharge)

	unknownAccount := processingFee()
	unknownAccount.ToAccount = "petty-cash"
	_, err = charge.NewCatalog(pattern, []*charge.Definition{unknownAccount}, nil)
	assert.ErrorIs(t, err, account.ErrUnknownDesignator)

	missingSet := processingFee()
	missingSet.SegmentSet = "nope"
	_, err = charge.NewCatalog(pattern, []*charge.Definition{missingSet}, nil)
	assert.ErrorIs(t, err, charge.ErrUnknownSegmentSet)

	proportionalToCharge := processingFee()
	proportionalToCharge.ProportionalTo = charge.Proportional(charge.DisbursementFeeID)
	_, err = charge.NewCatalog(pattern, []*charge.Definition{proportionalToCharge}, nil)
	assert.ErrorIs(t, err, charge.ErrUnsupportedProportion)

	halfAccrued := interest()
	halfAccrued.AccrualAccount = ""
	_, err = charge.NewCatalog(pattern, []*charge.Definition{halfAccrued}, nil)
	assert.Error(t, err)
}

func TestCatalog_WithAddsDefinitions(t *testing.T) {
	catalog, err := charge.NewCatalog(account.IndividualLending(), []*charge.Definition{processingFee()}, nil)
	require.NoError(t, err)

	extended := catalog.With(disbursePayment())
	assert.Len(t, extended.Definitions(), 2)
	assert.Len(t, catalog.Definitions(), 1)
}

// =============================================================================
// PERIOD CHARGE CALCULATOR
// =============================================================================

func TestPerOccurrenceRate_WithoutCycleIsTheFraction(t *testing.T) {
	sc := charge.ScheduledCharge{Action: at(schedule.ActionDisburse, "2025-01-01"), Definition: disbursePayment()}
	assert.True(t, d("1").Equal(charge.PerOccurrenceRate(sc, d("100"), rate.RunningCalculationPrecision)))
	assert.True(t, d("0.001").Equal(charge.PerOccurrenceRate(sc, d("0.1"), rate.RunningCalculationPrecision)))
}

func TestPerOccurrenceRate_YearlyInterestAccruedDaily(t *testing.T) {
	// GIVEN: 10% per year accrued on a one-day action period
	period := schedule.Period{Start: schedule.MustParseDate("2025-01-01"), End: schedule.MustParseDate("2025-02-01")}
	day := schedule.MustParseDate("2025-01-02")
	sc := charge.ScheduledCharge{
		Action:     schedule.NewPeriodicAction(schedule.ActionApplyInterest, day, schedule.PeriodEndingOn(1, day), period),
		Definition: interest(),
	}

	// THEN: The daily rate is 0.1 / 365.2425
	want := rate.Divide(d("0.1"), d("365.2425"), rate.RunningCalculationPrecision)
	assert.True(t, want.Equal(charge.PerOccurrenceRate(sc, d("10"), rate.RunningCalculationPrecision)))

	// AND: A three-day action period compounds the daily rate
	sc.Action = schedule.NewPeriodicAction(schedule.ActionApplyInterest, day, schedule.PeriodEndingOn(3, day), period)
	compounded := rate.CompoundRates(rate.RunningCalculationPrecision, want, want, want)
	assert.True(t, compounded.Equal(charge.PerOccurrenceRate(sc, d("10"), rate.RunningCalculationPrecision)))
}

func TestPeriodAccrualInterestRates_CompoundsPerRepaymentPeriod(t *testing.T) {
	// GIVEN: Two monthly repayment periods with daily interest accrual
	catalog, err := charge.NewCatalog(account.IndividualLending(), []*charge.Definition{interest()}, nil)
	require.NoError(t, err)
	params := schedule.CaseParameters{
		TermRange:    schedule.TermRange{TemporalUnit: schedule.Months, Maximum: 2},
		PaymentCycle: schedule.PaymentCycle{TemporalUnit: schedule.Months, Period: 1},
	}
	charges := catalog.ScheduledCharges(schedule.HypotheticalScheduledActions(schedule.MustParseDate("2025-01-01"), params))

	// WHEN: Building the per-period rate schedule
	rates := charge.PeriodAccrualInterestRates(charges, d("10"), rate.RunningCalculationPrecision)

	// THEN: One rate per period, each the compound of its daily rates
	require.Len(t, rates, 2)
	daily := rate.Divide(d("0.1"), d("365.2425"), rate.RunningCalculationPrecision)
	january := make([]decimal.Decimal, 31)
	for i := range january {
		january[i] = daily
	}
	assert.True(t, rate.CompoundRates(rate.RunningCalculationPrecision, january...).Equal(rates[0].Rate))
	assert.Equal(t, schedule.MustParseDate("2025-02-01"), rates[1].Period.Start)
	assert.True(t, rates[1].Rate.LessThan(rates[0].Rate))
}
