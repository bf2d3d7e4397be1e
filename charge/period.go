package charge

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/rate"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// PERIOD CHARGE CALCULATOR - Percentages to per-occurrence rates
// =============================================================================

// fractionDigits is the precision of a percentage converted to a fraction.
const fractionDigits int32 = 4

// PerOccurrenceRate converts percentage points into the rate due for one
// occurrence of the scheduled charge, at the given working precision.
//
// Without a cycle size unit the result is points/100. With one, the
// percentage is per cycle ("10 per YEARS"): it is divided over the accrual
// periods in a cycle and, when the action period spans several accrual
// periods, compounded over them.
func PerOccurrenceRate(sc ScheduledCharge, points decimal.Decimal, precision int32) decimal.Decimal {
	fraction := rate.PercentToFraction(points, fractionDigits)
	def := sc.Definition
	if def.ForCycleSizeUnit == "" || sc.Action.ActionPeriod == nil {
		return fraction
	}

	actionSeconds := sc.Action.ActionPeriod.Seconds()
	accrualSeconds := actionSeconds
	if unit, ok := def.AccrueAction.AccrualPeriod(); ok {
		accrualSeconds = unit.Seconds()
	}
	if accrualSeconds.IsZero() {
		return decimal.Zero
	}

	periodsInCycle := rate.Divide(def.ForCycleSizeUnit.Seconds(), accrualSeconds, precision)
	periodsInAction := int(rate.Divide(actionSeconds, accrualSeconds, precision).IntPart())
	rateForAccrualPeriod := rate.Divide(fraction, periodsInCycle, precision)
	if periodsInAction <= 1 {
		return rateForAccrualPeriod
	}

	c := rate.NewCompound(precision)
	for i := 0; i < periodsInAction; i++ {
		c.Add(rateForAccrualPeriod)
	}
	return c.Result()
}

// PeriodRate is the effective accrual rate of one repayment period.
type PeriodRate struct {
	Period schedule.Period
	Rate   decimal.Decimal
}

// PeriodAccrualInterestRates compounds, per repayment period, the rates of
// all interest charges accrued on APPLY_INTEREST, using interestPoints as
// the annual rate. Periods are returned in order.
func PeriodAccrualInterestRates(charges []ScheduledCharge, interestPoints decimal.Decimal, precision int32) []PeriodRate {
	reducers := make(map[schedule.Period]*rate.Compound)
	for _, sc := range charges {
		if !isAccruedInterest(sc) {
			continue
		}
		key := sc.Action.RepaymentPeriod.Key()
		c, ok := reducers[key]
		if !ok {
			c = rate.NewCompound(precision)
			reducers[key] = c
		}
		c.Add(PerOccurrenceRate(sc, interestPoints, precision))
	}

	out := make([]PeriodRate, 0, len(reducers))
	for p, c := range reducers {
		out = append(out, PeriodRate{Period: p, Rate: c.Result()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Compare(out[j].Period) < 0 })
	return out
}

func isAccruedInterest(sc ScheduledCharge) bool {
	def := sc.Definition
	return def.Method == MethodInterest &&
		def.AccrueAction == schedule.ActionApplyInterest &&
		sc.Action.Action == schedule.ActionApplyInterest &&
		sc.Action.ActionPeriod != nil &&
		sc.Action.RepaymentPeriod != nil
}
