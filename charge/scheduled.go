package charge

import (
	"sort"
	"strings"

	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// SCHEDULED CHARGE
// =============================================================================

// ScheduledCharge is one definition applied at one scheduled action.
// Range is nil when the charge is unconditional.
type ScheduledCharge struct {
	Action     schedule.ScheduledAction
	Definition *Definition
	Range      *Range
}

// IsAccrual reports whether this occurrence is the accrue side of an
// accrued charge.
func (sc ScheduledCharge) IsAccrual() bool {
	return sc.Definition.IsAccrued() && sc.Action.Action == sc.Definition.AccrueAction
}

// IsIncurral reports whether this occurrence books an accrued charge out
// of its accrual account.
func (sc ScheduledCharge) IsIncurral() bool {
	return sc.Definition.IsAccrued() && sc.Action.Action == sc.Definition.ChargeAction
}

// Compare orders scheduled charges by date, action, the order of
// application of their proportional designator, then identifier.
func Compare(a, b ScheduledCharge) int {
	if c := a.Action.When.Compare(b.Action.When); c != 0 {
		return c
	}
	if c := cmpInt(a.Action.Action.Order(), b.Action.Action.Order()); c != 0 {
		return c
	}
	if c := cmpInt(a.Definition.ProportionalTo.OrderOfApplication(), b.Definition.ProportionalTo.OrderOfApplication()); c != 0 {
		return c
	}
	return strings.Compare(a.Definition.Identifier, b.Definition.Identifier)
}

// Sort orders charges in place by Compare.
func Sort(charges []ScheduledCharge) {
	sort.SliceStable(charges, func(i, j int) bool { return Compare(charges[i], charges[j]) < 0 })
}

// GroupByRepaymentPeriod splits sorted charges by the repayment period of
// their action. Pre-term charges share the zero period, which sorts first.
func GroupByRepaymentPeriod(charges []ScheduledCharge) ([]schedule.Period, map[schedule.Period][]ScheduledCharge) {
	groups := make(map[schedule.Period][]ScheduledCharge)
	var keys []schedule.Period
	for _, sc := range charges {
		key := sc.Action.RepaymentKey()
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], sc)
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys, groups
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
