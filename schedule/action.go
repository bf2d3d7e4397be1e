package schedule

import (
	"fmt"
	"strings"
)

// =============================================================================
// ACTION - Lifecycle action of an individual loan
// =============================================================================

// Action is a lifecycle action kind. The string values are the ones used in
// product files and ledger messages.
type Action string

const (
	ActionOpen          Action = "OPEN"
	ActionApprove       Action = "APPROVE"
	ActionDeny          Action = "DENY"
	ActionDisburse      Action = "DISBURSE"
	ActionApplyInterest Action = "APPLY_INTEREST"
	ActionAcceptPayment Action = "ACCEPT_PAYMENT"
	ActionMarkLate      Action = "MARK_LATE"
	ActionMarkInArrears Action = "MARK_IN_ARREARS"
	ActionWriteOff      Action = "WRITE_OFF"
	ActionClose         Action = "CLOSE"
	ActionRecover       Action = "RECOVER"
)

var actionOrder = []Action{
	ActionOpen,
	ActionApprove,
	ActionDeny,
	ActionDisburse,
	ActionApplyInterest,
	ActionAcceptPayment,
	ActionMarkLate,
	ActionMarkInArrears,
	ActionWriteOff,
	ActionClose,
	ActionRecover,
}

// Actions returns every action in lifecycle order.
func Actions() []Action {
	out := make([]Action, len(actionOrder))
	copy(out, actionOrder)
	return out
}

// Order is the position of the action in the lifecycle; unknown actions
// sort last.
func (a Action) Order() int {
	for i, x := range actionOrder {
		if x == a {
			return i
		}
	}
	return len(actionOrder)
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool { return a.Order() < len(actionOrder) }

// ParseAction parses an action name, case-insensitively.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// IsPreTerm reports whether the action happens before the repayment term
// starts and therefore has no action or repayment period.
func (a Action) IsPreTerm() bool {
	switch a {
	case ActionOpen, ActionApprove, ActionDeny, ActionDisburse:
		return true
	default:
		return false
	}
}

// AccrualPeriod returns the granularity at which charges accrued on this
// action accumulate. Only interest application accrues, daily.
func (a Action) AccrualPeriod() (ChronoUnit, bool) {
	if a == ActionApplyInterest {
		return Days, true
	}
	return "", false
}

// =============================================================================
// SCHEDULED ACTION
// =============================================================================

// ScheduledAction is an action anchored at a date.
//
// ActionPeriod is the accrual window ending at When; RepaymentPeriod is the
// installment the action belongs to. Both are nil for non-periodic actions
// such as OPEN, APPROVE or CLOSE.
type ScheduledAction struct {
	Action          Action
	When            Date
	ActionPeriod    *Period
	RepaymentPeriod *Period
}

// NewScheduledAction returns a non-periodic action at when.
func NewScheduledAction(action Action, when Date) ScheduledAction {
	return ScheduledAction{Action: action, When: when}
}

// NewPeriodicAction returns an action with both an action and a repayment period.
func NewPeriodicAction(action Action, when Date, actionPeriod, repaymentPeriod Period) ScheduledAction {
	return ScheduledAction{
		Action:          action,
		When:            when,
		ActionPeriod:    &actionPeriod,
		RepaymentPeriod: &repaymentPeriod,
	}
}

// IsOnOrAfter reports whether the action happens on or after d.
func (sa ScheduledAction) IsOnOrAfter(d Date) bool { return sa.When.AfterOrEqual(d) }

// IsLastPeriod reports whether the action belongs to the final repayment period.
func (sa ScheduledAction) IsLastPeriod() bool {
	if sa.RepaymentPeriod != nil && sa.RepaymentPeriod.LastPeriod {
		return true
	}
	return sa.ActionPeriod != nil && sa.ActionPeriod.LastPeriod
}

// RepaymentKey returns the repayment period used for grouping, or the zero
// period for pre-term actions.
func (sa ScheduledAction) RepaymentKey() Period {
	if sa.RepaymentPeriod == nil || sa.Action.IsPreTerm() {
		return Period{}
	}
	return sa.RepaymentPeriod.Key()
}

// Equal compares by value, including the periods.
func (sa ScheduledAction) Equal(other ScheduledAction) bool {
	return sa.Action == other.Action &&
		sa.When.Equal(other.When) &&
		periodPtrEqual(sa.ActionPeriod, other.ActionPeriod) &&
		periodPtrEqual(sa.RepaymentPeriod, other.RepaymentPeriod)
}

func (sa ScheduledAction) String() string {
	s := string(sa.Action) + "@" + sa.When.String()
	if sa.RepaymentPeriod != nil {
		s += " in " + sa.RepaymentPeriod.String()
	}
	return s
}

func periodPtrEqual(a, b *Period) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
