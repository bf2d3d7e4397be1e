package action

import (
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// CASE STATE
// =============================================================================

// State is the lifecycle state of a loan case.
type State string

const (
	StateCreated  State = "CREATED"
	StatePending  State = "PENDING"
	StateApproved State = "APPROVED"
	StateActive   State = "ACTIVE"
	StateClosed   State = "CLOSED"
	StateDenied   State = "DENIED"
)

var allowedActions = map[State][]schedule.Action{
	StateCreated:  {schedule.ActionOpen},
	StatePending:  {schedule.ActionApprove, schedule.ActionDeny},
	StateApproved: {schedule.ActionDisburse, schedule.ActionClose},
	StateActive: {
		schedule.ActionDisburse,
		schedule.ActionApplyInterest,
		schedule.ActionAcceptPayment,
		schedule.ActionMarkLate,
		schedule.ActionMarkInArrears,
		schedule.ActionWriteOff,
		schedule.ActionClose,
	},
	StateClosed: {schedule.ActionRecover},
}

var nextStates = map[schedule.Action]State{
	schedule.ActionOpen:     StatePending,
	schedule.ActionApprove:  StateApproved,
	schedule.ActionDeny:     StateDenied,
	schedule.ActionDisburse: StateActive,
	schedule.ActionWriteOff: StateClosed,
	schedule.ActionClose:    StateClosed,
}

// AllowedActions lists the actions allowed in s, in lifecycle order.
func (s State) AllowedActions() []schedule.Action {
	out := make([]schedule.Action, len(allowedActions[s]))
	copy(out, allowedActions[s])
	return out
}

// Allows reports whether action may be taken in s.
func (s State) Allows(action schedule.Action) bool {
	for _, a := range allowedActions[s] {
		if a == action {
			return true
		}
	}
	return false
}

// Next returns the state after taking action in s.
func (s State) Next(action schedule.Action) (State, error) {
	if !s.Allows(action) {
		return s, &TransitionError{State: s, Action: action}
	}
	if next, ok := nextStates[action]; ok {
		return next, nil
	}
	return s, nil
}

// IsTerminal reports whether the case is closed or denied.
func (s State) IsTerminal() bool {
	return s == StateClosed || s == StateDenied
}
