package action

import (
	"errors"
	"fmt"

	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrExceedsMaximumBalance is returned when a disbursement would take
	// the principal past the case's maximum balance.
	ErrExceedsMaximumBalance = errors.New("disbursement exceeds maximum balance")

	// ErrBalanceNotZero is returned when closing a loan that is not repaid.
	ErrBalanceNotZero = errors.New("loan balance is not zero")

	// ErrInvalidTransition is returned when an action is not allowed in the
	// current case state.
	ErrInvalidTransition = errors.New("action not allowed in case state")

	// ErrNoProvisionStep is returned when a loan is marked in arrears for a
	// number of days late the product has no provisioning step for.
	ErrNoProvisionStep = errors.New("no loss provision step")

	// ErrNoService is returned when no service is registered for an action.
	ErrNoService = errors.New("no service for action")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError names the state and action of a rejected transition.
type TransitionError struct {
	State  State
	Action schedule.Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("action %s not allowed in state %s", e.Action, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationError reports whether err means the product or case is
// misconfigured. Such errors do not go away on retry.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNoProvisionStep) ||
		errors.Is(err, ErrNoService) ||
		errors.Is(err, charge.ErrUnsupportedProportion) ||
		balance.IsConfigurationError(err)
}

// IsConflict reports whether err is a business rule rejecting the request.
func IsConflict(err error) bool {
	return errors.Is(err, ErrExceedsMaximumBalance) ||
		errors.Is(err, ErrBalanceNotZero)
}
