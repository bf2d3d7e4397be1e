package balance

import (
	"errors"
	"fmt"

	"github.com/warp/loan-engine/account"
)

var (
	// ErrStartOfTermMissing is returned when an operation needs the start
	// of term of a case that was never disbursed.
	ErrStartOfTermMissing = errors.New("start of term missing")

	// ErrUnmappedDesignator is returned when an account role required by a
	// computation has no ledger account.
	ErrUnmappedDesignator = errors.New("account designator not mapped")
)

// UnmappedDesignatorError names the role that could not be resolved.
type UnmappedDesignatorError struct {
	Designator account.Designator
}

func (e *UnmappedDesignatorError) Error() string {
	return fmt.Sprintf("account designator %q not mapped to a ledger account", e.Designator)
}

func (e *UnmappedDesignatorError) Unwrap() error { return ErrUnmappedDesignator }

// IsConfigurationError reports whether err means the product or case is
// misconfigured.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrStartOfTermMissing) || errors.Is(err, ErrUnmappedDesignator)
}
