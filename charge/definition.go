/*
Package charge describes the charges a loan product levies.

PURPOSE:
  A charge is a rule that moves money between two account roles when a
  lifecycle action occurs. This package holds charge definitions, the
  ranges that make a charge conditional on the size of its base, and the
  pairing of definitions with scheduled actions.

KEY CONCEPTS:
  - Definition: identifier, actions, method, amount, accounts
  - Method: FIXED (flat amount), PROPORTIONAL (a fraction of a base),
    INTEREST (the case interest rate applied to a base)
  - Proportional: which balance or amount the charge is sized against
  - Accrual: a charge with an accrue action books into an accrual account
    as it is earned and moves to its final account on its charge action
  - ScheduledCharge: one definition at one scheduled action

SEE ALSO:
  - catalog.go: builds scheduled charges for a product
  - period.go: converts percentages into per-occurrence rates
  - costcomponent/service.go: resolves amounts
*/
package charge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/schedule"
)

// ErrUnsupportedProportion is returned for charges sized against something
// other than the fixed proportional designators, such as another charge.
var ErrUnsupportedProportion = errors.New("unsupported proportional designator")

// =============================================================================
// METHOD
// =============================================================================

// Method determines how a charge amount is derived.
type Method string

const (
	MethodFixed        Method = "FIXED"
	MethodProportional Method = "PROPORTIONAL"
	MethodInterest     Method = "INTEREST"
)

// ParseMethod parses a method name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodFixed, MethodProportional, MethodInterest:
		return m, nil
	}
	return "", fmt.Errorf("unknown charge method %q", s)
}

// =============================================================================
// DEFINITION
// =============================================================================

// Definition is a configured charge. Definitions are read-only once a
// product is loaded and are shared between computations.
type Definition struct {
	Identifier  string
	Name        string
	Description string

	// ChargeAction books the charge. AccrueAction, when set together with
	// AccrualAccount, books it into the accrual account first.
	ChargeAction   schedule.Action
	AccrueAction   schedule.Action
	AccrualAccount account.Designator

	Method Method

	// Amount is an absolute amount for FIXED and percentage points for
	// PROPORTIONAL. INTEREST charges use the case interest rate instead.
	Amount decimal.Decimal

	ProportionalTo Proportional
	FromAccount    account.Designator
	ToAccount      account.Designator

	// ForCycleSizeUnit scales a percentage given per unit ("10% per YEARS")
	// down to the accrual period. Empty means the percentage applies to
	// each occurrence as is.
	ForCycleSizeUnit schedule.ChronoUnit

	// SegmentSet, FromSegment and ToSegment restrict the charge to a range
	// of its proportional base.
	SegmentSet  string
	FromSegment string
	ToSegment   string

	ChargeOnTop bool
	ReadOnly    bool
}

// IsAccrued reports whether the charge books through an accrual account.
func (d *Definition) IsAccrued() bool {
	return d.AccrueAction != "" && d.AccrualAccount != ""
}

// HasRange reports whether the charge references a balance segment range.
func (d *Definition) HasRange() bool { return d.SegmentSet != "" }

// Accounts returns the roles the charge touches.
func (d *Definition) Accounts() []account.Designator {
	accounts := []account.Designator{d.FromAccount, d.ToAccount}
	if d.AccrualAccount != "" {
		accounts = append(accounts, d.AccrualAccount)
	}
	return accounts
}

// Touches reports whether the charge books against any role in set.
func (d *Definition) Touches(pattern *account.Pattern, set map[account.Designator]bool) bool {
	for _, a := range d.Accounts() {
		for _, m := range pattern.Members(a) {
			if set[m] {
				return true
			}
		}
	}
	return false
}

func (d *Definition) String() string { return d.Identifier }

// Validate checks the definition against the product's account pattern.
func (d *Definition) Validate(pattern *account.Pattern) error {
	if d.Identifier == "" {
		return fmt.Errorf("charge definition without identifier")
	}
	if !d.ChargeAction.Valid() {
		return fmt.Errorf("charge %s: invalid charge action %q", d.Identifier, d.ChargeAction)
	}
	if d.AccrueAction != "" && !d.AccrueAction.Valid() {
		return fmt.Errorf("charge %s: invalid accrue action %q", d.Identifier, d.AccrueAction)
	}
	if (d.AccrueAction == "") != (d.AccrualAccount == "") {
		return fmt.Errorf("charge %s: accrue action and accrual account must be set together", d.Identifier)
	}
	for _, a := range d.Accounts() {
		if !pattern.Knows(a) {
			return fmt.Errorf("charge %s: %w: %q", d.Identifier, account.ErrUnknownDesignator, a)
		}
	}
	switch d.Method {
	case MethodFixed, MethodProportional, MethodInterest:
	default:
		return fmt.Errorf("charge %s: unknown method %q", d.Identifier, d.Method)
	}
	if d.Method != MethodFixed && d.ProportionalTo == "" {
		return fmt.Errorf("charge %s: %s charge needs a proportional designator", d.Identifier, d.Method)
	}
	if d.ProportionalTo != "" && !d.ProportionalTo.Known() {
		return fmt.Errorf("charge %s: %w: %q", d.Identifier, ErrUnsupportedProportion, d.ProportionalTo)
	}
	if d.ForCycleSizeUnit != "" {
		if _, err := schedule.ParseChronoUnit(string(d.ForCycleSizeUnit)); err != nil {
			return fmt.Errorf("charge %s: %w", d.Identifier, err)
		}
	}
	return nil
}
