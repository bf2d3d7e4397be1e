/*
Package product loads loan product definitions.

PURPOSE:
  A product fixes everything about a loan that is not specific to one
  case: its charges, the balance segments their ranges refer to, the loss
  provisioning steps, the ledger accounts its roles book to, and the
  bounds a case must respect.

YAML SCHEMA:
  identifier: personal-loan
  name: Personal loan
  minor_currency_digits: 2
  accrual_accounting: true
  include_default_charges: true
  interest_range: {minimum: 3, maximum: 15}
  balance_range: {minimum: 100, maximum: 10000}
  term_range: {temporal_unit: MONTHS, maximum: 24}
  balance_segment_sets:
    - identifier: disbursement-tiers
      segments:
        - {identifier: small, lower_bound: 0}
        - {identifier: large, lower_bound: 1000}
  charges:
    - identifier: processing-fee
      charge_action: DISBURSE
      method: FIXED
      amount: 10
      from_account: customer-loan-fees
      to_account: processing-fee-income
  loss_provision_steps:
    - {days_late: 0, percent_provision: 1}
  account_assignments:
    - {designator: customer-loan-principal, account: "7010"}

KEY FEATURES:
  - Unknown actions, methods and designators are rejected at load time
  - Default charges can be included and overridden by identifier,
    except read-only ones
  - Loss provisioning steps are kept sorted by days late

SEE ALSO:
  - defaults.go: the standard individual-lending charges
  - charge/catalog.go: what the charges become
*/
package product

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
)

var (
	// ErrInvalidProduct is returned when a product definition is malformed.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrReadOnlyCharge is returned when a product overrides a read-only
	// default charge.
	ErrReadOnlyCharge = errors.New("charge is read-only")

	// ErrCaseOutOfBounds is returned when case parameters fall outside the
	// product's ranges.
	ErrCaseOutOfBounds = errors.New("case parameters outside product bounds")
)

// =============================================================================
// PRODUCT
// =============================================================================

// LossProvisionStep provisions PercentProvision percent of the principal
// once a loan is DaysLate days late. A step at day 0 provisions on
// disbursement.
type LossProvisionStep struct {
	DaysLate         int
	PercentProvision decimal.Decimal
}

// Bounds is an inclusive decimal interval.
type Bounds struct {
	Minimum decimal.Decimal
	Maximum decimal.Decimal
}

// Contains reports whether x lies within the bounds.
func (b Bounds) Contains(x decimal.Decimal) bool {
	return x.GreaterThanOrEqual(b.Minimum) && x.LessThanOrEqual(b.Maximum)
}

// Product is a loaded, validated product. It is read-only and may be
// shared between cases.
type Product struct {
	Identifier  string
	Name        string
	Description string

	MinorCurrencyDigits int32
	AccrualAccounting   bool

	InterestRange *Bounds
	BalanceRange  *Bounds
	TermRange     *schedule.TermRange

	Pattern            *account.Pattern
	Catalog            *charge.Catalog
	LossProvisionSteps []LossProvisionStep
	AccountAssignments []balance.AccountAssignment
}

// LossProvisionStep returns the step for exactly daysLate days late.
func (p *Product) LossProvisionStep(daysLate int) (LossProvisionStep, bool) {
	for _, s := range p.LossProvisionSteps {
		if s.DaysLate == daysLate {
			return s, true
		}
	}
	return LossProvisionStep{}, false
}

// AccountMapper returns the mapper of a case of this product.
func (p *Product) AccountMapper(caseAssignments ...balance.AccountAssignment) *balance.AccountMapper {
	return balance.NewAccountMapper(p.Pattern, p.AccountAssignments, caseAssignments)
}

// ValidateCase checks case parameters and interest against the product's
// ranges. Unset ranges accept anything.
func (p *Product) ValidateCase(params schedule.CaseParameters, interestRate decimal.Decimal) error {
	if p.InterestRange != nil && !p.InterestRange.Contains(interestRate) {
		return fmt.Errorf("%w: interest rate %s not in [%s, %s]",
			ErrCaseOutOfBounds, interestRate, p.InterestRange.Minimum, p.InterestRange.Maximum)
	}
	if p.BalanceRange != nil && !p.BalanceRange.Contains(params.MaximumBalance) {
		return fmt.Errorf("%w: maximum balance %s not in [%s, %s]",
			ErrCaseOutOfBounds, params.MaximumBalance, p.BalanceRange.Minimum, p.BalanceRange.Maximum)
	}
	if p.TermRange != nil {
		if params.TermRange.TemporalUnit != p.TermRange.TemporalUnit {
			return fmt.Errorf("%w: term unit %s, product uses %s",
				ErrCaseOutOfBounds, params.TermRange.TemporalUnit, p.TermRange.TemporalUnit)
		}
		if params.TermRange.Maximum < 1 || params.TermRange.Maximum > p.TermRange.Maximum {
			return fmt.Errorf("%w: term %d not in [1, %d]",
				ErrCaseOutOfBounds, params.TermRange.Maximum, p.TermRange.Maximum)
		}
	}
	return nil
}

func sortSteps(steps []LossProvisionStep) {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].DaysLate < steps[j].DaysLate })
}
