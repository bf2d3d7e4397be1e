/*
Package account names the account roles a loan books against.

PURPOSE:
  Charges never reference ledger accounts directly. They reference a
  designator (an account role such as "customer-loan-principal") that each
  product and case maps onto a concrete ledger account. This package holds
  the vocabulary of designators and the Pattern describing how they behave.

KEY CONCEPTS:
  - Designator: symbolic account role
  - Sign: natural polarity of the role (-1 debit-normal, +1 credit-normal)
  - Group: a virtual aggregate of designators (customer-loan = principal,
    interest and fees)
  - Clamp exemption: roles allowed to go "absolutely" negative (loss
    allowances and expense), and the customer entry which may always be
    debited

HOW IT WORKS:
  A Pattern is built once per product (IndividualLending() for the
  standard vocabulary) and passed explicitly to everything that needs to
  classify accounts. There is no global registry.

SEE ALSO:
  - balance/running.go: clamping uses the Pattern's signs and exemptions
  - charge/definition.go: charges reference designators
*/
package account

import "github.com/shopspring/decimal"

// Designator is a symbolic account role.
type Designator string

// Designators of an individual loan.
const (
	CustomerLoanGroup     Designator = "customer-loan"
	CustomerLoanPrincipal Designator = "customer-loan-principal"
	CustomerLoanInterest  Designator = "customer-loan-interest"
	CustomerLoanFees      Designator = "customer-loan-fees"

	LoanFundsSource Designator = "loan-funds-source"

	ProcessingFeeIncome   Designator = "processing-fee-income"
	OriginationFeeIncome  Designator = "origination-fee-income"
	DisbursementFeeIncome Designator = "disbursement-fee-income"
	InterestIncome        Designator = "interest-income"
	InterestAccrual       Designator = "interest-accrual"
	LateFeeIncome         Designator = "late-fee-income"
	LateFeeAccrual        Designator = "late-fee-accrual"

	ProductLossAllowance Designator = "product-loss-allowance"
	GeneralLossAllowance Designator = "general-loss-allowance"
	Expense              Designator = "expense"

	// Entry is the customer's side of a payment or disbursement.
	Entry Designator = "entry"
)

func (d Designator) String() string { return string(d) }

// Sign is the natural polarity of an account.
type Sign int

const (
	Negative Sign = -1 // debit-normal: assets, expenses, contra accounts
	Positive Sign = 1  // credit-normal: liabilities, revenue, equity
)

// Decimal returns the sign as -1 or 1.
func (s Sign) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(s)) }

// Negate returns the opposite sign.
func (s Sign) Negate() Sign { return -s }

func (s Sign) String() string {
	if s == Negative {
		return "-"
	}
	return "+"
}
