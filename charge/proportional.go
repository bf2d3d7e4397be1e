package charge

// =============================================================================
// PROPORTIONAL DESIGNATORS - What a charge is sized against
// =============================================================================

// Proportional names the base a PROPORTIONAL or INTEREST charge is applied to.
type Proportional string

const (
	NotProportional       Proportional = "{notproportional}"
	MaximumBalance        Proportional = "{maximumbalance}"
	RunningBalance        Proportional = "{runningbalance}"
	PrincipalBalance      Proportional = "{principal}"
	ContractualRepayment  Proportional = "{repayment}"
	RequestedDisbursement Proportional = "{requesteddisbursement}"
	RequestedRepayment    Proportional = "{requestedrepayment}"
	ToAccount             Proportional = "{toaccount}"
	FromAccount           Proportional = "{fromaccount}"
)

var proportionalOrder = map[Proportional]int{
	NotProportional:       0,
	MaximumBalance:        1,
	ContractualRepayment:  1,
	RequestedDisbursement: 1,
	RunningBalance:        2,
	PrincipalBalance:      2,
	ToAccount:             2,
	FromAccount:           2,
	RequestedRepayment:    3,
}

// OrderOfApplication is the rank at which charges proportional to p are
// applied within one action. Charges sized against balances come after
// those sized against fixed amounts, so they see earlier adjustments.
// Anything else, including another charge's identifier, sorts last.
func (p Proportional) OrderOfApplication() int {
	if o, ok := proportionalOrder[p]; ok {
		return o
	}
	return len(proportionalOrder)
}

// Known reports whether p is one of the fixed designators.
func (p Proportional) Known() bool {
	_, ok := proportionalOrder[p]
	return ok
}
