package account

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateDesignator is returned when a pattern lists a role twice.
	ErrDuplicateDesignator = errors.New("duplicate account designator")

	// ErrUnknownDesignator is returned when a role is not part of a pattern.
	ErrUnknownDesignator = errors.New("unknown account designator")
)

// =============================================================================
// PATTERN - Account roles and their behaviour
// =============================================================================

// RequiredAccount describes one role of a pattern.
type RequiredAccount struct {
	Designator Designator
	Sign       Sign

	// Group, when set, makes the role a member of a virtual aggregate.
	Group Designator

	// DebitExempt roles may be debited past zero, CreditExempt roles
	// credited past zero.
	DebitExempt  bool
	CreditExempt bool
}

// Pattern is the immutable set of account roles of a product.
type Pattern struct {
	signs        map[Designator]Sign
	groups       map[Designator][]Designator
	debitExempt  map[Designator]bool
	creditExempt map[Designator]bool
	ordered      []Designator
}

// NewPattern builds a pattern. Groups take the sign of their first member.
func NewPattern(accounts []RequiredAccount) (*Pattern, error) {
	p := &Pattern{
		signs:        make(map[Designator]Sign),
		groups:       make(map[Designator][]Designator),
		debitExempt:  make(map[Designator]bool),
		creditExempt: make(map[Designator]bool),
	}
	for _, a := range accounts {
		if _, dup := p.signs[a.Designator]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDesignator, a.Designator)
		}
		if _, isGroup := p.groups[a.Designator]; isGroup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDesignator, a.Designator)
		}
		p.signs[a.Designator] = a.Sign
		p.ordered = append(p.ordered, a.Designator)
		if a.DebitExempt {
			p.debitExempt[a.Designator] = true
		}
		if a.CreditExempt {
			p.creditExempt[a.Designator] = true
		}
		if a.Group != "" {
			if _, ok := p.groups[a.Group]; !ok {
				p.signs[a.Group] = a.Sign
			}
			p.groups[a.Group] = append(p.groups[a.Group], a.Designator)
		}
	}
	return p, nil
}

// IndividualLending returns the standard pattern of an individual loan.
func IndividualLending() *Pattern {
	p, err := NewPattern([]RequiredAccount{
		{Designator: CustomerLoanPrincipal, Sign: Negative, Group: CustomerLoanGroup},
		{Designator: CustomerLoanInterest, Sign: Negative, Group: CustomerLoanGroup},
		{Designator: CustomerLoanFees, Sign: Negative, Group: CustomerLoanGroup},
		{Designator: LoanFundsSource, Sign: Negative},
		{Designator: ProcessingFeeIncome, Sign: Positive},
		{Designator: OriginationFeeIncome, Sign: Positive},
		{Designator: DisbursementFeeIncome, Sign: Positive},
		{Designator: InterestIncome, Sign: Positive},
		{Designator: InterestAccrual, Sign: Positive},
		{Designator: LateFeeIncome, Sign: Positive},
		{Designator: LateFeeAccrual, Sign: Positive},
		{Designator: ProductLossAllowance, Sign: Negative, DebitExempt: true, CreditExempt: true},
		{Designator: GeneralLossAllowance, Sign: Negative, DebitExempt: true, CreditExempt: true},
		{Designator: Expense, Sign: Negative, DebitExempt: true, CreditExempt: true},
		// The customer side of a payment is not bounded by what was disbursed.
		{Designator: Entry, Sign: Positive, DebitExempt: true},
	})
	if err != nil {
		panic(err)
	}
	return p
}

// Sign returns the natural polarity of d. Unknown roles are credit-normal.
func (p *Pattern) Sign(d Designator) Sign {
	if s, ok := p.signs[d]; ok {
		return s
	}
	return Positive
}

// Knows reports whether d is a role or group of the pattern.
func (p *Pattern) Knows(d Designator) bool {
	_, ok := p.signs[d]
	return ok
}

// Lookup parses a designator, rejecting roles outside the pattern.
func (p *Pattern) Lookup(s string) (Designator, error) {
	d := Designator(s)
	if !p.Knows(d) {
		return "", fmt.Errorf("%w: %q", ErrUnknownDesignator, s)
	}
	return d, nil
}

// IsGroup reports whether d is a virtual aggregate.
func (p *Pattern) IsGroup(d Designator) bool {
	_, ok := p.groups[d]
	return ok
}

// Members returns the members of a group, or d itself for a plain role.
func (p *Pattern) Members(d Designator) []Designator {
	if members, ok := p.groups[d]; ok {
		out := make([]Designator, len(members))
		copy(out, members)
		return out
	}
	return []Designator{d}
}

// Expand returns the set of plain roles named by ds, groups expanded.
func (p *Pattern) Expand(ds ...Designator) map[Designator]bool {
	out := make(map[Designator]bool)
	for _, d := range ds {
		for _, m := range p.Members(d) {
			out[m] = true
		}
	}
	return out
}

// DebitExempt reports whether d may be debited past zero.
func (p *Pattern) DebitExempt(d Designator) bool { return p.debitExempt[d] }

// CreditExempt reports whether d may be credited past zero.
func (p *Pattern) CreditExempt(d Designator) bool { return p.creditExempt[d] }

// Designators lists the plain roles in declaration order.
func (p *Pattern) Designators() []Designator {
	out := make([]Designator, len(p.ordered))
	copy(out, p.ordered)
	return out
}

// Groups lists the group designators, sorted.
func (p *Pattern) Groups() []Designator {
	out := make([]Designator, 0, len(p.groups))
	for g := range p.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
