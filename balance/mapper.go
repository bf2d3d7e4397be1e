package balance

import (
	"github.com/warp/loan-engine/account"
)

// AccountAssignment binds a role to a concrete ledger account.
type AccountAssignment struct {
	Designator account.Designator
	AccountID  string
}

// AccountMapper resolves roles to ledger accounts for one case. Case
// assignments override product assignments.
type AccountMapper struct {
	pattern  *account.Pattern
	accounts map[account.Designator]string
}

// NewAccountMapper layers caseAssignments over productAssignments.
func NewAccountMapper(pattern *account.Pattern, productAssignments, caseAssignments []AccountAssignment) *AccountMapper {
	m := &AccountMapper{pattern: pattern, accounts: make(map[account.Designator]string)}
	for _, a := range productAssignments {
		m.accounts[a.Designator] = a.AccountID
	}
	for _, a := range caseAssignments {
		m.accounts[a.Designator] = a.AccountID
	}
	return m
}

// Lookup returns the account of a plain role.
func (m *AccountMapper) Lookup(d account.Designator) (string, bool) {
	id, ok := m.accounts[d]
	return id, ok
}

// AccountFor is Lookup reporting an unmapped role as an error.
func (m *AccountMapper) AccountFor(d account.Designator) (string, error) {
	if id, ok := m.accounts[d]; ok {
		return id, nil
	}
	return "", &UnmappedDesignatorError{Designator: d}
}

// AccountsFor returns the mapped accounts of d, expanding groups.
func (m *AccountMapper) AccountsFor(d account.Designator) []string {
	var out []string
	for _, member := range m.pattern.Members(d) {
		if id, ok := m.accounts[member]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Assignments returns every mapping, in pattern order.
func (m *AccountMapper) Assignments() []AccountAssignment {
	var out []AccountAssignment
	for _, d := range m.pattern.Designators() {
		if id, ok := m.accounts[d]; ok {
			out = append(out, AccountAssignment{Designator: d, AccountID: id})
		}
	}
	return out
}
