/*
Package ledger models the external double-entry ledger the engine books to.

PURPOSE:
  The cost engine computes balance adjustments; the ledger records them.
  This package holds the journal entry model, the ports used to read and
  write the ledger, and the conversion of balance adjustments into a
  balanced journal entry.

KEY CONCEPTS:
  - Account: a concrete ledger account with a natural sign
  - Entry: a dated, balanced set of debit and credit lines with a message
  - Message: "<product>.<case>.<ACTION>", used to find the entries an
    action produced (accrued interest, the first disbursement)
  - Balances are natural: positive when the account holds its normal
    balance (a debit balance for an asset, a credit balance for revenue)

SEE ALSO:
  - ports.go: Reader / Writer interfaces
  - balance/real.go: running balances backed by a Reader
  - store/memory, store/sqlite: implementations
*/
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/schedule"
)

var (
	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = errors.New("ledger account not found")

	// ErrDuplicateAccount is returned when an account identifier is taken.
	ErrDuplicateAccount = errors.New("ledger account already exists")

	// ErrUnbalancedEntry is returned when debits and credits differ.
	ErrUnbalancedEntry = errors.New("journal entry is not balanced")

	// ErrEmptyEntry is returned when an entry has no lines.
	ErrEmptyEntry = errors.New("journal entry has no lines")

	// ErrDuplicateEntry is returned when an entry identifier is reused.
	ErrDuplicateEntry = errors.New("journal entry already posted")
)

// =============================================================================
// MODEL
// =============================================================================

// Account is a ledger account. Sign is its natural polarity.
type Account struct {
	ID   string
	Name string
	Sign account.Sign
}

// Line moves Amount (always positive) on one account.
type Line struct {
	AccountID string
	Amount    decimal.Decimal
}

// Entry is a journal entry. Debits and credits must sum to the same amount.
type Entry struct {
	ID              string
	TransactionDate schedule.Date
	Message         string
	Note            string
	Debtors         []Line
	Creditors       []Line
}

// Validate checks the entry is non-empty and balanced.
func (e Entry) Validate() error {
	if len(e.Debtors) == 0 && len(e.Creditors) == 0 {
		return ErrEmptyEntry
	}
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range e.Debtors {
		debits = debits.Add(l.Amount)
	}
	for _, l := range e.Creditors {
		credits = credits.Add(l.Amount)
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s, credits %s", ErrUnbalancedEntry, debits, credits)
	}
	return nil
}

// Delta returns the credit-positive movement of the entry on accountID.
func (e Entry) Delta(accountID string) decimal.Decimal {
	delta := decimal.Zero
	for _, l := range e.Creditors {
		if l.AccountID == accountID {
			delta = delta.Add(l.Amount)
		}
	}
	for _, l := range e.Debtors {
		if l.AccountID == accountID {
			delta = delta.Sub(l.Amount)
		}
	}
	return delta
}

// Magnitude returns the total amount moved on accountID, debits and
// credits alike.
func (e Entry) Magnitude(accountID string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range append(append([]Line{}, e.Debtors...), e.Creditors...) {
		if l.AccountID == accountID {
			total = total.Add(l.Amount.Abs())
		}
	}
	return total
}

// =============================================================================
// MESSAGES
// =============================================================================

// Message returns the booking message of an action on a case.
func Message(productID, caseID string, action schedule.Action) string {
	return productID + "." + caseID + "." + string(action)
}

// ParseMessage splits a booking message. Product and case identifiers may
// not contain dots.
func ParseMessage(msg string) (productID, caseID string, action schedule.Action, err error) {
	parts := strings.Split(msg, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed booking message %q", msg)
	}
	action, err = schedule.ParseAction(parts[2])
	if err != nil {
		return "", "", "", err
	}
	return parts[0], parts[1], action, nil
}

// =============================================================================
// PAYMENT BOOKING
// =============================================================================

// AccountResolver maps an account role of a case to its ledger account.
type AccountResolver interface {
	AccountFor(d account.Designator) (string, error)
}

// Booking identifies what a journal entry is for.
type Booking struct {
	ProductID string
	CaseID    string
	Action    schedule.Action
	Date      schedule.Date
	Note      string
}

// EntryForAdjustments converts credit-positive balance adjustments into a
// journal entry: negative adjustments become debits, positive ones credits.
// Zero adjustments are dropped. Lines are ordered by account identifier.
func EntryForAdjustments(b Booking, adjustments map[account.Designator]decimal.Decimal, resolver AccountResolver) (Entry, error) {
	entry := Entry{
		TransactionDate: b.Date,
		Message:         Message(b.ProductID, b.CaseID, b.Action),
		Note:            b.Note,
	}
	for d, amount := range adjustments {
		if amount.IsZero() {
			continue
		}
		accountID, err := resolver.AccountFor(d)
		if err != nil {
			return Entry{}, err
		}
		line := Line{AccountID: accountID, Amount: amount.Abs()}
		if amount.IsNegative() {
			entry.Debtors = append(entry.Debtors, line)
		} else {
			entry.Creditors = append(entry.Creditors, line)
		}
	}
	sortLines(entry.Debtors)
	sortLines(entry.Creditors)
	if err := entry.Validate(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func sortLines(lines []Line) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].AccountID < lines[j].AccountID })
}
