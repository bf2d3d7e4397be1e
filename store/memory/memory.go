// Package memory provides an in-memory ledger for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// MEMORY LEDGER - In-memory implementation of ledger.Reader and ledger.Writer
// =============================================================================

type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]ledger.Account
	entries  []ledger.Entry
	ids      map[string]bool
}

func New() *Ledger {
	return &Ledger{
		accounts: make(map[string]ledger.Account),
		ids:      make(map[string]bool),
	}
}

var (
	_ ledger.Reader = (*Ledger)(nil)
	_ ledger.Writer = (*Ledger)(nil)
)

// CreateAccount registers an account. Identifiers are unique.
func (l *Ledger) CreateAccount(_ context.Context, a ledger.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[a.ID]; ok {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, a.ID)
	}
	l.accounts[a.ID] = a
	return nil
}

// Post appends a balanced entry and returns its identifier. Entries without
// an identifier get a ULID. Append-only.
func (l *Ledger) Post(_ context.Context, e ledger.Entry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.postLocked(e)
}

// PostBatch appends several entries atomically: either all are posted or
// none is.
func (l *Ledger) PostBatch(_ context.Context, entries []ledger.Entry) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := l.snapshot()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		id, err := l.postLocked(e)
		if err != nil {
			l.restore(snapshot)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (l *Ledger) postLocked(e ledger.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	for _, line := range append(append([]ledger.Line{}, e.Debtors...), e.Creditors...) {
		if _, ok := l.accounts[line.AccountID]; !ok {
			return "", fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, line.AccountID)
		}
	}
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if l.ids[e.ID] {
		return "", fmt.Errorf("%w: %s", ledger.ErrDuplicateEntry, e.ID)
	}

	// Keep entries ordered by transaction date, stable for equal dates.
	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].TransactionDate.After(e.TransactionDate)
	})
	l.entries = append(l.entries, ledger.Entry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = e
	l.ids[e.ID] = true
	return e.ID, nil
}

// CurrentBalance returns the natural balance of an account.
func (l *Ledger) CurrentBalance(_ context.Context, accountID string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[accountID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, accountID)
	}
	delta := decimal.Zero
	for _, e := range l.entries {
		delta = delta.Add(e.Delta(accountID))
	}
	return naturalBalance(a.Sign, delta), nil
}

// SumMatchingEntriesSince sums what entries with message moved on an
// account, on or after since.
func (l *Ledger) SumMatchingEntriesSince(_ context.Context, accountID string, since schedule.Date, message string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, e := range l.entries {
		if e.Message == message && e.TransactionDate.AfterOrEqual(since) {
			total = total.Add(e.Magnitude(accountID))
		}
	}
	return total, nil
}

// OldestEntryDate returns the date of the first entry with message that
// touches an account.
func (l *Ledger) OldestEntryDate(_ context.Context, accountID string, message string) (schedule.Date, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.entries {
		if e.Message == message && !e.Magnitude(accountID).IsZero() {
			return e.TransactionDate, true, nil
		}
	}
	return schedule.Date{}, false, nil
}

// Entries returns the posted entries with message, oldest first. An empty
// message returns every entry.
func (l *Ledger) Entries(_ context.Context, message string) ([]ledger.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []ledger.Entry
	for _, e := range l.entries {
		if message == "" || e.Message == message {
			out = append(out, e)
		}
	}
	return out, nil
}

// naturalBalance converts a credit-positive delta into a balance that is
// positive when the account holds its normal side.
func naturalBalance(sign account.Sign, delta decimal.Decimal) decimal.Decimal {
	return sign.Decimal().Mul(delta)
}

type snapshot struct {
	entries []ledger.Entry
	ids     map[string]bool
}

func (l *Ledger) snapshot() snapshot {
	ids := make(map[string]bool, len(l.ids))
	for k, v := range l.ids {
		ids[k] = v
	}
	return snapshot{entries: append([]ledger.Entry{}, l.entries...), ids: ids}
}

func (l *Ledger) restore(s snapshot) {
	l.entries = s.entries
	l.ids = s.ids
}
