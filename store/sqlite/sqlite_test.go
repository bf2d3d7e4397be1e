package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/schedule"
	"github.com/warp/loan-engine/store/sqlite"
)

var ctx = context.Background()

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func entry(date, msg string, debit, credit, amount string) ledger.Entry {
	return ledger.Entry{
		TransactionDate: schedule.MustParseDate(date),
		Message:         msg,
		Debtors:         []ledger.Line{{AccountID: debit, Amount: d(amount)}},
		Creditors:       []ledger.Line{{AccountID: credit, Amount: d(amount)}},
	}
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.CreateAccount(ctx, ledger.Account{ID: "loan", Name: "Loan principal", Sign: account.Negative}))
	require.NoError(t, s.CreateAccount(ctx, ledger.Account{ID: "cash", Name: "Cash", Sign: account.Positive}))
	return s
}

func TestPost_NaturalBalances(t *testing.T) {
	// GIVEN: A disbursement of 1000 and a repayment of 100.25
	s := newStore(t)
	_, err := s.Post(ctx, entry("2025-01-01", "p.c.DISBURSE", "loan", "cash", "1000"))
	require.NoError(t, err)
	_, err = s.Post(ctx, entry("2025-02-01", "p.c.ACCEPT_PAYMENT", "cash", "loan", "100.25"))
	require.NoError(t, err)

	// THEN: Both balances are exact and on their normal side
	loan, err := s.CurrentBalance(ctx, "loan")
	require.NoError(t, err)
	assertDecimal(t, "899.75", loan)

	cash, err := s.CurrentBalance(ctx, "cash")
	require.NoError(t, err)
	assertDecimal(t, "899.75", cash)
}

func TestPost_Rejections(t *testing.T) {
	s := newStore(t)

	_, err := s.Post(ctx, ledger.Entry{})
	assert.ErrorIs(t, err, ledger.ErrEmptyEntry)

	_, err = s.Post(ctx, entry("2025-01-01", "m", "loan", "missing", "1"))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	e := entry("2025-01-01", "m", "loan", "cash", "1")
	e.ID = "fixed"
	_, err = s.Post(ctx, e)
	require.NoError(t, err)
	_, err = s.Post(ctx, e)
	assert.ErrorIs(t, err, ledger.ErrDuplicateEntry)

	assert.ErrorIs(t, s.CreateAccount(ctx, ledger.Account{ID: "loan", Sign: account.Negative}), ledger.ErrDuplicateAccount)

	_, err = s.CurrentBalance(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestPostBatch_RollsBack(t *testing.T) {
	s := newStore(t)

	_, err := s.PostBatch(ctx, []ledger.Entry{
		entry("2025-01-01", "m", "loan", "cash", "10"),
		entry("2025-01-02", "m", "loan", "unknown", "5"),
	})
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	loan, err := s.CurrentBalance(ctx, "loan")
	require.NoError(t, err)
	assertDecimal(t, "0", loan)
}

func TestMatchingEntries(t *testing.T) {
	s := newStore(t)
	ids, err := s.PostBatch(ctx, []ledger.Entry{
		entry("2025-01-03", "p.c.APPLY_INTEREST", "loan", "cash", "0.03"),
		entry("2025-01-01", "p.c.DISBURSE", "loan", "cash", "1000"),
		entry("2025-01-02", "p.c.APPLY_INTEREST", "loan", "cash", "0.02"),
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	sum, err := s.SumMatchingEntriesSince(ctx, "loan", schedule.MustParseDate("2025-01-02"), "p.c.APPLY_INTEREST")
	require.NoError(t, err)
	assertDecimal(t, "0.05", sum)

	oldest, ok, err := s.OldestEntryDate(ctx, "cash", "p.c.APPLY_INTEREST")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schedule.MustParseDate("2025-01-02"), oldest)

	_, ok, err = s.OldestEntryDate(ctx, "loan", "p.c.CLOSE")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.Entries(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "p.c.DISBURSE", all[0].Message)
	require.Len(t, all[0].Debtors, 1)
	assert.Equal(t, "loan", all[0].Debtors[0].AccountID)
	assertDecimal(t, "1000", all[0].Creditors[0].Amount)
}

func TestNew_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateAccount(ctx, ledger.Account{ID: "cash", Sign: account.Positive}))
	require.NoError(t, s.CreateAccount(ctx, ledger.Account{ID: "loan", Sign: account.Negative}))
	_, err = s.Post(ctx, entry("2025-01-01", "m", "loan", "cash", "42"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	cash, err := reopened.CurrentBalance(ctx, "cash")
	require.NoError(t, err)
	assertDecimal(t, "42", cash)
}
