package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/action"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/product"
	"github.com/warp/loan-engine/schedule"
	"github.com/warp/loan-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

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

func newLedger(t *testing.T) *memory.Ledger {
	t.Helper()
	l := memory.New()
	require.NoError(t, l.CreateAccount(ctx, ledger.Account{ID: "loan", Sign: account.Negative}))
	require.NoError(t, l.CreateAccount(ctx, ledger.Account{ID: "cash", Sign: account.Positive}))
	return l
}

// =============================================================================
// LEDGER
// =============================================================================

func TestPost_NaturalBalances(t *testing.T) {
	// GIVEN: A disbursement of 1000 and a repayment of 100
	l := newLedger(t)
	_, err := l.Post(ctx, entry("2025-01-01", "p.c.DISBURSE", "loan", "cash", "1000"))
	require.NoError(t, err)
	_, err = l.Post(ctx, entry("2025-02-01", "p.c.ACCEPT_PAYMENT", "cash", "loan", "100"))
	require.NoError(t, err)

	// THEN: Both accounts hold their normal side
	loan, err := l.CurrentBalance(ctx, "loan")
	require.NoError(t, err)
	assertDecimal(t, "900", loan)

	cash, err := l.CurrentBalance(ctx, "cash")
	require.NoError(t, err)
	assertDecimal(t, "900", cash)
}

func TestPost_AssignsULIDs(t *testing.T) {
	l := newLedger(t)
	a, err := l.Post(ctx, entry("2025-01-01", "m", "loan", "cash", "1"))
	require.NoError(t, err)
	b, err := l.Post(ctx, entry("2025-01-01", "m", "loan", "cash", "1"))
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestPost_Rejections(t *testing.T) {
	l := newLedger(t)

	_, err := l.Post(ctx, ledger.Entry{})
	assert.ErrorIs(t, err, ledger.ErrEmptyEntry)

	_, err = l.Post(ctx, entry("2025-01-01", "m", "loan", "missing", "1"))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	e := entry("2025-01-01", "m", "loan", "cash", "1")
	e.ID = "fixed"
	_, err = l.Post(ctx, e)
	require.NoError(t, err)
	_, err = l.Post(ctx, e)
	assert.ErrorIs(t, err, ledger.ErrDuplicateEntry)

	assert.ErrorIs(t, l.CreateAccount(ctx, ledger.Account{ID: "loan"}), ledger.ErrDuplicateAccount)

	_, err = l.CurrentBalance(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestPostBatch_IsAtomic(t *testing.T) {
	// GIVEN: A batch whose second entry is unbalanced
	l := newLedger(t)
	bad := entry("2025-01-02", "m", "loan", "cash", "5")
	bad.Creditors[0].Amount = d("4")

	// WHEN: Posting the batch
	_, err := l.PostBatch(ctx, []ledger.Entry{entry("2025-01-01", "m", "loan", "cash", "10"), bad})

	// THEN: Nothing is posted
	assert.ErrorIs(t, err, ledger.ErrUnbalancedEntry)
	entries, err := l.Entries(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMatchingEntries(t *testing.T) {
	l := newLedger(t)
	for _, e := range []ledger.Entry{
		entry("2025-01-03", "p.c.APPLY_INTEREST", "loan", "cash", "3"),
		entry("2025-01-01", "p.c.DISBURSE", "loan", "cash", "1000"),
		entry("2025-01-02", "p.c.APPLY_INTEREST", "loan", "cash", "2"),
		entry("2025-01-05", "p.c.DISBURSE", "loan", "cash", "50"),
	} {
		_, err := l.Post(ctx, e)
		require.NoError(t, err)
	}

	sum, err := l.SumMatchingEntriesSince(ctx, "loan", schedule.MustParseDate("2025-01-03"), "p.c.APPLY_INTEREST")
	require.NoError(t, err)
	assertDecimal(t, "3", sum)

	oldest, ok, err := l.OldestEntryDate(ctx, "loan", "p.c.DISBURSE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schedule.MustParseDate("2025-01-01"), oldest)

	_, ok, err = l.OldestEntryDate(ctx, "loan", "p.c.CLOSE")
	require.NoError(t, err)
	assert.False(t, ok)

	interest, err := l.Entries(ctx, "p.c.APPLY_INTEREST")
	require.NoError(t, err)
	require.Len(t, interest, 2)
	assert.Equal(t, schedule.MustParseDate("2025-01-02"), interest[0].TransactionDate)
}

// =============================================================================
// LOAN LIFECYCLE OVER THE LEDGER
// =============================================================================

const productYAML = `
identifier: personal
include_default_charges: true
charges:
  - identifier: processing-fee
    charge_action: DISBURSE
    method: FIXED
    amount: 10
    from_account: customer-loan-fees
    to_account: processing-fee-income
account_assignments:
  - {designator: customer-loan-principal, account: "loan.principal"}
  - {designator: customer-loan-interest, account: "loan.interest"}
  - {designator: customer-loan-fees, account: "loan.fees"}
  - {designator: entry, account: "cash"}
  - {designator: processing-fee-income, account: "income.processing"}
  - {designator: interest-income, account: "income.interest"}
`

func TestLifecycle_DisburseThenRepay(t *testing.T) {
	// GIVEN: A product whose accounts exist in the ledger
	prod, err := product.Parse([]byte(productYAML))
	require.NoError(t, err)

	l := memory.New()
	for _, a := range prod.AccountAssignments {
		require.NoError(t, l.CreateAccount(ctx, ledger.Account{ID: a.AccountID, Sign: prod.Pattern.Sign(a.Designator)}))
	}
	mapper := prod.AccountMapper()
	realBalances := func() *balance.Real {
		return balance.NewReal(prod.Pattern, l, mapper, balance.RealConfig{ProductID: prod.Identifier, CaseID: "c1"})
	}

	cc := action.CaseContext{
		Product: prod,
		CaseID:  "c1",
		State:   action.StateApproved,
		Parameters: schedule.CaseParameters{
			TermRange:      schedule.TermRange{TemporalUnit: schedule.Months, Maximum: 3},
			PaymentCycle:   schedule.PaymentCycle{TemporalUnit: schedule.Months, Period: 1},
			MaximumBalance: d("1000"),
		},
		InterestRate: d("0"),
		PaymentSize:  d("100"),
	}
	registry := action.NewRegistry(costcomponent.NewEngine(nil), nil)

	// WHEN: Disbursing in full and booking it
	disbursed, err := registry.Apply(ctx, cc, realBalances(), schedule.ActionDisburse,
		action.Request{Date: schedule.MustParseDate("2025-01-01")})
	require.NoError(t, err)
	_, err = action.Book(ctx, l, mapper, cc, disbursed.Payment, "")
	require.NoError(t, err)
	cc.State = disbursed.NextState

	// AND: Accepting the first payment against the booked balances
	repaid, err := registry.Apply(ctx, cc, realBalances(), schedule.ActionAcceptPayment,
		action.Request{Date: schedule.MustParseDate("2025-02-01")})
	require.NoError(t, err)
	_, err = action.Book(ctx, l, mapper, cc, repaid.Payment, "")
	require.NoError(t, err)

	// THEN: The fee was repaid first, then principal
	principal, err := l.CurrentBalance(ctx, "loan.principal")
	require.NoError(t, err)
	assertDecimal(t, "910", principal)

	fees, err := l.CurrentBalance(ctx, "loan.fees")
	require.NoError(t, err)
	assertDecimal(t, "0", fees)

	cash, err := l.CurrentBalance(ctx, "cash")
	require.NoError(t, err)
	assertDecimal(t, "900", cash)

	income, err := l.CurrentBalance(ctx, "income.processing")
	require.NoError(t, err)
	assertDecimal(t, "10", income)

	// AND: The start of term is found from the disbursement entry
	start, ok, err := realBalances().StartOfTerm(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schedule.MustParseDate("2025-01-01"), start)
}
