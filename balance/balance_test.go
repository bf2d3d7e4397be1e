package balance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/ledger"
	mock_ledger "github.com/warp/loan-engine/ledger/mocks"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func interestCharge() *charge.Definition {
	return &charge.Definition{
		Identifier:     charge.InterestID,
		ChargeAction:   schedule.ActionAcceptPayment,
		AccrueAction:   schedule.ActionApplyInterest,
		AccrualAccount: account.InterestAccrual,
		Method:         charge.MethodInterest,
		ProportionalTo: charge.PrincipalBalance,
		FromAccount:    account.CustomerLoanInterest,
		ToAccount:      account.InterestIncome,
	}
}

var assignments = []balance.AccountAssignment{
	{Designator: account.CustomerLoanPrincipal, AccountID: "7010"},
	{Designator: account.CustomerLoanInterest, AccountID: "7020"},
	{Designator: account.InterestAccrual, AccountID: "7810"},
	{Designator: account.Entry, AccountID: "9100"},
}

// =============================================================================
// SIMULATED
// =============================================================================

func TestSimulated_AdjustBalanceIsSignAware(t *testing.T) {
	ctx := context.Background()
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})

	// GIVEN: Nothing booked yet
	_, ok, err := sim.AccountBalance(ctx, account.CustomerLoanPrincipal)
	require.NoError(t, err)
	assert.False(t, ok)

	// WHEN: Debiting principal and crediting entry by 1000
	sim.AdjustBalance(account.CustomerLoanPrincipal, d("-1000"))
	sim.AdjustBalance(account.Entry, d("1000"))

	// THEN: Both hold a positive natural balance
	b, ok, err := sim.AccountBalance(ctx, account.CustomerLoanPrincipal)
	require.NoError(t, err)
	assert.True(t, ok)
	assertDecimal(t, "1000", b)
	b, _, _ = sim.AccountBalance(ctx, account.Entry)
	assertDecimal(t, "1000", b)
}

func TestBalance_GroupSumsMembers(t *testing.T) {
	ctx := context.Background()
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})

	_, ok, err := balance.Balance(ctx, sim, account.CustomerLoanGroup)
	require.NoError(t, err)
	assert.False(t, ok, "group of absent members is absent")

	sim.Set(account.CustomerLoanPrincipal, d("1000"))
	sim.Set(account.CustomerLoanFees, d("2.5"))
	b, ok, err := balance.Balance(ctx, sim, account.CustomerLoanGroup)
	require.NoError(t, err)
	assert.True(t, ok)
	assertDecimal(t, "1002.5", b)
}

func TestSimulated_Snapshot(t *testing.T) {
	sim := balance.NewSimulated(account.IndividualLending(), schedule.MustParseDate("2025-01-01"))
	sim.Set(account.CustomerLoanPrincipal, d("10"))

	snapshot := sim.Snapshot()
	sim.Set(account.CustomerLoanPrincipal, d("20"))

	assertDecimal(t, "10", snapshot[account.CustomerLoanPrincipal])
	assert.Equal(t, []account.Designator{account.CustomerLoanPrincipal}, sim.Designators())

	start, ok, err := sim.StartOfTerm(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, schedule.MustParseDate("2025-01-01"), start)
}

// =============================================================================
// CLAMPS
// =============================================================================

func TestMaxCredit(t *testing.T) {
	ctx := context.Background()
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})

	// GIVEN: An absent principal, there is nothing to clamp against
	got, err := balance.MaxCredit(ctx, sim, account.CustomerLoanPrincipal, d("150"))
	require.NoError(t, err)
	assertDecimal(t, "150", got)

	// GIVEN: 100 of principal, repaying 150 is clamped to 100
	sim.Set(account.CustomerLoanPrincipal, d("100"))
	got, err = balance.MaxCredit(ctx, sim, account.CustomerLoanPrincipal, d("150"))
	require.NoError(t, err)
	assertDecimal(t, "100", got)

	// Credit-normal and exempt roles take any credit
	got, _ = balance.MaxCredit(ctx, sim, account.InterestIncome, d("150"))
	assertDecimal(t, "150", got)
	sim.Set(account.Expense, decimal.Zero)
	got, _ = balance.MaxCredit(ctx, sim, account.Expense, d("150"))
	assertDecimal(t, "150", got)
}

func TestMaxDebit(t *testing.T) {
	ctx := context.Background()
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})
	sim.Set(account.InterestAccrual, d("5"))
	sim.Set(account.CustomerLoanPrincipal, d("0"))

	got, err := balance.MaxDebit(ctx, sim, account.InterestAccrual, d("8"))
	require.NoError(t, err)
	assertDecimal(t, "5", got)

	got, err = balance.MaxDebit(ctx, sim, account.CustomerLoanPrincipal, d("8"))
	require.NoError(t, err)
	assertDecimal(t, "8", got)
}

func TestNaturalBalanceAfter(t *testing.T) {
	ctx := context.Background()
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})
	sim.Set(account.CustomerLoanPrincipal, d("1000"))

	got, err := balance.NaturalBalanceAfter(ctx, sim, account.CustomerLoanPrincipal, d("100"))
	require.NoError(t, err)
	assertDecimal(t, "900", got)

	got, err = balance.NaturalBalanceAfter(ctx, sim, account.InterestIncome, d("3"))
	require.NoError(t, err)
	assertDecimal(t, "3", got)
}

func TestStartOfTermOrErr_Missing(t *testing.T) {
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})
	_, err := balance.StartOfTermOrErr(context.Background(), sim)
	assert.ErrorIs(t, err, balance.ErrStartOfTermMissing)
	assert.True(t, balance.IsConfigurationError(err))
}

// =============================================================================
// LIMITED
// =============================================================================

func TestLimited_CapsBalances(t *testing.T) {
	ctx := context.Background()
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})
	limited := balance.Limited(sim, balance.Limit{Designator: account.CustomerLoanFees, Amount: d("50")})

	// GIVEN: Fees are absent, the limit stands in for them
	b, ok, err := limited.AccountBalance(ctx, account.CustomerLoanFees)
	require.NoError(t, err)
	assert.True(t, ok)
	assertDecimal(t, "50", b)

	// WHEN: Repaying 100 of fees
	got, err := balance.MaxCredit(ctx, limited, account.CustomerLoanFees, d("100"))
	require.NoError(t, err)

	// THEN: The limit clamps it
	assertDecimal(t, "50", got)

	sim.Set(account.CustomerLoanFees, d("30"))
	b, _, _ = limited.AccountBalance(ctx, account.CustomerLoanFees)
	assertDecimal(t, "30", b)

	sim.Set(account.CustomerLoanFees, d("80"))
	got, _ = balance.MaxCredit(ctx, limited, account.CustomerLoanFees, d("100"))
	assertDecimal(t, "50", got)

	// Unlimited roles pass through
	_, ok, _ = limited.AccountBalance(ctx, account.CustomerLoanPrincipal)
	assert.False(t, ok)
}

func TestMaxDebit_EntryIsExempt(t *testing.T) {
	ctx := context.Background()
	sim := balance.NewSimulated(account.IndividualLending(), schedule.Date{})
	sim.Set(account.Entry, d("10"))

	got, err := balance.MaxDebit(ctx, sim, account.Entry, d("100"))
	require.NoError(t, err)
	assertDecimal(t, "100", got)
}

// =============================================================================
// REAL
// =============================================================================

func newReal(t *testing.T, reader ledger.Reader, cfg balance.RealConfig) *balance.Real {
	t.Helper()
	pattern := account.IndividualLending()
	mapper := balance.NewAccountMapper(pattern, assignments, nil)
	cfg.ProductID, cfg.CaseID = "personal-loan", "case-7"
	return balance.NewReal(pattern, reader, mapper, cfg)
}

func TestReal_AccountBalanceIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := mock_ledger.NewMockReader(ctrl)
	ctx := context.Background()

	// GIVEN: The ledger holds 1000 of principal
	reader.EXPECT().CurrentBalance(gomock.Any(), "7010").Return(d("1000"), nil).Times(1)
	rb := newReal(t, reader, balance.RealConfig{})

	// WHEN: Reading twice
	for i := 0; i < 2; i++ {
		b, ok, err := rb.AccountBalance(ctx, account.CustomerLoanPrincipal)
		require.NoError(t, err)
		assert.True(t, ok)
		assertDecimal(t, "1000", b)
	}

	// THEN: The ledger was read once, and unmapped roles are absent
	_, ok, err := rb.AccountBalance(ctx, account.LateFeeIncome)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReal_CacheExpires(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := mock_ledger.NewMockReader(ctrl)
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rb := newReal(t, reader, balance.RealConfig{CacheTTL: 30 * time.Second, Now: func() time.Time { return now }})

	gomock.InOrder(
		reader.EXPECT().CurrentBalance(gomock.Any(), "7010").Return(d("1000"), nil),
		reader.EXPECT().CurrentBalance(gomock.Any(), "7010").Return(d("900"), nil),
	)

	b, _, err := rb.AccountBalance(ctx, account.CustomerLoanPrincipal)
	require.NoError(t, err)
	assertDecimal(t, "1000", b)

	now = now.Add(31 * time.Second)
	b, _, err = rb.AccountBalance(ctx, account.CustomerLoanPrincipal)
	require.NoError(t, err)
	assertDecimal(t, "900", b)
}

func TestReal_AccruedBalanceForCharge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := mock_ledger.NewMockReader(ctrl)
	ctx := context.Background()
	start := schedule.MustParseDate("2025-01-01")

	// GIVEN: 12.50 accrued and 10.00 applied since the first disbursement
	reader.EXPECT().OldestEntryDate(gomock.Any(), "7010", "personal-loan.case-7.DISBURSE").Return(start, true, nil)
	reader.EXPECT().SumMatchingEntriesSince(gomock.Any(), "7810", start, "personal-loan.case-7.APPLY_INTEREST").Return(d("12.50"), nil)
	reader.EXPECT().SumMatchingEntriesSince(gomock.Any(), "7810", start, "personal-loan.case-7.ACCEPT_PAYMENT").Return(d("10.00"), nil)
	rb := newReal(t, reader, balance.RealConfig{})

	// WHEN: Asking for the interest accrued but not applied
	accrued, err := rb.AccruedBalanceForCharge(ctx, interestCharge())

	// THEN: The difference
	require.NoError(t, err)
	assertDecimal(t, "2.5", accrued)
}

func TestReal_StartOfTerm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := mock_ledger.NewMockReader(ctrl)
	ctx := context.Background()

	t.Run("configured value wins", func(t *testing.T) {
		rb := newReal(t, reader, balance.RealConfig{StartOfTerm: schedule.MustParseDate("2025-02-01")})
		start, ok, err := rb.StartOfTerm(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, schedule.MustParseDate("2025-02-01"), start)
	})

	t.Run("never disbursed", func(t *testing.T) {
		reader.EXPECT().OldestEntryDate(gomock.Any(), "7010", gomock.Any()).Return(schedule.Date{}, false, nil).Times(1)
		rb := newReal(t, reader, balance.RealConfig{})
		_, err := balance.StartOfTermOrErr(ctx, rb)
		assert.ErrorIs(t, err, balance.ErrStartOfTermMissing)

		// looked up once per instance
		_, _, err = rb.StartOfTerm(ctx)
		require.NoError(t, err)
	})
}

func TestReal_UnmappedAccrualAccountIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := mock_ledger.NewMockReader(ctrl)

	pattern := account.IndividualLending()
	mapper := balance.NewAccountMapper(pattern, nil, nil)
	rb := balance.NewReal(pattern, reader, mapper, balance.RealConfig{ProductID: "p", CaseID: "c"})

	_, err := rb.AccruedBalanceForCharge(context.Background(), interestCharge())
	var unmapped *balance.UnmappedDesignatorError
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, account.InterestAccrual, unmapped.Designator)
	assert.True(t, balance.IsConfigurationError(err))
}

func TestReal_LedgerErrorsPropagate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := mock_ledger.NewMockReader(ctrl)
	boom := errors.New("ledger unavailable")
	reader.EXPECT().CurrentBalance(gomock.Any(), "9100").Return(decimal.Zero, boom)

	rb := newReal(t, reader, balance.RealConfig{})
	_, _, err := rb.AccountBalance(context.Background(), account.Entry)
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// ACCOUNT MAPPER
// =============================================================================

func TestAccountMapper_CaseOverridesProduct(t *testing.T) {
	pattern := account.IndividualLending()
	mapper := balance.NewAccountMapper(pattern, assignments, []balance.AccountAssignment{
		{Designator: account.Entry, AccountID: "customer-deposit-42"},
	})

	id, err := mapper.AccountFor(account.Entry)
	require.NoError(t, err)
	assert.Equal(t, "customer-deposit-42", id)

	assert.Equal(t, []string{"7010", "7020"}, mapper.AccountsFor(account.CustomerLoanGroup))

	_, err = mapper.AccountFor(account.Expense)
	assert.ErrorIs(t, err, balance.ErrUnmappedDesignator)
	assert.Len(t, mapper.Assignments(), 4)
}
