package plan_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/plan"
	"github.com/warp/loan-engine/product"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	ctx         = context.Background()
	startOfTerm = schedule.MustParseDate("2025-01-01")
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func loanProduct(t *testing.T, accrual bool) *product.Product {
	t.Helper()
	p, err := product.Parse([]byte(fmt.Sprintf("identifier: personal\naccrual_accounting: %t\ninclude_default_charges: true\n", accrual)))
	require.NoError(t, err)
	return p
}

func input(t *testing.T, months int, maximum, interest string, accrual bool) plan.Input {
	return plan.Input{
		Product: loanProduct(t, accrual),
		Parameters: schedule.CaseParameters{
			TermRange:      schedule.TermRange{TemporalUnit: schedule.Months, Maximum: months},
			PaymentCycle:   schedule.PaymentCycle{TemporalUnit: schedule.Months, Period: 1},
			MaximumBalance: d(maximum),
		},
		InterestRate:         d(interest),
		InitialDisbursalDate: startOfTerm,
	}
}

func planner() *plan.Planner {
	return plan.NewPlanner(costcomponent.NewEngine(nil), nil)
}

// =============================================================================
// PLANNED PAYMENTS
// =============================================================================

func TestPlannedPayments_ZeroInterest(t *testing.T) {
	// GIVEN: 1000 over three months without interest
	in := input(t, 3, "1000", "0", false)

	// WHEN: Projecting the schedule
	s, err := planner().PlannedPayments(ctx, in)
	require.NoError(t, err)

	// THEN: The disbursement followed by three level installments, the last
	// one absorbing the rounding
	assertDecimal(t, "333.33", s.PaymentSize)
	require.Len(t, s.Payments, 4)

	first := s.Payments[0]
	assert.Equal(t, startOfTerm, first.Payment.Date)
	assertDecimal(t, "1000", first.Balance(account.CustomerLoanPrincipal))

	want := []string{"333.33", "333.33", "333.34"}
	for i, p := range s.Payments[1:] {
		got, ok := p.Payment.CostComponent(charge.RepayPrincipalID)
		require.True(t, ok)
		assertDecimal(t, want[i], got)
	}
	assert.Equal(t, schedule.MustParseDate("2025-04-01"), s.Payments[3].Payment.Date)
	assertDecimal(t, "0", s.Payments[3].Balance(account.CustomerLoanPrincipal))
}

func TestPlannedPayments_WithInterest(t *testing.T) {
	for _, accrual := range []bool{false, true} {
		t.Run(fmt.Sprintf("accrual=%t", accrual), func(t *testing.T) {
			// GIVEN: 1200 over a year at 12%
			in := input(t, 12, "1200", "12", accrual)

			// WHEN: Projecting the schedule
			s, err := planner().PlannedPayments(ctx, in)
			require.NoError(t, err)
			require.Len(t, s.Payments, 13)

			// THEN: Principal only goes down, by exactly what each payment
			// repays, and ends at zero
			previous := s.Payments[0].Balance(account.CustomerLoanPrincipal)
			assertDecimal(t, "1200", previous)
			for _, p := range s.Payments[1:] {
				current := p.Balance(account.CustomerLoanPrincipal)
				assert.True(t, current.LessThanOrEqual(previous), "principal grew from %s to %s", previous, current)

				repaid, _ := p.Payment.CostComponent(charge.RepayPrincipalID)
				assertDecimal(t, repaid.String(), previous.Sub(current))

				interest, ok := p.Payment.CostComponent(charge.RepayInterestID)
				require.True(t, ok)
				assert.True(t, interest.IsPositive(), "interest %s", interest)
				previous = current
			}
			assertDecimal(t, "0", previous)
		})
	}
}

func TestPlannedPayments_ChargeDefinitionsInBookingOrder(t *testing.T) {
	s, err := planner().PlannedPayments(ctx, input(t, 3, "1000", "5", false))
	require.NoError(t, err)

	ids := make([]string, 0, len(s.ChargeDefinitions))
	for _, def := range s.ChargeDefinitions {
		ids = append(ids, def.Identifier)
	}
	assert.Contains(t, ids, charge.DisbursePaymentID)
	assert.Contains(t, ids, charge.RepayPrincipalID)
	assert.Less(t, indexOf(ids, charge.DisbursePaymentID), indexOf(ids, charge.RepayPrincipalID))

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate definition %s", id)
		seen[id] = true
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestPlannedPayments_InitialBalanceBelowMaximum(t *testing.T) {
	in := input(t, 3, "1000", "0", false)
	in.InitialBalance = d("600")

	s, err := planner().PlannedPayments(ctx, in)
	require.NoError(t, err)
	assertDecimal(t, "200", s.PaymentSize)
	assertDecimal(t, "600", s.Payments[0].Balance(account.CustomerLoanPrincipal))
}

// =============================================================================
// PAGING
// =============================================================================

func TestPlannedPaymentPage(t *testing.T) {
	in := input(t, 12, "1200", "0", false)

	tests := []struct {
		name      string
		pageIndex int
		size      int
		elements  int
		pages     int
	}{
		{"first page", 0, 5, 5, 3},
		{"last partial page", 2, 5, 3, 3},
		{"past the end", 9, 5, 0, 3},
		{"default size", 0, 0, 13, 1},
		{"negative index", -1, 5, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := planner().PlannedPaymentPage(ctx, in, tt.pageIndex, tt.size)
			require.NoError(t, err)
			assert.Equal(t, 13, page.TotalElements)
			assert.Equal(t, tt.pages, page.TotalPages)
			assert.Len(t, page.Elements, tt.elements)
			assert.NotEmpty(t, page.ChargeDefinitions)
		})
	}
}

func TestPage_KeepsOrder(t *testing.T) {
	s, err := planner().PlannedPayments(ctx, input(t, 12, "1200", "0", false))
	require.NoError(t, err)

	page := plan.Page(s, 1, 4)
	require.Len(t, page.Elements, 4)
	assert.Equal(t, s.Payments[4].Payment.Date, page.Elements[0].Payment.Date)
}

// =============================================================================
// RESIZING
// =============================================================================

func TestPaymentSizeAfterDisbursement(t *testing.T) {
	// GIVEN: A three month loan with 500 outstanding after the first payment
	in := input(t, 3, "1000", "0", false)

	// WHEN: Another 100 is disbursed on the first payment date
	size, err := planner().PaymentSizeAfterDisbursement(ctx, in,
		schedule.MustParseDate("2025-02-01"), d("500"), d("100"))
	require.NoError(t, err)

	// THEN: 600 is spread over the two remaining periods
	assertDecimal(t, "300", size)
}
