package balance

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// SIMULATED - In-memory balances for projection
// =============================================================================

// Simulated keeps natural balances in memory. A role is absent until it is
// first adjusted or set. Not safe for concurrent use.
type Simulated struct {
	pattern     *account.Pattern
	balances    map[account.Designator]decimal.Decimal
	startOfTerm schedule.Date
}

var _ RunningBalances = (*Simulated)(nil)

// NewSimulated returns empty balances. A zero startOfTerm means unknown.
func NewSimulated(pattern *account.Pattern, startOfTerm schedule.Date) *Simulated {
	return &Simulated{
		pattern:     pattern,
		balances:    make(map[account.Designator]decimal.Decimal),
		startOfTerm: startOfTerm,
	}
}

func (s *Simulated) Pattern() *account.Pattern { return s.pattern }

func (s *Simulated) AccountSign(d account.Designator) account.Sign { return s.pattern.Sign(d) }

func (s *Simulated) AccountBalance(_ context.Context, d account.Designator) (decimal.Decimal, bool, error) {
	b, ok := s.balances[d]
	return b, ok, nil
}

// AccruedBalanceForCharge is the balance of the charge's accrual account.
func (s *Simulated) AccruedBalanceForCharge(_ context.Context, def *charge.Definition) (decimal.Decimal, error) {
	return s.balances[def.AccrualAccount], nil
}

func (s *Simulated) StartOfTerm(context.Context) (schedule.Date, bool, error) {
	return s.startOfTerm, !s.startOfTerm.IsZero(), nil
}

// Set overwrites the natural balance of d.
func (s *Simulated) Set(d account.Designator, amount decimal.Decimal) {
	s.balances[d] = amount
}

// SetZero gives each of ds a zero balance, so clamps see an empty account
// rather than an absent one.
func (s *Simulated) SetZero(ds ...account.Designator) {
	for _, d := range ds {
		s.balances[d] = decimal.Zero
	}
}

// AdjustBalance applies a credit-positive adjustment to d.
func (s *Simulated) AdjustBalance(d account.Designator, adjustment decimal.Decimal) {
	s.balances[d] = s.balances[d].Add(s.pattern.Sign(d).Decimal().Mul(adjustment))
}

// Apply applies a set of credit-positive adjustments.
func (s *Simulated) Apply(adjustments map[account.Designator]decimal.Decimal) {
	for d, a := range adjustments {
		s.AdjustBalance(d, a)
	}
}

// Snapshot returns a copy of the current balances.
func (s *Simulated) Snapshot() map[account.Designator]decimal.Decimal {
	out := make(map[account.Designator]decimal.Decimal, len(s.balances))
	for d, b := range s.balances {
		out[d] = b
	}
	return out
}

// Designators lists the roles with a balance, sorted.
func (s *Simulated) Designators() []account.Designator {
	out := make([]account.Designator, 0, len(s.balances))
	for d := range s.balances {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
