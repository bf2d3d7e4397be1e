package balance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// REAL - Ledger-backed balances
// =============================================================================

// Default cache settings for Real.
const (
	DefaultCacheTTL  = 30 * time.Second
	DefaultCacheSize = 20
)

// RealConfig identifies the case whose balances are read.
type RealConfig struct {
	ProductID string
	CaseID    string

	// StartOfTerm, when set, is used instead of looking up the first
	// disbursement in the ledger.
	StartOfTerm schedule.Date

	CacheTTL  time.Duration
	CacheSize int
	Logger    *slog.Logger
	Now       func() time.Time
}

// Real reads balances of one case from the ledger. Create one per
// computation; balances are cached for a short time so repeated clamps in
// one computation do not re-read the ledger.
type Real struct {
	pattern *account.Pattern
	reader  ledger.Reader
	mapper  *AccountMapper
	cfg     RealConfig
	logger  *slog.Logger
	cache   *ttlCache[decimal.Decimal]

	startOnce sync.Once
	start     schedule.Date
	startOK   bool
	startErr  error
}

var _ RunningBalances = (*Real)(nil)

// NewReal returns ledger-backed balances for the case in cfg.
func NewReal(pattern *account.Pattern, reader ledger.Reader, mapper *AccountMapper, cfg RealConfig) *Real {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Real{
		pattern: pattern,
		reader:  reader,
		mapper:  mapper,
		cfg:     cfg,
		logger:  logger.With("product", cfg.ProductID, "case", cfg.CaseID),
		cache:   newTTLCache[decimal.Decimal](cfg.CacheTTL, cfg.CacheSize, cfg.Now),
	}
}

func (r *Real) Pattern() *account.Pattern { return r.pattern }

func (r *Real) AccountSign(d account.Designator) account.Sign { return r.pattern.Sign(d) }

// AccountBalance reads the current balance of the account mapped to d.
// Unmapped roles are absent.
func (r *Real) AccountBalance(ctx context.Context, d account.Designator) (decimal.Decimal, bool, error) {
	accountID, ok := r.mapper.Lookup(d)
	if !ok {
		return decimal.Zero, false, nil
	}
	b, hit, err := r.cache.get(ctx, accountID, func(ctx context.Context) (decimal.Decimal, error) {
		return r.reader.CurrentBalance(ctx, accountID)
	})
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("reading balance of %s (%s): %w", d, accountID, err)
	}
	if !hit {
		r.logger.Debug("balance cache miss", "designator", d, "account", accountID)
	}
	return b, true, nil
}

// AccruedBalanceForCharge sums what the charge's accrue action booked on
// its accrual account since the start of term, less what its charge action
// booked out of it.
func (r *Real) AccruedBalanceForCharge(ctx context.Context, def *charge.Definition) (decimal.Decimal, error) {
	if !def.IsAccrued() {
		return decimal.Zero, nil
	}
	accountID, err := r.mapper.AccountFor(def.AccrualAccount)
	if err != nil {
		return decimal.Zero, err
	}
	start, err := StartOfTermOrErr(ctx, r)
	if err != nil {
		return decimal.Zero, err
	}

	accrued, err := r.reader.SumMatchingEntriesSince(ctx, accountID, start, ledger.Message(r.cfg.ProductID, r.cfg.CaseID, def.AccrueAction))
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing accruals of %s: %w", def.Identifier, err)
	}
	applied, err := r.reader.SumMatchingEntriesSince(ctx, accountID, start, ledger.Message(r.cfg.ProductID, r.cfg.CaseID, def.ChargeAction))
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing applications of %s: %w", def.Identifier, err)
	}
	return accrued.Sub(applied), nil
}

// StartOfTerm returns the configured start of term, or the date of the
// oldest disbursement entry on the principal account.
func (r *Real) StartOfTerm(ctx context.Context) (schedule.Date, bool, error) {
	if !r.cfg.StartOfTerm.IsZero() {
		return r.cfg.StartOfTerm, true, nil
	}
	r.startOnce.Do(func() {
		accountID, ok := r.mapper.Lookup(account.CustomerLoanPrincipal)
		if !ok {
			return
		}
		msg := ledger.Message(r.cfg.ProductID, r.cfg.CaseID, schedule.ActionDisburse)
		r.start, r.startOK, r.startErr = r.reader.OldestEntryDate(ctx, accountID, msg)
	})
	return r.start, r.startOK, r.startErr
}
