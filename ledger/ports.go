package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/schedule"
)

// Reader is the read side of the ledger used by running balances.
//
//go:generate mockgen -destination=mocks/mock_ports.go -source=ports.go
type Reader interface {
	// CurrentBalance returns the natural balance of an account.
	CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// SumMatchingEntriesSince sums the amounts moved on an account by
	// entries with the given message dated on or after since.
	SumMatchingEntriesSince(ctx context.Context, accountID string, since schedule.Date, message string) (decimal.Decimal, error)

	// OldestEntryDate returns the date of the first entry on an account
	// with the given message.
	OldestEntryDate(ctx context.Context, accountID string, message string) (schedule.Date, bool, error)
}

// Writer is the write side of the ledger.
type Writer interface {
	CreateAccount(ctx context.Context, a Account) error
	Post(ctx context.Context, e Entry) (string, error)
}
