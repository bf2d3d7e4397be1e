/*
Package sqlite provides a SQLite-backed ledger.

PURPOSE:
  Implements ledger.Reader and ledger.Writer on SQLite, so cases can be
  costed against persisted balances outside of tests. In production the
  same schema fits PostgreSQL with minor dialect changes.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements on entries or lines
  - Corrections are booked as new entries

KEY TABLES:
  accounts: ledger accounts and their natural sign
  entries:  journal entry headers (date, message, note)
  lines:    debit and credit lines of each entry

AMOUNTS:
  Stored as decimal TEXT and summed in Go. SQLite's SUM works in floating
  point and would lose cents.

CONCURRENCY:
  Uses sync.RWMutex around the pool. The pool is limited to a single
  connection so ":memory:" databases are shared across queries.

USAGE:
  store, err := sqlite.New("./data/loans.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/ports.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/schedule"
)

// Store implements the ledger ports using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ ledger.Reader = (*Store)(nil)
	_ ledger.Writer = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		sign INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Journal entries (append-only)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		transaction_date TEXT NOT NULL,
		message TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	-- Accrual sums and start-of-term lookups filter on message and date
	CREATE INDEX IF NOT EXISTS idx_entries_message_date
		ON entries(message, transaction_date);

	CREATE TABLE IF NOT EXISTS lines (
		entry_id TEXT NOT NULL REFERENCES entries(id),
		account_id TEXT NOT NULL REFERENCES accounts(id),
		side TEXT NOT NULL CHECK (side IN ('debit', 'credit')),
		amount TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (entry_id, side, position)
	);

	-- Balance reads (hot path)
	CREATE INDEX IF NOT EXISTS idx_lines_account
		ON lines(account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITER (ledger.Writer interface)
// =============================================================================

// CreateAccount registers an account. Identifiers are unique.
func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (id, name, sign, created_at) VALUES (?, ?, ?, ?)",
		a.ID, a.Name, int(a.Sign), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, a.ID)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Post appends a balanced entry and returns its identifier. Entries without
// an identifier get a ULID.
func (s *Store) Post(ctx context.Context, e ledger.Entry) (string, error) {
	ids, err := s.PostBatch(ctx, []ledger.Entry{e})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// PostBatch appends several entries atomically.
func (s *Store) PostBatch(ctx context.Context, entries []ledger.Entry) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		id, err := postTx(ctx, sqlTx, e)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit entries: %w", err)
	}
	return ids, nil
}

func postTx(ctx context.Context, tx *sql.Tx, e ledger.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO entries (id, transaction_date, message, note, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.TransactionDate.String(), e.Message, nullString(e.Note), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return "", fmt.Errorf("%w: %s", ledger.ErrDuplicateEntry, e.ID)
		}
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}

	sides := []struct {
		side  string
		lines []ledger.Line
	}{{"debit", e.Debtors}, {"credit", e.Creditors}}
	for _, side := range sides {
		for i, l := range side.lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO lines (entry_id, account_id, side, amount, position)
				VALUES (?, ?, ?, ?, ?)
			`, e.ID, l.AccountID, side.side, l.Amount.String(), i)
			if err != nil {
				if isForeignKeyError(err) {
					return "", fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, l.AccountID)
				}
				return "", fmt.Errorf("failed to insert line: %w", err)
			}
		}
	}
	return e.ID, nil
}

// =============================================================================
// READER (ledger.Reader interface)
// =============================================================================

// CurrentBalance returns the natural balance of an account.
func (s *Store) CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sign int
	err := s.db.QueryRowContext(ctx, "SELECT sign FROM accounts WHERE id = ?", accountID).Scan(&sign)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, accountID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read account: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT side, amount FROM lines WHERE account_id = ?", accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	delta := decimal.Zero
	for rows.Next() {
		var side, amount string
		if err := rows.Scan(&side, &amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan line: %w", err)
		}
		v, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		if side == "debit" {
			v = v.Neg()
		}
		delta = delta.Add(v)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}
	return account.Sign(sign).Decimal().Mul(delta), nil
}

// SumMatchingEntriesSince sums what entries with message moved on an
// account, on or after since.
func (s *Store) SumMatchingEntriesSince(ctx context.Context, accountID string, since schedule.Date, message string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.amount
		FROM lines l JOIN entries e ON e.id = l.entry_id
		WHERE l.account_id = ? AND e.message = ? AND e.transaction_date >= ?
	`, accountID, message, since.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan line: %w", err)
		}
		v, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		total = total.Add(v.Abs())
	}
	return total, rows.Err()
}

// OldestEntryDate returns the date of the first entry with message that
// touches an account.
func (s *Store) OldestEntryDate(ctx context.Context, accountID string, message string) (schedule.Date, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(e.transaction_date)
		FROM entries e JOIN lines l ON l.entry_id = e.id
		WHERE l.account_id = ? AND e.message = ?
	`, accountID, message).Scan(&date)
	if err != nil {
		return schedule.Date{}, false, fmt.Errorf("failed to query oldest entry: %w", err)
	}
	if !date.Valid {
		return schedule.Date{}, false, nil
	}
	d, err := schedule.ParseDate(date.String)
	if err != nil {
		return schedule.Date{}, false, fmt.Errorf("corrupt transaction date %q: %w", date.String, err)
	}
	return d, true, nil
}

// Entries returns the posted entries with message, oldest first. An empty
// message returns every entry.
func (s *Store) Entries(ctx context.Context, message string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.transaction_date, e.message, e.note, l.account_id, l.side, l.amount
		FROM entries e JOIN lines l ON l.entry_id = e.id
		WHERE ? = '' OR e.message = ?
		ORDER BY e.transaction_date ASC, e.created_at ASC, e.id ASC, l.side DESC, l.position ASC
	`, message, message)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var (
			id, date, msg, accountID, side, amount string
			note                                   sql.NullString
		)
		if err := rows.Scan(&id, &date, &msg, &note, &accountID, &side, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			d, err := schedule.ParseDate(date)
			if err != nil {
				return nil, fmt.Errorf("corrupt transaction date %q: %w", date, err)
			}
			out = append(out, ledger.Entry{ID: id, TransactionDate: d, Message: msg, Note: note.String})
		}
		v, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		e := &out[len(out)-1]
		line := ledger.Line{AccountID: accountID, Amount: v}
		if side == "debit" {
			e.Debtors = append(e.Debtors, line)
		} else {
			e.Creditors = append(e.Creditors, line)
		}
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
