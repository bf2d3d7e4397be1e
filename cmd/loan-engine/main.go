/*
main.go - Command-line entry point

PURPOSE:
  Loads a loan product from YAML and runs the cost engine against it:
  projects repayment schedules and books lifecycle actions to a SQLite
  ledger.

COMMANDS:
  plan <product.yaml>      Print the planned payments of a loan
  disburse <product.yaml>  Cost a disbursement and book it to the ledger
  balances <product.yaml>  Print the ledger balances of a case

ENVIRONMENT:
  LOAN_ENGINE_SQLITE_PATH          Ledger database (default: :memory:)
  LOAN_ENGINE_LOG_LEVEL            debug, info, warn, error (default: info)
  LOAN_ENGINE_LOG_FORMAT           text or json (default: text)
  LOAN_ENGINE_BALANCE_CACHE_TTL    Balance cache lifetime (default: 30s)
  LOAN_ENGINE_BALANCE_CACHE_SIZE   Balance cache entries (default: 20)

EXAMPLES:
  # Twelve monthly payments on 5000 at 9.5%
  ./loan-engine plan product/testdata/personal-loan.yaml \
      --maximum 5000 --rate 9.5 --months 12 --start 2025-01-01

  # Disburse 2000 on case c-17
  LOAN_ENGINE_SQLITE_PATH=./loans.db ./loan-engine disburse \
      product/testdata/personal-loan.yaml --case c-17 --amount 2000

SEE ALSO:
  - plan/planner.go: schedule projection
  - action/service.go: lifecycle actions
  - store/sqlite/sqlite.go: ledger persistence
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
