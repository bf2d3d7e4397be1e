package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/action"
	"github.com/warp/loan-engine/balance"
	"github.com/warp/loan-engine/config"
	"github.com/warp/loan-engine/costcomponent"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/plan"
	"github.com/warp/loan-engine/product"
	"github.com/warp/loan-engine/schedule"
	"github.com/warp/loan-engine/store/sqlite"
)

// caseFlags are the case parameters shared by every command.
type caseFlags struct {
	caseID   string
	maximum  string
	rate     string
	months   int
	start    string
	amount   string
	date     string
	page     int
	pageSize int
}

func (f *caseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.maximum, "maximum", "1000", "maximum balance of the loan")
	cmd.Flags().StringVar(&f.rate, "rate", "0", "annual interest rate in percent")
	cmd.Flags().IntVar(&f.months, "months", 12, "term in months, paid monthly")
	cmd.Flags().StringVar(&f.start, "start", "2025-01-01", "start of term (YYYY-MM-DD)")
}

func (f *caseFlags) parameters() (schedule.CaseParameters, decimal.Decimal, schedule.Date, error) {
	maximum, err := decimal.NewFromString(f.maximum)
	if err != nil {
		return schedule.CaseParameters{}, decimal.Zero, schedule.Date{}, fmt.Errorf("--maximum: %w", err)
	}
	rate, err := decimal.NewFromString(f.rate)
	if err != nil {
		return schedule.CaseParameters{}, decimal.Zero, schedule.Date{}, fmt.Errorf("--rate: %w", err)
	}
	start, err := schedule.ParseDate(f.start)
	if err != nil {
		return schedule.CaseParameters{}, decimal.Zero, schedule.Date{}, fmt.Errorf("--start: %w", err)
	}
	params := schedule.CaseParameters{
		TermRange:      schedule.TermRange{TemporalUnit: schedule.Months, Maximum: f.months},
		PaymentCycle:   schedule.PaymentCycle{TemporalUnit: schedule.Months, Period: 1},
		MaximumBalance: maximum,
	}
	return params, rate, start, nil
}

// env bundles what every command needs from the environment.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	engine *costcomponent.Engine
}

func loadEnv(stderr io.Writer) (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, err
	}
	logger := config.NewLogger(cfg, stderr)
	return env{cfg: cfg, logger: logger, engine: costcomponent.NewEngine(logger)}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "loan-engine",
		Short:         "Loan cost component engine",
		Long:          "Costs the lifecycle actions of individual loans and projects their repayment schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd(), newDisburseCmd(), newBalancesCmd())
	return root
}

// =============================================================================
// PLAN
// =============================================================================

func newPlanCmd() *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "plan [product-file]",
		Short: "Print the planned payments of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			prod, err := product.LoadFile(args[0])
			if err != nil {
				return err
			}
			params, rate, start, err := f.parameters()
			if err != nil {
				return err
			}
			if err := prod.ValidateCase(params, rate); err != nil {
				return err
			}

			page, err := plan.NewPlanner(e.engine, e.logger).PlannedPaymentPage(cmd.Context(), plan.Input{
				Product:              prod,
				Parameters:           params,
				InterestRate:         rate,
				InitialDisbursalDate: start,
			}, f.page, f.pageSize)
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), page, f.page)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&f.page, "page", 0, "page index, from 0")
	cmd.Flags().IntVar(&f.pageSize, "size", plan.DefaultPageSize, "payments per page")
	return cmd
}

func printPlan(w io.Writer, page plan.PlannedPaymentPage, pageIndex int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	header := "date\t"
	onTop := false
	for _, def := range page.ChargeDefinitions {
		header += def.Identifier
		if def.ChargeOnTop {
			header += "*"
			onTop = true
		}
		header += "\t"
	}
	fmt.Fprintln(tw, header+"principal\t")
	for _, pp := range page.Elements {
		row := pp.Payment.Date.String() + "\t"
		for _, def := range page.ChargeDefinitions {
			amount, _ := pp.Payment.CostComponent(def.Identifier)
			row += amount.StringFixed(2) + "\t"
		}
		fmt.Fprintln(tw, row+pp.Balance(account.CustomerLoanPrincipal).StringFixed(2)+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if onTop {
		fmt.Fprintln(w, "* charged on top of the payment")
	}
	_, err := fmt.Fprintf(w, "%d payments, page %d of %d\n", page.TotalElements, pageIndex+1, page.TotalPages)
	return err
}

// =============================================================================
// DISBURSE
// =============================================================================

func newDisburseCmd() *cobra.Command {
	var f caseFlags
	cmd := &cobra.Command{
		Use:   "disburse [product-file]",
		Short: "Cost a disbursement and book it to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := loadEnv(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			prod, err := product.LoadFile(args[0])
			if err != nil {
				return err
			}
			params, rate, _, err := f.parameters()
			if err != nil {
				return err
			}
			date, err := schedule.ParseDate(f.date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			req := action.Request{Date: date}
			if f.amount != "" {
				amount, err := decimal.NewFromString(f.amount)
				if err != nil {
					return fmt.Errorf("--amount: %w", err)
				}
				req.Amount = &amount
			}

			store, err := sqlite.New(e.cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := ensureAccounts(cmd, store, prod); err != nil {
				return err
			}

			mapper := prod.AccountMapper()
			rb := balance.NewReal(prod.Pattern, store, mapper, e.cfg.RealConfig(prod.Identifier, f.caseID, e.logger))
			principal, err := balance.BalanceOrZero(ctx, rb, account.CustomerLoanPrincipal)
			if err != nil {
				return err
			}
			state := action.StateApproved
			if principal.IsPositive() {
				state = action.StateActive
			}
			cc := action.CaseContext{Product: prod, CaseID: f.caseID, State: state, Parameters: params, InterestRate: rate}

			result, err := action.NewRegistry(e.engine, e.logger).Apply(ctx, cc, rb, schedule.ActionDisburse, req)
			if err != nil {
				return err
			}
			id, err := action.Book(ctx, store, mapper, cc, result.Payment, "disbursed from the command line")
			if err != nil {
				return err
			}
			e.logger.Info("disbursement booked", "case", f.caseID, "entry", id)
			components := make(map[string]decimal.Decimal, len(result.Payment.CostComponents))
			for _, c := range result.Payment.CostComponents {
				components[c.ChargeIdentifier] = c.Amount
			}
			return printAmounts(cmd.OutOrStdout(), components)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.caseID, "case", "case-1", "case identifier")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount to disburse (default: maximum balance)")
	cmd.Flags().StringVar(&f.date, "date", "2025-01-01", "disbursement date (YYYY-MM-DD)")
	return cmd
}

// ensureAccounts creates the product's ledger accounts that do not exist yet.
func ensureAccounts(cmd *cobra.Command, w ledger.Writer, prod *product.Product) error {
	for _, a := range prod.AccountAssignments {
		err := w.CreateAccount(cmd.Context(), ledger.Account{
			ID:   a.AccountID,
			Name: string(a.Designator),
			Sign: prod.Pattern.Sign(a.Designator),
		})
		if err != nil && !errors.Is(err, ledger.ErrDuplicateAccount) {
			return err
		}
	}
	return nil
}

func printAmounts(w io.Writer, amounts map[string]decimal.Decimal) error {
	keys := make([]string, 0, len(amounts))
	for k := range amounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, amounts[k].StringFixed(2))
	}
	return tw.Flush()
}

// =============================================================================
// BALANCES
// =============================================================================

func newBalancesCmd() *cobra.Command {
	var caseID string
	cmd := &cobra.Command{
		Use:   "balances [product-file]",
		Short: "Print the ledger balances of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			prod, err := product.LoadFile(args[0])
			if err != nil {
				return err
			}
			store, err := sqlite.New(e.cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := ensureAccounts(cmd, store, prod); err != nil {
				return err
			}

			mapper := prod.AccountMapper()
			rb := balance.NewReal(prod.Pattern, store, mapper, e.cfg.RealConfig(prod.Identifier, caseID, e.logger))
			balances := make(map[string]decimal.Decimal)
			for _, a := range mapper.Assignments() {
				b, err := balance.BalanceOrZero(cmd.Context(), rb, a.Designator)
				if err != nil {
					return err
				}
				balances[string(a.Designator)] = b
			}
			return printAmounts(cmd.OutOrStdout(), balances)
		},
	}
	cmd.Flags().StringVar(&caseID, "case", "case-1", "case identifier")
	return cmd
}
