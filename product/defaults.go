package product

import (
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/account"
	"github.com/warp/loan-engine/charge"
	"github.com/warp/loan-engine/schedule"
)

// =============================================================================
// DEFAULT CHARGES - Standard individual-lending configuration
// =============================================================================

// DefaultCharges returns the standard charges of an individual loan. Fees
// default to zero and are meant to be overridden; the movement of principal,
// interest and repayments is read-only.
//
// Every call returns fresh definitions.
func DefaultCharges() []*charge.Definition {
	hundred := decimal.NewFromInt(100)
	return []*charge.Definition{
		{
			Identifier:     charge.ProcessingFeeID,
			Name:           "Processing fee",
			ChargeAction:   schedule.ActionDisburse,
			Method:         charge.MethodFixed,
			Amount:         decimal.Zero,
			ProportionalTo: charge.NotProportional,
			FromAccount:    account.CustomerLoanFees,
			ToAccount:      account.ProcessingFeeIncome,
			ChargeOnTop:    true,
		},
		{
			Identifier:     charge.LoanOriginationFeeID,
			Name:           "Loan origination fee",
			ChargeAction:   schedule.ActionDisburse,
			Method:         charge.MethodProportional,
			Amount:         decimal.Zero,
			ProportionalTo: charge.RequestedDisbursement,
			FromAccount:    account.CustomerLoanFees,
			ToAccount:      account.OriginationFeeIncome,
			ChargeOnTop:    true,
		},
		{
			Identifier:     charge.DisbursementFeeID,
			Name:           "Disbursement fee",
			ChargeAction:   schedule.ActionDisburse,
			Method:         charge.MethodProportional,
			Amount:         decimal.Zero,
			ProportionalTo: charge.RequestedDisbursement,
			FromAccount:    account.CustomerLoanFees,
			ToAccount:      account.DisbursementFeeIncome,
			ChargeOnTop:    true,
		},
		{
			Identifier:     charge.DisbursePaymentID,
			Name:           "Disburse payment",
			ChargeAction:   schedule.ActionDisburse,
			Method:         charge.MethodProportional,
			Amount:         hundred,
			ProportionalTo: charge.RequestedDisbursement,
			FromAccount:    account.CustomerLoanPrincipal,
			ToAccount:      account.Entry,
			ReadOnly:       true,
		},
		{
			Identifier:       charge.InterestID,
			Name:             "Interest",
			ChargeAction:     schedule.ActionAcceptPayment,
			AccrueAction:     schedule.ActionApplyInterest,
			AccrualAccount:   account.InterestAccrual,
			Method:           charge.MethodInterest,
			ProportionalTo:   charge.PrincipalBalance,
			FromAccount:      account.CustomerLoanInterest,
			ToAccount:        account.InterestIncome,
			ForCycleSizeUnit: schedule.Years,
			ReadOnly:         true,
		},
		{
			Identifier:     charge.RepayFeesID,
			Name:           "Repay fees",
			ChargeAction:   schedule.ActionAcceptPayment,
			Method:         charge.MethodProportional,
			Amount:         hundred,
			ProportionalTo: charge.RequestedRepayment,
			FromAccount:    account.Entry,
			ToAccount:      account.CustomerLoanFees,
			ReadOnly:       true,
		},
		{
			Identifier:     charge.RepayInterestID,
			Name:           "Repay interest",
			ChargeAction:   schedule.ActionAcceptPayment,
			Method:         charge.MethodProportional,
			Amount:         hundred,
			ProportionalTo: charge.RequestedRepayment,
			FromAccount:    account.Entry,
			ToAccount:      account.CustomerLoanInterest,
			ReadOnly:       true,
		},
		{
			Identifier:     charge.RepayPrincipalID,
			Name:           "Repay principal",
			ChargeAction:   schedule.ActionAcceptPayment,
			Method:         charge.MethodProportional,
			Amount:         hundred,
			ProportionalTo: charge.RequestedRepayment,
			FromAccount:    account.Entry,
			ToAccount:      account.CustomerLoanPrincipal,
			ReadOnly:       true,
		},
		{
			Identifier:     charge.LateFeeID,
			Name:           "Late fee",
			ChargeAction:   schedule.ActionMarkLate,
			Method:         charge.MethodProportional,
			Amount:         decimal.Zero,
			ProportionalTo: charge.ContractualRepayment,
			FromAccount:    account.CustomerLoanFees,
			ToAccount:      account.LateFeeIncome,
			ChargeOnTop:    true,
		},
	}
}
