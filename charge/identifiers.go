package charge

// Identifiers of the standard individual-lending charges.
const (
	ProcessingFeeID      = "processing-fee"
	LoanOriginationFeeID = "loan-origination-fee"
	DisbursementFeeID    = "disbursement-fee"
	DisbursePaymentID    = "disburse-payment"
	InterestID           = "interest"
	RepayPrincipalID     = "repay-principal"
	RepayInterestID      = "repay-interest"
	RepayFeesID          = "repay-fees"
	LateFeeID            = "late-fee"

	// Synthetic charges, built per action rather than configured.
	ProvisionForLossesID = "provision-for-losses"
	WriteOffPrincipalID  = "write-off-principal"
	WriteOffInterestID   = "write-off-interest"
	WriteOffFeesID       = "write-off-fees"
	RecoverLossID        = "recover-loss"
)
