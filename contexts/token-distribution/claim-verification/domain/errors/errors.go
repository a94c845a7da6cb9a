package errors

import "errors"

// One sentinel per verification constraint, in check order. Callers report
// the exact failed constraint so a legitimate wallet can correct and
// resubmit.
var (
	ErrAdminExcluded           = errors.New("admin wallet cannot submit claims")
	ErrTxIDRequired            = errors.New("txId required")
	ErrMoneyDidNotMove         = errors.New("transaction not finalized (money did not fly)")
	ErrSourceMismatch          = errors.New("tx source does not match wallet")
	ErrDestinationMismatch     = errors.New("tx destination does not match registration address")
	ErrWrongRegistrationAmount = errors.New("registration amount does not match the configured fee")
	ErrNotQXContract           = errors.New("trade-in must be a QX smart contract transaction")
	ErrWrongInputType          = errors.New("trade-in tx must be QX TransferShareOwnershipAndPossession (inputType=2)")
	ErrPayloadUnparseable      = errors.New("unable to parse tx inputHex")
	ErrIssuerMismatch          = errors.New("issuer does not match QXMR issuer")
	ErrNewOwnerMismatch        = errors.New("newOwner does not match burn address")
	ErrAssetMismatch           = errors.New("assetName is not QXMR")
	ErrNonPositiveShares       = errors.New("numberOfShares must be > 0")
	ErrTradeInPoolExhausted    = errors.New("trade-in pool exhausted")
	ErrInvalidTransactionType  = errors.New("transaction type must be qubic, qxmr or qdoge")
)
