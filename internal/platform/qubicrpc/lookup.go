package qubicrpc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

var (
	// ErrLedgerUnavailable marks transient network or parse failures.
	// During a transaction lookup it consumes a retry attempt instead of
	// failing the lookup outright.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrTransactionNotFinalized is terminal: the retry budget ran out
	// before the transaction was observed with confirmed fund movement.
	ErrTransactionNotFinalized = errors.New("transaction not finalized")
)

// TxDetails is a parsed transfer-history entry for a finalized transaction.
type TxDetails struct {
	TxID       string
	SourceID   string
	DestID     string
	Amount     int64
	TickNumber int64
	InputType  int64
	InputSize  int64
	InputHex   string
	MoneyFlew  bool
}

// LookupOptions tunes the polling state machine. The lookback window widens
// multiplicatively each attempt to tolerate indexing lag on the node.
type LookupOptions struct {
	LookbackTicks  int64
	LookaheadTicks int64
	MaxRetries     int
	RetryDelay     time.Duration
}

func DefaultLookupOptions() LookupOptions {
	return LookupOptions{
		LookbackTicks:  5000,
		LookaheadTicks: 50,
		MaxRetries:     8,
		RetryDelay:     2500 * time.Millisecond,
	}
}

// lookup attempt outcomes, reported as context on exhaustion.
type lookupState int

const (
	lookupNotFound lookupState = iota
	lookupFoundPending
	lookupLedgerError
)

func (s lookupState) String() string {
	switch s {
	case lookupFoundPending:
		return "transaction found but not finalized yet (moneyFlew=false)"
	case lookupLedgerError:
		return "ledger query failed"
	default:
		return "transaction not found yet"
	}
}

type transfersResponse struct {
	Data *struct {
		Transactions []transferGroup `json:"transactions"`
	} `json:"data"`
	Transactions []transferGroup `json:"transactions"`
}

func (r transfersResponse) groups() []transferGroup {
	if r.Data != nil && len(r.Data.Transactions) > 0 {
		return r.Data.Transactions
	}
	return r.Transactions
}

type transferGroup struct {
	Transactions []transferEntry `json:"transactions"`
}

type transferEntry struct {
	Transaction rpcTransaction `json:"transaction"`
	MoneyFlew   bool           `json:"moneyFlew"`
}

type rpcTransaction struct {
	TxID       string    `json:"txId"`
	SourceID   string    `json:"sourceId"`
	DestID     string    `json:"destId"`
	Amount     flexInt64 `json:"amount"`
	TickNumber flexInt64 `json:"tickNumber"`
	InputType  flexInt64 `json:"inputType"`
	InputSize  flexInt64 `json:"inputSize"`
	InputHex   string    `json:"inputHex"`
}

func (e transferEntry) details() TxDetails {
	return TxDetails{
		TxID:       e.Transaction.TxID,
		SourceID:   e.Transaction.SourceID,
		DestID:     e.Transaction.DestID,
		Amount:     int64(e.Transaction.Amount),
		TickNumber: int64(e.Transaction.TickNumber),
		InputType:  int64(e.Transaction.InputType),
		InputSize:  int64(e.Transaction.InputSize),
		InputHex:   e.Transaction.InputHex,
		MoneyFlew:  e.MoneyFlew,
	}
}

// GetTransactionDetails polls the identity's transfer history until txID is
// observed finalized or the retry budget is exhausted.
//
// Each attempt fetches the current tick and scans the window
// [tick - LookbackTicks*attempt, tick + LookaheadTicks] on every known
// transfer-history path (nodes differ on v1 vs v2). A transaction located
// with moneyFlew=false keeps polling; transient ledger errors also consume
// the attempt. The returned error wraps ErrTransactionNotFinalized and the
// last observed state so callers can report why the lookup gave up.
func (c *Client) GetTransactionDetails(
	ctx context.Context,
	identity qubic.Identity,
	txID string,
	opts LookupOptions,
) (TxDetails, error) {
	paths := []string{
		c.rpcBaseURL + "/v2/identities/" + string(identity) + "/transfers",
		c.rpcBaseURL + "/v1/identities/" + string(identity) + "/transfers",
	}

	state := lookupNotFound
	var lastErr error

	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		var tx TxDetails
		var found bool
		tx, found, state, lastErr = c.lookupAttempt(ctx, paths, txID, opts, attempt)
		if found {
			return tx, nil
		}

		c.logger.Debug("transaction lookup attempt finished",
			"event", "qubicrpc_lookup_attempt",
			"module", "internal/platform/qubicrpc",
			"layer", "platform",
			"tx_id", txID,
			"attempt", attempt,
			"state", state.String(),
		)

		if attempt < opts.MaxRetries {
			if err := c.clock.Sleep(ctx, opts.RetryDelay); err != nil {
				return TxDetails{}, fmt.Errorf("%w: %s: %v", ErrTransactionNotFinalized, state, err)
			}
		}
	}
	if lastErr != nil {
		return TxDetails{}, fmt.Errorf("%w after %d attempts: %s: %v", ErrTransactionNotFinalized, opts.MaxRetries, state, lastErr)
	}
	return TxDetails{}, fmt.Errorf("%w after %d attempts: %s", ErrTransactionNotFinalized, opts.MaxRetries, state)
}

func (c *Client) lookupAttempt(
	ctx context.Context,
	paths []string,
	txID string,
	opts LookupOptions,
	attempt int,
) (TxDetails, bool, lookupState, error) {
	tick, err := c.GetTick(ctx)
	if err != nil {
		return TxDetails{}, false, lookupLedgerError, err
	}

	start := tick - opts.LookbackTicks*int64(attempt)
	if start < 0 {
		start = 0
	}
	params := map[string]string{
		"startTick": strconv.FormatInt(start, 10),
		"endTick":   strconv.FormatInt(tick+opts.LookaheadTicks, 10),
	}

	state := lookupNotFound
	var lastErr error
	for _, url := range paths {
		var page transfersResponse
		if err := c.getJSON(ctx, url, params, &page); err != nil {
			state, lastErr = lookupLedgerError, err
			continue
		}
		for _, group := range page.groups() {
			for _, entry := range group.Transactions {
				if entry.Transaction.TxID != txID {
					continue
				}
				if !entry.MoneyFlew {
					state = lookupFoundPending
					continue
				}
				return entry.details(), true, state, nil
			}
		}
	}
	return TxDetails{}, false, state, lastErr
}
