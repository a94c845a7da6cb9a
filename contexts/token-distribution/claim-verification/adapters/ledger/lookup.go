// Package ledger adapts the shared Qubic RPC client to the claim
// verification lookup port.
package ledger

import (
	"context"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/qubicrpc"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

type Lookup struct {
	client  *qubicrpc.Client
	options qubicrpc.LookupOptions
}

func NewLookup(client *qubicrpc.Client, options qubicrpc.LookupOptions) *Lookup {
	return &Lookup{client: client, options: options}
}

func (l *Lookup) FindTransaction(ctx context.Context, wallet qubic.Identity, txID string) (ports.TxDetails, error) {
	details, err := l.client.GetTransactionDetails(ctx, wallet, txID, l.options)
	if err != nil {
		return ports.TxDetails{}, err
	}
	return ports.TxDetails{
		TxID:        details.TxID,
		Source:      details.SourceID,
		Destination: details.DestID,
		Amount:      details.Amount,
		Tick:        details.TickNumber,
		InputType:   details.InputType,
		InputHex:    details.InputHex,
		MoneyFlew:   details.MoneyFlew,
	}, nil
}

var _ ports.LedgerLookup = (*Lookup)(nil)
