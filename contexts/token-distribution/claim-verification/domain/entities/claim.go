package entities

import (
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

type TransactionType string

const (
	TransactionTypeQubic TransactionType = "qubic"
	TransactionTypeQXMR  TransactionType = "qxmr"
	TransactionTypeQDOGE TransactionType = "qdoge"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeQubic, TransactionTypeQXMR, TransactionTypeQDOGE:
		return true
	}
	return false
}

// VerifiedTransaction is one append-only row of the transaction log, unique
// on TxID.
type VerifiedTransaction struct {
	TxID     string
	WalletID qubic.Identity
	From     qubic.Identity
	To       qubic.Identity
	Type     TransactionType
	Amount   int64
	LoggedAt time.Time
}

// TradeIn is an accepted QXMR burn credited with QDOGE, unique on TxID.
type TradeIn struct {
	TxID        string
	WalletID    qubic.Identity
	QxmrShares  int64
	QdogeAmount int64
	Tick        int64
	AcceptedAt  time.Time
}
