package ports

import (
	"context"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/domain/entities"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/events"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

// TxDetails is the finalized-or-not transfer record the verification chain
// inspects. The lookup adapter owns polling and transport concerns.
type TxDetails struct {
	TxID        string
	Source      string
	Destination string
	Amount      int64
	Tick        int64
	InputType   int64
	InputHex    string
	MoneyFlew   bool
}

type LedgerLookup interface {
	FindTransaction(ctx context.Context, wallet qubic.Identity, txID string) (TxDetails, error)
}

type TransactionLog interface {
	// InsertIfAbsent appends the row unless TxID is already logged.
	InsertIfAbsent(ctx context.Context, tx entities.VerifiedTransaction) (bool, error)
}

type TradeInRepository interface {
	InsertTradeInIfAbsent(ctx context.Context, tradeIn entities.TradeIn) (bool, error)
	SumCredited(ctx context.Context) (int64, error)
	SumCreditedForWallet(ctx context.Context, wallet qubic.Identity) (int64, error)
	CreditedByWallet(ctx context.Context) (map[qubic.Identity]int64, error)
}

// WalletGate is the registry surface claims need. Satisfied by the wallet
// registry's application service.
type WalletGate interface {
	EnsureUserExists(ctx context.Context, wallet qubic.Identity) error
	MarkRegistered(ctx context.Context, wallet qubic.Identity) error
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// VerificationSettings is the typed configuration slice for the constraint
// chain.
type VerificationSettings struct {
	AdminWallet          qubic.Identity
	RegistrationAddress  qubic.Identity
	RegistrationAmountQU int64
	QXContractID         qubic.Identity
	BurnAddress          qubic.Identity
	QXMRIssuer           qubic.Identity
	TradeInRatio         int64
	TradeInPool          int64
}
