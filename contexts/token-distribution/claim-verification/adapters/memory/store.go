package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/domain/entities"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/events"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

var _ ports.TransactionLog = (*Store)(nil)
var _ ports.TradeInRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)

type outboxRow struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory claim store used by tests and local runs.
type Store struct {
	mu       sync.Mutex
	txLog    map[string]entities.VerifiedTransaction
	tradeIns map[string]entities.TradeIn
	outbox   []outboxRow

	NowFunc func() time.Time
}

func NewStore() *Store {
	return &Store{
		txLog:    make(map[string]entities.VerifiedTransaction),
		tradeIns: make(map[string]entities.TradeIn),
		NowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Now() time.Time {
	return s.NowFunc()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) InsertIfAbsent(_ context.Context, tx entities.VerifiedTransaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.txLog[tx.TxID]; exists {
		return false, nil
	}
	s.txLog[tx.TxID] = tx
	return true, nil
}

func (s *Store) GetLogged(_ context.Context, txID string) (entities.VerifiedTransaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txLog[txID]
	return tx, ok, nil
}

// InsertTradeInIfAbsent keeps trade-ins unique on tx id.
func (s *Store) InsertTradeInIfAbsent(_ context.Context, tradeIn entities.TradeIn) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tradeIns[tradeIn.TxID]; exists {
		return false, nil
	}
	s.tradeIns[tradeIn.TxID] = tradeIn
	return true, nil
}

func (s *Store) SumCredited(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, tradeIn := range s.tradeIns {
		total += tradeIn.QdogeAmount
	}
	return total, nil
}

func (s *Store) SumCreditedForWallet(_ context.Context, wallet qubic.Identity) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, tradeIn := range s.tradeIns {
		if tradeIn.WalletID == wallet {
			total += tradeIn.QdogeAmount
		}
	}
	return total, nil
}

func (s *Store) CreditedByWallet(_ context.Context) (map[qubic.Identity]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[qubic.Identity]int64)
	for _, tradeIn := range s.tradeIns {
		out[tradeIn.WalletID] += tradeIn.QdogeAmount
	}
	return out, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, outboxRow{message: ports.OutboxMessage{
		OutboxID:  uuid.NewString(),
		EventType: envelope.EventType,
		Payload:   payload,
		CreatedAt: s.NowFunc(),
	}})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		out = append(out, row.message)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			return nil
		}
	}
	return nil
}
