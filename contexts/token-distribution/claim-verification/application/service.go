package application

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/domain/entities"
	domainerrors "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/domain/errors"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/events"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

// QX TransferShareOwnershipAndPossession input type.
const qxTransferShareInputType = 2

type Service struct {
	Lookup   ports.LedgerLookup
	TxLog    ports.TransactionLog
	TradeIns ports.TradeInRepository
	Wallets  ports.WalletGate
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Settings ports.VerificationSettings
	Logger   *slog.Logger
}

// ConfirmRegistration verifies that txID is a finalized transfer of exactly
// the registration fee from the wallet to the registration address, then
// marks the wallet registered and logs the transaction.
func (s Service) ConfirmRegistration(ctx context.Context, wallet qubic.Identity, txID string) error {
	txID = strings.TrimSpace(txID)
	if s.isAdmin(wallet) {
		return domainerrors.ErrAdminExcluded
	}
	if txID == "" {
		return domainerrors.ErrTxIDRequired
	}

	tx, err := s.Lookup.FindTransaction(ctx, wallet, txID)
	if err != nil {
		return err
	}
	if !tx.MoneyFlew {
		return domainerrors.ErrMoneyDidNotMove
	}
	if !identityEquals(tx.Source, wallet) {
		return domainerrors.ErrSourceMismatch
	}
	if !identityEquals(tx.Destination, s.Settings.RegistrationAddress) {
		return domainerrors.ErrDestinationMismatch
	}
	if tx.Amount != s.Settings.RegistrationAmountQU {
		return domainerrors.ErrWrongRegistrationAmount
	}

	if err := s.Wallets.MarkRegistered(ctx, wallet); err != nil {
		return err
	}
	if _, err := s.TxLog.InsertIfAbsent(ctx, entities.VerifiedTransaction{
		TxID:     txID,
		WalletID: wallet,
		From:     wallet,
		To:       s.Settings.RegistrationAddress,
		Type:     entities.TransactionTypeQubic,
		Amount:   tx.Amount,
		LoggedAt: s.now(),
	}); err != nil {
		return err
	}
	if err := s.emit(ctx, events.TypeWalletRegistered, wallet, txID, map[string]any{
		"amount_qu": tx.Amount,
		"tick":      tx.Tick,
	}); err != nil {
		return err
	}

	s.logger().Info("registration confirmed",
		"event", "claim_registration_confirmed",
		"module", "token-distribution/claim-verification",
		"layer", "application",
		"wallet_id", string(wallet),
		"tx_id", txID,
	)
	return nil
}

// ConfirmTradeIn verifies a QXMR burn through the QX contract and credits
// the wallet with shares/ratio QDOGE. The trade-in pool budget is enforced
// here at write time.
func (s Service) ConfirmTradeIn(ctx context.Context, wallet qubic.Identity, txID string) (entities.TradeIn, error) {
	txID = strings.TrimSpace(txID)
	if s.isAdmin(wallet) {
		return entities.TradeIn{}, domainerrors.ErrAdminExcluded
	}
	if txID == "" {
		return entities.TradeIn{}, domainerrors.ErrTxIDRequired
	}

	tx, err := s.Lookup.FindTransaction(ctx, wallet, txID)
	if err != nil {
		return entities.TradeIn{}, err
	}
	if !tx.MoneyFlew {
		return entities.TradeIn{}, domainerrors.ErrMoneyDidNotMove
	}
	if !identityEquals(tx.Source, wallet) {
		return entities.TradeIn{}, domainerrors.ErrSourceMismatch
	}
	if !identityEquals(tx.Destination, s.Settings.QXContractID) {
		return entities.TradeIn{}, domainerrors.ErrNotQXContract
	}
	if tx.InputType != qxTransferShareInputType {
		return entities.TradeIn{}, domainerrors.ErrWrongInputType
	}

	raw, err := hex.DecodeString(strings.TrimSpace(tx.InputHex))
	if err != nil {
		return entities.TradeIn{}, domainerrors.ErrPayloadUnparseable
	}
	payload, err := qubic.DecodeTradeInPayload(raw)
	if err != nil {
		return entities.TradeIn{}, err
	}

	expectedIssuer, err := s.Settings.QXMRIssuer.PublicKey()
	if err != nil {
		return entities.TradeIn{}, err
	}
	expectedBurn, err := s.Settings.BurnAddress.PublicKey()
	if err != nil {
		return entities.TradeIn{}, err
	}
	if payload.IssuerPublicKey != expectedIssuer {
		return entities.TradeIn{}, domainerrors.ErrIssuerMismatch
	}
	if payload.NewOwnerPublicKey != expectedBurn {
		return entities.TradeIn{}, domainerrors.ErrNewOwnerMismatch
	}
	qxmrValue, err := qubic.AssetNameValue("QXMR")
	if err != nil {
		return entities.TradeIn{}, err
	}
	if payload.AssetValue != qxmrValue {
		return entities.TradeIn{}, domainerrors.ErrAssetMismatch
	}
	if payload.Shares <= 0 {
		return entities.TradeIn{}, domainerrors.ErrNonPositiveShares
	}

	qdogeAmount := payload.Shares / s.Settings.TradeInRatio

	credited, err := s.TradeIns.SumCredited(ctx)
	if err != nil {
		return entities.TradeIn{}, err
	}
	if credited+qdogeAmount > s.Settings.TradeInPool {
		return entities.TradeIn{}, domainerrors.ErrTradeInPoolExhausted
	}

	if err := s.Wallets.EnsureUserExists(ctx, wallet); err != nil {
		return entities.TradeIn{}, err
	}

	tradeIn := entities.TradeIn{
		TxID:        txID,
		WalletID:    wallet,
		QxmrShares:  payload.Shares,
		QdogeAmount: qdogeAmount,
		Tick:        tx.Tick,
		AcceptedAt:  s.now(),
	}
	inserted, err := s.TradeIns.InsertTradeInIfAbsent(ctx, tradeIn)
	if err != nil {
		return entities.TradeIn{}, err
	}
	if _, err := s.TxLog.InsertIfAbsent(ctx, entities.VerifiedTransaction{
		TxID:     txID,
		WalletID: wallet,
		From:     wallet,
		To:       s.Settings.BurnAddress,
		Type:     entities.TransactionTypeQXMR,
		Amount:   payload.Shares,
		LoggedAt: tradeIn.AcceptedAt,
	}); err != nil {
		return entities.TradeIn{}, err
	}
	if inserted {
		if err := s.emit(ctx, events.TypeTradeInAccepted, wallet, txID, map[string]any{
			"qxmr_shares":  payload.Shares,
			"qdoge_amount": qdogeAmount,
			"tick":         tx.Tick,
		}); err != nil {
			return entities.TradeIn{}, err
		}
	}

	s.logger().Info("trade-in confirmed",
		"event", "claim_tradein_confirmed",
		"module", "token-distribution/claim-verification",
		"layer", "application",
		"wallet_id", string(wallet),
		"tx_id", txID,
		"qxmr_shares", payload.Shares,
		"qdoge_amount", qdogeAmount,
	)
	return tradeIn, nil
}

// LogTransaction is the admin-only manual log entry used by the payout UI.
func (s Service) LogTransaction(ctx context.Context, tx entities.VerifiedTransaction) error {
	tx.TxID = strings.TrimSpace(tx.TxID)
	if tx.TxID == "" {
		return domainerrors.ErrTxIDRequired
	}
	tx.Type = entities.TransactionType(strings.ToLower(strings.TrimSpace(string(tx.Type))))
	if !tx.Type.Valid() {
		return domainerrors.ErrInvalidTransactionType
	}
	if err := s.Wallets.EnsureUserExists(ctx, tx.WalletID); err != nil {
		return err
	}
	tx.LoggedAt = s.now()
	_, err := s.TxLog.InsertIfAbsent(ctx, tx)
	return err
}

func (s Service) emit(ctx context.Context, eventType string, wallet qubic.Identity, txID string, payload map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	eventID := ""
	if s.IDGen != nil {
		id, err := s.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		eventID = id
	}
	return s.Outbox.AppendOutbox(ctx, events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "token-distribution/claim-verification",
		OccurredAtUTC:  s.now(),
		WalletID:       string(wallet),
		TxID:           txID,
		PayloadVersion: 1,
		Payload:        payload,
	})
}

func (s Service) isAdmin(wallet qubic.Identity) bool {
	return s.Settings.AdminWallet != "" && wallet == s.Settings.AdminWallet
}

func identityEquals(raw string, expected qubic.Identity) bool {
	return strings.ToUpper(strings.TrimSpace(raw)) == string(expected)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
