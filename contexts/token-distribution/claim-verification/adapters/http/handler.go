package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/application"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/domain/entities"
	httptransport "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/transport/http"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ConfirmRegistrationHandler(
	ctx context.Context,
	req httptransport.ConfirmTxRequest,
) (httptransport.ConfirmRegistrationResponse, error) {
	wallet, err := qubic.NormalizeIdentity(req.WalletID)
	if err != nil {
		return httptransport.ConfirmRegistrationResponse{}, err
	}
	txID := strings.TrimSpace(req.TxID)
	if err := h.Service.ConfirmRegistration(ctx, wallet, txID); err != nil {
		return httptransport.ConfirmRegistrationResponse{}, err
	}
	return httptransport.ConfirmRegistrationResponse{
		Success:    true,
		WalletID:   string(wallet),
		TxID:       txID,
		Registered: true,
	}, nil
}

func (h Handler) ConfirmTradeInHandler(
	ctx context.Context,
	req httptransport.ConfirmTxRequest,
) (httptransport.ConfirmTradeInResponse, error) {
	wallet, err := qubic.NormalizeIdentity(req.WalletID)
	if err != nil {
		return httptransport.ConfirmTradeInResponse{}, err
	}
	tradeIn, err := h.Service.ConfirmTradeIn(ctx, wallet, strings.TrimSpace(req.TxID))
	if err != nil {
		return httptransport.ConfirmTradeInResponse{}, err
	}
	return httptransport.ConfirmTradeInResponse{
		Success:     true,
		WalletID:    string(tradeIn.WalletID),
		TxID:        tradeIn.TxID,
		QxmrAmount:  tradeIn.QxmrShares,
		QdogeAmount: tradeIn.QdogeAmount,
		Tick:        tradeIn.Tick,
	}, nil
}

func (h Handler) LogTransactionHandler(
	ctx context.Context,
	req httptransport.TxLogRequest,
) (httptransport.TxLogResponse, error) {
	wallet, err := qubic.NormalizeIdentity(req.WalletID)
	if err != nil {
		return httptransport.TxLogResponse{}, err
	}
	tx := entities.VerifiedTransaction{
		TxID:     strings.TrimSpace(req.TxID),
		WalletID: wallet,
		From:     qubic.Identity(strings.TrimSpace(req.From)),
		To:       qubic.Identity(strings.TrimSpace(req.To)),
		Type:     entities.TransactionType(strings.TrimSpace(req.TxType)),
		Amount:   req.Amount,
	}
	if err := h.Service.LogTransaction(ctx, tx); err != nil {
		return httptransport.TxLogResponse{}, err
	}
	return httptransport.TxLogResponse{Success: true, TxID: tx.TxID}, nil
}
