package httpadapter

import (
	"context"
	"log/slog"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/application"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/entities"
	httptransport "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/transport/http"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) WalletSummaryHandler(
	ctx context.Context,
	walletID string,
	fresh bool,
) (httptransport.WalletSummaryResponse, error) {
	wallet, err := qubic.NormalizeIdentity(walletID)
	if err != nil {
		return httptransport.WalletSummaryResponse{}, err
	}
	summary, err := h.Service.WalletSummary(ctx, wallet, fresh)
	if err != nil {
		return httptransport.WalletSummaryResponse{}, err
	}

	roleNames := make([]string, 0, len(summary.Roles))
	for _, role := range summary.Roles {
		roleNames = append(roleNames, string(role))
	}
	resp := httptransport.WalletSummaryResponse{
		WalletID:   string(summary.WalletID),
		Registered: summary.Registered,
		Role:       summary.Roles.Format(),
		Roles:      roleNames,
		Balances: httptransport.BalancesDTO{
			QubicBal:       summary.Balances.QubicBal,
			QubicBalCapped: summary.Balances.QubicBalCapped,
			QearnBal:       summary.Balances.QearnBal,
			PortalBal:      summary.Balances.PortalBal,
			QxmrBal:        summary.Balances.QxmrBal,
			QubicCap:       summary.Balances.QubicCap,
		},
		Airdrop: httptransport.AirdropDTO{
			Estimated: summary.EstimatedAirdrop,
			Breakdown: summary.Breakdown,
		},
		Stale: summary.Stale,
	}
	return resp, nil
}

func (h Handler) ImportPortalHandler(
	ctx context.Context,
	req httptransport.ImportSnapshotRequest,
) (httptransport.ImportSnapshotResponse, error) {
	return h.runImport(ctx, req, h.Service.ImportPortalSnapshot)
}

func (h Handler) ImportPowerHandler(
	ctx context.Context,
	req httptransport.ImportSnapshotRequest,
) (httptransport.ImportSnapshotResponse, error) {
	return h.runImport(ctx, req, h.Service.ImportPowerSnapshot)
}

func (h Handler) runImport(
	ctx context.Context,
	req httptransport.ImportSnapshotRequest,
	apply func(context.Context, map[qubic.Identity]int64, string) (entities.SnapshotSyncReport, error),
) (httptransport.ImportSnapshotResponse, error) {
	// Non-positive rows are dropped, matching the legacy import endpoints.
	rows := make(map[qubic.Identity]int64, len(req.Rows))
	for _, row := range req.Rows {
		if row.Amount <= 0 {
			continue
		}
		wallet, err := qubic.NormalizeIdentity(row.WalletID)
		if err != nil {
			return httptransport.ImportSnapshotResponse{}, err
		}
		rows[wallet] = row.Amount
	}
	mode := req.Mode
	if mode == "" {
		mode = application.SyncModeMerge
	}
	report, err := apply(ctx, rows, mode)
	if err != nil {
		return httptransport.ImportSnapshotResponse{}, err
	}
	return httptransport.ImportSnapshotResponse{
		Mode:     report.Mode,
		Cleared:  report.Cleared,
		Imported: report.Upserted,
	}, nil
}
