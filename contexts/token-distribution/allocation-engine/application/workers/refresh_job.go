package workers

import (
	"context"
	"log/slog"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/application"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/ports"
)

// RefreshJob recomputes and persists the airdrop estimate for every known
// wallet, so stored estimates converge even for wallets nobody queries.
type RefreshJob struct {
	Engine application.Service
	Writer ports.AirdropWriter
	Logger *slog.Logger
}

func (j RefreshJob) RunOnce(ctx context.Context) error {
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allocations, err := j.Engine.ComputeAllocations(ctx)
	if err != nil {
		logger.Error("allocation refresh failed",
			"event", "allocation_refresh_failed",
			"module", "token-distribution/allocation-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	tradeins, err := j.Engine.TradeIns.CreditedByWallet(ctx)
	if err != nil {
		return err
	}
	rows, err := j.Engine.Snapshots.ListWalletRows(ctx)
	if err != nil {
		return err
	}

	updated := 0
	for _, row := range rows {
		if j.Engine.Settings.AdminWallet != "" && row.WalletID == j.Engine.Settings.AdminWallet {
			continue
		}
		var total int64
		if row.Registered {
			total = allocations.Community[row.WalletID] +
				allocations.Portal[row.WalletID] +
				allocations.Power[row.WalletID] +
				tradeins[row.WalletID]
		}
		if err := j.Writer.SetAirdropAmount(ctx, row.WalletID, total); err != nil {
			return err
		}
		updated++
	}

	logger.Debug("allocation refresh cycle succeeded",
		"event", "allocation_refresh_succeeded",
		"module", "token-distribution/allocation-engine",
		"layer", "worker",
		"wallets", updated,
	)
	return nil
}
