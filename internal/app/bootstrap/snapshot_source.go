package bootstrap

import (
	"context"

	allocports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/ports"
	registryports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

// snapshotSource joins the registry's account and balance tables into the
// rows the allocation engine consumes. Wallets without a stored snapshot
// still appear with zero balances so registration-only state is visible.
type snapshotSource struct {
	users     registryports.UserRepository
	snapshots registryports.SnapshotRepository
}

func (s snapshotSource) ListWalletRows(ctx context.Context) ([]allocports.WalletRow, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.snapshots.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	byWallet := make(map[qubic.Identity]int, len(snapshots))
	for i, snapshot := range snapshots {
		byWallet[snapshot.WalletID] = i
	}

	rows := make([]allocports.WalletRow, 0, len(users))
	for _, user := range users {
		row := allocports.WalletRow{
			WalletID:   user.WalletID,
			Roles:      user.Roles,
			Registered: user.Registered,
		}
		if i, ok := byWallet[user.WalletID]; ok {
			snapshot := snapshots[i]
			row.QubicBal = snapshot.QubicBal
			row.QearnBal = snapshot.QearnBal
			row.PortalBal = snapshot.PortalBal
			row.QxmrBal = snapshot.QxmrBal
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var _ allocports.SnapshotSource = snapshotSource{}
