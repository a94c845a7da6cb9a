package ports

import (
	"context"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
)

// WalletRow joins a wallet's account state with its latest balance snapshot.
type WalletRow struct {
	WalletID   qubic.Identity
	Roles      roles.Set
	Registered bool
	QubicBal   int64
	QearnBal   int64
	PortalBal  int64
	QxmrBal    int64
}

type SnapshotSource interface {
	ListWalletRows(ctx context.Context) ([]WalletRow, error)
}

// VersionSource exposes the registry's monotonic snapshot version. The cache
// uses it to detect writes racing a recomputation.
type VersionSource interface {
	Current() uint64
}

// TradeInLedger reports accepted trade-in credits. Implemented by the claim
// verification repository.
type TradeInLedger interface {
	SumCredited(ctx context.Context) (int64, error)
	SumCreditedForWallet(ctx context.Context, wallet qubic.Identity) (int64, error)
	CreditedByWallet(ctx context.Context) (map[qubic.Identity]int64, error)
}

// AirdropWriter persists a wallet's recomputed estimate. Implemented by the
// wallet registry.
type AirdropWriter interface {
	SetAirdropAmount(ctx context.Context, wallet qubic.Identity, amount int64) error
}

// AllocationSettings is the pool configuration slice the engine consumes.
type AllocationSettings struct {
	AdminWallet       qubic.Identity
	QubicCap          int64
	CommunityPool     int64
	PortalPool        int64
	PowerPool         int64
	PortalTotalSupply int64
}
