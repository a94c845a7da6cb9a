package entities

import (
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
)

type User struct {
	WalletID   qubic.Identity
	Roles      roles.Set
	Registered bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// WalletSnapshot is the latest observed balance row for one wallet. AirdropAmt
// is derived state and never participates in change detection.
type WalletSnapshot struct {
	WalletID   qubic.Identity
	QubicBal   int64
	QearnBal   int64
	PortalBal  int64
	QxmrBal    int64
	AirdropAmt int64
	UpdatedAt  time.Time
}

type Balances struct {
	QubicBal       int64
	QubicBalCapped int64
	QearnBal       int64
	PortalBal      int64
	QxmrBal        int64
	QubicCap       int64
}

type WalletSummary struct {
	WalletID         qubic.Identity
	Registered       bool
	Roles            roles.Set
	Balances         Balances
	EstimatedAirdrop int64
	// Breakdown is per-pool (community/portal/power/tradein). Nil when the
	// summary was served from a recent snapshot without recomputation.
	Breakdown map[string]int64
	FromCache bool
	// Stale is set when at least one live balance fetch failed and the stored
	// snapshot value was used instead.
	Stale bool
}

// SnapshotSyncReport summarizes one portal or power import run.
type SnapshotSyncReport struct {
	Mode     string
	Cleared  int
	Upserted int
}
