package ports

import (
	"context"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/entities"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
)

type UserRepository interface {
	GetUser(ctx context.Context, wallet qubic.Identity) (entities.User, bool, error)
	CreateUser(ctx context.Context, user entities.User) error
	UpdateRoles(ctx context.Context, wallet qubic.Identity, set roles.Set, at time.Time) error
	SetRegistered(ctx context.Context, wallet qubic.Identity, registered bool, at time.Time) error
	ListUsers(ctx context.Context) ([]entities.User, error)
}

type SnapshotRepository interface {
	GetSnapshot(ctx context.Context, wallet qubic.Identity) (entities.WalletSnapshot, bool, error)
	// UpsertSnapshot writes the balance fields and reports whether any of them
	// actually changed. AirdropAmt on the input is ignored.
	UpsertSnapshot(ctx context.Context, snapshot entities.WalletSnapshot) (bool, error)
	SetAirdropAmount(ctx context.Context, wallet qubic.Identity, amount int64, at time.Time) (bool, error)
	ListSnapshots(ctx context.Context) ([]entities.WalletSnapshot, error)
}

// LedgerReader is the read-only ledger surface the summary path needs.
// Satisfied by the platform RPC client.
type LedgerReader interface {
	GetBalance(ctx context.Context, identity qubic.Identity) (int64, error)
	OwnedAssetUnits(
		ctx context.Context,
		identity qubic.Identity,
		assetName string,
		issuer qubic.Identity,
		managingContractIndex int64,
	) (int64, error)
}

// AirdropEstimator reports the current per-pool allocation entries for one
// wallet. Implemented by the allocation engine.
type AirdropEstimator interface {
	BreakdownForWallet(ctx context.Context, wallet qubic.Identity) (map[string]int64, error)
}

type Clock interface {
	Now() time.Time
}

// VersionBumper marks the snapshot state dirty. Bumped only on changes that
// can affect allocation weights.
type VersionBumper interface {
	Bump() uint64
}

// RegistrySettings is the typed configuration slice this module consumes.
// Bootstrap maps process configuration onto it.
type RegistrySettings struct {
	AdminWallet       qubic.Identity
	QubicCap          int64
	QXMRIssuer        qubic.Identity
	PortalAssetName   string
	PortalAssetIssuer qubic.Identity
	PowerUsers        map[qubic.Identity]int64
	SummaryTTL        time.Duration
}
