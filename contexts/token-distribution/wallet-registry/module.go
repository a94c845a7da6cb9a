package walletregistry

import (
	"log/slog"
	"time"

	httpadapter "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/adapters/http"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/adapters/memory"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/application"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Users     ports.UserRepository
	Snapshots ports.SnapshotRepository
	Ledger    ports.LedgerReader
	Estimator ports.AirdropEstimator
	Clock     ports.Clock
	Version   ports.VersionBumper
	Settings  ports.RegistrySettings
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Settings.SummaryTTL <= 0 {
		deps.Settings.SummaryTTL = 30 * time.Second
	}
	service := application.Service{
		Users:     deps.Users,
		Snapshots: deps.Snapshots,
		Ledger:    deps.Ledger,
		Estimator: deps.Estimator,
		Clock:     deps.Clock,
		Version:   deps.Version,
		Settings:  deps.Settings,
		Logger:    deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

// NewInMemoryModule wires the module onto the in-memory store, used by tests
// and local runs without postgres.
func NewInMemoryModule(deps Dependencies, logger *slog.Logger) Module {
	store := memory.NewStore()
	deps.Users = store
	deps.Snapshots = store
	if deps.Clock == nil {
		deps.Clock = store
	}
	deps.Logger = logger
	module := NewModule(deps)
	module.Store = store
	return module
}
