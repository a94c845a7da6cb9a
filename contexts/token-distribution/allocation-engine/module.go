package allocationengine

import (
	"log/slog"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/application"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/application/workers"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/ports"
)

type Module struct {
	Service application.Service
	Cache   *application.Cache
}

type Dependencies struct {
	Snapshots ports.SnapshotSource
	TradeIns  ports.TradeInLedger
	Version   ports.VersionSource
	Settings  ports.AllocationSettings
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	cache := application.NewCache()
	return Module{
		Service: application.Service{
			Snapshots: deps.Snapshots,
			TradeIns:  deps.TradeIns,
			Version:   deps.Version,
			Settings:  deps.Settings,
			Cache:     cache,
			Logger:    deps.Logger,
		},
		Cache: cache,
	}
}

// NewRefreshJob pairs the engine with the registry's estimate writer for the
// worker loop.
func (m Module) NewRefreshJob(writer ports.AirdropWriter, logger *slog.Logger) workers.RefreshJob {
	return workers.RefreshJob{Engine: m.Service, Writer: writer, Logger: logger}
}
