package claimverification

import (
	"log/slog"

	httpadapter "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/adapters/http"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/adapters/memory"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/application"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/application/workers"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
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

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Lookup:   deps.Lookup,
		TxLog:    deps.TxLog,
		TradeIns: deps.TradeIns,
		Wallets:  deps.Wallets,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Settings: deps.Settings,
		Logger:   deps.Logger,
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
	deps.TxLog = store
	deps.TradeIns = store
	deps.Outbox = store
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.IDGen == nil {
		deps.IDGen = store
	}
	deps.Logger = logger
	module := NewModule(deps)
	module.Store = store
	return module
}

// NewOutboxRelay builds the worker that drains pending claim events onto the
// bus.
func NewOutboxRelay(outbox ports.OutboxRepository, publisher ports.EventPublisher, clock ports.Clock, logger *slog.Logger) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:    outbox,
		Publisher: publisher,
		Clock:     clock,
		Logger:    logger,
	}
}
