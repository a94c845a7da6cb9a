package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	allocationengine "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine"
	allocmemory "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/adapters/memory"
	allocworkers "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/application/workers"
	allocports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/ports"
	claimverification "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification"
	claimledger "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/adapters/ledger"
	claimpostgres "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/adapters/postgres"
	claimworkers "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/application/workers"
	claimports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
	walletregistry "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry"
	registrypostgres "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/adapters/postgres"
	registryports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/config"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/db"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/httpserver"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/messaging"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/qubicrpc"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/events"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	registry     walletregistry.Module
	outboxRelay  claimworkers.OutboxRelay
	refresh      allocworkers.RefreshJob
	bus          *messaging.Bus
	settings     config.Settings
	pollInterval time.Duration
	logger       *slog.Logger
}

// modules holds the fully wired contexts plus the platform pieces they share.
type modules struct {
	registry    walletregistry.Module
	claims      claimverification.Module
	allocations allocationengine.Module
	claimRepo   *claimpostgres.Repository
}

func buildModules(cfg config.Settings, pg *db.Postgres, logger *slog.Logger) (modules, error) {
	migrations := append(registrypostgres.Models(), claimpostgres.Models()...)
	if err := pg.Migrate(migrations...); err != nil {
		return modules{}, err
	}

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	claimRepo := claimpostgres.NewRepository(pg.DB, logger)
	version := allocmemory.NewVersionCounter()

	rpcClient := qubicrpc.NewClient(cfg.RPCBaseURL, cfg.APIBaseURL, nil, logger)

	allocations := allocationengine.NewModule(allocationengine.Dependencies{
		Snapshots: snapshotSource{users: registryRepo, snapshots: registryRepo},
		TradeIns:  claimRepo,
		Version:   version,
		Settings: allocports.AllocationSettings{
			AdminWallet:       cfg.AdminWalletID,
			QubicCap:          cfg.QubicCap,
			CommunityPool:     cfg.CommunityPool(),
			PortalPool:        cfg.PortalPool(),
			PowerPool:         cfg.PowerPool(),
			PortalTotalSupply: cfg.PortalTotalSupply,
		},
		Logger: logger,
	})

	registry := walletregistry.NewModule(walletregistry.Dependencies{
		Users:     registryRepo,
		Snapshots: registryRepo,
		Ledger:    rpcClient,
		Estimator: allocations.Service,
		Clock:     registrypostgres.SystemClock{},
		Version:   version,
		Settings: registryports.RegistrySettings{
			AdminWallet:       cfg.AdminWalletID,
			QubicCap:          cfg.QubicCap,
			QXMRIssuer:        cfg.QXMRIssuerID,
			PortalAssetName:   cfg.PortalAssetName,
			PortalAssetIssuer: cfg.PortalAssetIssuer,
			PowerUsers:        cfg.PowerUsers,
			SummaryTTL:        cfg.SummaryTTL,
		},
		Logger: logger,
	})

	claims := claimverification.NewModule(claimverification.Dependencies{
		Lookup:   claimledger.NewLookup(rpcClient, qubicrpc.DefaultLookupOptions()),
		TxLog:    claimRepo,
		TradeIns: claimRepo,
		Wallets:  registry.Service,
		Outbox:   claimRepo,
		Clock:    claimpostgres.SystemClock{},
		IDGen:    claimpostgres.UUIDGenerator{},
		Settings: claimports.VerificationSettings{
			AdminWallet:          cfg.AdminWalletID,
			RegistrationAddress:  cfg.RegistrationAddress,
			RegistrationAmountQU: cfg.RegistrationAmountQU,
			QXContractID:         cfg.QXContractID,
			BurnAddress:          cfg.BurnAddress,
			QXMRIssuer:           cfg.QXMRIssuerID,
			TradeInRatio:         cfg.TradeInRatioQDOGEPerQXMR,
			TradeInPool:          cfg.TradeInPool(),
		},
		Logger: logger,
	})

	return modules{
		registry:    registry,
		claims:      claims,
		allocations: allocations,
		claimRepo:   claimRepo,
	}, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	mods, err := buildModules(cfg, pg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(mods.registry, mods.claims, mods.allocations, cfg, logger)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	mods, err := buildModules(cfg, pg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	return &WorkerApp{
		postgres:     pg,
		registry:     mods.registry,
		outboxRelay:  claimverification.NewOutboxRelay(mods.claimRepo, bus, claimpostgres.SystemClock{}, logger),
		refresh:      mods.allocations.NewRefreshJob(mods.registry.Service, logger),
		bus:          bus,
		settings:     cfg,
		pollInterval: 5 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	// Seed the configured power-user snapshot before the first allocation
	// pass so power weights never start from an empty table.
	if len(w.settings.PowerUsers) > 0 {
		report, err := w.registry.Service.ImportPowerSnapshot(ctx, w.settings.PowerUsers, w.settings.PowerSnapshotSyncMode)
		if err != nil {
			return err
		}
		w.logger.Info("power snapshot seeded",
			"event", "bootstrap_power_snapshot_seeded",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"mode", report.Mode,
			"imported", report.Upserted,
			"cleared", report.Cleared,
		)
	}

	if err := w.bus.Subscribe(ctx, events.TypeTradeInAccepted, "airdrop-worker-cg", w.handleBusEvent); err != nil {
		return err
	}
	if err := w.bus.Subscribe(ctx, events.TypeWalletRegistered, "airdrop-worker-cg", w.handleBusEvent); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.refresh.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) handleBusEvent(_ context.Context, event events.Envelope) error {
	w.logger.Info("domain event observed",
		"event", "bootstrap_domain_event",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"wallet_id", event.WalletID,
	)
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}
