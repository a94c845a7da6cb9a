package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/entities"
	domainerrors "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/errors"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
)

const (
	SyncModeReplace = "replace"
	SyncModeMerge   = "merge"

	// QX is the managing contract for QEARN deposits on the public assets API.
	qxManagingContractIndex = 1
	qearnAssetName          = "QEARN"
	qxmrAssetName           = "QXMR"
)

type Service struct {
	Users     ports.UserRepository
	Snapshots ports.SnapshotRepository
	Ledger    ports.LedgerReader
	Estimator ports.AirdropEstimator
	Clock     ports.Clock
	Version   ports.VersionBumper
	Settings  ports.RegistrySettings
	Logger    *slog.Logger
}

// EnsureUser lazily creates the wallet's account row. The admin wallet is
// pinned to role=admin and registered; an existing admin row is never
// downgraded even if a stale role value is on disk.
func (s Service) EnsureUser(ctx context.Context, wallet qubic.Identity) (entities.User, error) {
	now := s.now()
	isAdmin := s.Settings.AdminWallet != "" && wallet == s.Settings.AdminWallet

	user, found, err := s.Users.GetUser(ctx, wallet)
	if err != nil {
		return entities.User{}, err
	}
	if !found {
		user = entities.User{
			WalletID:   wallet,
			Roles:      roles.Set{roles.RoleCommunity},
			Registered: false,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if isAdmin {
			user.Roles = roles.Set{roles.RoleAdmin}
			user.Registered = true
		}
		if err := s.Users.CreateUser(ctx, user); err != nil {
			return entities.User{}, err
		}
		return user, nil
	}

	if isAdmin && (!user.Roles.Contains(roles.RoleAdmin) || !user.Registered) {
		user.Roles = roles.Set{roles.RoleAdmin}
		user.Registered = true
		user.UpdatedAt = now
		if err := s.Users.UpdateRoles(ctx, wallet, user.Roles, now); err != nil {
			return entities.User{}, err
		}
		if err := s.Users.SetRegistered(ctx, wallet, true, now); err != nil {
			return entities.User{}, err
		}
	}
	return user, nil
}

// EnsureUserExists is EnsureUser for callers that only need the side effect.
func (s Service) EnsureUserExists(ctx context.Context, wallet qubic.Identity) error {
	_, err := s.EnsureUser(ctx, wallet)
	return err
}

func (s Service) IsRegistered(ctx context.Context, wallet qubic.Identity) (bool, error) {
	user, found, err := s.Users.GetUser(ctx, wallet)
	if err != nil {
		return false, err
	}
	return found && user.Registered, nil
}

// MarkRegistered flips the wallet to registered. Registration changes the
// community pool's eligible set, so the snapshot version is bumped.
func (s Service) MarkRegistered(ctx context.Context, wallet qubic.Identity) error {
	user, err := s.EnsureUser(ctx, wallet)
	if err != nil {
		return err
	}
	if user.Registered {
		return domainerrors.ErrAlreadyRegistered
	}
	if err := s.Users.SetRegistered(ctx, wallet, true, s.now()); err != nil {
		return err
	}
	s.bump()

	s.logger().Info("wallet registered",
		"event", "registry_wallet_registered",
		"module", "token-distribution/wallet-registry",
		"layer", "application",
		"wallet_id", string(wallet),
	)
	return nil
}

// UpsertSnapshot persists the balance fields and bumps the snapshot version
// only when a field actually changed, so idempotent re-writes never
// invalidate the allocation cache.
func (s Service) UpsertSnapshot(ctx context.Context, snapshot entities.WalletSnapshot) (bool, error) {
	snapshot.UpdatedAt = s.now()
	mutated, err := s.Snapshots.UpsertSnapshot(ctx, snapshot)
	if err != nil {
		return false, err
	}
	if mutated {
		s.bump()
	}
	return mutated, nil
}

func (s Service) SetAirdropAmount(ctx context.Context, wallet qubic.Identity, amount int64) error {
	// Derived state: no version bump, a changed estimate is not a weight change.
	_, err := s.Snapshots.SetAirdropAmount(ctx, wallet, amount, s.now())
	return err
}

// WalletSummary returns the wallet's registration status, roles, balances and
// estimated airdrop. Snapshots younger than the TTL short-circuit the ledger
// round trip unless fresh is forced. Live fetches run concurrently; a failed
// fetch falls back to the stored snapshot value instead of failing the read.
func (s Service) WalletSummary(ctx context.Context, wallet qubic.Identity, fresh bool) (entities.WalletSummary, error) {
	user, err := s.EnsureUser(ctx, wallet)
	if err != nil {
		return entities.WalletSummary{}, err
	}

	stored, haveStored, err := s.Snapshots.GetSnapshot(ctx, wallet)
	if err != nil {
		return entities.WalletSummary{}, err
	}

	if !fresh && haveStored && s.now().Sub(stored.UpdatedAt) <= s.Settings.SummaryTTL {
		return entities.WalletSummary{
			WalletID:         wallet,
			Registered:       user.Registered,
			Roles:            user.Roles,
			Balances:         s.balancesFrom(stored),
			EstimatedAirdrop: stored.AirdropAmt,
			FromCache:        true,
		}, nil
	}

	live, stale := s.fetchBalances(ctx, wallet, stored)

	resolved := roles.Resolve(wallet, s.Settings.AdminWallet, s.Settings.PowerUsers, live.PortalBal)
	if resolved.Format() != user.Roles.Format() {
		if err := s.Users.UpdateRoles(ctx, wallet, resolved, s.now()); err != nil {
			return entities.WalletSummary{}, err
		}
		user.Roles = resolved
		s.bump()
	}

	if _, err := s.UpsertSnapshot(ctx, live); err != nil {
		return entities.WalletSummary{}, err
	}

	var estimated int64
	var breakdown map[string]int64
	if user.Registered {
		if breakdown, err = s.Estimator.BreakdownForWallet(ctx, wallet); err != nil {
			return entities.WalletSummary{}, err
		}
		for _, amount := range breakdown {
			estimated += amount
		}
	} else {
		breakdown = map[string]int64{}
	}
	if err := s.SetAirdropAmount(ctx, wallet, estimated); err != nil {
		return entities.WalletSummary{}, err
	}

	return entities.WalletSummary{
		WalletID:         wallet,
		Registered:       user.Registered,
		Roles:            user.Roles,
		Balances:         s.balancesFrom(live),
		EstimatedAirdrop: estimated,
		Breakdown:        breakdown,
		Stale:            stale,
	}, nil
}

// fetchBalances queries the four balances concurrently. Each failed call
// keeps the previously stored value for that field.
func (s Service) fetchBalances(
	ctx context.Context,
	wallet qubic.Identity,
	stored entities.WalletSnapshot,
) (entities.WalletSnapshot, bool) {
	type result struct {
		value int64
		err   error
	}
	var qubicRes, qearnRes, portalRes, qxmrRes result

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		qubicRes.value, qubicRes.err = s.Ledger.GetBalance(ctx, wallet)
	}()
	go func() {
		defer wg.Done()
		qearnRes.value, qearnRes.err = s.Ledger.OwnedAssetUnits(ctx, wallet, qearnAssetName, "", qxManagingContractIndex)
	}()
	go func() {
		defer wg.Done()
		portalRes.value, portalRes.err = s.Ledger.OwnedAssetUnits(ctx, wallet, s.Settings.PortalAssetName, s.Settings.PortalAssetIssuer, -1)
	}()
	go func() {
		defer wg.Done()
		qxmrRes.value, qxmrRes.err = s.Ledger.OwnedAssetUnits(ctx, wallet, qxmrAssetName, s.Settings.QXMRIssuer, -1)
	}()
	wg.Wait()

	snapshot := entities.WalletSnapshot{WalletID: wallet}
	stale := false
	pick := func(res result, fallback int64, field string) int64 {
		if res.err == nil {
			if res.value < 0 {
				return 0
			}
			return res.value
		}
		stale = true
		s.logger().Warn("balance fetch failed, using stored value",
			"event", "registry_balance_fetch_failed",
			"module", "token-distribution/wallet-registry",
			"layer", "application",
			"wallet_id", string(wallet),
			"field", field,
			"error", res.err.Error(),
		)
		return fallback
	}
	snapshot.QubicBal = pick(qubicRes, stored.QubicBal, "qubic_bal")
	snapshot.QearnBal = pick(qearnRes, stored.QearnBal, "qearn_bal")
	snapshot.PortalBal = pick(portalRes, stored.PortalBal, "portal_bal")
	snapshot.QxmrBal = pick(qxmrRes, stored.QxmrBal, "qxmr_bal")
	return snapshot, stale
}

func (s Service) balancesFrom(snapshot entities.WalletSnapshot) entities.Balances {
	capped := snapshot.QubicBal
	if capped < 0 {
		capped = 0
	}
	if capped > s.Settings.QubicCap {
		capped = s.Settings.QubicCap
	}
	return entities.Balances{
		QubicBal:       snapshot.QubicBal,
		QubicBalCapped: capped,
		QearnBal:       snapshot.QearnBal,
		PortalBal:      snapshot.PortalBal,
		QxmrBal:        snapshot.QxmrBal,
		QubicCap:       s.Settings.QubicCap,
	}
}

// ImportPortalSnapshot overwrites or merges the portal balances used as the
// portal pool's allocation input. Replace clears the portal balance of every
// wallet absent from the import before applying it.
func (s Service) ImportPortalSnapshot(
	ctx context.Context,
	rows map[qubic.Identity]int64,
	mode string,
) (entities.SnapshotSyncReport, error) {
	return s.importSnapshot(ctx, rows, mode, portalField)
}

// ImportPowerSnapshot does the same for the qxmr balances backing the power
// pool. The worker seeds it from configuration at startup.
func (s Service) ImportPowerSnapshot(
	ctx context.Context,
	rows map[qubic.Identity]int64,
	mode string,
) (entities.SnapshotSyncReport, error) {
	return s.importSnapshot(ctx, rows, mode, powerField)
}

type importField int

const (
	portalField importField = iota
	powerField
)

func (s Service) importSnapshot(
	ctx context.Context,
	rows map[qubic.Identity]int64,
	mode string,
	field importField,
) (entities.SnapshotSyncReport, error) {
	if mode != SyncModeReplace && mode != SyncModeMerge {
		return entities.SnapshotSyncReport{}, domainerrors.ErrInvalidSyncMode
	}
	for _, amount := range rows {
		if amount <= 0 {
			return entities.SnapshotSyncReport{}, domainerrors.ErrInvalidSnapshotEntry
		}
	}

	report := entities.SnapshotSyncReport{Mode: mode}

	if mode == SyncModeReplace {
		existing, err := s.Snapshots.ListSnapshots(ctx)
		if err != nil {
			return entities.SnapshotSyncReport{}, err
		}
		for _, snapshot := range existing {
			if _, keep := rows[snapshot.WalletID]; keep {
				continue
			}
			if fieldValue(snapshot, field) == 0 {
				continue
			}
			setField(&snapshot, field, 0)
			if _, err := s.UpsertSnapshot(ctx, snapshot); err != nil {
				return entities.SnapshotSyncReport{}, err
			}
			report.Cleared++
		}
	}

	for wallet, amount := range rows {
		if _, err := s.EnsureUser(ctx, wallet); err != nil {
			return entities.SnapshotSyncReport{}, err
		}
		snapshot, _, err := s.Snapshots.GetSnapshot(ctx, wallet)
		if err != nil {
			return entities.SnapshotSyncReport{}, err
		}
		snapshot.WalletID = wallet
		setField(&snapshot, field, amount)
		if _, err := s.UpsertSnapshot(ctx, snapshot); err != nil {
			return entities.SnapshotSyncReport{}, err
		}
		report.Upserted++
	}

	s.logger().Info("snapshot import applied",
		"event", "registry_snapshot_import",
		"module", "token-distribution/wallet-registry",
		"layer", "application",
		"mode", mode,
		"cleared", report.Cleared,
		"upserted", report.Upserted,
	)
	return report, nil
}

func fieldValue(snapshot entities.WalletSnapshot, field importField) int64 {
	if field == portalField {
		return snapshot.PortalBal
	}
	return snapshot.QxmrBal
}

func setField(snapshot *entities.WalletSnapshot, field importField, value int64) {
	if field == portalField {
		snapshot.PortalBal = value
		return
	}
	snapshot.QxmrBal = value
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) bump() {
	if s.Version != nil {
		s.Version.Bump()
	}
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
