package application

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/adapters/memory"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/entities"
	domainerrors "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/errors"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type countingVersion struct {
	bumps atomic.Int64
}

func (v *countingVersion) Bump() uint64 {
	return uint64(v.bumps.Add(1))
}

type fakeLedger struct {
	balance      int64
	balanceErr   error
	assets       map[string]int64
	assetsErr    error
	balanceCalls atomic.Int64
	assetCalls   atomic.Int64
}

func (f *fakeLedger) GetBalance(context.Context, qubic.Identity) (int64, error) {
	f.balanceCalls.Add(1)
	return f.balance, f.balanceErr
}

func (f *fakeLedger) OwnedAssetUnits(
	_ context.Context,
	_ qubic.Identity,
	assetName string,
	_ qubic.Identity,
	_ int64,
) (int64, error) {
	f.assetCalls.Add(1)
	if f.assetsErr != nil {
		return 0, f.assetsErr
	}
	return f.assets[strings.ToUpper(assetName)], nil
}

type fakeEstimator struct {
	breakdown map[string]int64
	calls     atomic.Int64
}

func (f *fakeEstimator) BreakdownForWallet(context.Context, qubic.Identity) (map[string]int64, error) {
	f.calls.Add(1)
	if f.breakdown == nil {
		return map[string]int64{}, nil
	}
	return f.breakdown, nil
}

func testWallet(t *testing.T, seed byte) qubic.Identity {
	t.Helper()
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	core := strings.Repeat(string(letters[seed%26]), 56)
	id, err := qubic.NormalizeIdentity(core + "AAAA")
	if err != nil {
		t.Fatalf("test wallet: %v", err)
	}
	return id
}

func newTestService(t *testing.T) (Service, *memory.Store, *fakeLedger, *countingVersion, *fakeEstimator) {
	t.Helper()
	store := memory.NewStore()
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store.NowFunc = clock.Now
	ledger := &fakeLedger{assets: map[string]int64{}}
	version := &countingVersion{}
	estimator := &fakeEstimator{}
	service := Service{
		Users:     store,
		Snapshots: store,
		Ledger:    ledger,
		Estimator: estimator,
		Clock:     clock,
		Version:   version,
		Settings: ports.RegistrySettings{
			AdminWallet:     testWallet(t, 25),
			QubicCap:        10_000_000_000,
			QXMRIssuer:      testWallet(t, 16),
			PortalAssetName: "PORTAL",
			PowerUsers:      map[qubic.Identity]int64{},
			SummaryTTL:      30 * time.Second,
		},
	}
	return service, store, ledger, version, estimator
}

func TestEnsureUserDefaultsToCommunity(t *testing.T) {
	service, _, _, _, _ := newTestService(t)
	wallet := testWallet(t, 0)

	user, err := service.EnsureUser(context.Background(), wallet)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if user.Registered {
		t.Fatal("new wallet must not be registered")
	}
	if got := user.Roles.Format(); got != "community" {
		t.Fatalf("roles = %q, want community", got)
	}
}

func TestEnsureUserPinsAdmin(t *testing.T) {
	service, store, _, _, _ := newTestService(t)
	admin := service.Settings.AdminWallet

	if err := store.CreateUser(context.Background(), userWithRoles(admin, roles.Set{roles.RoleCommunity}, false)); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	user, err := service.EnsureUser(context.Background(), admin)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if got := user.Roles.Format(); got != "admin" {
		t.Fatalf("admin roles = %q, want admin", got)
	}
	if !user.Registered {
		t.Fatal("admin must stay registered")
	}
}

func TestMarkRegisteredRejectsSecondCall(t *testing.T) {
	service, _, _, version, _ := newTestService(t)
	wallet := testWallet(t, 1)

	if err := service.MarkRegistered(context.Background(), wallet); err != nil {
		t.Fatalf("first MarkRegistered: %v", err)
	}
	if err := service.MarkRegistered(context.Background(), wallet); !errors.Is(err, domainerrors.ErrAlreadyRegistered) {
		t.Fatalf("second MarkRegistered err = %v, want ErrAlreadyRegistered", err)
	}
	if version.bumps.Load() != 1 {
		t.Fatalf("version bumps = %d, want 1", version.bumps.Load())
	}
}

func TestUpsertSnapshotBumpsOnlyOnChange(t *testing.T) {
	service, _, _, version, _ := newTestService(t)
	wallet := testWallet(t, 2)
	snapshot := snapshotFor(wallet, 500, 10, 0, 0)

	mutated, err := service.UpsertSnapshot(context.Background(), snapshot)
	if err != nil || !mutated {
		t.Fatalf("first upsert mutated=%v err=%v, want true,nil", mutated, err)
	}
	mutated, err = service.UpsertSnapshot(context.Background(), snapshot)
	if err != nil || mutated {
		t.Fatalf("identical upsert mutated=%v err=%v, want false,nil", mutated, err)
	}
	if version.bumps.Load() != 1 {
		t.Fatalf("version bumps = %d, want 1", version.bumps.Load())
	}
}

func TestWalletSummaryServesRecentSnapshot(t *testing.T) {
	service, store, ledger, _, _ := newTestService(t)
	wallet := testWallet(t, 3)

	if _, err := service.UpsertSnapshot(context.Background(), snapshotFor(wallet, 900, 0, 0, 0)); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	if _, err := store.SetAirdropAmount(context.Background(), wallet, 42, service.Clock.Now()); err != nil {
		t.Fatalf("seed airdrop: %v", err)
	}

	summary, err := service.WalletSummary(context.Background(), wallet, false)
	if err != nil {
		t.Fatalf("WalletSummary: %v", err)
	}
	if !summary.FromCache {
		t.Fatal("summary should come from the stored snapshot")
	}
	if summary.EstimatedAirdrop != 42 {
		t.Fatalf("estimated = %d, want 42", summary.EstimatedAirdrop)
	}
	if ledger.balanceCalls.Load() != 0 || ledger.assetCalls.Load() != 0 {
		t.Fatal("cached summary must not hit the ledger")
	}
}

func TestWalletSummaryFreshFetchesAndResolvesRoles(t *testing.T) {
	service, _, ledger, _, estimator := newTestService(t)
	wallet := testWallet(t, 4)
	ledger.balance = 12_000_000_000
	ledger.assets = map[string]int64{"QEARN": 300, "PORTAL": 7, "QXMR": 0}
	estimator.breakdown = map[string]int64{"community": 100, "portal": 20}

	if err := service.MarkRegistered(context.Background(), wallet); err != nil {
		t.Fatalf("register: %v", err)
	}
	summary, err := service.WalletSummary(context.Background(), wallet, true)
	if err != nil {
		t.Fatalf("WalletSummary: %v", err)
	}
	if summary.FromCache {
		t.Fatal("fresh summary must bypass the snapshot")
	}
	if got := summary.Roles.Format(); got != "portal,community" {
		t.Fatalf("roles = %q, want portal,community", got)
	}
	if summary.Balances.QubicBalCapped != service.Settings.QubicCap {
		t.Fatalf("capped = %d, want cap %d", summary.Balances.QubicBalCapped, service.Settings.QubicCap)
	}
	if summary.EstimatedAirdrop != 120 {
		t.Fatalf("estimated = %d, want 120", summary.EstimatedAirdrop)
	}
	if ledger.balanceCalls.Load() != 1 || ledger.assetCalls.Load() != 3 {
		t.Fatalf("ledger calls = %d/%d, want 1 balance and 3 asset fetches",
			ledger.balanceCalls.Load(), ledger.assetCalls.Load())
	}
}

func TestWalletSummaryFallsBackToStoredOnLedgerError(t *testing.T) {
	service, _, ledger, _, _ := newTestService(t)
	wallet := testWallet(t, 5)

	if _, err := service.UpsertSnapshot(context.Background(), snapshotFor(wallet, 800, 50, 3, 9)); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	ledger.balanceErr = errors.New("rpc down")
	ledger.assetsErr = errors.New("rpc down")

	summary, err := service.WalletSummary(context.Background(), wallet, true)
	if err != nil {
		t.Fatalf("WalletSummary: %v", err)
	}
	if !summary.Stale {
		t.Fatal("summary must be marked stale when fetches fail")
	}
	if summary.Balances.QubicBal != 800 || summary.Balances.QearnBal != 50 ||
		summary.Balances.PortalBal != 3 || summary.Balances.QxmrBal != 9 {
		t.Fatalf("balances = %+v, want stored snapshot values", summary.Balances)
	}
}

func TestImportPowerReplaceClearsMissingWallets(t *testing.T) {
	service, store, _, _, _ := newTestService(t)
	kept := testWallet(t, 6)
	dropped := testWallet(t, 7)

	seed := map[qubic.Identity]int64{kept: 100, dropped: 200}
	if _, err := service.ImportPowerSnapshot(context.Background(), seed, SyncModeMerge); err != nil {
		t.Fatalf("seed import: %v", err)
	}

	report, err := service.ImportPowerSnapshot(context.Background(), map[qubic.Identity]int64{kept: 150}, SyncModeReplace)
	if err != nil {
		t.Fatalf("replace import: %v", err)
	}
	if report.Cleared != 1 || report.Upserted != 1 {
		t.Fatalf("report = %+v, want cleared 1 upserted 1", report)
	}

	snapshot, _, err := store.GetSnapshot(context.Background(), dropped)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snapshot.QxmrBal != 0 {
		t.Fatalf("dropped wallet qxmr_bal = %d, want 0", snapshot.QxmrBal)
	}
}

func TestImportRejectsBadModeAndAmounts(t *testing.T) {
	service, _, _, _, _ := newTestService(t)
	wallet := testWallet(t, 8)

	if _, err := service.ImportPortalSnapshot(context.Background(), nil, "overwrite"); !errors.Is(err, domainerrors.ErrInvalidSyncMode) {
		t.Fatalf("bad mode err = %v, want ErrInvalidSyncMode", err)
	}
	if _, err := service.ImportPortalSnapshot(context.Background(), map[qubic.Identity]int64{wallet: 0}, SyncModeMerge); !errors.Is(err, domainerrors.ErrInvalidSnapshotEntry) {
		t.Fatalf("zero amount err = %v, want ErrInvalidSnapshotEntry", err)
	}
}

func userWithRoles(wallet qubic.Identity, set roles.Set, registered bool) entities.User {
	return entities.User{
		WalletID:   wallet,
		Roles:      set,
		Registered: registered,
	}
}

func snapshotFor(wallet qubic.Identity, qubicBal, qearnBal, portalBal, qxmrBal int64) entities.WalletSnapshot {
	return entities.WalletSnapshot{
		WalletID:  wallet,
		QubicBal:  qubicBal,
		QearnBal:  qearnBal,
		PortalBal: portalBal,
		QxmrBal:   qxmrBal,
	}
}
