package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/domain/entities"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/roles"
)

type Service struct {
	Snapshots ports.SnapshotSource
	TradeIns  ports.TradeInLedger
	Version   ports.VersionSource
	Settings  ports.AllocationSettings
	Cache     *Cache
	Logger    *slog.Logger
}

// Cache holds the last allocation run keyed by (snapshot version, settings
// signature). The mutex guards only the compare and store; recomputation runs
// outside it, so concurrent misses may compute redundantly but never block
// each other.
type Cache struct {
	mu        sync.Mutex
	version   uint64
	signature string
	value     entities.AllocationSet
	valid     bool
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) get(version uint64, signature string) (entities.AllocationSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || c.version != version || c.signature != signature {
		return entities.AllocationSet{}, false
	}
	// Callers must never see the shared maps.
	return c.value.Clone(), true
}

func (c *Cache) put(version uint64, signature string, value entities.AllocationSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = version
	c.signature = signature
	c.value = value.Clone()
	c.valid = true
}

// ComputeAllocations returns the three pool maps, admin excluded everywhere.
// A cached run is returned as a deep copy when neither the snapshot version
// nor the settings changed. When a snapshot write races the recomputation the
// fresh result is returned uncached.
func (s Service) ComputeAllocations(ctx context.Context) (entities.AllocationSet, error) {
	signature := settingsSignature(s.Settings)
	versionBefore := s.currentVersion()

	if s.Cache != nil {
		if cached, ok := s.Cache.get(versionBefore, signature); ok {
			return cached, nil
		}
	}

	rows, err := s.Snapshots.ListWalletRows(ctx)
	if err != nil {
		return entities.AllocationSet{}, err
	}
	result := s.allocate(rows)

	versionAfter := s.currentVersion()
	if s.Cache != nil && versionAfter == versionBefore {
		s.Cache.put(versionAfter, signature, result)
	}
	return result, nil
}

func (s Service) allocate(rows []ports.WalletRow) entities.AllocationSet {
	communityWeights := make(map[qubic.Identity]int64)
	powerWeights := make(map[qubic.Identity]int64)
	portal := make(map[qubic.Identity]int64)

	for _, row := range rows {
		if s.Settings.AdminWallet != "" && row.WalletID == s.Settings.AdminWallet {
			continue
		}
		if row.Registered && row.Roles.Contains(roles.RoleCommunity) {
			weight := communityWeight(row, s.Settings.QubicCap)
			if weight > 0 {
				communityWeights[row.WalletID] = weight
			}
		}
		if row.Roles.Contains(roles.RolePower) && row.QxmrBal > 0 {
			powerWeights[row.WalletID] = row.QxmrBal
		}
		if row.Roles.Contains(roles.RolePortal) && row.PortalBal > 0 {
			if share := FixedDenominatorShare(s.Settings.PortalPool, row.PortalBal, s.Settings.PortalTotalSupply); share > 0 {
				portal[row.WalletID] = share
			}
		}
	}

	return entities.AllocationSet{
		Community: AllocateProportional(s.Settings.CommunityPool, communityWeights),
		Portal:    portal,
		Power:     AllocateProportional(s.Settings.PowerPool, powerWeights),
	}
}

func communityWeight(row ports.WalletRow, capQU int64) int64 {
	qubicBal := row.QubicBal
	if qubicBal < 0 {
		qubicBal = 0
	}
	if qubicBal > capQU {
		qubicBal = capQU
	}
	qearn := row.QearnBal
	if qearn < 0 {
		qearn = 0
	}
	return qubicBal + qearn
}

// BreakdownForWallet reports the wallet's entry in each pool plus its
// accepted trade-in credit. The admin wallet always gets zeros.
func (s Service) BreakdownForWallet(ctx context.Context, wallet qubic.Identity) (map[string]int64, error) {
	if s.Settings.AdminWallet != "" && wallet == s.Settings.AdminWallet {
		return map[string]int64{"community": 0, "portal": 0, "power": 0, "tradein": 0}, nil
	}
	allocations, err := s.ComputeAllocations(ctx)
	if err != nil {
		return nil, err
	}
	tradein, err := s.TradeIns.SumCreditedForWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return map[string]int64{
		"community": allocations.Community[wallet],
		"portal":    allocations.Portal[wallet],
		"power":     allocations.Power[wallet],
		"tradein":   tradein,
	}, nil
}

func (s Service) TotalForWallet(ctx context.Context, wallet qubic.Identity) (int64, error) {
	breakdown, err := s.BreakdownForWallet(ctx, wallet)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, amount := range breakdown {
		total += amount
	}
	return total, nil
}

// LegacyResRows renders the full allocation table in the row shape the
// original frontend consumes: one row per pool entry, ordered by airdrop
// descending then wallet then role, numbered from 1.
func (s Service) LegacyResRows(ctx context.Context) ([]entities.LegacyResRow, error) {
	allocations, err := s.ComputeAllocations(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Snapshots.ListWalletRows(ctx)
	if err != nil {
		return nil, err
	}
	byWallet := make(map[qubic.Identity]ports.WalletRow, len(rows))
	for _, row := range rows {
		byWallet[row.WalletID] = row
	}

	out := make([]entities.LegacyResRow, 0, len(allocations.Community)+len(allocations.Portal)+len(allocations.Power))
	for wallet, amount := range allocations.Community {
		row := byWallet[wallet]
		capped := row.QubicBal
		if capped < 0 {
			capped = 0
		}
		if capped > s.Settings.QubicCap {
			capped = s.Settings.QubicCap
		}
		out = append(out, entities.LegacyResRow{
			WalletID:   wallet,
			Role:       "user",
			QearnBal:   row.QearnBal,
			InvestBal:  capped,
			AirdropAmt: amount,
		})
	}
	for wallet, amount := range allocations.Portal {
		out = append(out, entities.LegacyResRow{
			WalletID:   wallet,
			Role:       "portal",
			QearnBal:   byWallet[wallet].PortalBal,
			AirdropAmt: amount,
		})
	}
	for wallet, amount := range allocations.Power {
		out = append(out, entities.LegacyResRow{
			WalletID:   wallet,
			Role:       "power",
			QearnBal:   byWallet[wallet].QxmrBal,
			AirdropAmt: amount,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AirdropAmt != out[j].AirdropAmt {
			return out[i].AirdropAmt > out[j].AirdropAmt
		}
		if out[i].WalletID != out[j].WalletID {
			return out[i].WalletID < out[j].WalletID
		}
		return out[i].Role < out[j].Role
	})
	for i := range out {
		out[i].No = i + 1
	}
	return out, nil
}

// PoolSummaries is the admin rollup: wallet count, pool total and top five
// per pool, trade-in credits included as a fourth pseudo-pool.
func (s Service) PoolSummaries(ctx context.Context) (map[string]entities.PoolSummary, error) {
	allocations, err := s.ComputeAllocations(ctx)
	if err != nil {
		return nil, err
	}
	tradeins, err := s.TradeIns.CreditedByWallet(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]entities.PoolSummary{
		"community": summarize(allocations.Community),
		"portal":    summarize(allocations.Portal),
		"power":     summarize(allocations.Power),
		"tradein":   summarize(tradeins),
	}, nil
}

func summarize(pool map[qubic.Identity]int64) entities.PoolSummary {
	summary := entities.PoolSummary{Wallets: len(pool), Top5: []entities.WalletAmount{}}
	all := make([]entities.WalletAmount, 0, len(pool))
	for wallet, amount := range pool {
		summary.Total += amount
		all = append(all, entities.WalletAmount{WalletID: wallet, Amount: amount})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Amount != all[j].Amount {
			return all[i].Amount > all[j].Amount
		}
		return all[i].WalletID < all[j].WalletID
	})
	if len(all) > 5 {
		all = all[:5]
	}
	summary.Top5 = all
	return summary
}

func (s Service) currentVersion() uint64 {
	if s.Version == nil {
		return 0
	}
	return s.Version.Current()
}

// settingsSignature fingerprints the pool-affecting settings so a
// configuration change invalidates the cache without a version bump.
func settingsSignature(settings ports.AllocationSettings) string {
	payload, _ := json.Marshal(map[string]any{
		"admin_wallet":        string(settings.AdminWallet),
		"qubic_cap":           settings.QubicCap,
		"community_pool":      settings.CommunityPool,
		"portal_pool":         settings.PortalPool,
		"power_pool":          settings.PowerPool,
		"portal_total_supply": settings.PortalTotalSupply,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
