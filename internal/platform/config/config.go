// Package config is centralized process configuration. Values are parsed and
// validated once at the edge; everything handed to builders is typed. Ledger
// identities are normalized here so modules never see raw strings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

// Settings holds tokenomics, verification rules, ledger endpoints and admin
// configuration. Pools are derived from the total supply, not stored.
type Settings struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// Tokenomics.
	TotalSupplyQDOGE int64
	CommunityPct     float64
	PortalPct        float64
	PowerPct         float64
	TradeInPct       float64

	// Rules.
	RegistrationAmountQU     int64
	QubicCap                 int64
	PortalTotalSupply        int64
	TradeInRatioQDOGEPerQXMR int64

	// Identities and addresses.
	RegistrationAddress qubic.Identity
	BurnAddress         qubic.Identity
	QXContractID        qubic.Identity
	QXMRIssuerID        qubic.Identity
	PortalAssetName     string
	PortalAssetIssuer   qubic.Identity // optional, empty disables issuer filtering
	AdminWalletID       qubic.Identity

	// Ledger endpoints.
	RPCBaseURL string
	APIBaseURL string

	// HTTP surface.
	CORSAllowOrigins []string
	AdminAPIKey      string

	// Power-user snapshot seeding.
	PowerUsers            map[qubic.Identity]int64
	PowerSnapshotSyncMode string // replace | merge

	// Wallet summary snapshots younger than this are served without an RPC
	// round trip.
	SummaryTTL time.Duration
}

// Pool getters use floor(total * pct) on purpose; pools are immutable per
// configuration epoch.

func (s Settings) CommunityPool() int64 {
	return int64(float64(s.TotalSupplyQDOGE) * s.CommunityPct)
}

func (s Settings) PortalPool() int64 {
	return int64(float64(s.TotalSupplyQDOGE) * s.PortalPct)
}

func (s Settings) PowerPool() int64 {
	return int64(float64(s.TotalSupplyQDOGE) * s.PowerPct)
}

func (s Settings) TradeInPool() int64 {
	return int64(float64(s.TotalSupplyQDOGE) * s.TradeInPct)
}

// Load reads settings from the environment. A .env file is applied first when
// present, matching the deployment layout.
func Load() (Settings, error) {
	_ = godotenv.Load()

	s := Settings{
		ServiceName: envStr("SERVICE_NAME", "airdrop-qdoge"),
		HTTPPort:    envStr("HTTP_PORT", "8080"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		PortalAssetName:       strings.ToUpper(envStr("PORTAL_ASSET_NAME", "PORTAL")),
		RPCBaseURL:            strings.TrimRight(envStr("RPC_BASE_URL", "https://rpc.qubic.org"), "/"),
		APIBaseURL:            strings.TrimRight(envStr("API_BASE_URL", "https://dev01.qubic.org"), "/"),
		CORSAllowOrigins:      envCSV("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
		AdminAPIKey:           envStr("ADMIN_API_KEY", ""),
		PowerSnapshotSyncMode: strings.ToLower(envStr("POWER_SNAPSHOT_SYNC_MODE", "replace")),
		SummaryTTL:            30 * time.Second,
	}

	var err error
	if s.TotalSupplyQDOGE, err = envInt64("TOTAL_SUPPLY_QDOGE", 21_000_000_000); err != nil {
		return Settings{}, err
	}
	if s.CommunityPct, err = envFloat("COMMUNITY_PCT", 0.075); err != nil {
		return Settings{}, err
	}
	if s.PortalPct, err = envFloat("PORTAL_PCT", 0.01); err != nil {
		return Settings{}, err
	}
	if s.PowerPct, err = envFloat("POWER_PCT", 0.04); err != nil {
		return Settings{}, err
	}
	if s.TradeInPct, err = envFloat("TRADEIN_PCT", 0.025); err != nil {
		return Settings{}, err
	}
	if s.RegistrationAmountQU, err = envInt64("REGISTRATION_AMOUNT_QU", 100); err != nil {
		return Settings{}, err
	}
	if s.QubicCap, err = envInt64("QUBIC_CAP_QU", 10_000_000_000); err != nil {
		return Settings{}, err
	}
	if s.PortalTotalSupply, err = envInt64("PORTAL_TOTAL_SUPPLY", 1_000_000_000); err != nil {
		return Settings{}, err
	}
	if s.TradeInRatioQDOGEPerQXMR, err = envInt64("TRADEIN_RATIO_QDOGE_PER_QXMR", 100); err != nil {
		return Settings{}, err
	}

	if s.RegistrationAddress, err = envIdentity("REGISTRATION_ADDRESS",
		"QDOGEEESKYPAICECHEAHOXPULEOADTKGEJHAVYPFKHLEWGXXZQUGIGMBUTZE"); err != nil {
		return Settings{}, err
	}
	if s.BurnAddress, err = envIdentity("BURN_ADDRESS",
		"BURNQCDXPUVMBGCTKXZMLRCQYUWBPZREUCDIPECZOAYKCQNGTIUSDXLDULQL"); err != nil {
		return Settings{}, err
	}
	if s.QXContractID, err = envIdentity("QX_CONTRACT_ID",
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAFXIB"); err != nil {
		return Settings{}, err
	}
	if s.QXMRIssuerID, err = envIdentity("QXMR_ISSUER_ID",
		"QXMRTKAIIGLUREPIQPCMHCKWSIPDTUYFCFNYXQLTECSUJVYEMMDELBMDOEYB"); err != nil {
		return Settings{}, err
	}
	if s.AdminWalletID, err = envIdentity("ADMIN_WALLET",
		"KZFJRTYKJXVNPAYXQXUKMPKAHWWBWVWGLSFMEFOKPFJFWEDDXMCZVSPEOOZE"); err != nil {
		return Settings{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("PORTAL_ASSET_ISSUER")); raw != "" {
		if s.PortalAssetIssuer, err = qubic.NormalizeIdentity(raw); err != nil {
			return Settings{}, fmt.Errorf("PORTAL_ASSET_ISSUER: %w", err)
		}
	}

	if s.PowerSnapshotSyncMode != "replace" && s.PowerSnapshotSyncMode != "merge" {
		return Settings{}, fmt.Errorf("POWER_SNAPSHOT_SYNC_MODE must be replace or merge, got %q", s.PowerSnapshotSyncMode)
	}

	if s.PowerUsers, err = parsePowerUsers(os.Getenv("POWER_USERS")); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// parsePowerUsers reads the power-user allow-list. Entries are comma or
// newline separated, either a bare identity (weight 1) or IDENTITY=WEIGHT.
// Weights feed the power pool, so they must be positive.
func parsePowerUsers(raw string) (map[qubic.Identity]int64, error) {
	out := make(map[qubic.Identity]int64)
	for _, entry := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' }) {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		idPart, weightPart, hasWeight := strings.Cut(entry, "=")
		wallet, err := qubic.NormalizeIdentity(idPart)
		if err != nil {
			return nil, fmt.Errorf("POWER_USERS entry %q: %w", entry, err)
		}
		weight := int64(1)
		if hasWeight {
			weight, err = strconv.ParseInt(strings.TrimSpace(weightPart), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("POWER_USERS weight for %s: %w", wallet, err)
			}
		}
		if weight <= 0 {
			return nil, fmt.Errorf("POWER_USERS weight must be > 0 for %s", wallet)
		}
		out[wallet] = weight
	}
	return out, nil
}

func envStr(name, fallback string) string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return raw
}

func envInt64(name string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(strings.ReplaceAll(raw, "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envCSV(name, fallback string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		raw = fallback
	}
	var out []string
	for _, value := range strings.Split(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func envIdentity(name, fallback string) (qubic.Identity, error) {
	id, err := qubic.NormalizeIdentity(envStr(name, fallback))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return id, nil
}
