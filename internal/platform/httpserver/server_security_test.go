package httpserver

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	allocationengine "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine"
	allocports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine/ports"
	claimverification "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification"
	claimports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/ports"
	walletregistry "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry"
	registryports "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/ports"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/config"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

const testAdminKey = "test-admin-key"

func testIdentity(letter byte) qubic.Identity {
	return qubic.Identity(strings.Repeat(string(letter), qubic.IdentityLength))
}

type stubLedger struct{}

func (stubLedger) GetBalance(context.Context, qubic.Identity) (int64, error) {
	return 0, nil
}

func (stubLedger) OwnedAssetUnits(context.Context, qubic.Identity, string, qubic.Identity, int64) (int64, error) {
	return 0, nil
}

type stubEstimator struct{}

func (stubEstimator) BreakdownForWallet(context.Context, qubic.Identity) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type stubVersion struct{}

func (stubVersion) Bump() uint64    { return 1 }
func (stubVersion) Current() uint64 { return 1 }

type stubSnapshotSource struct{}

func (stubSnapshotSource) ListWalletRows(context.Context) ([]allocports.WalletRow, error) {
	return nil, nil
}

type stubLookup struct{}

func (stubLookup) FindTransaction(context.Context, qubic.Identity, string) (claimports.TxDetails, error) {
	return claimports.TxDetails{}, nil
}

func newTestServer() *Server {
	logger := slog.Default()

	settings := config.Settings{
		HTTPPort:                 "8080",
		TotalSupplyQDOGE:         21_000_000_000,
		CommunityPct:             0.075,
		PortalPct:                0.01,
		PowerPct:                 0.04,
		TradeInPct:               0.025,
		RegistrationAmountQU:     100,
		QubicCap:                 100_000_000,
		PortalTotalSupply:        1_000_000_000,
		TradeInRatioQDOGEPerQXMR: 100,
		RegistrationAddress:      testIdentity('C'),
		BurnAddress:              testIdentity('E'),
		QXContractID:             testIdentity('D'),
		QXMRIssuerID:             testIdentity('F'),
		PortalAssetName:          "PORTAL",
		AdminWalletID:            testIdentity('A'),
		CORSAllowOrigins:         []string{"http://localhost:3000"},
		AdminAPIKey:              testAdminKey,
	}

	registry := walletregistry.NewInMemoryModule(walletregistry.Dependencies{
		Ledger:    stubLedger{},
		Estimator: stubEstimator{},
		Version:   stubVersion{},
		Settings: registryports.RegistrySettings{
			AdminWallet: settings.AdminWalletID,
			QubicCap:    settings.QubicCap,
			QXMRIssuer:  settings.QXMRIssuerID,
		},
	}, logger)

	claims := claimverification.NewInMemoryModule(claimverification.Dependencies{
		Lookup:  stubLookup{},
		Wallets: registry.Service,
		Settings: claimports.VerificationSettings{
			AdminWallet:          settings.AdminWalletID,
			RegistrationAddress:  settings.RegistrationAddress,
			RegistrationAmountQU: settings.RegistrationAmountQU,
			QXContractID:         settings.QXContractID,
			BurnAddress:          settings.BurnAddress,
			QXMRIssuer:           settings.QXMRIssuerID,
			TradeInRatio:         settings.TradeInRatioQDOGEPerQXMR,
			TradeInPool:          settings.TradeInPool(),
		},
	}, logger)

	allocations := allocationengine.NewModule(allocationengine.Dependencies{
		Snapshots: stubSnapshotSource{},
		TradeIns:  claims.Store,
		Version:   stubVersion{},
		Settings: allocports.AllocationSettings{
			AdminWallet:       settings.AdminWalletID,
			QubicCap:          settings.QubicCap,
			CommunityPool:     settings.CommunityPool(),
			PortalPool:        settings.PortalPool(),
			PowerPool:         settings.PowerPool(),
			PortalTotalSupply: settings.PortalTotalSupply,
		},
		Logger: logger,
	})

	return New(registry, claims, allocations, settings, logger)
}

func TestAdminEndpointsRejectMissingKey(t *testing.T) {
	server := newTestServer()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/admin/import/portal"},
		{http.MethodPost, "/admin/import/power"},
		{http.MethodPost, "/admin/airdrop/res"},
		{http.MethodGet, "/admin/allocations"},
		{http.MethodPost, "/v1/transaction/log"},
	}
	for _, route := range paths {
		req := httptest.NewRequest(route.method, route.path, bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")

		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d body=%s", route.method, route.path, rr.Code, rr.Body.String())
		}
	}
}

func TestAdminEndpointsRejectWrongKey(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/admin/allocations", nil)
	req.Header.Set("X-Admin-Key", "wrong-key")

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAdminAllocationsAcceptsValidKey(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/admin/allocations", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAdminSurfaceDisabledWithoutConfiguredKey(t *testing.T) {
	server := newTestServer()
	server.settings.AdminAPIKey = ""

	req := httptest.NewRequest(http.MethodGet, "/admin/allocations", nil)
	req.Header.Set("X-Admin-Key", "")

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no key is configured, got %d", rr.Code)
	}
}

func TestConfirmRegistrationRejectsInvalidJSON(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/registration/confirm", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestConfirmRegistrationRejectsMalformedWallet(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"walletId":"not-a-wallet","txId":"tx-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/registration/confirm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "invalid_wallet_id") {
		t.Fatalf("expected invalid_wallet_id code, body=%s", rr.Body.String())
	}
}

func TestWalletSummaryRejectsMalformedWallet(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/wallet/short/summary", nil)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCORSPreflightForAllowedOrigin(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/v1/config", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allow-origin echo, got %q", got)
	}
}

func TestCORSSkipsDisallowedOrigin(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/config", nil)
	req.Header.Set("Origin", "https://evil.example")

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
}

func TestGetConfigExposesPools(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/config", nil)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, field := range []string{"registration_address", "pools", "community", "tradein_ratio"} {
		if !strings.Contains(body, field) {
			t.Fatalf("expected %q in config response, body=%s", field, body)
		}
	}
}
