package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	allocationengine "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/allocation-engine"
	claimverification "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification"
	claimerrors "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/domain/errors"
	claimhttp "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/claim-verification/transport/http"
	walletregistry "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry"
	registryerrors "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/domain/errors"
	registryhttp "github.com/pongpong-zigzag/Airdrop-QDOGE/contexts/token-distribution/wallet-registry/transport/http"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/config"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/qubicrpc"
	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/pongpong-zigzag/Airdrop-QDOGE/internal/platform/httpserver/docs"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	registry    walletregistry.Module
	claims      claimverification.Module
	allocations allocationengine.Module
	settings    config.Settings
}

func New(
	registry walletregistry.Module,
	claims claimverification.Module,
	allocations allocationengine.Module,
	settings config.Settings,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	addr := ":" + settings.HTTPPort
	if settings.HTTPPort == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		registry:    registry,
		claims:      claims,
		allocations: allocations,
		settings:    settings,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s)
}

// ServeHTTP applies the CORS policy before the mux sees the request. The
// wallet UI is a separate origin in every deployment.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && s.originAllowed(origin) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Admin-Key")
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.settings.CORSAllowOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /v1/config", s.handleGetConfig)
	s.mux.HandleFunc("GET /v1/wallet/{wallet_id}/summary", s.handleWalletSummary)
	s.mux.HandleFunc("POST /v1/registration/confirm", s.handleConfirmRegistration)
	s.mux.HandleFunc("POST /v1/tradein/confirm", s.handleConfirmTradeIn)

	s.mux.HandleFunc("POST /v1/transaction/log", s.handleLogTransaction)
	s.mux.HandleFunc("POST /admin/import/portal", s.handleImportPortal)
	s.mux.HandleFunc("POST /admin/import/power", s.handleImportPower)
	s.mux.HandleFunc("POST /admin/airdrop/res", s.handleAirdropRes)
	s.mux.HandleFunc("GET /admin/allocations", s.handleAllocations)
}

type configResponse struct {
	RegistrationAddress  string           `json:"registration_address"`
	RegistrationAmountQU int64            `json:"registration_amount_qu"`
	QXContractID         string           `json:"qx_contract_id"`
	BurnAddress          string           `json:"burn_address"`
	QXMRIssuer           string           `json:"qxmr_issuer"`
	TradeInRatio         int64            `json:"tradein_ratio"`
	QubicCap             int64            `json:"qubic_cap"`
	PortalTotalSupply    int64            `json:"portal_total_supply"`
	Pools                map[string]int64 `json:"pools"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		RegistrationAddress:  string(s.settings.RegistrationAddress),
		RegistrationAmountQU: s.settings.RegistrationAmountQU,
		QXContractID:         string(s.settings.QXContractID),
		BurnAddress:          string(s.settings.BurnAddress),
		QXMRIssuer:           string(s.settings.QXMRIssuerID),
		TradeInRatio:         s.settings.TradeInRatioQDOGEPerQXMR,
		QubicCap:             s.settings.QubicCap,
		PortalTotalSupply:    s.settings.PortalTotalSupply,
		Pools: map[string]int64{
			"community": s.settings.CommunityPool(),
			"portal":    s.settings.PortalPool(),
			"power":     s.settings.PowerPool(),
			"tradein":   s.settings.TradeInPool(),
		},
	})
}

func (s *Server) handleWalletSummary(w http.ResponseWriter, r *http.Request) {
	walletID := r.PathValue("wallet_id")
	fresh := r.URL.Query().Get("fresh") == "true"

	resp, err := s.registry.Handler.WalletSummaryHandler(r.Context(), walletID, fresh)
	if err != nil {
		s.writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	var req claimhttp.ConfirmTxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClaimError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.claims.Handler.ConfirmRegistrationHandler(r.Context(), req)
	if err != nil {
		s.writeClaimDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirmTradeIn(w http.ResponseWriter, r *http.Request) {
	var req claimhttp.ConfirmTxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClaimError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.claims.Handler.ConfirmTradeInHandler(r.Context(), req)
	if err != nil {
		s.writeClaimDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var req claimhttp.TxLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClaimError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.claims.Handler.LogTransactionHandler(r.Context(), req)
	if err != nil {
		s.writeClaimDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportPortal(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.registry.Handler.ImportPortalHandler)
}

func (s *Server) handleImportPower(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.registry.Handler.ImportPowerHandler)
}

func (s *Server) handleImport(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, registryhttp.ImportSnapshotRequest) (registryhttp.ImportSnapshotResponse, error),
) {
	if !s.requireAdmin(w, r) {
		return
	}
	var req registryhttp.ImportSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := apply(r.Context(), req)
	if err != nil {
		s.writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAirdropRes(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	rows, err := s.allocations.Service.LegacyResRows(r.Context())
	if err != nil {
		s.writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAllocations(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	summaries, err := s.allocations.Service.PoolSummaries(r.Context())
	if err != nil {
		s.writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// requireAdmin guards the admin surface with the static deployment key. An
// empty configured key disables the surface entirely.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("X-Admin-Key")
	if s.settings.AdminAPIKey == "" || key != s.settings.AdminAPIKey {
		writeRegistryError(w, http.StatusUnauthorized, "invalid_admin_key", "a valid X-Admin-Key header is required")
		return false
	}
	return true
}

func (s *Server) writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, qubic.ErrInvalidIdentity):
		writeRegistryError(w, http.StatusBadRequest, "invalid_wallet_id", err.Error())
	case errors.Is(err, registryerrors.ErrUserNotFound):
		writeRegistryError(w, http.StatusNotFound, "wallet_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyRegistered):
		writeRegistryError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidSyncMode),
		errors.Is(err, registryerrors.ErrInvalidSnapshotEntry):
		writeRegistryError(w, http.StatusBadRequest, "invalid_import", err.Error())
	case errors.Is(err, qubicrpc.ErrLedgerUnavailable):
		writeRegistryError(w, http.StatusBadGateway, "ledger_unavailable", err.Error())
	default:
		s.logInternalError(err)
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) writeClaimDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, qubic.ErrInvalidIdentity):
		writeClaimError(w, http.StatusBadRequest, "invalid_wallet_id", err.Error())
	case errors.Is(err, claimerrors.ErrAdminExcluded):
		writeClaimError(w, http.StatusForbidden, "admin_excluded", err.Error())
	case errors.Is(err, claimerrors.ErrTxIDRequired):
		writeClaimError(w, http.StatusBadRequest, "tx_id_required", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyRegistered):
		writeClaimError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, claimerrors.ErrTradeInPoolExhausted):
		writeClaimError(w, http.StatusConflict, "tradein_pool_exhausted", err.Error())
	case errors.Is(err, claimerrors.ErrMoneyDidNotMove),
		errors.Is(err, claimerrors.ErrSourceMismatch),
		errors.Is(err, claimerrors.ErrDestinationMismatch),
		errors.Is(err, claimerrors.ErrWrongRegistrationAmount),
		errors.Is(err, claimerrors.ErrNotQXContract),
		errors.Is(err, claimerrors.ErrWrongInputType),
		errors.Is(err, claimerrors.ErrPayloadUnparseable),
		errors.Is(err, claimerrors.ErrIssuerMismatch),
		errors.Is(err, claimerrors.ErrNewOwnerMismatch),
		errors.Is(err, claimerrors.ErrAssetMismatch),
		errors.Is(err, claimerrors.ErrNonPositiveShares),
		errors.Is(err, claimerrors.ErrInvalidTransactionType),
		errors.Is(err, qubic.ErrPayloadTooShort):
		writeClaimError(w, http.StatusBadRequest, "verification_failed", err.Error())
	case errors.Is(err, qubicrpc.ErrTransactionNotFinalized):
		writeClaimError(w, http.StatusBadRequest, "transaction_not_finalized", err.Error())
	case errors.Is(err, qubicrpc.ErrLedgerUnavailable):
		writeClaimError(w, http.StatusBadGateway, "ledger_unavailable", err.Error())
	default:
		s.logInternalError(err)
		writeClaimError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) logInternalError(err error) {
	s.logger.Error("request failed",
		"event", "http_request_failed",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"error", err.Error(),
	)
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeClaimError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, claimhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
