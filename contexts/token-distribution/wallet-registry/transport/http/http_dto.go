package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BalancesDTO struct {
	QubicBal       int64 `json:"qubic_bal"`
	QubicBalCapped int64 `json:"qubic_bal_capped"`
	QearnBal       int64 `json:"qearn_bal"`
	PortalBal      int64 `json:"portal_bal"`
	QxmrBal        int64 `json:"qxmr_bal"`
	QubicCap       int64 `json:"qubic_cap"`
}

type AirdropDTO struct {
	Estimated int64            `json:"estimated"`
	Breakdown map[string]int64 `json:"breakdown,omitempty"`
}

type WalletSummaryResponse struct {
	WalletID   string      `json:"wallet_id"`
	Registered bool        `json:"registered"`
	Role       string      `json:"role"`
	Roles      []string    `json:"roles"`
	Balances   BalancesDTO `json:"balances"`
	Airdrop    AirdropDTO  `json:"airdrop"`
	Stale      bool        `json:"stale,omitempty"`
}

type ImportRow struct {
	WalletID string `json:"walletId"`
	Amount   int64  `json:"amount"`
}

type ImportSnapshotRequest struct {
	Rows []ImportRow `json:"rows"`
	// Mode defaults to merge, matching the upsert-only legacy behavior.
	Mode string `json:"mode,omitempty"`
}

type ImportSnapshotResponse struct {
	Mode     string `json:"mode"`
	Cleared  int    `json:"cleared"`
	Imported int    `json:"imported"`
}
