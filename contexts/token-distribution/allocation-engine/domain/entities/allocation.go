package entities

import "github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"

// AllocationSet is the full output of one allocation run, one map per pool.
type AllocationSet struct {
	Community map[qubic.Identity]int64
	Portal    map[qubic.Identity]int64
	Power     map[qubic.Identity]int64
}

func (a AllocationSet) Clone() AllocationSet {
	return AllocationSet{
		Community: cloneMap(a.Community),
		Portal:    cloneMap(a.Portal),
		Power:     cloneMap(a.Power),
	}
}

func cloneMap(in map[qubic.Identity]int64) map[qubic.Identity]int64 {
	out := make(map[qubic.Identity]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// LegacyResRow mirrors the row shape the original airdrop table UI consumes.
type LegacyResRow struct {
	No         int            `json:"no"`
	WalletID   qubic.Identity `json:"wallet_id"`
	Role       string         `json:"role"`
	QearnBal   int64          `json:"qearn_bal"`
	InvestBal  int64          `json:"invest_bal"`
	AirdropAmt int64          `json:"airdrop_amt"`
}

// PoolSummary is the admin per-pool rollup: membership, total and the top
// five allocations.
type PoolSummary struct {
	Wallets int            `json:"wallets"`
	Total   int64          `json:"total"`
	Top5    []WalletAmount `json:"top5"`
}

type WalletAmount struct {
	WalletID qubic.Identity `json:"wallet_id"`
	Amount   int64          `json:"amount"`
}
