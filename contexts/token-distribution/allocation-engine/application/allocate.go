package application

import (
	"math/bits"
	"sort"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

// AllocateProportional splits an integer pool across weighted wallets using
// the largest-remainder (Hamilton) method. The floor step divides pool*weight
// by the total weight in 128-bit integer space, never floating point, so the
// result is identical on every platform. The unallocated remainder is handed
// out one unit at a time ordered by (remainder desc, wallet asc).
//
// Postcondition: the amounts sum to pool whenever the total weight is
// positive. A non-positive pool or total weight yields an all-zero map over
// the same keys.
func AllocateProportional(pool int64, weights map[qubic.Identity]int64) map[qubic.Identity]int64 {
	out := make(map[qubic.Identity]int64, len(weights))
	for wallet := range weights {
		out[wallet] = 0
	}
	if pool <= 0 || len(weights) == 0 {
		return out
	}

	var totalWeight int64
	for _, w := range weights {
		if w > 0 {
			totalWeight += w
		}
	}
	if totalWeight <= 0 {
		return out
	}

	type share struct {
		wallet    qubic.Identity
		remainder uint64
	}
	shares := make([]share, 0, len(weights))

	var allocated int64
	for wallet, w := range weights {
		if w < 0 {
			w = 0
		}
		floor, rem := mulDiv(uint64(pool), uint64(w), uint64(totalWeight))
		out[wallet] = int64(floor)
		allocated += int64(floor)
		shares = append(shares, share{wallet: wallet, remainder: rem})
	}

	remaining := pool - allocated
	if remaining <= 0 {
		return out
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].wallet < shares[j].wallet
	})
	for i := int64(0); i < remaining; i++ {
		out[shares[i%int64(len(shares))].wallet]++
	}
	return out
}

// FixedDenominatorShare is the portal pool's direct share: floor(pool *
// balance / denominator). Unlike AllocateProportional the denominator is a
// configured constant, so part of the pool stays undistributed when the
// eligible balances do not cover it. That shortfall is intended behavior,
// downstream consumers depend on the exact figures.
func FixedDenominatorShare(pool, balance, denominator int64) int64 {
	if pool <= 0 || balance <= 0 || denominator <= 0 {
		return 0
	}
	// A balance above the configured supply clamps to a full share.
	if balance > denominator {
		balance = denominator
	}
	share, _ := mulDiv(uint64(pool), uint64(balance), uint64(denominator))
	return int64(share)
}

// mulDiv computes (a*b)/d and the remainder with a 128-bit intermediate,
// immune to int64 overflow for any in-range pool and weight.
func mulDiv(a, b, d uint64) (quo, rem uint64) {
	hi, lo := bits.Mul64(a, b)
	return bits.Div64(hi, lo, d)
}
