// Package roles defines the closed role vocabulary and the single role
// resolution rule used by every module. Role sets are ordered, deduplicated
// and never empty; divergent copies of this logic are a correctness bug, so
// all callers go through Resolve.
package roles

import (
	"sort"
	"strings"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RolePower     Role = "power"
	RolePortal    Role = "portal"
	RoleCommunity Role = "community"
)

// canonicalOrder is the fixed total order for known roles. Unknown roles
// sort lexically after these.
var canonicalOrder = []Role{RoleAdmin, RolePower, RolePortal, RoleCommunity}

// Set is an ordered, deduplicated, non-empty role set.
type Set []Role

// Normalize deduplicates, lowercases and orders raw role names. Admin is
// exclusive: a set containing admin collapses to exactly {admin}. Community
// is the fallback when the set would otherwise be empty.
func Normalize(raw []string) Set {
	var seen []string
	for _, r := range raw {
		value := strings.ToLower(strings.TrimSpace(r))
		if value == "" || contains(seen, value) {
			continue
		}
		seen = append(seen, value)
	}
	if contains(seen, string(RoleAdmin)) {
		return Set{RoleAdmin}
	}

	var out Set
	for _, known := range canonicalOrder {
		if contains(seen, string(known)) {
			out = append(out, known)
		}
	}
	var extras []string
	for _, value := range seen {
		if !isKnown(Role(value)) {
			extras = append(extras, value)
		}
	}
	sort.Strings(extras)
	for _, value := range extras {
		out = append(out, Role(value))
	}

	if len(out) == 0 {
		return Set{RoleCommunity}
	}
	return out
}

// Parse reads a CSV role field as stored in the users table.
func Parse(csv string) Set {
	if strings.TrimSpace(csv) == "" {
		return Set{RoleCommunity}
	}
	return Normalize(strings.Split(csv, ","))
}

// Format renders the set back to its CSV storage form.
func (s Set) Format() string {
	parts := make([]string, 0, len(s))
	for _, r := range Normalize(s.strings()) {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

func (s Set) Contains(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

func (s Set) strings() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Resolve derives a wallet's role set from balances and static configuration.
// The admin wallet gets {admin} and nothing else; everyone else starts from
// community, gains portal on a positive portal balance, and power when listed
// in the power-user set.
func Resolve(wallet qubic.Identity, admin qubic.Identity, powerUsers map[qubic.Identity]int64, portalBal int64) Set {
	if admin != "" && wallet == admin {
		return Set{RoleAdmin}
	}
	raw := []string{string(RoleCommunity)}
	if portalBal > 0 {
		raw = append(raw, string(RolePortal))
	}
	if _, ok := powerUsers[wallet]; ok {
		raw = append(raw, string(RolePower))
	}
	return Normalize(raw)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func isKnown(role Role) bool {
	for _, known := range canonicalOrder {
		if known == role {
			return true
		}
	}
	return false
}
