package roles

import (
	"strings"
	"testing"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

func identity(t *testing.T, prefix string) qubic.Identity {
	t.Helper()
	id, err := qubic.NormalizeIdentity(prefix + strings.Repeat("A", 60-len(prefix)))
	if err != nil {
		t.Fatalf("bad test identity %q: %v", prefix, err)
	}
	return id
}

func TestNormalizeOrdering(t *testing.T) {
	set := Normalize([]string{"portal", "community", "power"})
	want := "power,portal,community"
	if set.Format() != want {
		t.Fatalf("expected %q, got %q", want, set.Format())
	}
}

func TestNormalizeAdminIsExclusive(t *testing.T) {
	set := Normalize([]string{"community", "admin", "power"})
	if len(set) != 1 || set[0] != RoleAdmin {
		t.Fatalf("admin must collapse the set, got %v", set)
	}
}

func TestNormalizeFallbackToCommunity(t *testing.T) {
	for _, raw := range [][]string{nil, {}, {"", "  "}} {
		set := Normalize(raw)
		if len(set) != 1 || set[0] != RoleCommunity {
			t.Fatalf("expected community fallback for %v, got %v", raw, set)
		}
	}
}

func TestNormalizeUnknownRolesSortedAfterKnown(t *testing.T) {
	set := Normalize([]string{"zeta", "portal", "beta", "portal"})
	if set.Format() != "portal,beta,zeta" {
		t.Fatalf("got %q", set.Format())
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	if got := Parse("").Format(); got != "community" {
		t.Fatalf("empty field should parse to community, got %q", got)
	}
	if got := Parse(" Power , community ").Format(); got != "power,community" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve(t *testing.T) {
	admin := identity(t, "KZFJ")
	power := identity(t, "TRADE")
	plain := identity(t, "WXYZ")
	powerUsers := map[qubic.Identity]int64{power: 1}

	if set := Resolve(admin, admin, powerUsers, 500); set.Format() != "admin" {
		t.Fatalf("admin wallet must resolve to admin only, got %q", set.Format())
	}
	if set := Resolve(power, admin, powerUsers, 0); set.Format() != "power,community" {
		t.Fatalf("got %q", set.Format())
	}
	if set := Resolve(power, admin, powerUsers, 10); set.Format() != "power,portal,community" {
		t.Fatalf("got %q", set.Format())
	}
	if set := Resolve(plain, admin, powerUsers, 0); set.Format() != "community" {
		t.Fatalf("got %q", set.Format())
	}
}
