package qubicrpc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

type fakeClock struct {
	sleeps []time.Duration
}

func (f *fakeClock) Now() time.Time { return time.Unix(1700000000, 0) }

func (f *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	return nil
}

func testIdentity(prefix string) qubic.Identity {
	return qubic.MustIdentity(prefix + strings.Repeat("A", 60-len(prefix)))
}

func TestGetTick(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tick-info", r.URL.Path)
		fmt.Fprint(w, `{"tickInfo":{"tick":"172355"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)
	tick, err := c.GetTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(172355), tick)
}

func TestGetTickMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tickInfo":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)
	_, err := c.GetTick(context.Background())
	assert.ErrorIs(t, err, ErrLedgerUnavailable)
}

func TestGetBalance(t *testing.T) {
	wallet := testIdentity("WALLET")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/balances/"+string(wallet), r.URL.Path)
		fmt.Fprint(w, `{"balance":{"balance":"123456789"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)
	bal, err := c.GetBalance(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), bal)
}

func TestGetBalanceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)
	_, err := c.GetBalance(context.Background(), testIdentity("WALLET"))
	assert.ErrorIs(t, err, ErrLedgerUnavailable)
}

func ownedAssetJSON(name, issuer string, units int64, mci *int64) string {
	item := fmt.Sprintf(`{"data":{"issuedAsset":{"name":%q,"issuerIdentity":%q},"numberOfUnits":"%d"`, name, issuer, units)
	if mci != nil {
		item += fmt.Sprintf(`,"managingContractIndex":%d`, *mci)
	}
	return item + `}}`
}

func TestOwnedAssetUnits(t *testing.T) {
	wallet := testIdentity("WALLET")
	issuer := testIdentity("QXMRISSUER")
	other := testIdentity("OTHERISSUER")
	qx := int64(1)
	notQX := int64(7)

	items := strings.Join([]string{
		ownedAssetJSON("QXMR", string(issuer), 100, &qx),
		ownedAssetJSON("QXMR", string(issuer), 250, &qx), // duplicate entry, larger wins
		ownedAssetJSON("QXMR", string(other), 999, &qx),  // wrong issuer
		ownedAssetJSON("QXMR", string(issuer), 500, &notQX),
		ownedAssetJSON("QEARN", string(issuer), 400, &qx),
	}, ",")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/assets/"+string(wallet)+"/owned", r.URL.Path)
		fmt.Fprintf(w, `{"ownedAssets":[%s]}`, items)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)

	units, err := c.OwnedAssetUnits(context.Background(), wallet, "qxmr", issuer, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), units)

	// No issuer filter: the wrong-issuer entry becomes eligible.
	units, err = c.OwnedAssetUnits(context.Background(), wallet, "QXMR", "", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(999), units)

	units, err = c.OwnedAssetUnits(context.Background(), wallet, "MISSING", "", 1)
	require.NoError(t, err)
	assert.Zero(t, units, "absence is zero, not an error")
}

func TestGetOwnedAssetsNestedDataShape(t *testing.T) {
	wallet := testIdentity("WALLET")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"ownedAssets":[%s]}}`, ownedAssetJSON("QEARN", "", 42, nil))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)
	units, err := c.OwnedAssetUnits(context.Background(), wallet, "QEARN", "", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), units, "entry without managingContractIndex passes the filter")
}
