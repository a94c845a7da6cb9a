package qubicrpc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookupOptions() LookupOptions {
	return LookupOptions{
		LookbackTicks:  1000,
		LookaheadTicks: 50,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func transfersBody(txID string, moneyFlew bool, amount int64) string {
	return fmt.Sprintf(
		`{"transactions":[{"transactions":[{"transaction":{"txId":%q,"sourceId":"SRC","destId":"DST","amount":"%d","tickNumber":9999,"inputType":2,"inputSize":80,"inputHex":"ff"},"moneyFlew":%t}]}]}`,
		txID, amount, moneyFlew,
	)
}

func TestLookupExhaustionCountsQueries(t *testing.T) {
	var tickCalls, transferCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/tick-info":
			tickCalls.Add(1)
			fmt.Fprint(w, `{"tickInfo":{"tick":10000}}`)
		case strings.HasSuffix(r.URL.Path, "/transfers"):
			transferCalls.Add(1)
			fmt.Fprint(w, `{"transactions":[]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	clock := &fakeClock{}
	c := NewClient(srv.URL, srv.URL, clock, nil)
	opts := testLookupOptions()

	_, err := c.GetTransactionDetails(context.Background(), testIdentity("WALLET"), "missing-tx", opts)
	require.ErrorIs(t, err, ErrTransactionNotFinalized)
	assert.Contains(t, err.Error(), "not found")

	// Both endpoint variants are queried on every attempt.
	assert.Equal(t, int64(opts.MaxRetries*2), transferCalls.Load())
	assert.Equal(t, int64(opts.MaxRetries), tickCalls.Load())
	// No sleep after the final attempt.
	assert.Len(t, clock.sleeps, opts.MaxRetries-1)
}

func TestLookupWindowWidensPerAttempt(t *testing.T) {
	var starts []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/tick-info":
			fmt.Fprint(w, `{"tickInfo":{"tick":10000}}`)
		case strings.Contains(r.URL.Path, "/v2/identities/"):
			start, err := strconv.ParseInt(r.URL.Query().Get("startTick"), 10, 64)
			require.NoError(t, err)
			starts = append(starts, start)
			require.Equal(t, "10050", r.URL.Query().Get("endTick"))
			fmt.Fprint(w, `{"transactions":[]}`)
		default:
			fmt.Fprint(w, `{"transactions":[]}`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)
	_, err := c.GetTransactionDetails(context.Background(), testIdentity("WALLET"), "missing-tx", testLookupOptions())
	require.ErrorIs(t, err, ErrTransactionNotFinalized)

	assert.Equal(t, []int64{9000, 8000, 7000}, starts)
}

func TestLookupPendingThenFinalized(t *testing.T) {
	var transferCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/tick-info":
			fmt.Fprint(w, `{"tickInfo":{"tick":10000}}`)
		case strings.HasSuffix(r.URL.Path, "/transfers"):
			// First attempt observes the tx pending on both variants; the
			// second attempt sees it finalized.
			finalized := transferCalls.Add(1) > 2
			fmt.Fprint(w, transfersBody("tx-1", finalized, 100))
		}
	}))
	defer srv.Close()

	clock := &fakeClock{}
	c := NewClient(srv.URL, srv.URL, clock, nil)

	tx, err := c.GetTransactionDetails(context.Background(), testIdentity("WALLET"), "tx-1", testLookupOptions())
	require.NoError(t, err)
	assert.True(t, tx.MoneyFlew)
	assert.Equal(t, "tx-1", tx.TxID)
	assert.Equal(t, int64(100), tx.Amount)
	assert.Equal(t, int64(9999), tx.TickNumber)
	assert.Equal(t, int64(2), tx.InputType)
	assert.Equal(t, "ff", tx.InputHex)
	assert.Len(t, clock.sleeps, 1, "one retry between pending and finalized")
}

func TestLookupPendingExhaustionReportsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/tick-info":
			fmt.Fprint(w, `{"tickInfo":{"tick":10000}}`)
		case strings.HasSuffix(r.URL.Path, "/transfers"):
			fmt.Fprint(w, transfersBody("tx-1", false, 100))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, &fakeClock{}, nil)
	_, err := c.GetTransactionDetails(context.Background(), testIdentity("WALLET"), "tx-1", testLookupOptions())
	require.ErrorIs(t, err, ErrTransactionNotFinalized)
	assert.Contains(t, err.Error(), "moneyFlew=false")
}

func TestLookupLedgerErrorConsumesAttempts(t *testing.T) {
	var tickCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tickCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	clock := &fakeClock{}
	c := NewClient(srv.URL, srv.URL, clock, nil)
	opts := testLookupOptions()

	_, err := c.GetTransactionDetails(context.Background(), testIdentity("WALLET"), "tx-1", opts)
	require.ErrorIs(t, err, ErrTransactionNotFinalized)
	assert.Contains(t, err.Error(), "ledger query failed")
	assert.Equal(t, int64(opts.MaxRetries), tickCalls.Load())
	assert.Len(t, clock.sleeps, opts.MaxRetries-1)
}
