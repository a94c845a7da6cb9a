// Package qubicrpc is the read-only ledger gateway: balances, owned assets
// and the transfer-history polling used to confirm claimed transactions.
// Transport shapes live here; modules only see typed results.
package qubicrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/shared/qubic"
)

// Client talks to the public RPC and stats APIs. It is safe for concurrent
// use; the polling lookup suspends only its own caller.
type Client struct {
	http       *resty.Client
	rpcBaseURL string
	apiBaseURL string
	clock      Clock
	logger     *slog.Logger
}

func NewClient(rpcBaseURL, apiBaseURL string, clock Clock, logger *slog.Logger) *Client {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:       resty.New().SetTimeout(45 * time.Second),
		rpcBaseURL: strings.TrimRight(rpcBaseURL, "/"),
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		clock:      clock,
		logger:     logger,
	}
}

// GetTick returns the ledger's current tick.
func (c *Client) GetTick(ctx context.Context) (int64, error) {
	var out struct {
		TickInfo struct {
			Tick *flexInt64 `json:"tick"`
		} `json:"tickInfo"`
	}
	if err := c.getJSON(ctx, c.rpcBaseURL+"/v1/tick-info", nil, &out); err != nil {
		return 0, err
	}
	if out.TickInfo.Tick == nil {
		return 0, fmt.Errorf("%w: tick-info missing tick", ErrLedgerUnavailable)
	}
	return int64(*out.TickInfo.Tick), nil
}

// GetBalance returns the raw base-ledger balance for an identity.
func (c *Client) GetBalance(ctx context.Context, identity qubic.Identity) (int64, error) {
	var out struct {
		Balance struct {
			Balance *flexInt64 `json:"balance"`
		} `json:"balance"`
	}
	if err := c.getJSON(ctx, c.rpcBaseURL+"/v1/balances/"+string(identity), nil, &out); err != nil {
		return 0, err
	}
	if out.Balance.Balance == nil {
		return 0, fmt.Errorf("%w: balances response missing balance", ErrLedgerUnavailable)
	}
	return int64(*out.Balance.Balance), nil
}

// OwnedAsset is one entry of an identity's owned-asset list. Some API
// deployments nest the list under "data"; GetOwnedAssets handles both.
type OwnedAsset struct {
	Data struct {
		IssuedAsset struct {
			Name           string `json:"name"`
			IssuerIdentity string `json:"issuerIdentity"`
		} `json:"issuedAsset"`
		NumberOfUnits         flexInt64  `json:"numberOfUnits"`
		ManagingContractIndex *flexInt64 `json:"managingContractIndex"`
	} `json:"data"`
}

func (c *Client) GetOwnedAssets(ctx context.Context, identity qubic.Identity) ([]OwnedAsset, error) {
	var out struct {
		OwnedAssets []OwnedAsset `json:"ownedAssets"`
		Data        *struct {
			OwnedAssets []OwnedAsset `json:"ownedAssets"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.apiBaseURL+"/v1/assets/"+string(identity)+"/owned", nil, &out); err != nil {
		return nil, err
	}
	if out.OwnedAssets != nil {
		return out.OwnedAssets, nil
	}
	if out.Data != nil {
		return out.Data.OwnedAssets, nil
	}
	return nil, nil
}

// OwnedAssetUnits scans the owned-asset list for assetName, optionally
// filtered by issuer and managing contract index, and returns the maximum
// numberOfUnits seen. Duplicate or ambiguous entries resolve to the largest
// value; absence is 0, not an error.
func (c *Client) OwnedAssetUnits(
	ctx context.Context,
	identity qubic.Identity,
	assetName string,
	issuer qubic.Identity,
	managingContractIndex int64,
) (int64, error) {
	owned, err := c.GetOwnedAssets(ctx, identity)
	if err != nil {
		return 0, err
	}

	wantName := strings.ToUpper(strings.TrimSpace(assetName))
	var best int64
	for _, item := range owned {
		if strings.ToUpper(item.Data.IssuedAsset.Name) != wantName {
			continue
		}
		if issuer != "" {
			entryIssuer, err := qubic.NormalizeIdentity(item.Data.IssuedAsset.IssuerIdentity)
			if err != nil || entryIssuer != issuer {
				continue
			}
		}
		if managingContractIndex >= 0 && item.Data.ManagingContractIndex != nil &&
			int64(*item.Data.ManagingContractIndex) != managingContractIndex {
			continue
		}
		if units := int64(item.Data.NumberOfUnits); units > best {
			best = units
		}
	}
	return best, nil
}

func (c *Client) getJSON(ctx context.Context, url string, params map[string]string, out any) error {
	resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(url)
	if err != nil {
		return fmt.Errorf("%w: request %s: %v", ErrLedgerUnavailable, url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: HTTP %d for %s", ErrLedgerUnavailable, resp.StatusCode(), url)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrLedgerUnavailable, url, err)
	}
	return nil
}

// flexInt64 tolerates RPC nodes that serialize integers as JSON strings.
type flexInt64 int64

func (v *flexInt64) UnmarshalJSON(raw []byte) error {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*v = flexInt64(n)
	return nil
}
