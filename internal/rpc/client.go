package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/programtest/internal/banks"
	"github.com/LeJamon/programtest/internal/core/account"
	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/core/rent"
	"github.com/LeJamon/programtest/internal/core/sysvar"
)

// Client is a banks.Client, banks.Warper and banks.Scanner reaching a ledger over
// JSON-RPC. Server-side failures come back as errors matching the same
// sentinels a local client returns.
type Client struct {
	url  string
	http *http.Client
}

var (
	_ banks.Client  = (*Client)(nil)
	_ banks.Warper  = (*Client)(nil)
	_ banks.Scanner = (*Client)(nil)
)

// NewClient returns a client for the server at url. A nil httpClient selects
// http.DefaultClient.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, http: httpClient}
}

type envelope struct {
	Result struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		RpcError
	} `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, params, out any) error {
	req := Request{Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
		req.Params = []json.RawMessage{raw}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: http %d: %s", ErrRemote, method, resp.StatusCode, bytes.TrimSpace(data))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if env.Result.Status != "success" {
		rpcErr := env.Result.RpcError
		return rpcErr.Err()
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result.Data, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

// Genesis fetches the genesis configuration the ledger runs with.
func (c *Client) Genesis(ctx context.Context) (genesis.Config, error) {
	var info GenesisInfo
	if err := c.call(ctx, "getGenesis", nil, &info); err != nil {
		return genesis.Config{}, banks.Wrap("get genesis", err)
	}
	return info.Config(), nil
}

func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var res blockhashResult
	if err := c.call(ctx, "getLatestBlockhash", nil, &res); err != nil {
		return solana.Hash{}, banks.Wrap("get latest blockhash", err)
	}
	h, err := solana.HashFromBase58(res.Blockhash)
	return h, banks.Wrap("get latest blockhash", err)
}

func (c *Client) ProcessTransaction(ctx context.Context, tx *solana.Transaction) error {
	wire, err := EncodeTransaction(tx)
	if err != nil {
		return banks.Wrap("process transaction", fmt.Errorf("encode transaction: %w", err))
	}
	return banks.Wrap("process transaction", c.call(ctx, "sendTransaction", transactionParams{Transaction: wire}, nil))
}

func (c *Client) GetAccount(ctx context.Context, addr solana.PublicKey) (*account.Account, error) {
	var res accountResult
	if err := c.call(ctx, "getAccountInfo", addressParams{Address: addr.String()}, &res); err != nil {
		return nil, banks.Wrap("get account", err)
	}
	if res.Value == nil {
		return nil, nil
	}
	acct, err := res.Value.account()
	if err != nil {
		return nil, banks.Wrap("get account", fmt.Errorf("%s: %w", addr, err))
	}
	return acct, nil
}

func (c *Client) GetProgramAccounts(ctx context.Context, owner solana.PublicKey) ([]account.Keyed, error) {
	var res programAccountsResult
	if err := c.call(ctx, "getProgramAccounts", ownerParams{Owner: owner.String()}, &res); err != nil {
		return nil, banks.Wrap("get program accounts", err)
	}
	out := make([]account.Keyed, 0, len(res.Accounts))
	for _, info := range res.Accounts {
		addr, err := solana.PublicKeyFromBase58(info.Pubkey)
		if err != nil {
			return nil, banks.Wrap("get program accounts", fmt.Errorf("pubkey: %w", err))
		}
		if info.Account == nil {
			return nil, banks.Wrap("get program accounts", fmt.Errorf("%s: missing account", addr))
		}
		acct, err := info.Account.account()
		if err != nil {
			return nil, banks.Wrap("get program accounts", fmt.Errorf("%s: %w", addr, err))
		}
		out = append(out, account.Keyed{Address: addr, Account: acct})
	}
	return out, nil
}

func (c *Client) GetClock(ctx context.Context) (sysvar.Clock, error) {
	var res ClockInfo
	if err := c.call(ctx, "getClock", nil, &res); err != nil {
		return sysvar.Clock{}, banks.Wrap("get clock", err)
	}
	return res.clock(), nil
}

func (c *Client) GetRent(ctx context.Context) (rent.Rent, error) {
	var res RentInfo
	if err := c.call(ctx, "getRent", nil, &res); err != nil {
		return rent.Rent{}, banks.Wrap("get rent", err)
	}
	return res.rent(), nil
}

func (c *Client) SetClock(ctx context.Context, clock sysvar.Clock) error {
	return banks.Wrap("set clock", c.call(ctx, "setClock", toClockInfo(clock), nil))
}

func (c *Client) WarpToSlot(ctx context.Context, slot uint64) error {
	return banks.Wrap("warp to slot", c.call(ctx, "warpToSlot", slotParams{Slot: slot}, nil))
}
