package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"
)

// JSONRPCClient is a minimal JSON-RPC-over-HTTP implementation of Client,
// addressing the custody contract at RouterAddress/CustodyAddress through
// an RPC node at RPCURL. It does not decode ABI; every call round-trips a
// method name and a flat parameter list, matching the level of detail a
// core that treats the contract as opaque actually needs.
type JSONRPCClient struct {
	RPCURL          string
	RouterAddress   string
	CustodyAddress  string
	ChainID         int64
	httpClient      *http.Client
}

// NewJSONRPCClient constructs a client bound to an RPC endpoint and the
// router/custody contract addresses.
func NewJSONRPCClient(rpcURL, routerAddress, custodyAddress string, chainID int64) *JSONRPCClient {
	return &JSONRPCClient{
		RPCURL:         rpcURL,
		RouterAddress:  routerAddress,
		CustodyAddress: custodyAddress,
		ChainID:        chainID,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("chain: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RPCURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chain: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chain: rpc call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("chain: decode response for %s: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("chain: %s reverted: %s", method, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

func (c *JSONRPCClient) Commitments(ctx context.Context, orderID string) (Commitment, error) {
	var result struct {
		Status        string `json:"status"`
		OrderHash     string `json:"orderHash"`
		SettledAmount string `json:"settledAmount"`
	}
	if err := c.call(ctx, "darkpool_commitments", []interface{}{c.CustodyAddress, orderID}, &result); err != nil {
		return Commitment{}, err
	}

	orderHash, ok := new(big.Int).SetString(result.OrderHash, 10)
	if !ok {
		orderHash = big.NewInt(0)
	}
	settled, ok := new(big.Int).SetString(result.SettledAmount, 10)
	if !ok {
		settled = big.NewInt(0)
	}

	return Commitment{
		Status:        CommitmentStatus(result.Status),
		OrderHash:     orderHash,
		SettledAmount: settled,
	}, nil
}

func (c *JSONRPCClient) CommitOnly(ctx context.Context, orderID string, orderHash *big.Int) error {
	return c.call(ctx, "darkpool_commitOnly", []interface{}{c.CustodyAddress, orderID, orderHash.String()}, nil)
}

func (c *JSONRPCClient) DepositAndCommit(ctx context.Context, orderID string, orderHash *big.Int, amount *big.Int) error {
	return c.call(ctx, "darkpool_depositAndCommit", []interface{}{c.CustodyAddress, orderID, orderHash.String(), amount.String()}, nil)
}

func (c *JSONRPCClient) ProveAndSettle(ctx context.Context, in SettleInputs) (string, error) {
	public := make([]string, len(in.PublicInputs))
	for i, p := range in.PublicInputs {
		public[i] = p.String()
	}
	var result struct {
		TxHash string `json:"txHash"`
	}
	err := c.call(ctx, "darkpool_proveAndSettle", []interface{}{
		c.CustodyAddress, in.OrderIDBuy, in.OrderIDSell, in.Proof, public, in.Timestamp,
	}, &result)
	return result.TxHash, err
}

func (c *JSONRPCClient) MarkFullySettled(ctx context.Context, orderID string) (string, error) {
	var result struct {
		TxHash string `json:"txHash"`
	}
	err := c.call(ctx, "darkpool_markFullySettled", []interface{}{c.CustodyAddress, orderID}, &result)
	return result.TxHash, err
}

func (c *JSONRPCClient) CreateChannel(ctx context.Context, owner, token string, chainID int64) (ChannelInfo, error) {
	var result ChannelInfo
	err := c.call(ctx, "darkpool_createChannel", []interface{}{c.RouterAddress, owner, token, chainID}, &result)
	return result, err
}

func (c *JSONRPCClient) Deposit(ctx context.Context, channelID string, amount *big.Int) error {
	return c.call(ctx, "darkpool_deposit", []interface{}{c.RouterAddress, channelID, amount.String()}, nil)
}

func (c *JSONRPCClient) Resize(ctx context.Context, channelID string, resizeAmt, allocateAmt *big.Int) error {
	return c.call(ctx, "darkpool_resize", []interface{}{c.RouterAddress, channelID, resizeAmt.String(), allocateAmt.String()}, nil)
}
