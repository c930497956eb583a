package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCommitmentsParsesSuccessfulResponse(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "darkpool_commitments", req.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"status":"ACTIVE","orderHash":"12345","settledAmount":"100"}}`))
	})

	c := NewJSONRPCClient(srv.URL, "0xrouter", "0xcustody", 1)
	commit, err := c.Commitments(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, CommitmentActive, commit.Status)
	assert.Equal(t, "12345", commit.OrderHash.String())
	assert.Equal(t, "100", commit.SettledAmount.String())
}

func TestCommitmentsDefaultsUnparsableNumbersToZero(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"status":"NONE","orderHash":"","settledAmount":""}}`))
	})

	c := NewJSONRPCClient(srv.URL, "0xrouter", "0xcustody", 1)
	commit, err := c.Commitments(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Zero(t, commit.OrderHash.Sign())
	assert.Zero(t, commit.SettledAmount.Sign())
}

func TestCallSurfacesRevertedError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"insufficient balance"}}`))
	})

	c := NewJSONRPCClient(srv.URL, "0xrouter", "0xcustody", 1)
	_, err := c.Commitments(context.Background(), "order-1")
	assert.Error(t, err)
}

func TestProveAndSettleSendsStringifiedPublicInputs(t *testing.T) {
	var captured rpcRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"txHash":"0xabc"}}`))
	})

	c := NewJSONRPCClient(srv.URL, "0xrouter", "0xcustody", 1)
	txHash, err := c.ProveAndSettle(context.Background(), SettleInputs{
		OrderIDBuy:   "buy-1",
		OrderIDSell:  "sell-1",
		Proof:        []byte{1, 2, 3},
		PublicInputs: []*big.Int{big.NewInt(7), big.NewInt(8)},
		Timestamp:    1700000000,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", txHash)
	assert.Equal(t, "darkpool_proveAndSettle", captured.Method)
	assert.Equal(t, []interface{}{"7", "8"}, captured.Params[4])
}
