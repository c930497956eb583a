package settlement

import (
	"context"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/chain"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/config"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

type stubChainClient struct {
	markFullySettledCalls int
}

func (s *stubChainClient) Commitments(ctx context.Context, orderID string) (chain.Commitment, error) {
	return chain.Commitment{Status: chain.CommitmentActive, OrderHash: big.NewInt(1), SettledAmount: big.NewInt(0)}, nil
}
func (s *stubChainClient) CommitOnly(ctx context.Context, orderID string, orderHash *big.Int) error {
	return nil
}
func (s *stubChainClient) DepositAndCommit(ctx context.Context, orderID string, orderHash, amount *big.Int) error {
	return nil
}
func (s *stubChainClient) ProveAndSettle(ctx context.Context, in chain.SettleInputs) (string, error) {
	return "0xdeadbeef", nil
}
func (s *stubChainClient) MarkFullySettled(ctx context.Context, orderID string) (string, error) {
	s.markFullySettledCalls++
	return "0xfeedface", nil
}
func (s *stubChainClient) CreateChannel(ctx context.Context, owner, token string, chainID int64) (chain.ChannelInfo, error) {
	return chain.ChannelInfo{}, nil
}
func (s *stubChainClient) Deposit(ctx context.Context, channelID string, amount *big.Int) error {
	return nil
}
func (s *stubChainClient) Resize(ctx context.Context, channelID string, resizeAmt, allocateAmt *big.Int) error {
	return nil
}

func newTestWorker(testMode bool, client chain.Client) *Worker {
	chainCfg := config.Chain{}
	if !testMode {
		chainCfg.RouterAddress = "0xrouter"
		chainCfg.CustodyAddress = "0xcustody"
	}
	return &Worker{
		chainCfg: chainCfg,
		chain:    client,
		logger:   zap.NewNop(),
		limiter:  rate.NewLimiter(rate.Inf, 1),
		testMode: testMode,
	}
}

func TestOrderDetailInputsIncludesQuantityPriceVariance(t *testing.T) {
	o := &types.Order{
		Quantity:    decimal.RequireFromString("2.5"),
		Price:       decimal.RequireFromString("10"),
		VarianceBPS: 50,
	}
	inputs := orderDetailInputs(o)
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}
	if inputs[2].Int64() != 50 {
		t.Fatalf("expected variance input 50, got %v", inputs[2])
	}
}

func TestBigFromDecimalShiftsEightDecimals(t *testing.T) {
	got := bigFromDecimal(decimal.RequireFromString("1"))
	want := big.NewInt(100000000)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMarkFullySettledIfDoneSkipsWhenRemainingPositive(t *testing.T) {
	client := &stubChainClient{}
	w := newTestWorker(false, client)
	o := &types.Order{ID: uuid.New(), RemainingQuantity: decimal.RequireFromString("1")}
	if err := w.markFullySettledIfDone(context.Background(), o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.markFullySettledCalls != 0 {
		t.Fatalf("expected no on-chain call while remaining quantity is positive")
	}
}

func TestMarkFullySettledIfDoneSkipsInTestMode(t *testing.T) {
	client := &stubChainClient{}
	w := newTestWorker(true, client)
	o := &types.Order{ID: uuid.New(), RemainingQuantity: decimal.Zero}
	if err := w.markFullySettledIfDone(context.Background(), o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.markFullySettledCalls != 0 {
		t.Fatalf("expected no on-chain call in test mode")
	}
}

func TestMarkFullySettledIfDoneCallsChainWhenRemainingZero(t *testing.T) {
	client := &stubChainClient{}
	w := newTestWorker(false, client)
	o := &types.Order{ID: uuid.New(), RemainingQuantity: decimal.Zero}
	if err := w.markFullySettledIfDone(context.Background(), o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.markFullySettledCalls != 1 {
		t.Fatalf("expected exactly one on-chain call, got %d", client.markFullySettledCalls)
	}
}

func TestReadCommitmentsReturnsZeroedCommitmentsInTestMode(t *testing.T) {
	w := newTestWorker(true, &stubChainClient{})
	buy, sell, err := w.readCommitments(context.Background(), "buy-1", "sell-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buy.SettledAmount.Sign() != 0 || sell.SettledAmount.Sign() != 0 {
		t.Fatalf("expected zeroed settled amounts in test mode")
	}
}
