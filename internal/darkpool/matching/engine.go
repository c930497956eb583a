// Package matching implements the Matching Engine (C3): a configurable
// worker pool consuming from a shared order channel and a shared cancel
// channel, applying the admission contract, candidate selection, and
// atomic fill write spec §4.2 describes. Grounded on the teacher's
// internal/orders/matching engine_core.go/hft_core.go worker-dispatch
// shape (channel-based trade emission, non-blocking enqueue with a
// "channel full" drop, atomic stats counters), generalized from the
// teacher's in-memory-only matching to the spec's store-backed candidate
// selection and conditional-UPDATE cancellation.
package matching

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/book"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/chain"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/commitment"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/config"
	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/metrics"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/store"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

type cancelRequest struct {
	orderID uuid.UUID
	owner   string
	resp    chan error
}

// Stats are the engine's running counters, exposed by GetStats.
type Stats struct {
	OrdersAdmitted  uint64
	OrdersRejected  uint64
	MatchesExecuted uint64
	CandidatesTried uint64
}

// Engine is the matching engine: bounded order/cancel channels drained by
// a fixed worker pool, an outbound match channel for downstream consumers
// (the settlement worker and the notification sink), and a book set
// mirroring resting orders for O(1) peek/get reads.
type Engine struct {
	cfg    config.Config
	store  *store.Store
	books  *book.Set
	chain   chain.Client
	hasher  commitment.Hasher
	logger  *zap.Logger
	metrics *metrics.Collector

	orderCh  chan *types.Order
	cancelCh chan cancelRequest
	matchCh  chan *types.Match

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ordersAdmitted  uint64
	ordersRejected  uint64
	matchesExecuted uint64
	candidatesTried uint64
}

// New constructs an Engine. Call Start to spawn its worker pool. metrics
// may be nil, in which case instrumentation is skipped.
func New(cfg config.Config, st *store.Store, books *book.Set, chainClient chain.Client, hasher commitment.Hasher, logger *zap.Logger, metricsCollector *metrics.Collector) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    st,
		books:    books,
		chain:    chainClient,
		hasher:   hasher,
		logger:   logger,
		metrics:  metricsCollector,
		orderCh:  make(chan *types.Order, cfg.Matcher.OrderChannelSize),
		cancelCh: make(chan cancelRequest, cfg.Matcher.CancelChannelSize),
		matchCh:  make(chan *types.Match, cfg.Matcher.MatchChannelSize),
	}
}

// MatchChannel exposes the outbound match stream for downstream consumers
// (the settlement worker polls the store directly, but the notification
// sink and any future consumer drain this channel).
func (e *Engine) MatchChannel() <-chan *types.Match {
	return e.matchCh
}

// Start spawns the configured worker pool. Each worker consumes from both
// the order channel and the cancel channel.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)
	workers := e.cfg.Matcher.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.runWorker()
	}
	e.logger.Info("matching engine started", zap.Int("workers", workers))
}

// Stop cancels the worker pool and waits for in-flight work to drain. It
// does not close the order/cancel channels; per spec §5 drains are not
// required at shutdown.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *Engine) runWorker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case o := <-e.orderCh:
			e.matchOrder(e.ctx, o)
		case req := <-e.cancelCh:
			req.resp <- e.cancelOrder(e.ctx, req.orderID, req.owner)
		}
	}
}

// Submit runs the admission contract synchronously (persisted COMMITTED
// row, on-chain commitment check, reveal transition) and, on success,
// enqueues the order for matching. Returns ChannelFull if the order
// channel is saturated.
func (e *Engine) Submit(ctx context.Context, o *types.Order) error {
	start := time.Now()

	persisted, err := e.store.GetOrder(ctx, o.ID)
	if err != nil {
		e.reject(string(derrors.ValidationError))
		return derrors.Wrap(err, derrors.ValidationError, "order has no persisted COMMITTED row")
	}
	if persisted.Status != types.OrderCommitted {
		e.reject(string(derrors.CommitmentMismatch))
		return derrors.New(derrors.CommitmentMismatch, "order is not in COMMITTED status")
	}

	onChain, err := e.chain.Commitments(ctx, o.ID.String())
	if err != nil {
		e.reject(string(derrors.Unreachable))
		return derrors.Wrap(err, derrors.Unreachable, "reading on-chain commitment failed")
	}
	if onChain.Status != chain.CommitmentActive {
		e.reject(string(derrors.CommitmentMismatch))
		return derrors.New(derrors.CommitmentMismatch, "on-chain commitment is not ACTIVE")
	}

	expectedHash := e.hasher.Hash(detailTuple(persisted), scalarField(e.cfg))
	if onChain.OrderHash.Cmp(expectedHash) != 0 {
		e.reject(string(derrors.CommitmentMismatch))
		return derrors.New(derrors.CommitmentMismatch, "on-chain orderHash does not match submitted detail tuple")
	}

	persisted.DeriveTokens()
	persisted.DerivePriceBounds()
	if err := e.store.MarkRevealed(ctx, persisted.ID); err != nil {
		e.reject(string(derrors.Code(err)))
		return err
	}
	persisted.Status = types.OrderRevealed

	select {
	case e.orderCh <- persisted:
		atomic.AddUint64(&e.ordersAdmitted, 1)
		if e.metrics != nil {
			e.metrics.RecordAdmission(persisted.BaseToken, persisted.QuoteToken, string(persisted.Side), time.Since(start))
		}
		return nil
	default:
		e.reject(string(derrors.ChannelFull))
		return derrors.New(derrors.ChannelFull, "order channel saturated")
	}
}

func (e *Engine) reject(reason string) {
	atomic.AddUint64(&e.ordersRejected, 1)
	if e.metrics != nil {
		e.metrics.RecordRejection(reason)
	}
}

// Cancel enqueues a cancellation and waits for its result. Non-blocking on
// the cancel channel itself; the wait is on the per-request response
// channel, not on channel capacity.
func (e *Engine) Cancel(ctx context.Context, orderID uuid.UUID, owner string) error {
	req := cancelRequest{orderID: orderID, owner: owner, resp: make(chan error, 1)}
	select {
	case e.cancelCh <- req:
	default:
		return derrors.New(derrors.ChannelFull, "cancel channel saturated")
	}
	select {
	case err := <-req.resp:
		return err
	case <-ctx.Done():
		return derrors.Wrap(ctx.Err(), derrors.Timeout, "cancel request cancelled")
	}
}

func (e *Engine) cancelOrder(ctx context.Context, orderID uuid.UUID, owner string) error {
	cancelled, err := e.store.CancelOrder(ctx, orderID, owner)
	if err != nil {
		return err
	}
	if !cancelled {
		return derrors.New(derrors.OrderTerminal, "order not cancellable: wrong owner or terminal status")
	}
	for _, b := range e.books.All() {
		if b.Remove(orderID) {
			break
		}
	}
	return nil
}

// GetOrderBook returns the depth-limited snapshot for a pair, or false if
// no book exists yet for it.
func (e *Engine) GetOrderBook(baseToken, quoteToken string, depth int) (types.OrderBookSnapshot, bool) {
	b, ok := e.books.Get(baseToken, quoteToken)
	if !ok {
		return types.OrderBookSnapshot{}, false
	}
	return b.Snapshot(depth), true
}

// GetStats returns a point-in-time snapshot of the engine's counters.
func (e *Engine) GetStats() Stats {
	return Stats{
		OrdersAdmitted:  atomic.LoadUint64(&e.ordersAdmitted),
		OrdersRejected:  atomic.LoadUint64(&e.ordersRejected),
		MatchesExecuted: atomic.LoadUint64(&e.matchesExecuted),
		CandidatesTried: atomic.LoadUint64(&e.candidatesTried),
	}
}

// HealthCheck reports whether the engine's worker pool is running.
func (e *Engine) HealthCheck() bool {
	return e.ctx != nil && e.ctx.Err() == nil
}

// RehydrateBooks loads every active order from the durable store into the
// in-memory book set, the init-order step spec §9 requires before the
// worker pool starts accepting traffic.
func (e *Engine) RehydrateBooks(ctx context.Context) error {
	active, err := e.store.ListActiveOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range active {
		e.books.GetOrCreate(o.BaseToken, o.QuoteToken).Add(o)
	}
	e.logger.Info("rehydrated order books", zap.Int("orders", len(active)))
	return nil
}

func detailTuple(o *types.Order) [7]*big.Int {
	return [7]*big.Int{
		bigFromString(o.OwnerAddress),
		bigFromDecimal(o.Quantity),
		bigFromDecimal(o.Price),
		big.NewInt(int64(o.VarianceBPS)),
		big.NewInt(o.ChainID),
		bigFromString(o.BaseToken),
		bigFromString(o.QuoteToken),
	}
}

func bigFromDecimal(d decimal.Decimal) *big.Int {
	return d.Shift(8).Truncate(0).BigInt()
}

func bigFromString(s string) *big.Int {
	h := new(big.Int)
	for _, r := range s {
		h.Lsh(h, 8)
		h.Or(h, big.NewInt(int64(r)))
	}
	return h
}

func scalarField(cfg config.Config) *big.Int {
	f, ok := new(big.Int).SetString(cfg.Chain.SnarkScalarField, 10)
	if !ok {
		return big.NewInt(1)
	}
	return f
}
