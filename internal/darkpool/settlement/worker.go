// Package settlement implements the Settlement Worker (C5): a polling
// loop that claims PENDING matches and advances each through the
// prove-and-settle state machine of spec §4.4. Grounded on the teacher's
// ants-backed worker pool (internal/architecture/fx/workerpool/worker_pool.go)
// for per-cycle bounded parallelism, and on its poll/ticker shape used
// throughout internal/orders/matching for periodic background work.
package settlement

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/chain"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/config"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/coordinator"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/metrics"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/notify"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/store"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/zkproof"
)

// sessionKeyApplication is the fixed application name session keys are
// scoped under for settlement RPCs (spec §4.4 step 1's "three session
// keys": buyer, seller, engine).
const sessionKeyApplication = "settlement"

// Stats are the worker's running counters.
type Stats struct {
	MatchesSettled uint64
	MatchesFailed  uint64
}

// Worker polls the durable store for PENDING matches and advances each
// through claim -> prove/settle -> app-session swap -> SETTLED, per spec
// §4.4. On-chain calls are skipped when no custody/router address is
// configured (test mode, per spec §6's configuration table).
type Worker struct {
	cfg      config.Settlement
	chainCfg config.Chain
	store    *store.Store
	chain    chain.Client
	proofGen zkproof.Generator
	coord    *coordinator.Coordinator
	assets   *coordinator.AssetMap
	sink     notify.Sink
	logger   *zap.Logger
	metrics  *metrics.Collector

	pool    *ants.Pool
	limiter *rate.Limiter

	testMode bool

	matchesSettled uint64
	matchesFailed  uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Worker. Call Start to begin polling. metricsCollector may
// be nil, in which case instrumentation is skipped.
func New(
	cfg config.Settlement,
	chainCfg config.Chain,
	st *store.Store,
	chainClient chain.Client,
	proofGen zkproof.Generator,
	coord *coordinator.Coordinator,
	assets *coordinator.AssetMap,
	sink notify.Sink,
	logger *zap.Logger,
	metricsCollector *metrics.Collector,
) (*Worker, error) {
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	pool, err := ants.NewPool(batchSize)
	if err != nil {
		return nil, err
	}

	return &Worker{
		cfg:      cfg,
		chainCfg: chainCfg,
		store:    st,
		chain:    chainClient,
		proofGen: proofGen,
		coord:    coord,
		assets:   assets,
		sink:     sink,
		logger:   logger,
		metrics:  metricsCollector,
		pool:     pool,
		limiter:  rate.NewLimiter(rate.Limit(5), 10),
		testMode: chainCfg.RouterAddress == "" && chainCfg.CustodyAddress == "",
	}, nil
}

// Start spawns the polling goroutine, firing every poll_interval_ms.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	interval := time.Duration(w.cfg.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 2 * time.Second
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runCycle(ctx)
			}
		}
	}()
}

// Stop cancels the poll loop and releases the worker pool. In-flight
// matches from the final cycle are left SETTLING; their claim prevents
// duplicate processing on restart, per spec §4.4's at-most-once guarantee.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.pool.Release()
}

// GetStats returns a point-in-time snapshot of the worker's counters.
func (w *Worker) GetStats() Stats {
	return Stats{
		MatchesSettled: atomic.LoadUint64(&w.matchesSettled),
		MatchesFailed:  atomic.LoadUint64(&w.matchesFailed),
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	matches, err := w.store.ListPendingMatches(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("settlement poll: failed to list pending matches", zap.Error(err))
		return
	}
	if w.metrics != nil {
		w.metrics.SetPendingMatches(len(matches))
	}

	var cycle sync.WaitGroup
	for _, m := range matches {
		m := m
		cycle.Add(1)
		err := w.pool.Submit(func() {
			defer cycle.Done()
			w.processMatch(ctx, m)
		})
		if err != nil {
			cycle.Done()
			w.logger.Warn("settlement pool saturated, match deferred to next cycle",
				zap.String("match_id", m.ID.String()), zap.Error(err))
		}
	}
	cycle.Wait()
}
