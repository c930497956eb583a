package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/config"
	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/metrics"
)

// Coordinator is the External-Session Coordinator (C4): one engine-owned
// connection plus a lazily-opened per-user connection pool, running the
// initial engine connect in Start through a circuit breaker (the lazy
// reconnect in engineConn does not use it) and caching bearer tokens for
// fast re-auth.
type Coordinator struct {
	cfg    config.Coordinator
	logger *zap.Logger

	engineSigner *ECDSASigner
	engineTyped  *EIP712Signer

	engineMu sync.Mutex
	engine   *conn
	breaker  *gobreaker.CircuitBreaker

	usersMu sync.Mutex
	users   map[string]*conn

	tokens  *cache.Cache
	metrics *metrics.Collector
}

// New constructs a Coordinator. Call Start to open the engine connection.
// metricsCollector may be nil, in which case instrumentation is skipped.
func New(cfg config.Coordinator, engineSigner *ECDSASigner, engineTyped *EIP712Signer, logger *zap.Logger, metricsCollector *metrics.Collector) *Coordinator {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "coordinator-engine-conn",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("coordinator circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Coordinator{
		cfg:          cfg,
		logger:       logger,
		engineSigner: engineSigner,
		engineTyped:  engineTyped,
		breaker:      breaker,
		users:        make(map[string]*conn),
		tokens:       cache.New(cache.NoExpiration, 10*time.Minute),
		metrics:      metricsCollector,
	}
}

// Start opens the engine connection, reconnecting with exponential backoff
// through the circuit breaker if the first attempt fails.
func (c *Coordinator) Start(ctx context.Context) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.reconnectEngine(ctx)
	})
	return err
}

func (c *Coordinator) reconnectEngine(ctx context.Context) error {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()

	backoff := 500 * time.Millisecond
	const maxBackoff = 30 * time.Second
	var lastErr error
	for attempt := 0; attempt < 6; attempt++ {
		conn, err := dial(ctx, c.cfg.EngineURL, c.logger, time.Duration(c.cfg.PingIntervalMs)*time.Millisecond)
		if err == nil {
			c.engine = conn
			if c.metrics != nil {
				c.metrics.SetEngineConnected(true)
			}
			return nil
		}
		lastErr = err
		c.logger.Warn("engine connection dial failed, backing off",
			zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	if c.metrics != nil {
		c.metrics.SetEngineConnected(false)
	}
	return derrors.Wrap(lastErr, derrors.Unreachable, "exhausted reconnect attempts to clearing network")
}

func (c *Coordinator) engineConn(ctx context.Context) (*conn, error) {
	c.engineMu.Lock()
	existing := c.engine
	c.engineMu.Unlock()
	if existing != nil {
		select {
		case <-existing.closed:
		default:
			return existing, nil
		}
	}
	if err := c.reconnectEngine(ctx); err != nil {
		return nil, err
	}
	c.engineMu.Lock()
	defer c.engineMu.Unlock()
	return c.engine, nil
}

func (c *Coordinator) userConn(ctx context.Context, owner string) (*conn, error) {
	c.usersMu.Lock()
	existing, ok := c.users[owner]
	c.usersMu.Unlock()
	if ok {
		select {
		case <-existing.closed:
		default:
			return existing, nil
		}
	}

	conn, err := dial(ctx, c.cfg.EngineURL, c.logger, time.Duration(c.cfg.PingIntervalMs)*time.Millisecond)
	if err != nil {
		return nil, err
	}
	c.usersMu.Lock()
	c.users[owner] = conn
	c.usersMu.Unlock()
	return conn, nil
}

func (c *Coordinator) timeout(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (c *Coordinator) engineCall(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	start := time.Now()
	conn, err := c.engineConn(ctx)
	if err != nil {
		c.recordRPC(method, start, err)
		return nil, err
	}
	sig, err := c.engineSigner.Sign([]byte(method))
	if err != nil {
		c.recordRPC(method, start, err)
		return nil, derrors.Wrap(err, derrors.Fatal, "signing engine RPC")
	}
	resp, err := conn.call(ctx, method, params, c.timeout(c.cfg.ResponseTimeoutMs), sig)
	c.recordRPC(method, start, err)
	return resp, err
}

func (c *Coordinator) userCall(ctx context.Context, owner, method string, params interface{}, timeout time.Duration) (json.RawMessage, error) {
	start := time.Now()
	conn, err := c.userConn(ctx, owner)
	if err != nil {
		c.recordRPC(method, start, err)
		return nil, err
	}

	var sig []byte
	if cached, ok := c.tokens.Get(tokenCacheKey(owner)); ok {
		sig = []byte(fmt.Sprintf("bearer:%s", cached.(string)))
	}
	resp, err := conn.call(ctx, method, params, timeout, sig)
	c.recordRPC(method, start, err)
	return resp, err
}

func (c *Coordinator) recordRPC(method string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordCoordinatorRPC(method, outcome, time.Since(start))
}

func tokenCacheKey(owner string) string {
	return "token:" + owner
}
