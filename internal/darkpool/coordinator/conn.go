package coordinator

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
)

// waiter is a one-shot resolver for a single correlated request, matched
// by integer request id (spec §4.3).
type waiter struct {
	resultCh chan ResponseFrame
	timer    *time.Timer
}

// conn wraps one websocket connection: a write mutex (the underlying
// stream serializes writes), a reader goroutine routing frames by request
// id, and a periodic keepalive ping. One process-wide conn is
// engine-owned; additional conns are opened lazily per user.
type conn struct {
	ws     *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]*waiter

	nextID int64

	pingInterval time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

func dial(ctx context.Context, url string, logger *zap.Logger, pingInterval time.Duration) (*conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.Unreachable, "dialing clearing network")
	}
	c := &conn{
		ws:           ws,
		logger:       logger,
		pending:      make(map[int64]*waiter),
		pingInterval: pingInterval,
		closed:       make(chan struct{}),
	}
	go c.readLoop()
	go c.keepaliveLoop()
	return c, nil
}

func (c *conn) readLoop() {
	defer c.closeWithWaiterFailure()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Warn("coordinator connection read failed", zap.Error(err))
			return
		}
		var resp ResponseFrame
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Warn("coordinator dropped unparseable frame", zap.Error(err))
			continue
		}
		c.resolve(resp)
	}
}

func (c *conn) keepaliveLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Warn("coordinator keepalive ping failed", zap.Error(err))
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *conn) resolve(resp ResponseFrame) {
	c.pendingMu.Lock()
	w, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.pendingMu.Unlock()
	if !ok {
		return
	}
	w.timer.Stop()
	w.resultCh <- resp
}

func (c *conn) closeWithWaiterFailure() {
	c.closeOnce.Do(func() { close(c.closed) })
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = make(map[int64]*waiter)
	c.pendingMu.Unlock()
	for _, w := range pending {
		w.timer.Stop()
		w.resultCh <- ResponseFrame{ErrorText: "connection closed"}
	}
}

// call sends a request frame and blocks for a correlated response or
// timeout, per spec §4.3's request/response correlation and per-RPC
// timeout.
func (c *conn) call(ctx context.Context, method string, params interface{}, timeout time.Duration, sig []byte) (json.RawMessage, error) {
	paramBytes, err := json.Marshal(params)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.ValidationError, "marshalling RPC params")
	}

	id := atomic.AddInt64(&c.nextID, 1)
	req := RequestFrame{ID: id, Method: method, Params: paramBytes, Timestamp: time.Now().Unix(), Sig: sig}

	w := &waiter{resultCh: make(chan ResponseFrame, 1)}
	w.timer = time.AfterFunc(timeout, func() {
		c.pendingMu.Lock()
		if _, ok := c.pending[id]; ok {
			delete(c.pending, id)
		} else {
			c.pendingMu.Unlock()
			return
		}
		c.pendingMu.Unlock()
		w.resultCh <- ResponseFrame{ErrorText: "timeout"}
	})

	c.pendingMu.Lock()
	c.pending[id] = w
	c.pendingMu.Unlock()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.ValidationError, "marshalling request frame")
	}

	c.writeMu.Lock()
	err = c.ws.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return nil, derrors.Wrap(err, derrors.Unreachable, "writing request frame")
	}

	select {
	case resp := <-w.resultCh:
		if resp.ErrorText == "timeout" {
			return nil, derrors.New(derrors.Timeout, "coordinator RPC "+method+" timed out")
		}
		if resp.ErrorText != "" {
			return nil, derrors.New(derrors.ConsensusRejected, "coordinator RPC "+method+" rejected: "+resp.ErrorText)
		}
		return resp.Payload, nil
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		w.timer.Stop()
		return nil, derrors.Wrap(ctx.Err(), cancelErrorCode(ctx), "coordinator RPC "+method+" cancelled")
	}
}

func cancelErrorCode(ctx context.Context) derrors.ErrorCode {
	if ctx.Err() == context.DeadlineExceeded {
		return derrors.Timeout
	}
	return derrors.Unreachable
}

func (c *conn) close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.ws.Close()
}
