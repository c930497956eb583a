package book

import (
	"container/heap"
	"sync"

	"github.com/google/uuid"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

// OrderBook is the per-(base,quote) in-memory structure: two heaps (bids,
// asks) plus a lookup map, all protected by a single reader-writer lock.
type OrderBook struct {
	BaseToken  string
	QuoteToken string

	mu     sync.RWMutex
	bids   *orderHeap
	asks   *orderHeap
	lookup map[uuid.UUID]*types.Order
}

// NewOrderBook constructs an empty book for the given pair.
func NewOrderBook(baseToken, quoteToken string) *OrderBook {
	b := &OrderBook{
		BaseToken:  baseToken,
		QuoteToken: quoteToken,
		bids:       &orderHeap{isBuy: true},
		asks:       &orderHeap{isBuy: false},
		lookup:     make(map[uuid.UUID]*types.Order),
	}
	heap.Init(b.bids)
	heap.Init(b.asks)
	return b
}

// Add pushes an order to its side's heap and registers it in the lookup
// map. O(log n).
func (b *OrderBook) Add(o *types.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lookup[o.ID] = o
	if o.Side == types.Buy {
		heap.Push(b.bids, o)
	} else {
		heap.Push(b.asks, o)
	}
}

// Remove excises an order by id from whichever heap holds it. O(log n).
// Reports false if the order was not present.
func (b *OrderBook) Remove(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.lookup[id]
	if !ok {
		return false
	}
	delete(b.lookup, id)

	var h *orderHeap
	if o.Side == types.Buy {
		h = b.bids
	} else {
		h = b.asks
	}
	if idx := h.indexOf(id); idx >= 0 {
		heap.Remove(h, idx)
	}
	return true
}

// Get returns the order with the given id, if present. O(1).
func (b *OrderBook) Get(id uuid.UUID) (*types.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.lookup[id]
	return o, ok
}

// PeekBestBid returns the highest-priority resting buy order, or nil. O(1).
func (b *OrderBook) PeekBestBid() *types.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.peek()
}

// PeekBestAsk returns the highest-priority resting sell order, or nil. O(1).
func (b *OrderBook) PeekBestAsk() *types.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.asks.peek()
}

// Snapshot aggregates resting orders into depth-limited price levels on
// both sides, following the teacher's GetSnapshot convention.
func (b *OrderBook) Snapshot(depth int) types.OrderBookSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return types.OrderBookSnapshot{
		BaseToken:  b.BaseToken,
		QuoteToken: b.QuoteToken,
		Bids:       aggregateLevels(b.bids.orders, depth),
		Asks:       aggregateLevels(b.asks.orders, depth),
	}
}

func aggregateLevels(orders []*types.Order, depth int) []types.PriceLevel {
	byPrice := make(map[string]*types.PriceLevel)
	var order []string

	for _, o := range orders {
		key := o.Price.String()
		lvl, ok := byPrice[key]
		if !ok {
			lvl = &types.PriceLevel{Price: o.Price}
			byPrice[key] = lvl
			order = append(order, key)
		}
		lvl.Quantity = lvl.Quantity.Add(o.RemainingQuantity)
		lvl.OrderCount++
	}

	levels := make([]types.PriceLevel, 0, len(order))
	for _, key := range order {
		levels = append(levels, *byPrice[key])
	}
	if depth > 0 && len(levels) > depth {
		levels = levels[:depth]
	}
	return levels
}

// Count returns the number of resting bid and ask orders.
func (b *OrderBook) Count() (bids, asks int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.Len(), b.asks.Len()
}
