// Package book implements the in-memory per-pair order book set (C2):
// dual price-time-priority heaps with a lookup map, protected by a
// reader-writer lock. Grounded on the teacher's
// internal/orders/matching engine_core.go/engine_processors.go OrderHeap,
// generalized from float64 to decimal.Decimal and narrowed from the
// teacher's four-heap (bid/ask/stop-bid/stop-ask) shape to the two heaps
// the spec describes.
package book

import (
	"github.com/google/uuid"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

// orderHeap implements container/heap.Interface over *types.Order pointers.
// With isBuy set it orders by price descending (best bid first); otherwise
// by price ascending (best ask first). Ties break by CreatedAt ascending.
type orderHeap struct {
	orders []*types.Order
	isBuy  bool
}

func (h *orderHeap) Len() int { return len(h.orders) }

func (h *orderHeap) Less(i, j int) bool {
	a, b := h.orders[i], h.orders[j]
	cmp := a.Price.Cmp(b.Price)
	if cmp == 0 {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if h.isBuy {
		return cmp > 0 // higher price first
	}
	return cmp < 0 // lower price first
}

func (h *orderHeap) Swap(i, j int) {
	h.orders[i], h.orders[j] = h.orders[j], h.orders[i]
}

func (h *orderHeap) Push(x interface{}) {
	h.orders = append(h.orders, x.(*types.Order))
}

func (h *orderHeap) Pop() interface{} {
	old := h.orders
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.orders = old[:n-1]
	return item
}

func (h *orderHeap) peek() *types.Order {
	if len(h.orders) == 0 {
		return nil
	}
	return h.orders[0]
}

func (h *orderHeap) indexOf(id uuid.UUID) int {
	for i, o := range h.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
