package book

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

func newOrder(side types.OrderSide, price, qty string, createdAt time.Time) *types.Order {
	p := decimal.RequireFromString(price)
	q := decimal.RequireFromString(qty)
	return &types.Order{
		ID:                uuid.New(),
		Side:              side,
		Price:             p,
		Quantity:          q,
		RemainingQuantity: q,
		CreatedAt:         createdAt,
		Status:            types.OrderRevealed,
	}
}

func TestPriceTimePriority(t *testing.T) {
	b := NewOrderBook("BASE", "QUOTE")
	t0 := time.Now()

	worse := newOrder(types.Buy, "99", "1", t0)
	better := newOrder(types.Buy, "100", "1", t0.Add(time.Second))
	tie1 := newOrder(types.Buy, "100", "1", t0.Add(2*time.Second))
	tie2 := newOrder(types.Buy, "100", "1", t0.Add(3*time.Second))

	b.Add(worse)
	b.Add(tie2)
	b.Add(better)
	b.Add(tie1)

	if got := b.PeekBestBid(); got.ID != better.ID {
		t.Fatalf("expected best-price order first, got price %s", got.Price)
	}
	b.Remove(better.ID)
	if got := b.PeekBestBid(); got.ID != tie1.ID {
		t.Fatalf("expected earliest tie-break order, got id %v", got.ID)
	}
}

func TestAskOrderingIsAscending(t *testing.T) {
	b := NewOrderBook("BASE", "QUOTE")
	t0 := time.Now()

	high := newOrder(types.Sell, "105", "1", t0)
	low := newOrder(types.Sell, "100", "1", t0)

	b.Add(high)
	b.Add(low)

	if got := b.PeekBestAsk(); got.ID != low.ID {
		t.Fatalf("expected lowest ask first, got price %s", got.Price)
	}
}

func TestRemoveAndGet(t *testing.T) {
	b := NewOrderBook("BASE", "QUOTE")
	o := newOrder(types.Buy, "100", "1", time.Now())
	b.Add(o)

	if _, ok := b.Get(o.ID); !ok {
		t.Fatal("expected order to be present after Add")
	}
	if !b.Remove(o.ID) {
		t.Fatal("Remove should report true for a present order")
	}
	if b.Remove(o.ID) {
		t.Fatal("second Remove of the same id should report false")
	}
	if _, ok := b.Get(o.ID); ok {
		t.Fatal("order should be absent after Remove")
	}
}

func TestBookSetLazyIdempotent(t *testing.T) {
	s := NewSet()
	a := s.GetOrCreate("BASE", "QUOTE")
	b := s.GetOrCreate("BASE", "QUOTE")
	if a != b {
		t.Fatal("GetOrCreate should return the same book for the same pair")
	}
	if s.Count() != 1 {
		t.Fatalf("expected 1 book, got %d", s.Count())
	}
}
