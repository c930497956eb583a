// Package types holds the data model shared across the matching engine,
// settlement worker, coordinator, and durable store.
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderCommitted       OrderStatus = "COMMITTED"
	OrderRevealed        OrderStatus = "REVEALED"
	OrderPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderFilled          OrderStatus = "FILLED"
	OrderCancelled       OrderStatus = "CANCELLED"
	OrderExpired         OrderStatus = "EXPIRED"
)

// IsTerminal reports whether an order can never transition further.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderFilled, OrderCancelled, OrderExpired:
		return true
	default:
		return false
	}
}

// IsActive reports whether the order may currently live in a book.
func (s OrderStatus) IsActive() bool {
	return s == OrderRevealed || s == OrderPartiallyFilled
}

// Order is a bid or ask to trade base token for quote token.
type Order struct {
	ID                uuid.UUID
	OwnerAddress      string
	ChainID           int64
	Side              OrderSide
	BaseToken         string
	QuoteToken        string
	SellToken         string
	BuyToken          string
	Quantity          decimal.Decimal
	Price             decimal.Decimal
	VarianceBPS       int32
	MinPrice          decimal.Decimal
	MaxPrice          decimal.Decimal
	FilledQuantity    decimal.Decimal
	RemainingQuantity decimal.Decimal
	Status            OrderStatus
	CommitmentHash    string
	CreatedAt         time.Time
	ExpiresAt         *time.Time
}

// DeriveTokens fills SellToken/BuyToken from Side/BaseToken/QuoteToken,
// resolving the Open Question left by the spec: a BUY order sells quote and
// buys base; a SELL order sells base and buys quote. Computed once at
// admission and never re-derived.
func (o *Order) DeriveTokens() {
	if o.Side == Buy {
		o.SellToken = o.QuoteToken
		o.BuyToken = o.BaseToken
		return
	}
	o.SellToken = o.BaseToken
	o.BuyToken = o.QuoteToken
}

// DerivePriceBounds computes MinPrice/MaxPrice from Price and VarianceBPS
// per spec: min = price*(10000-variance)/10000, max = price*(10000+variance)/10000.
func (o *Order) DerivePriceBounds() {
	base := decimal.NewFromInt(10000)
	lo := base.Sub(decimal.NewFromInt32(o.VarianceBPS))
	hi := base.Add(decimal.NewFromInt32(o.VarianceBPS))
	o.MinPrice = o.Price.Mul(lo).Div(base)
	o.MaxPrice = o.Price.Mul(hi).Div(base)
}

// IsExpired reports whether the order has passed its expiry time as of now.
func (o *Order) IsExpired(now time.Time) bool {
	return o.ExpiresAt != nil && now.After(*o.ExpiresAt)
}

// PriceLevel aggregates resting quantity at a single price for a book
// snapshot, per spec §6 (`{price, quantity, order_count}`).
type PriceLevel struct {
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	OrderCount int
}

// OrderBookSnapshot is the depth-limited view returned by GetOrderBook.
type OrderBookSnapshot struct {
	BaseToken string
	QuoteToken string
	Bids      []PriceLevel
	Asks      []PriceLevel
}
