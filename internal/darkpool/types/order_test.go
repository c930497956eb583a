package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusIsTerminal(t *testing.T) {
	terminal := []OrderStatus{OrderFilled, OrderCancelled, OrderExpired}
	for _, s := range terminal {
		assert.Truef(t, s.IsTerminal(), "expected %s to be terminal", s)
	}
	nonTerminal := []OrderStatus{OrderCommitted, OrderRevealed, OrderPartiallyFilled}
	for _, s := range nonTerminal {
		assert.Falsef(t, s.IsTerminal(), "expected %s to not be terminal", s)
	}
}

func TestOrderStatusIsActive(t *testing.T) {
	assert.True(t, OrderRevealed.IsActive())
	assert.True(t, OrderPartiallyFilled.IsActive())
	assert.False(t, OrderCommitted.IsActive())
	assert.False(t, OrderFilled.IsActive())
}

func TestDeriveTokensForBuyOrder(t *testing.T) {
	o := &Order{Side: Buy, BaseToken: "ETH", QuoteToken: "USDC"}
	o.DeriveTokens()
	assert.Equal(t, "USDC", o.SellToken)
	assert.Equal(t, "ETH", o.BuyToken)
}

func TestDeriveTokensForSellOrder(t *testing.T) {
	o := &Order{Side: Sell, BaseToken: "ETH", QuoteToken: "USDC"}
	o.DeriveTokens()
	assert.Equal(t, "ETH", o.SellToken)
	assert.Equal(t, "USDC", o.BuyToken)
}

func TestDerivePriceBoundsAppliesVarianceSymmetrically(t *testing.T) {
	o := &Order{Price: decimal.RequireFromString("100"), VarianceBPS: 100}
	o.DerivePriceBounds()
	assert.True(t, o.MinPrice.Equal(decimal.RequireFromString("99")), "expected min_price 99, got %s", o.MinPrice)
	assert.True(t, o.MaxPrice.Equal(decimal.RequireFromString("101")), "expected max_price 101, got %s", o.MaxPrice)
}

func TestDerivePriceBoundsZeroVarianceCollapsesToPrice(t *testing.T) {
	o := &Order{Price: decimal.RequireFromString("50"), VarianceBPS: 0}
	o.DerivePriceBounds()
	assert.True(t, o.MinPrice.Equal(o.Price))
	assert.True(t, o.MaxPrice.Equal(o.Price))
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := &Order{ExpiresAt: &past}
	assert.True(t, expired.IsExpired(now))

	notExpired := &Order{ExpiresAt: &future}
	assert.False(t, notExpired.IsExpired(now))

	noExpiry := &Order{}
	assert.False(t, noExpiry.IsExpired(now), "expected an order with no expiry to never expire")
}
