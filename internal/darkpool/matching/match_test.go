package matching

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

func order(side types.OrderSide, price, minPrice, maxPrice, remaining string) *types.Order {
	return &types.Order{
		Side:              side,
		Price:             decimal.RequireFromString(price),
		MinPrice:          decimal.RequireFromString(minPrice),
		MaxPrice:          decimal.RequireFromString(maxPrice),
		RemainingQuantity: decimal.RequireFromString(remaining),
	}
}

func TestExecutionPriceIsMeanWhenInBounds(t *testing.T) {
	buy := order(types.Buy, "101", "99", "103", "1")
	sell := order(types.Sell, "99", "97", "101", "1")

	got := executionPrice(buy, sell)
	want := decimal.RequireFromString("100")
	if !got.Equal(want) {
		t.Fatalf("expected mean price 100, got %s", got)
	}
}

func TestExecutionPriceClampsToSellMinPrice(t *testing.T) {
	buy := order(types.Buy, "80", "78", "82", "1")
	sell := order(types.Sell, "100", "95", "105", "1")

	got := executionPrice(buy, sell)
	if !got.Equal(sell.MinPrice) {
		t.Fatalf("expected clamp to sell.min_price %s, got %s", sell.MinPrice, got)
	}
}

func TestExecutionPriceClampsToBuyMaxPrice(t *testing.T) {
	buy := order(types.Buy, "120", "100", "104", "1")
	sell := order(types.Sell, "100", "95", "105", "1")

	got := executionPrice(buy, sell)
	if !got.Equal(buy.MaxPrice) {
		t.Fatalf("expected clamp to buy.max_price %s, got %s", buy.MaxPrice, got)
	}
}

func TestSideOrdersOrdersByIncomingSide(t *testing.T) {
	incoming := order(types.Buy, "100", "99", "101", "1")
	candidate := order(types.Sell, "99", "98", "100", "1")

	buy, sell := sideOrders(incoming, candidate)
	if buy != incoming || sell != candidate {
		t.Fatal("expected incoming BUY to be classified as buy side")
	}

	incoming2 := order(types.Sell, "99", "98", "100", "1")
	candidate2 := order(types.Buy, "100", "99", "101", "1")
	buy2, sell2 := sideOrders(incoming2, candidate2)
	if buy2 != candidate2 || sell2 != incoming2 {
		t.Fatal("expected incoming SELL to be classified as sell side")
	}
}

func TestFillUpdateMarksFilledWhenRemainingHitsZero(t *testing.T) {
	o := order(types.Buy, "100", "99", "101", "5")
	o.FilledQuantity = decimal.Zero

	u := fillUpdate(o, decimal.RequireFromString("5"))
	if u.Status != types.OrderFilled {
		t.Fatalf("expected OrderFilled, got %s", u.Status)
	}
	if u.RemainingQuantity != "000000000000000000000000000000.000000000000000000" {
		t.Fatalf("expected remaining 0, got %s", u.RemainingQuantity)
	}
}

func TestFillUpdateMarksPartiallyFilledOtherwise(t *testing.T) {
	o := order(types.Buy, "100", "99", "101", "5")
	o.FilledQuantity = decimal.Zero

	u := fillUpdate(o, decimal.RequireFromString("2"))
	if u.Status != types.OrderPartiallyFilled {
		t.Fatalf("expected OrderPartiallyFilled, got %s", u.Status)
	}
	if u.RemainingQuantity != "000000000000000000000000000003.000000000000000000" {
		t.Fatalf("expected remaining 3, got %s", u.RemainingQuantity)
	}
}
