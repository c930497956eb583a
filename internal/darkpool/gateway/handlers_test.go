package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestToOrderViewFormatsDecimalsAsStrings(t *testing.T) {
	o := &types.Order{
		ID:                uuid.New(),
		OwnerAddress:      "0xabc",
		Side:              types.Buy,
		BaseToken:         "ETH",
		QuoteToken:        "USDC",
		Quantity:          decimal.RequireFromString("1.5"),
		Price:             decimal.RequireFromString("2000"),
		FilledQuantity:    decimal.Zero,
		RemainingQuantity: decimal.RequireFromString("1.5"),
		Status:            types.OrderRevealed,
		CreatedAt:         time.Unix(0, 0).UTC(),
	}
	view := toOrderView(o)
	if view.Quantity != "1.5" || view.Price != "2000" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Status != "REVEALED" {
		t.Fatalf("expected REVEALED status, got %s", view.Status)
	}
}

func TestToMatchViewCarriesOptionalFields(t *testing.T) {
	tx := "0xdeadbeef"
	m := &types.Match{
		ID:               uuid.New(),
		BuyOrderID:       uuid.New(),
		SellOrderID:      uuid.New(),
		BaseToken:        "ETH",
		QuoteToken:       "USDC",
		Quantity:         decimal.RequireFromString("1"),
		Price:            decimal.RequireFromString("2000"),
		SettlementStatus: types.SettlementSettled,
		SettlementTxHash: &tx,
		MatchedAt:        time.Unix(0, 0).UTC(),
	}
	view := toMatchView(m)
	if view.SettlementTxHash == nil || *view.SettlementTxHash != tx {
		t.Fatalf("expected tx hash to be carried through, got %+v", view)
	}
}

func TestToPriceLevelViewsPreservesOrder(t *testing.T) {
	levels := []types.PriceLevel{
		{Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("2"), OrderCount: 3},
		{Price: decimal.RequireFromString("99"), Quantity: decimal.RequireFromString("1"), OrderCount: 1},
	}
	views := toPriceLevelViews(levels)
	if len(views) != 2 || views[0].Price != "100" || views[1].OrderCount != 1 {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestQueryLimitDefaultsWhenAbsentOrInvalid(t *testing.T) {
	for _, raw := range []string{"", "not-a-number", "-5", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/orders?limit="+raw, nil)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = req
		if got := queryLimit(c); got != defaultListLimit {
			t.Fatalf("limit=%q: expected default %d, got %d", raw, defaultListLimit, got)
		}
	}
}

func TestQueryLimitHonorsValidValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders?limit=7", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if got := queryLimit(c); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestRespondErrorMapsDarkpoolErrorToHTTPStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, derrors.New(derrors.CommitmentMismatch, "bad hash"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for CommitmentMismatch, got %d", w.Code)
	}
}

func TestRespondErrorFallsBackToBadRequestForPlainError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, http.ErrBodyNotAllowed)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-DarkpoolError, got %d", w.Code)
	}
}
