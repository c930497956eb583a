package matching

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/book"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/store"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

// matchOrder runs candidate selection and the matching loop for one
// admitted order, per spec §4.2. It queries the durable store for
// opposing, price-compatible candidates (not the in-memory book alone),
// applies fills transactionally, mirrors them into the book set, and
// rests any unfilled remainder.
func (e *Engine) matchOrder(ctx context.Context, incoming *types.Order) {
	if incoming.IsExpired(time.Now()) {
		_ = e.store.MarkExpired(ctx, incoming.ID)
		return
	}

	bookSet := e.books.GetOrCreate(incoming.BaseToken, incoming.QuoteToken)

	var priceBound decimal.Decimal
	if incoming.Side == types.Buy {
		priceBound = incoming.MaxPrice
	} else {
		priceBound = incoming.MinPrice
	}

	candidates, err := e.store.ListCandidates(ctx, incoming.Side, incoming.BaseToken, incoming.QuoteToken,
		decimalStringOf(priceBound), e.cfg.Matcher.CandidateBatchCap)
	if err != nil {
		e.logger.Error("candidate selection failed", zap.String("order_id", incoming.ID.String()), zap.Error(err))
		e.restIfRemaining(incoming, bookSet)
		return
	}

	tried := 0
	for _, candidate := range candidates {
		if incoming.RemainingQuantity.IsZero() {
			break
		}
		atomic.AddUint64(&e.candidatesTried, 1)
		tried++

		if candidate.IsExpired(time.Now()) {
			_ = e.store.MarkExpired(ctx, candidate.ID)
			continue
		}

		buy, sell := sideOrders(incoming, candidate)
		if buy.MaxPrice.LessThan(sell.MinPrice) {
			continue // not price compatible; candidates are ordered best-first so later ones won't help either, but cheap to check per-candidate
		}

		qty := decimal.Min(incoming.RemainingQuantity, candidate.RemainingQuantity)
		execPrice := executionPrice(buy, sell)

		m := &types.Match{
			ID:               uuid.New(),
			BuyOrderID:       buy.ID,
			SellOrderID:      sell.ID,
			BaseToken:        incoming.BaseToken,
			QuoteToken:       incoming.QuoteToken,
			Quantity:         qty,
			Price:            execPrice,
			SettlementStatus: types.SettlementPending,
			MatchedAt:        time.Now(),
		}

		incomingUpdate := fillUpdate(incoming, qty)
		candidateUpdate := fillUpdate(candidate, qty)

		var buyUpdate, sellUpdate store.OrderFillUpdate
		if incoming.Side == types.Buy {
			buyUpdate, sellUpdate = incomingUpdate, candidateUpdate
		} else {
			buyUpdate, sellUpdate = candidateUpdate, incomingUpdate
		}

		if err := e.store.ApplyFill(ctx, m, buyUpdate, sellUpdate); err != nil {
			e.logger.Error("fill write failed, dropping candidate", zap.String("candidate_id", candidate.ID.String()), zap.Error(err))
			continue
		}

		incoming.FilledQuantity = incoming.FilledQuantity.Add(qty)
		incoming.RemainingQuantity = incoming.RemainingQuantity.Sub(qty)
		candidate.FilledQuantity = candidate.FilledQuantity.Add(qty)
		candidate.RemainingQuantity = candidate.RemainingQuantity.Sub(qty)

		e.mirrorCandidateFill(candidate, bookSet)
		atomic.AddUint64(&e.matchesExecuted, 1)
		if e.metrics != nil {
			e.metrics.RecordMatch(m.BaseToken, m.QuoteToken, tried)
		}
		tried = 0

		e.matchCh <- m // blocking: backpressure per spec §4.2/§5
	}

	e.restIfRemaining(incoming, bookSet)
}

func (e *Engine) restIfRemaining(incoming *types.Order, bookSet *book.OrderBook) {
	if incoming.RemainingQuantity.IsZero() {
		incoming.Status = types.OrderFilled
		return
	}
	if incoming.FilledQuantity.IsPositive() {
		incoming.Status = types.OrderPartiallyFilled
	}
	bookSet.Add(incoming)
}

func (e *Engine) mirrorCandidateFill(candidate *types.Order, bookSet *book.OrderBook) {
	resting, ok := bookSet.Get(candidate.ID)
	if !ok {
		if candidate.RemainingQuantity.IsPositive() {
			candidate.Status = types.OrderPartiallyFilled
			bookSet.Add(candidate)
		}
		return
	}
	resting.FilledQuantity = candidate.FilledQuantity
	resting.RemainingQuantity = candidate.RemainingQuantity
	if resting.RemainingQuantity.IsZero() {
		resting.Status = types.OrderFilled
		bookSet.Remove(resting.ID)
	} else {
		resting.Status = types.OrderPartiallyFilled
	}
}

func sideOrders(incoming, candidate *types.Order) (buy, sell *types.Order) {
	if incoming.Side == types.Buy {
		return incoming, candidate
	}
	return candidate, incoming
}

// executionPrice is the arithmetic mean of the two declared prices,
// clamped into the intersection [sell.min_price, buy.max_price].
func executionPrice(buy, sell *types.Order) decimal.Decimal {
	mean := buy.Price.Add(sell.Price).Div(decimal.NewFromInt(2))
	if mean.LessThan(sell.MinPrice) {
		return sell.MinPrice
	}
	if mean.GreaterThan(buy.MaxPrice) {
		return buy.MaxPrice
	}
	return mean
}

func fillUpdate(o *types.Order, qty decimal.Decimal) store.OrderFillUpdate {
	filled := o.FilledQuantity.Add(qty)
	remaining := o.RemainingQuantity.Sub(qty)
	status := types.OrderPartiallyFilled
	if remaining.IsZero() {
		status = types.OrderFilled
	}
	return store.OrderFillUpdate{
		OrderID:           o.ID,
		FilledQuantity:    string(store.EncodeDecimalBound(filled)),
		RemainingQuantity: string(store.EncodeDecimalBound(remaining)),
		Status:            status,
	}
}

func decimalStringOf(d decimal.Decimal) store.DecimalString {
	return store.EncodeDecimalBound(d)
}
