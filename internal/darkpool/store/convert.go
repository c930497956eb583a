package store

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

func toOrderRow(o *types.Order) orderRow {
	return orderRow{
		ID:                o.ID,
		OwnerAddress:      o.OwnerAddress,
		ChainID:           o.ChainID,
		Side:              string(o.Side),
		BaseToken:         o.BaseToken,
		QuoteToken:        o.QuoteToken,
		SellToken:         o.SellToken,
		BuyToken:          o.BuyToken,
		Quantity:          encodeDecimal(o.Quantity),
		Price:             encodeDecimal(o.Price),
		VarianceBPS:       o.VarianceBPS,
		MinPrice:          encodeDecimal(o.MinPrice),
		MaxPrice:          encodeDecimal(o.MaxPrice),
		FilledQuantity:    encodeDecimal(o.FilledQuantity),
		RemainingQuantity: encodeDecimal(o.RemainingQuantity),
		Status:            string(o.Status),
		CommitmentHash:    o.CommitmentHash,
		CreatedAt:         o.CreatedAt,
		ExpiresAt:         o.ExpiresAt,
	}
}

func fromOrderRow(r orderRow) *types.Order {
	return &types.Order{
		ID:                r.ID,
		OwnerAddress:      r.OwnerAddress,
		ChainID:           r.ChainID,
		Side:              types.OrderSide(r.Side),
		BaseToken:         r.BaseToken,
		QuoteToken:        r.QuoteToken,
		SellToken:         r.SellToken,
		BuyToken:          r.BuyToken,
		Quantity:          decimal.RequireFromString(r.Quantity),
		Price:             decimal.RequireFromString(r.Price),
		VarianceBPS:       r.VarianceBPS,
		MinPrice:          decimal.RequireFromString(r.MinPrice),
		MaxPrice:          decimal.RequireFromString(r.MaxPrice),
		FilledQuantity:    decimal.RequireFromString(r.FilledQuantity),
		RemainingQuantity: decimal.RequireFromString(r.RemainingQuantity),
		Status:            types.OrderStatus(r.Status),
		CommitmentHash:    r.CommitmentHash,
		CreatedAt:         r.CreatedAt,
		ExpiresAt:         r.ExpiresAt,
	}
}

func toMatchRow(m *types.Match) matchRow {
	return matchRow{
		ID:               m.ID,
		BuyOrderID:       m.BuyOrderID,
		SellOrderID:      m.SellOrderID,
		BaseToken:        m.BaseToken,
		QuoteToken:       m.QuoteToken,
		Quantity:         encodeDecimal(m.Quantity),
		Price:            encodeDecimal(m.Price),
		SettlementStatus: string(m.SettlementStatus),
		SettlementError:  m.SettlementError,
		MatchedAt:        m.MatchedAt,
		SettledAt:        m.SettledAt,
		SettlementTxHash: m.SettlementTxHash,
		AppSessionID:     m.AppSessionID,
	}
}

func fromMatchRow(r matchRow) *types.Match {
	return &types.Match{
		ID:               r.ID,
		BuyOrderID:       r.BuyOrderID,
		SellOrderID:      r.SellOrderID,
		BaseToken:        r.BaseToken,
		QuoteToken:       r.QuoteToken,
		Quantity:         decimal.RequireFromString(r.Quantity),
		Price:            decimal.RequireFromString(r.Price),
		SettlementStatus: types.SettlementStatus(r.SettlementStatus),
		SettlementError:  r.SettlementError,
		MatchedAt:        r.MatchedAt,
		SettledAt:        r.SettledAt,
		SettlementTxHash: r.SettlementTxHash,
		AppSessionID:     r.AppSessionID,
	}
}

func toSessionKeyRow(k *types.SessionKey) sessionKeyRow {
	return sessionKeyRow{
		ID:          k.ID,
		Owner:       k.Owner,
		Address:     k.Address,
		Secret:      k.Secret,
		Application: k.Application,
		Allowances:  strings.Join(k.Allowances, ","),
		Status:      string(k.Status),
		ExpiresAt:   k.ExpiresAt,
		CachedToken: k.CachedToken,
		CreatedAt:   k.CreatedAt,
	}
}

func fromSessionKeyRow(r sessionKeyRow) *types.SessionKey {
	var allowances []string
	if r.Allowances != "" {
		allowances = strings.Split(r.Allowances, ",")
	}
	return &types.SessionKey{
		ID:          r.ID,
		Owner:       r.Owner,
		Address:     r.Address,
		Secret:      r.Secret,
		Application: r.Application,
		Allowances:  allowances,
		Status:      types.SessionKeyStatus(r.Status),
		ExpiresAt:   r.ExpiresAt,
		CachedToken: r.CachedToken,
		CreatedAt:   r.CreatedAt,
	}
}
