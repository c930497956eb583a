package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

// OrderFillUpdate carries the post-fill fields for one side of a match,
// written alongside the match row insert inside a single transaction.
type OrderFillUpdate struct {
	OrderID           uuid.UUID
	FilledQuantity    string
	RemainingQuantity string
	Status            types.OrderStatus
}

// ApplyFill performs the atomic fill write spec §4.2 requires: one
// transaction inserting the match row in status PENDING and updating both
// participating orders' filled/remaining/status columns.
func (s *Store) ApplyFill(ctx context.Context, m *types.Match, buyUpdate, sellUpdate OrderFillUpdate) error {
	row := toMatchRow(m)
	row.SettlementStatus = string(types.SettlementPending)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, u := range []OrderFillUpdate{buyUpdate, sellUpdate} {
			res := tx.Model(&orderRow{}).Where("id = ?", u.OrderID).Updates(map[string]interface{}{
				"filled_quantity":    u.FilledQuantity,
				"remaining_quantity": u.RemainingQuantity,
				"status":             string(u.Status),
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return derrors.Newf(derrors.Conflict, "order %s missing during fill write", u.OrderID)
			}
		}
		return nil
	})
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "apply fill")
	}
	return nil
}

// ClaimMatchForSettlement attempts the settlement worker's claim: a
// conditional UPDATE from PENDING to SETTLING (spec §4.4). A RowsAffected
// of zero means another worker (or a previous crashed attempt) already
// claimed it, which the caller treats as a normal race loss, not an error.
func (s *Store) ClaimMatchForSettlement(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Model(&matchRow{}).
		Where("id = ? AND settlement_status = ?", id, string(types.SettlementPending)).
		Update("settlement_status", string(types.SettlementSettling))
	if res.Error != nil {
		return false, derrors.Wrap(res.Error, derrors.Fatal, "claim match for settlement")
	}
	return res.RowsAffected > 0, nil
}

// ListPendingMatches returns matches in PENDING status ordered by
// matched_at ascending, the settlement worker's per-cycle candidate pool.
func (s *Store) ListPendingMatches(ctx context.Context, limit int) ([]*types.Match, error) {
	var rows []matchRow
	err := s.reader.SelectContext(ctx, &rows, `
		SELECT id, buy_order_id, sell_order_id, base_token, quote_token,
		       quantity, price, settlement_status, settlement_error,
		       matched_at, settled_at, settlement_tx_hash, app_session_id
		FROM matches
		WHERE settlement_status = 'PENDING'
		ORDER BY matched_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "list pending matches")
	}
	out := make([]*types.Match, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromMatchRow(r))
	}
	return out, nil
}

// MarkSettled completes a match's settlement, recording the on-chain tx
// hash and the off-chain application-session id opened for the swap.
func (s *Store) MarkSettled(ctx context.Context, id uuid.UUID, txHash, appSessionID string) error {
	res := s.db.WithContext(ctx).Model(&matchRow{}).
		Where("id = ? AND settlement_status = ?", id, string(types.SettlementSettling)).
		Updates(map[string]interface{}{
			"settlement_status":  string(types.SettlementSettled),
			"settlement_tx_hash": txHash,
			"app_session_id":     appSessionID,
			"settled_at":         gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return derrors.Wrap(res.Error, derrors.Fatal, "mark match settled")
	}
	if res.RowsAffected == 0 {
		return derrors.New(derrors.Conflict, "match not in SETTLING status")
	}
	return nil
}

// MarkFailed records a settlement failure with its reason. Idempotent:
// repeated calls for the same id simply overwrite the error message.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	res := s.db.WithContext(ctx).Model(&matchRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"settlement_status": string(types.SettlementFailed),
			"settlement_error":  reason,
		})
	if res.Error != nil {
		return derrors.Wrap(res.Error, derrors.Fatal, "mark match failed")
	}
	return nil
}

// ResetMatchForRetry is the operator-only FAILED -> PENDING transition; it
// is intentionally not reachable from the public gateway surface.
func (s *Store) ResetMatchForRetry(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&matchRow{}).
		Where("id = ? AND settlement_status = ?", id, string(types.SettlementFailed)).
		Updates(map[string]interface{}{
			"settlement_status": string(types.SettlementPending),
			"settlement_error":  nil,
		})
	if res.Error != nil {
		return derrors.Wrap(res.Error, derrors.Fatal, "reset match for retry")
	}
	if res.RowsAffected == 0 {
		return derrors.New(derrors.Conflict, "match not in FAILED status")
	}
	return nil
}

// ListMatchesByOwner returns every match touching one of owner's orders,
// most recent first, for the gateway's list-user-matches endpoint.
func (s *Store) ListMatchesByOwner(ctx context.Context, owner string, limit int) ([]*types.Match, error) {
	var rows []matchRow
	err := s.reader.SelectContext(ctx, &rows, `
		SELECT m.id, m.buy_order_id, m.sell_order_id, m.base_token, m.quote_token,
		       m.quantity, m.price, m.settlement_status, m.settlement_error,
		       m.matched_at, m.settled_at, m.settlement_tx_hash, m.app_session_id
		FROM matches m
		JOIN orders o ON o.id = m.buy_order_id OR o.id = m.sell_order_id
		WHERE o.owner_address = $1
		ORDER BY m.matched_at DESC
		LIMIT $2
	`, owner, limit)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "list matches by owner")
	}
	out := make([]*types.Match, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromMatchRow(r))
	}
	return out, nil
}

// GetMatch loads a match by id.
func (s *Store) GetMatch(ctx context.Context, id uuid.UUID) (*types.Match, error) {
	var row matchRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, derrors.Wrap(err, derrors.ValidationError, "match not found")
	}
	return fromMatchRow(row), nil
}
