package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

// InsertCommittedOrder persists a new order row in status COMMITTED, the
// row the admission contract (spec §4.2) requires to exist before a
// submission is admitted.
func (s *Store) InsertCommittedOrder(ctx context.Context, o *types.Order) error {
	row := toOrderRow(o)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logger.Error("failed to insert committed order", zap.String("order_id", o.ID.String()), zap.Error(err))
		return derrors.Wrap(err, derrors.Fatal, "insert committed order")
	}
	return nil
}

// GetOrder loads an order by id.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*types.Order, error) {
	var row orderRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, derrors.Wrap(err, derrors.ValidationError, "order not found")
	}
	return fromOrderRow(row), nil
}

// MarkRevealed transitions an order's status from COMMITTED to REVEALED on
// admission. Conditional on the current status to avoid racing a concurrent
// admission attempt.
func (s *Store) MarkRevealed(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&orderRow{}).
		Where("id = ? AND status = ?", id, string(types.OrderCommitted)).
		Update("status", string(types.OrderRevealed))
	if res.Error != nil {
		return derrors.Wrap(res.Error, derrors.Fatal, "mark order revealed")
	}
	if res.RowsAffected == 0 {
		return derrors.New(derrors.CommitmentMismatch, "order not in COMMITTED status")
	}
	return nil
}

// CancelOrder conditionally cancels an order, following spec §4.2's
// conditional UPDATE (id, owner, status IN (REVEALED, PARTIALLY_FILLED)).
// Reports whether the row was actually cancelled.
func (s *Store) CancelOrder(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&orderRow{}).
		Where("id = ? AND owner_address = ? AND status IN ?", id, owner,
			[]string{string(types.OrderRevealed), string(types.OrderPartiallyFilled)}).
		Update("status", string(types.OrderCancelled))
	if res.Error != nil {
		return false, derrors.Wrap(res.Error, derrors.Fatal, "cancel order")
	}
	return res.RowsAffected > 0, nil
}

// MarkExpired transitions an order to EXPIRED, used by the admission-time
// and match-time expiry check (spec §4.2: "background reaping is out of
// core").
func (s *Store) MarkExpired(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&orderRow{}).
		Where("id = ? AND status IN ?", id, []string{string(types.OrderRevealed), string(types.OrderPartiallyFilled)}).
		Update("status", string(types.OrderExpired))
	if res.Error != nil {
		return derrors.Wrap(res.Error, derrors.Fatal, "mark order expired")
	}
	return nil
}

// ListActiveOrders returns every order with status REVEALED or
// PARTIALLY_FILLED and not expired, ordered by created_at ascending, for
// rehydrating the in-memory book set at startup.
func (s *Store) ListActiveOrders(ctx context.Context) ([]*types.Order, error) {
	var rows []orderRow
	err := s.reader.SelectContext(ctx, &rows, `
		SELECT id, owner_address, chain_id, side, base_token, quote_token,
		       sell_token, buy_token, quantity, price, variance_bps,
		       min_price, max_price, filled_quantity, remaining_quantity,
		       status, commitment_hash, created_at, expires_at
		FROM orders
		WHERE status IN ('REVEALED', 'PARTIALLY_FILLED')
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "list active orders")
	}
	return rowsToOrders(rows), nil
}

// ListCandidates returns resting orders on the opposing side that are
// price-compatible with an incoming order, best-price-first then
// oldest-first, capped at batchCap (spec §4.2). For an incoming BUY, the
// opposing side is SELL and the filter is `min_price <= buyMaxPrice`; for
// an incoming SELL, the opposing side is BUY and the filter is
// `max_price >= sellMinPrice`.
func (s *Store) ListCandidates(ctx context.Context, incomingSide types.OrderSide, baseToken, quoteToken string, bound DecimalString, batchCap int) ([]*types.Order, error) {
	var rows []orderRow
	var err error

	if incomingSide == types.Buy {
		err = s.reader.SelectContext(ctx, &rows, `
			SELECT id, owner_address, chain_id, side, base_token, quote_token,
			       sell_token, buy_token, quantity, price, variance_bps,
			       min_price, max_price, filled_quantity, remaining_quantity,
			       status, commitment_hash, created_at, expires_at
			FROM orders
			WHERE base_token = $1 AND quote_token = $2
			  AND side = 'SELL'
			  AND status IN ('REVEALED', 'PARTIALLY_FILLED')
			  AND min_price <= $3
			ORDER BY price ASC, created_at ASC
			LIMIT $4
		`, baseToken, quoteToken, string(bound), batchCap)
	} else {
		err = s.reader.SelectContext(ctx, &rows, `
			SELECT id, owner_address, chain_id, side, base_token, quote_token,
			       sell_token, buy_token, quantity, price, variance_bps,
			       min_price, max_price, filled_quantity, remaining_quantity,
			       status, commitment_hash, created_at, expires_at
			FROM orders
			WHERE base_token = $1 AND quote_token = $2
			  AND side = 'BUY'
			  AND status IN ('REVEALED', 'PARTIALLY_FILLED')
			  AND max_price >= $3
			ORDER BY price DESC, created_at ASC
			LIMIT $4
		`, baseToken, quoteToken, string(bound), batchCap)
	}
	if err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "list candidates")
	}
	return rowsToOrders(rows), nil
}

// ListOrdersByOwner returns every order owned by owner, most recent first,
// for the gateway's list-user-orders endpoint.
func (s *Store) ListOrdersByOwner(ctx context.Context, owner string, limit int) ([]*types.Order, error) {
	var rows []orderRow
	err := s.reader.SelectContext(ctx, &rows, `
		SELECT id, owner_address, chain_id, side, base_token, quote_token,
		       sell_token, buy_token, quantity, price, variance_bps,
		       min_price, max_price, filled_quantity, remaining_quantity,
		       status, commitment_hash, created_at, expires_at
		FROM orders
		WHERE owner_address = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, owner, limit)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "list orders by owner")
	}
	return rowsToOrders(rows), nil
}

// DecimalString is a distinct string type so callers cannot accidentally
// pass a raw price/quantity string into the wrong positional SQL argument;
// callers produce it with EncodeDecimalBound.
type DecimalString string

func rowsToOrders(rows []orderRow) []*types.Order {
	out := make([]*types.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromOrderRow(r))
	}
	return out
}

// IsExpired is a small helper shared by admission and match-time checks.
func IsExpired(o *types.Order, now time.Time) bool {
	return o.IsExpired(now)
}
