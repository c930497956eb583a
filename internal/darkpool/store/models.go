// Package store implements the Durable Store (C1): a relational store with
// strict transactional semantics, grounded on the teacher's
// internal/repositories/order_repository.go CRUD pattern and
// internal/db/connection_pool.go pool setup. Writes go through gorm
// (the teacher's dominant persistence library); the matching engine's
// hot-path candidate-selection reads go through sqlx sharing the same
// underlying *sql.DB, mirroring a common write-via-ORM/read-via-raw-SQL
// split.
package store

import (
	"time"

	"github.com/google/uuid"
)

// orderRow is the gorm model for the `orders` table (spec §3, §6). Every
// decimal-valued column (Quantity, Price, MinPrice, MaxPrice,
// FilledQuantity, RemainingQuantity) is written through encodeDecimal, a
// fixed-width zero-padded string encoding, so the plain `text` columns
// Postgres stores them as compare and sort lexicographically the same way
// the engine compares the underlying decimal.Decimal values (spec §4.5).
//
// idx_orders_candidates_min_price and idx_orders_candidates_max_price are
// the two composite indices spec §3 names for candidate queries: an
// incoming BUY filters/sorts resting SELLs by min_price, an incoming SELL
// filters/sorts resting BUYs by max_price, so each needs its own
// (base_token, quote_token, status, price-bound) index to be served as a
// single range scan.
type orderRow struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerAddress      string    `gorm:"index:idx_orders_owner"`
	ChainID           int64
	Side              string
	BaseToken         string `gorm:"index:idx_orders_candidates_min_price,priority:1;index:idx_orders_candidates_max_price,priority:1"`
	QuoteToken        string `gorm:"index:idx_orders_candidates_min_price,priority:2;index:idx_orders_candidates_max_price,priority:2"`
	SellToken         string
	BuyToken          string
	Quantity          string
	Price             string
	VarianceBPS       int32
	MinPrice          string `gorm:"index:idx_orders_candidates_min_price,priority:4"`
	MaxPrice          string `gorm:"index:idx_orders_candidates_max_price,priority:4"`
	FilledQuantity    string
	RemainingQuantity string
	Status            string `gorm:"index:idx_orders_candidates_min_price,priority:3;index:idx_orders_candidates_max_price,priority:3"`
	CommitmentHash    string
	CreatedAt         time.Time
	ExpiresAt         *time.Time
}

func (orderRow) TableName() string { return "orders" }

// matchRow is the gorm model for the `matches` table (spec §3, §6).
type matchRow struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyOrderID       uuid.UUID `gorm:"type:uuid;index"`
	SellOrderID      uuid.UUID `gorm:"type:uuid;index"`
	BaseToken        string
	QuoteToken       string
	Quantity         string
	Price            string
	SettlementStatus string `gorm:"index:idx_matches_status_matched_at,priority:1"`
	SettlementError  *string
	MatchedAt        time.Time `gorm:"index:idx_matches_status_matched_at,priority:2"`
	SettledAt        *time.Time
	SettlementTxHash *string
	AppSessionID     *string
}

func (matchRow) TableName() string { return "matches" }

// sessionKeyRow is the gorm model for the `session_keys` table (spec §3).
type sessionKeyRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Owner       string    `gorm:"index:idx_session_keys_owner_app,priority:1"`
	Address     string
	Secret      []byte
	Application string `gorm:"index:idx_session_keys_owner_app,priority:2"`
	Allowances  string // comma-joined; the store is not required to decode it.
	Status      string
	ExpiresAt   time.Time
	CachedToken *string
	CreatedAt   time.Time
}

func (sessionKeyRow) TableName() string { return "session_keys" }
