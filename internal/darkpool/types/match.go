package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a Match's settlement.
type SettlementStatus string

const (
	SettlementPending  SettlementStatus = "PENDING"
	SettlementSettling SettlementStatus = "SETTLING"
	SettlementSettled  SettlementStatus = "SETTLED"
	SettlementFailed   SettlementStatus = "FAILED"
)

// Match is a single cross of one buy order with one sell order.
type Match struct {
	ID                uuid.UUID
	BuyOrderID        uuid.UUID
	SellOrderID       uuid.UUID
	BaseToken         string
	QuoteToken        string
	Quantity          decimal.Decimal
	Price             decimal.Decimal
	SettlementStatus  SettlementStatus
	SettlementError   *string
	MatchedAt         time.Time
	SettledAt         *time.Time
	SettlementTxHash  *string
	AppSessionID      *string
}

// SessionKeyStatus is the lifecycle state of a delegated signing key.
type SessionKeyStatus string

const (
	SessionKeyPending SessionKeyStatus = "PENDING"
	SessionKeyActive  SessionKeyStatus = "ACTIVE"
	SessionKeyRevoked SessionKeyStatus = "REVOKED"
)

// EngineOwner is the distinguished owner string for engine-side session keys.
const EngineOwner = "__engine__"

// SessionKey is an operational signing key delegated from a user, or the
// engine, to the coordinator.
type SessionKey struct {
	ID          uuid.UUID
	Owner       string
	Address     string
	Secret      []byte
	Application string
	Allowances  []string
	Status      SessionKeyStatus
	ExpiresAt   time.Time
	CachedToken *string
	CreatedAt   time.Time
}

// IsUsable reports whether the key is ACTIVE and not expired as of now.
func (k *SessionKey) IsUsable(now time.Time) bool {
	return k.Status == SessionKeyActive && now.Before(k.ExpiresAt)
}

// Asset is a chain-scoped traded token, as returned by list_assets.
type Asset struct {
	ChainID int64
	Token   string
	Symbol  string
}
