// Package chain models the on-chain custody contract as an opaque RPC
// surface (spec §1: "the smart-contract logic itself ... treated as an
// opaque RPC"). No EVM client library exists anywhere in the retrieved
// example corpus, so the implementation is a minimal JSON-RPC-over-HTTP
// client built on the standard library, following the darkpool reference
// file's own treatment of the chain as an opaque dependency.
package chain

import (
	"context"
	"math/big"
)

// CommitmentStatus is the lifecycle state of an on-chain order commitment.
type CommitmentStatus string

const (
	CommitmentNone   CommitmentStatus = "NONE"
	CommitmentActive CommitmentStatus = "ACTIVE"
	CommitmentClosed CommitmentStatus = "CLOSED"
)

// Commitment is the on-chain record read back by commitments(order_id).
type Commitment struct {
	Status        CommitmentStatus
	OrderHash     *big.Int
	SettledAmount *big.Int
}

// ChannelInfo is the signable state payload and counter-signature returned
// by channel-lifecycle calls.
type ChannelInfo struct {
	ChannelID        string
	StatePayload     []byte
	CounterSignature []byte
}

// SettleInputs are the public ZK inputs plus proof bytes submitted to
// proveAndSettle.
type SettleInputs struct {
	OrderIDBuy    string
	OrderIDSell   string
	Proof         []byte
	PublicInputs  []*big.Int
	Timestamp     int64
}

// Client is the opaque on-chain custody contract surface spec §1 and §4.4
// name: commitOnly, depositAndCommit, proveAndSettle, markFullySettled,
// commitments(id), plus the channel-lifecycle calls create/deposit/resize.
type Client interface {
	Commitments(ctx context.Context, orderID string) (Commitment, error)
	CommitOnly(ctx context.Context, orderID string, orderHash *big.Int) error
	DepositAndCommit(ctx context.Context, orderID string, orderHash *big.Int, amount *big.Int) error
	ProveAndSettle(ctx context.Context, in SettleInputs) (txHash string, err error)
	MarkFullySettled(ctx context.Context, orderID string) (txHash string, err error)
	CreateChannel(ctx context.Context, owner, token string, chainID int64) (ChannelInfo, error)
	Deposit(ctx context.Context, channelID string, amount *big.Int) error
	Resize(ctx context.Context, channelID string, resizeAmt, allocateAmt *big.Int) error
}
