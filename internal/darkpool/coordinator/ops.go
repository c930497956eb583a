package coordinator

import (
	"context"
	"encoding/json"
	"time"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
)

// Channel is the clearing network's view of one payment channel.
type Channel struct {
	ChannelID string `json:"channel_id"`
	Token     string `json:"token"`
	ChainID   int64  `json:"chain_id"`
	Balance   string `json:"balance"`
	Status    string `json:"status"`
}

// ChannelInfo is the signable state payload and counter-signature returned
// by create_channel.
type ChannelInfo struct {
	Channel          Channel `json:"channel"`
	StatePayload     []byte  `json:"state_payload"`
	CounterSignature []byte  `json:"counter_signature"`
}

// LedgerBalance is one asset's off-chain ledger balance for a user.
type LedgerBalance struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// AssetInfo is one chain-scoped traded token as returned by list_assets.
type AssetInfo struct {
	ChainID int64  `json:"chain_id"`
	Token   string `json:"token"`
	Symbol  string `json:"symbol"`
}

// AuthChallenge is the EIP-712 typed-data challenge returned by
// auth_request_create.
type AuthChallenge struct {
	Challenge string   `json:"challenge"`
	Scope     string   `json:"scope"`
	ExpiresAt int64    `json:"expires_at"`
}

// AuthRequestCreate starts the two-phase auth flow: the owner's wallet
// signs an EIP-712 typed-data challenge for the delegated session key.
func (c *Coordinator) AuthRequestCreate(ctx context.Context, owner, sessionKey string, expiresAt time.Time, allowances []string) (AuthChallenge, error) {
	params := map[string]interface{}{
		"owner":       owner,
		"session_key": sessionKey,
		"expires_at":  expiresAt.Unix(),
		"allowances":  allowances,
	}
	payload, err := c.engineCall(ctx, "auth_request_create", params)
	if err != nil {
		return AuthChallenge{}, err
	}
	var out AuthChallenge
	if err := json.Unmarshal(payload, &out); err != nil {
		return AuthChallenge{}, derrors.Wrap(err, derrors.Fatal, "decoding auth challenge")
	}
	return out, nil
}

// AuthVerify submits the wallet's signature over the challenge and caches
// the returned bearer token for the owner's subsequent re-auth.
func (c *Coordinator) AuthVerify(ctx context.Context, owner, challenge string, signature []byte) (string, error) {
	params := map[string]interface{}{"challenge": challenge, "signature": signature}
	payload, err := c.engineCall(ctx, "auth_verify", params)
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", derrors.Wrap(err, derrors.Fatal, "decoding auth token")
	}
	c.tokens.Set(tokenCacheKey(owner), out.Token, 0)
	return out.Token, nil
}

// ListChannels returns the owner's known payment channels.
func (c *Coordinator) ListChannels(ctx context.Context, owner string) ([]Channel, error) {
	payload, err := c.userCall(ctx, owner, "list_channels", map[string]interface{}{"owner": owner}, c.timeout(c.cfg.ResponseTimeoutMs))
	if err != nil {
		return nil, err
	}
	var out []Channel
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "decoding channel list")
	}
	return out, nil
}

// CreateChannel opens a new payment channel for owner.
func (c *Coordinator) CreateChannel(ctx context.Context, owner, token string, chainID int64) (ChannelInfo, error) {
	params := map[string]interface{}{"owner": owner, "token": token, "chain_id": chainID}
	payload, err := c.userCall(ctx, owner, "create_channel", params, c.timeout(c.cfg.ResponseTimeoutMs))
	if err != nil {
		return ChannelInfo{}, err
	}
	var out ChannelInfo
	if err := json.Unmarshal(payload, &out); err != nil {
		return ChannelInfo{}, derrors.Wrap(err, derrors.Fatal, "decoding channel info")
	}
	return out, nil
}

// ResizeChannel adjusts a channel's balance, using the longer
// resize_timeout_ms default per spec §6.
func (c *Coordinator) ResizeChannel(ctx context.Context, owner, channelID string, resizeAmt, allocateAmt string) (json.RawMessage, error) {
	params := map[string]interface{}{"owner": owner, "channel_id": channelID, "resize_amt": resizeAmt, "allocate_amt": allocateAmt}
	return c.userCall(ctx, owner, "resize_channel", params, c.timeout(c.cfg.ResizeTimeoutMs))
}

// GetLedgerBalances returns the owner's off-chain ledger balances.
func (c *Coordinator) GetLedgerBalances(ctx context.Context, owner string) ([]LedgerBalance, error) {
	payload, err := c.userCall(ctx, owner, "get_ledger_balances", map[string]interface{}{"owner": owner}, c.timeout(c.cfg.ResponseTimeoutMs))
	if err != nil {
		return nil, err
	}
	var out []LedgerBalance
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "decoding ledger balances")
	}
	return out, nil
}

// CreateAppSession opens an off-chain application session among
// participants (spec §4.4 step 7: seller, buyer, engine), signed by the
// seller and buyer session keys and submitted on the engine connection.
func (c *Coordinator) CreateAppSession(ctx context.Context, participants []string, weights []int, quorum int, allocations map[string]string, sellerSig, buyerSig []byte) (string, error) {
	params := map[string]interface{}{
		"participants": participants,
		"weights":      weights,
		"quorum":       quorum,
		"allocations":  allocations,
		"seller_sig":   sellerSig,
		"buyer_sig":    buyerSig,
	}
	payload, err := c.engineCall(ctx, "create_app_session", params)
	if err != nil {
		return "", err
	}
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", derrors.Wrap(err, derrors.Fatal, "decoding app session id")
	}
	return out.SessionID, nil
}

// CloseAppSession closes an application session with its final
// allocations (spec §4.4 step 8: seller receives quote, buyer receives
// base, engine receives zero).
func (c *Coordinator) CloseAppSession(ctx context.Context, sessionID string, allocations map[string]string) (string, error) {
	params := map[string]interface{}{"session_id": sessionID, "allocations": allocations}
	payload, err := c.engineCall(ctx, "close_app_session", params)
	if err != nil {
		return "", err
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", derrors.Wrap(err, derrors.Fatal, "decoding close session status")
	}
	return out.Status, nil
}

// RevokeSessionKey revokes a delegated session key on the clearing
// network side.
func (c *Coordinator) RevokeSessionKey(ctx context.Context, owner, keyAddress string) error {
	params := map[string]interface{}{"key_address": keyAddress}
	_, err := c.userCall(ctx, owner, "revoke_session_key", params, c.timeout(c.cfg.ResponseTimeoutMs))
	return err
}

// ListAssets returns every chain-scoped traded token, populated into the
// process-wide asset map at coordinator init (spec §4.4 step 2).
func (c *Coordinator) ListAssets(ctx context.Context) ([]AssetInfo, error) {
	payload, err := c.engineCall(ctx, "list_assets", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	var out []AssetInfo
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, derrors.Wrap(err, derrors.Fatal, "decoding asset list")
	}
	return out, nil
}
