package gateway

import "time"

// submitOrderRequest is the body of POST /api/orders. Validated with
// go-playground/validator, following the teacher's handler-level
// `binding:"required"` convention.
type submitOrderRequest struct {
	OwnerAddress   string     `json:"owner_address" binding:"required"`
	ChainID        int64      `json:"chain_id" binding:"required"`
	Side           string     `json:"side" binding:"required,oneof=BUY SELL"`
	BaseToken      string     `json:"base_token" binding:"required"`
	QuoteToken     string     `json:"quote_token" binding:"required"`
	Quantity       string     `json:"quantity" binding:"required,positivedecimal"`
	Price          string     `json:"price" binding:"required,positivedecimal"`
	VarianceBPS    int32      `json:"variance_bps"`
	CommitmentHash string     `json:"commitment_hash" binding:"required"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type submitOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type cancelOrderRequest struct {
	OwnerAddress string `json:"owner_address" binding:"required"`
}

type orderView struct {
	OrderID           string `json:"order_id"`
	OwnerAddress      string `json:"owner_address"`
	Side              string `json:"side"`
	BaseToken         string `json:"base_token"`
	QuoteToken        string `json:"quote_token"`
	Quantity          string `json:"quantity"`
	Price             string `json:"price"`
	FilledQuantity    string `json:"filled_quantity"`
	RemainingQuantity string `json:"remaining_quantity"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
}

type matchView struct {
	MatchID          string  `json:"match_id"`
	BuyOrderID       string  `json:"buy_order_id"`
	SellOrderID      string  `json:"sell_order_id"`
	BaseToken        string  `json:"base_token"`
	QuoteToken       string  `json:"quote_token"`
	Quantity         string  `json:"quantity"`
	Price            string  `json:"price"`
	SettlementStatus string  `json:"settlement_status"`
	SettlementTxHash *string `json:"settlement_tx_hash,omitempty"`
	AppSessionID     *string `json:"app_session_id,omitempty"`
	MatchedAt        string  `json:"matched_at"`
}

type priceLevelView struct {
	Price      string `json:"price"`
	Quantity   string `json:"quantity"`
	OrderCount int    `json:"order_count"`
}

type orderBookView struct {
	BaseToken  string           `json:"base_token"`
	QuoteToken string           `json:"quote_token"`
	Bids       []priceLevelView `json:"bids"`
	Asks       []priceLevelView `json:"asks"`
}

type createSessionKeyRequest struct {
	Owner       string   `json:"owner" binding:"required"`
	Application string   `json:"application" binding:"required"`
	Allowances  []string `json:"allowances"`
	TTLSeconds  int64    `json:"ttl_seconds" binding:"required,min=1"`
}

type createSessionKeyResponse struct {
	SessionKeyID string `json:"session_key_id"`
	Address      string `json:"address"`
	Challenge    string `json:"challenge"`
	Scope        string `json:"scope"`
	ExpiresAt    int64  `json:"expires_at"`
}

type activateSessionKeyRequest struct {
	Owner     string `json:"owner" binding:"required"`
	Challenge string `json:"challenge" binding:"required"`
	Signature []byte `json:"signature" binding:"required"`
}

type createChannelRequest struct {
	Owner   string `json:"owner" binding:"required"`
	Token   string `json:"token" binding:"required"`
	ChainID int64  `json:"chain_id" binding:"required"`
}

type resizeChannelRequest struct {
	Owner       string `json:"owner" binding:"required"`
	ResizeAmt   string `json:"resize_amt" binding:"required,decimal"`
	AllocateAmt string `json:"allocate_amt" binding:"required,decimal"`
}
