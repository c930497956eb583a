package gateway

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/coordinator"
	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/matching"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/store"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
)

const defaultListLimit = 100

// Handlers holds the core components the gateway forwards requests to. It
// never holds business logic: every method validates input, calls the core
// operations it forwards to (one, or a short fixed sequence of store and
// coordinator calls), and translates the result to JSON.
type Handlers struct {
	engine *matching.Engine
	store  *store.Store
	coord  *coordinator.Coordinator
	logger *zap.Logger
}

// NewHandlers constructs the Handlers and installs the gateway's custom
// validator tags.
func NewHandlers(engine *matching.Engine, st *store.Store, coord *coordinator.Coordinator, logger *zap.Logger) *Handlers {
	registerValidators()
	return &Handlers{engine: engine, store: st, coord: coord, logger: logger}
}

func (h *Handlers) submitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	qty, _ := decimal.NewFromString(req.Quantity)
	price, _ := decimal.NewFromString(req.Price)

	o := &types.Order{
		ID:                uuid.New(),
		OwnerAddress:      req.OwnerAddress,
		ChainID:           req.ChainID,
		Side:              types.OrderSide(req.Side),
		BaseToken:         req.BaseToken,
		QuoteToken:        req.QuoteToken,
		Quantity:          qty,
		Price:             price,
		VarianceBPS:       req.VarianceBPS,
		FilledQuantity:    decimal.Zero,
		RemainingQuantity: qty,
		Status:            types.OrderCommitted,
		CommitmentHash:    req.CommitmentHash,
		CreatedAt:         time.Now(),
		ExpiresAt:         req.ExpiresAt,
	}
	o.DeriveTokens()
	o.DerivePriceBounds()

	if err := h.store.InsertCommittedOrder(c.Request.Context(), o); err != nil {
		respondError(c, err)
		return
	}
	if err := h.engine.Submit(c.Request.Context(), o); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitOrderResponse{OrderID: o.ID.String(), Status: string(types.OrderRevealed)})
}

func (h *Handlers) cancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidationError(c, err)
		return
	}
	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.engine.Cancel(c.Request.Context(), id, req.OwnerAddress); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id.String(), "status": string(types.OrderCancelled)})
}

func (h *Handlers) listUserOrders(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		respondValidationError(c, derrors.New(derrors.ValidationError, "owner is required"))
		return
	}
	limit := queryLimit(c)

	orders, err := h.store.ListOrdersByOwner(c.Request.Context(), owner, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *Handlers) listUserMatches(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		respondValidationError(c, derrors.New(derrors.ValidationError, "owner is required"))
		return
	}
	limit := queryLimit(c)

	matches, err := h.store.ListMatchesByOwner(c.Request.Context(), owner, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]matchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchView(m))
	}
	c.JSON(http.StatusOK, gin.H{"matches": out})
}

// getOrderBook returns a depth-limited order book snapshot, gzip-compressed
// following the teacher's approach of compressing bulky market-data
// payloads (klauspost/compress, a faster drop-in for compress/gzip).
func (h *Handlers) getOrderBook(c *gin.Context) {
	base := c.Query("base_token")
	quote := c.Query("quote_token")
	if base == "" || quote == "" {
		respondValidationError(c, derrors.New(derrors.ValidationError, "base_token and quote_token are required"))
		return
	}
	depth := 20
	if d := c.Query("depth"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			depth = parsed
		}
	}

	snapshot, ok := h.engine.GetOrderBook(base, quote, depth)
	if !ok {
		c.JSON(http.StatusNotFound, errorEnvelope{Error: "no order book for pair", Code: string(derrors.ValidationError)})
		return
	}

	view := orderBookView{
		BaseToken:  snapshot.BaseToken,
		QuoteToken: snapshot.QuoteToken,
		Bids:       toPriceLevelViews(snapshot.Bids),
		Asks:       toPriceLevelViews(snapshot.Asks),
	}
	payload, err := json.Marshal(view)
	if err != nil {
		respondError(c, derrors.Wrap(err, derrors.Fatal, "encoding order book snapshot"))
		return
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(payload); err != nil {
		respondError(c, derrors.Wrap(err, derrors.Fatal, "compressing order book snapshot"))
		return
	}
	if err := gw.Close(); err != nil {
		respondError(c, derrors.Wrap(err, derrors.Fatal, "closing gzip writer"))
		return
	}

	c.Header("Content-Encoding", "gzip")
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

func (h *Handlers) createSessionKey(c *gin.Context) {
	var req createSessionKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		respondError(c, derrors.Wrap(err, derrors.Fatal, "generating session key"))
		return
	}
	signer := coordinator.NewECDSASigner(key.D)
	address := signer.Address()
	expiresAt := time.Now().Add(time.Duration(req.TTLSeconds) * time.Second)

	challenge, err := h.coord.AuthRequestCreate(c.Request.Context(), req.Owner, address, expiresAt, req.Allowances)
	if err != nil {
		respondError(c, err)
		return
	}

	sk := &types.SessionKey{
		ID:          uuid.New(),
		Owner:       req.Owner,
		Address:     address,
		Secret:      key.D.Bytes(),
		Application: req.Application,
		Allowances:  req.Allowances,
		Status:      types.SessionKeyPending,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	if err := h.store.CreateSessionKey(c.Request.Context(), sk); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, createSessionKeyResponse{
		SessionKeyID: sk.ID.String(),
		Address:      address,
		Challenge:    challenge.Challenge,
		Scope:        challenge.Scope,
		ExpiresAt:    challenge.ExpiresAt,
	})
}

func (h *Handlers) activateSessionKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidationError(c, err)
		return
	}
	var req activateSessionKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	key, err := h.store.GetSessionKey(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.coord.AuthVerify(c.Request.Context(), req.Owner, req.Challenge, req.Signature)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.ActivateSessionKey(c.Request.Context(), key, token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_key_id": id.String(), "status": string(types.SessionKeyActive)})
}

func (h *Handlers) revokeSessionKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidationError(c, err)
		return
	}

	key, err := h.store.GetSessionKey(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.coord.RevokeSessionKey(c.Request.Context(), key.Owner, key.Address); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.RevokeSessionKey(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_key_id": id.String(), "status": string(types.SessionKeyRevoked)})
}

func (h *Handlers) createChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	info, err := h.coord.CreateChannel(c.Request.Context(), req.Owner, req.Token, req.ChainID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handlers) resizeChannel(c *gin.Context) {
	channelID := c.Param("id")
	var req resizeChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	raw, err := h.coord.ResizeChannel(c.Request.Context(), req.Owner, channelID, req.ResizeAmt, req.AllocateAmt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (h *Handlers) listChannels(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		respondValidationError(c, derrors.New(derrors.ValidationError, "owner is required"))
		return
	}
	channels, err := h.coord.ListChannels(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *Handlers) getLedgerBalances(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		respondValidationError(c, derrors.New(derrors.ValidationError, "owner is required"))
		return
	}
	balances, err := h.coord.GetLedgerBalances(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (h *Handlers) health(c *gin.Context) {
	if !h.engine.HealthCheck() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryLimit(c *gin.Context) int {
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultListLimit
}

func toOrderView(o *types.Order) orderView {
	return orderView{
		OrderID:           o.ID.String(),
		OwnerAddress:      o.OwnerAddress,
		Side:              string(o.Side),
		BaseToken:         o.BaseToken,
		QuoteToken:        o.QuoteToken,
		Quantity:          o.Quantity.String(),
		Price:             o.Price.String(),
		FilledQuantity:    o.FilledQuantity.String(),
		RemainingQuantity: o.RemainingQuantity.String(),
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
	}
}

func toMatchView(m *types.Match) matchView {
	return matchView{
		MatchID:          m.ID.String(),
		BuyOrderID:       m.BuyOrderID.String(),
		SellOrderID:      m.SellOrderID.String(),
		BaseToken:        m.BaseToken,
		QuoteToken:       m.QuoteToken,
		Quantity:         m.Quantity.String(),
		Price:            m.Price.String(),
		SettlementStatus: string(m.SettlementStatus),
		SettlementTxHash: m.SettlementTxHash,
		AppSessionID:     m.AppSessionID,
		MatchedAt:        m.MatchedAt.Format(time.RFC3339),
	}
}

func toPriceLevelViews(levels []types.PriceLevel) []priceLevelView {
	out := make([]priceLevelView, 0, len(levels))
	for _, l := range levels {
		out = append(out, priceLevelView{Price: l.Price.String(), Quantity: l.Quantity.String(), OrderCount: l.OrderCount})
	}
	return out
}
