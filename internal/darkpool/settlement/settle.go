package settlement

import (
	"context"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/chain"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/coordinator"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/decimalmath"
	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/notify"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/types"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/zkproof"
)

// processMatch claims one candidate match and, on success, drives it
// through settle. Claim races (RowsAffected == 0) are a normal outcome,
// not an error: another worker or a previous crashed attempt already has
// it (spec §4.4's "Claim" step).
func (w *Worker) processMatch(ctx context.Context, m *types.Match) {
	claimed, err := w.store.ClaimMatchForSettlement(ctx, m.ID)
	if err != nil {
		w.logger.Error("settlement claim failed", zap.String("match_id", m.ID.String()), zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	start := time.Now()
	if err := w.settle(ctx, m); err != nil {
		atomic.AddUint64(&w.matchesFailed, 1)
		if w.metrics != nil {
			w.metrics.RecordSettlementFailure(string(derrors.Code(err)))
		}
		if failErr := w.store.MarkFailed(ctx, m.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to persist settlement failure", zap.String("match_id", m.ID.String()), zap.Error(failErr))
		}
		return
	}
	atomic.AddUint64(&w.matchesSettled, 1)
	if w.metrics != nil {
		w.metrics.RecordSettled(time.Since(start))
	}
}

// settle runs the ten numbered steps of spec §4.4 for one claimed match.
// Any step failing aborts the whole match: the settlement worker does not
// recover locally (spec §7's propagation policy), unlike the matching
// engine's per-candidate recovery.
func (w *Worker) settle(ctx context.Context, m *types.Match) error {
	buyOrder, err := w.store.GetOrder(ctx, m.BuyOrderID)
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "loading buy order for settlement")
	}
	sellOrder, err := w.store.GetOrder(ctx, m.SellOrderID)
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "loading sell order for settlement")
	}

	now := time.Now()

	// Step 1: load the three session keys. Absence is fatal for this match.
	buyerKey, ok, err := w.store.GetActiveSessionKey(ctx, buyOrder.OwnerAddress, sessionKeyApplication, now)
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "loading buyer session key")
	}
	if !ok {
		return derrors.New(derrors.Unauthenticated, "no active buyer session key")
	}
	sellerKey, ok, err := w.store.GetActiveSessionKey(ctx, sellOrder.OwnerAddress, sessionKeyApplication, now)
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "loading seller session key")
	}
	if !ok {
		return derrors.New(derrors.Unauthenticated, "no active seller session key")
	}
	if _, ok, err := w.store.GetActiveSessionKey(ctx, types.EngineOwner, sessionKeyApplication, now); err != nil {
		return derrors.Wrap(err, derrors.Fatal, "loading engine session key")
	} else if !ok {
		return derrors.New(derrors.Unauthenticated, "no active engine session key")
	}

	// Step 2: resolve token symbols via the cached asset map.
	if _, ok := w.assets.Symbol(m.BaseToken); !ok {
		return derrors.New(derrors.Fatal, "base token missing from asset map")
	}
	if _, ok := w.assets.Symbol(m.QuoteToken); !ok {
		return derrors.New(derrors.Fatal, "quote token missing from asset map")
	}

	// Step 3: quote_amount = quantity * price, exact decimal-string arithmetic.
	quoteAmount, err := decimalmath.Multiply(m.Quantity.String(), m.Price.String())
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "computing quote amount")
	}

	// Step 4: read on-chain settledAmount for both orders (skipped in test mode).
	buyCommit, sellCommit, err := w.readCommitments(ctx, buyOrder.ID.String(), sellOrder.ID.String())
	if err != nil {
		return err
	}

	// Step 5: generate the Groth16 proof bound to current settlement state.
	proof, public, err := w.generateProof(buyOrder, sellOrder, m.Quantity, buyCommit, sellCommit, now.Unix())
	if err != nil {
		return derrors.Wrap(err, derrors.ProofGenerationFailed, "generating settlement proof")
	}

	// Step 6: submit proveAndSettle on-chain (skipped in test mode).
	txHash, err := w.submitProveAndSettle(ctx, buyOrder.ID.String(), sellOrder.ID.String(), proof, public, now.Unix())
	if err != nil {
		return derrors.Wrap(err, derrors.OnChainReverted, "submitting proveAndSettle")
	}

	// Step 7: open an off-chain application session, engine as judge.
	sellerSig, err := signApplicationSession(sellerKey, m.ID.String())
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "signing app session with seller key")
	}
	buyerSig, err := signApplicationSession(buyerKey, m.ID.String())
	if err != nil {
		return derrors.Wrap(err, derrors.Fatal, "signing app session with buyer key")
	}

	participants := []string{sellOrder.OwnerAddress, buyOrder.OwnerAddress, types.EngineOwner}
	weights := []int{0, 0, 100}
	zeroAlloc := map[string]string{
		sellOrder.OwnerAddress: "0",
		buyOrder.OwnerAddress:  "0",
		types.EngineOwner:      "0",
	}
	sessionID, err := w.coord.CreateAppSession(ctx, participants, weights, 100, zeroAlloc, sellerSig, buyerSig)
	if err != nil {
		return derrors.Wrap(err, derrors.ConsensusRejected, "opening application session")
	}

	// Step 8: close the session, seller receives quote, buyer receives base.
	finalAlloc := map[string]string{
		sellOrder.OwnerAddress: quoteAmount,
		buyOrder.OwnerAddress:  m.Quantity.String(),
		types.EngineOwner:      "0",
	}
	if _, err := w.coord.CloseAppSession(ctx, sessionID, finalAlloc); err != nil {
		return derrors.Wrap(err, derrors.ConsensusRejected, "closing application session")
	}

	// Step 9: mark any fully-filled order as fully settled on-chain.
	if err := w.markFullySettledIfDone(ctx, buyOrder); err != nil {
		return err
	}
	if err := w.markFullySettledIfDone(ctx, sellOrder); err != nil {
		return err
	}

	// Step 10: transition to SETTLED and notify both participants.
	if err := w.store.MarkSettled(ctx, m.ID, txHash, sessionID); err != nil {
		return err
	}
	settledAt := time.Now()
	if err := w.sink.PublishSettlement(ctx, notify.SettlementEvent{
		MatchID: m.ID, Participant: sellOrder.OwnerAddress, TxHash: txHash, AppSessionID: sessionID, SettledAt: settledAt,
	}); err != nil {
		w.logger.Warn("settlement notification failed for seller", zap.String("match_id", m.ID.String()), zap.Error(err))
	}
	if err := w.sink.PublishSettlement(ctx, notify.SettlementEvent{
		MatchID: m.ID, Participant: buyOrder.OwnerAddress, TxHash: txHash, AppSessionID: sessionID, SettledAt: settledAt,
	}); err != nil {
		w.logger.Warn("settlement notification failed for buyer", zap.String("match_id", m.ID.String()), zap.Error(err))
	}

	return nil
}

func (w *Worker) markFullySettledIfDone(ctx context.Context, o *types.Order) error {
	if !o.RemainingQuantity.IsZero() {
		return nil
	}
	if w.testMode {
		return nil
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return derrors.Wrap(err, derrors.Timeout, "rate limiter wait for markFullySettled")
	}
	if _, err := w.chain.MarkFullySettled(ctx, o.ID.String()); err != nil {
		return derrors.Wrap(err, derrors.OnChainReverted, "markFullySettled")
	}
	return nil
}

func (w *Worker) readCommitments(ctx context.Context, buyOrderID, sellOrderID string) (chain.Commitment, chain.Commitment, error) {
	if w.testMode {
		zero := chain.Commitment{Status: chain.CommitmentActive, OrderHash: big.NewInt(0), SettledAmount: big.NewInt(0)}
		return zero, zero, nil
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return chain.Commitment{}, chain.Commitment{}, derrors.Wrap(err, derrors.Timeout, "rate limiter wait for commitments read")
	}
	buyCommit, err := w.chain.Commitments(ctx, buyOrderID)
	if err != nil {
		return chain.Commitment{}, chain.Commitment{}, derrors.Wrap(err, derrors.Unreachable, "reading buy order commitment")
	}
	sellCommit, err := w.chain.Commitments(ctx, sellOrderID)
	if err != nil {
		return chain.Commitment{}, chain.Commitment{}, derrors.Wrap(err, derrors.Unreachable, "reading sell order commitment")
	}
	return buyCommit, sellCommit, nil
}

func (w *Worker) submitProveAndSettle(ctx context.Context, buyOrderID, sellOrderID string, proof []byte, public []*big.Int, timestamp int64) (string, error) {
	if w.testMode {
		return "test-mode", nil
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return "", derrors.Wrap(err, derrors.Timeout, "rate limiter wait for proveAndSettle")
	}
	return w.chain.ProveAndSettle(ctx, chain.SettleInputs{
		OrderIDBuy:   buyOrderID,
		OrderIDSell:  sellOrderID,
		Proof:        proof,
		PublicInputs: public,
		Timestamp:    timestamp,
	})
}

// generateProof builds the Groth16 private/public inputs per spec §4.4
// step 5: private inputs are the order detail fields for both legs;
// public inputs bind the proof to the two commitment hashes, two fill
// amounts, two settled-so-far amounts, and the timestamp also passed to
// the contract in the same call.
func (w *Worker) generateProof(buyOrder, sellOrder *types.Order, fillQty decimal.Decimal, buyCommit, sellCommit chain.Commitment, timestamp int64) (zkproof.Proof, []*big.Int, error) {
	private := zkproof.PrivateInputs{
		BuyOrderDetail:  orderDetailInputs(buyOrder),
		SellOrderDetail: orderDetailInputs(sellOrder),
	}
	fillAmount := bigFromDecimal(fillQty)
	public := zkproof.PublicInputs{
		BuyCommitmentHash:  buyCommit.OrderHash,
		SellCommitmentHash: sellCommit.OrderHash,
		BuyFillAmount:      fillAmount,
		SellFillAmount:     fillAmount,
		BuySettledSoFar:    buyCommit.SettledAmount,
		SellSettledSoFar:   sellCommit.SettledAmount,
		Timestamp:          timestamp,
	}

	proof, err := w.proofGen.Generate(private, public)
	if err != nil {
		return nil, nil, err
	}

	publicInputs := []*big.Int{
		public.BuyCommitmentHash, public.SellCommitmentHash,
		public.BuyFillAmount, public.SellFillAmount,
		public.BuySettledSoFar, public.SellSettledSoFar,
		big.NewInt(public.Timestamp),
	}
	return proof, publicInputs, nil
}

func orderDetailInputs(o *types.Order) []*big.Int {
	return []*big.Int{
		bigFromDecimal(o.Quantity),
		bigFromDecimal(o.Price),
		big.NewInt(int64(o.VarianceBPS)),
	}
}

func signApplicationSession(k *types.SessionKey, matchID string) ([]byte, error) {
	signer := coordinator.NewECDSASigner(new(big.Int).SetBytes(k.Secret))
	return signer.Sign([]byte(matchID))
}

func bigFromDecimal(d decimal.Decimal) *big.Int {
	return d.Shift(8).Truncate(0).BigInt()
}
