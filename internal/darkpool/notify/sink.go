// Package notify publishes match and settlement events to the
// notification sink (C6), a collaborator outside the matching/settlement
// core (spec §1, §4.4 step 10). Grounded on the teacher's Watermill/NATS
// event bus adapters (internal/architecture/cqrs/eventbus/watermill_adapter.go,
// internal/architecture/fx/eventbus_adapters.go), generalized from
// CQRS domain events to the two notification kinds this core emits.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// MatchEvent is emitted once a match is written (spec §4.2), before
// settlement begins.
type MatchEvent struct {
	MatchID     uuid.UUID `json:"match_id"`
	BuyOrderID  uuid.UUID `json:"buy_order_id"`
	SellOrderID uuid.UUID `json:"sell_order_id"`
	BaseToken   string    `json:"base_token"`
	QuoteToken  string    `json:"quote_token"`
	Quantity    string    `json:"quantity"`
	Price       string    `json:"price"`
	MatchedAt   time.Time `json:"matched_at"`
}

// SettlementEvent is emitted once a match reaches SETTLED (spec §4.4 step
// 10), one per participant (seller and buyer).
type SettlementEvent struct {
	MatchID      uuid.UUID `json:"match_id"`
	Participant  string    `json:"participant"`
	TxHash       string    `json:"tx_hash"`
	AppSessionID string    `json:"app_session_id"`
	SettledAt    time.Time `json:"settled_at"`
}

// Sink is the notification surface the matching engine and settlement
// worker publish to. It is a thin forwarding boundary, not core logic.
type Sink interface {
	PublishMatch(ctx context.Context, ev MatchEvent) error
	PublishSettlement(ctx context.Context, ev SettlementEvent) error
}

// Topics, following the teacher's topicPrefix + event-type convention.
const (
	matchTopicSuffix      = "matches"
	settlementTopicSuffix = "settlements"
)

// WatermillSink publishes through a Watermill message.Publisher, backed by
// the NATS pub/sub transport (darkpool-labs operates one shared broker for
// both domains, unlike the teacher's separate command/event publishers).
type WatermillSink struct {
	publisher   message.Publisher
	topicPrefix string
}

// NewWatermillSink wraps an already-constructed publisher (e.g. from
// watermill-nats) with the configured topic prefix.
func NewWatermillSink(publisher message.Publisher, topicPrefix string) *WatermillSink {
	return &WatermillSink{publisher: publisher, topicPrefix: topicPrefix}
}

func (s *WatermillSink) PublishMatch(ctx context.Context, ev MatchEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := message.NewMessage(ksuid.New().String(), payload)
	msg.Metadata.Set("match_id", ev.MatchID.String())
	return s.publisher.Publish(s.topicPrefix+matchTopicSuffix, msg)
}

func (s *WatermillSink) PublishSettlement(ctx context.Context, ev SettlementEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := message.NewMessage(ksuid.New().String(), payload)
	msg.Metadata.Set("match_id", ev.MatchID.String())
	msg.Metadata.Set("participant", ev.Participant)
	return s.publisher.Publish(s.topicPrefix+settlementTopicSuffix, msg)
}

// NoopSink discards every event; used in test mode when no broker is
// configured (mirrors spec §6's router/custody-address "unset -> skipped"
// pattern applied to the notification collaborator).
type NoopSink struct{}

func (NoopSink) PublishMatch(context.Context, MatchEvent) error            { return nil }
func (NoopSink) PublishSettlement(context.Context, SettlementEvent) error { return nil }
