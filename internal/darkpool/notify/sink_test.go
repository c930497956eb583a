package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNoopSinkDiscardsEvents(t *testing.T) {
	var s NoopSink
	if err := s.PublishMatch(context.Background(), MatchEvent{MatchID: uuid.New()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.PublishSettlement(context.Background(), SettlementEvent{MatchID: uuid.New(), SettledAt: time.Now()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSinkIsSatisfiedByNoop(t *testing.T) {
	var _ Sink = NoopSink{}
}
