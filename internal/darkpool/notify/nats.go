package notify

import (
	"github.com/ThreeDotsLabs/watermill"
	watermillnats "github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
)

// NewNatsSink dials the configured NATS server and returns a WatermillSink
// publishing over it, following the teacher's NewWatermillEventBus wiring
// (watermill.NewStdLogger + nats.PublisherConfig + nats.GobMarshaler).
func NewNatsSink(natsURL, topicPrefix string) (*WatermillSink, error) {
	logger := watermill.NewStdLogger(false, false)

	publisher, err := watermillnats.NewPublisher(watermillnats.PublisherConfig{
		URL:       natsURL,
		Marshaler: watermillnats.GobMarshaler{},
	}, logger)
	if err != nil {
		return nil, err
	}

	return NewWatermillSink(publisher, topicPrefix), nil
}
