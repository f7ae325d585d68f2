package port

import (
	"context"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/domain"
)

// PubSubPort consumes records from the POS broker.
type PubSubPort interface {
	Consume(ctx context.Context, handler func(*domain.InboundMessage) error) error
}

// Broadcaster fans push events out to connected station terminals.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev kds.PushEvent)
}

// TopicHandler handles the records of one broker topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.InboundMessage) error
}
