package broker

import (
	"context"
	"log/slog"

	"puestitoKds/internal/modules/kitchen/domain"
	"puestitoKds/internal/modules/kitchen/infrastructure"
)

// StartKafkaConsumers starts one consumer per registered topic. Nothing is
// started without brokers, which leaves HTTP intake as the only order source.
func StartKafkaConsumers(
	ctx context.Context,
	registry *infrastructure.HandlerRegistry,
	brokers []string,
	groupID string,
) {
	if len(brokers) == 0 {
		slog.Info("kafka disabled: no brokers configured")
		return
	}
	for _, topic := range registry.Topics() {
		go func(tp string) {
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			slog.Info("kafka consumer started", slog.String("topic", tp), slog.String("groupId", groupID))
			err := consumer.Consume(ctx, func(msg *domain.InboundMessage) error {
				return registry.Dispatch(ctx, msg)
			})
			slog.Info("kafka consumer stopped", slog.String("topic", tp), slog.Any("reason", err))
		}(topic)
	}
}
