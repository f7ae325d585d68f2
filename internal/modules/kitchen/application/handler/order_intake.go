package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/application/usecase"
	"puestitoKds/internal/modules/kitchen/domain"
)

// OrderIntakeHandler feeds POS order records into the intake use case.
type OrderIntakeHandler struct {
	TopicName string
	UseCase   *usecase.IntakeUseCase
}

func (h *OrderIntakeHandler) Topic() string { return h.TopicName }

func (h *OrderIntakeHandler) Handle(ctx context.Context, msg *domain.InboundMessage) error {
	var order domain.IntakeOrder
	if err := json.Unmarshal(msg.Value, &order); err != nil {
		return fmt.Errorf("decode order record %s: %w", msg.Key, err)
	}
	if order.OrderID == "" {
		order.OrderID = msg.Key
	}
	result, err := h.UseCase.Execute(ctx, order)
	if err != nil {
		return err
	}
	slog.Debug("order record handled", slog.String("topic", msg.Topic), slog.String("orderId", result.OrderID), slog.Bool("duplicate", result.Duplicate))
	return nil
}

var _ port.TopicHandler = (*OrderIntakeHandler)(nil)
