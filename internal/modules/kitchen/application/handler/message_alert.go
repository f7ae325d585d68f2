package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/application/usecase"
	"puestitoKds/internal/modules/kitchen/domain"
)

type alertRecord struct {
	Destino string `json:"destino"`
	MesaKey string `json:"mesa_key"`
	Mensaje string `json:"mensaje"`
}

// MessageAlertHandler relays operator messages published by the POS.
type MessageAlertHandler struct {
	TopicName string
	UseCase   *usecase.AlertsUseCase
}

func (h *MessageAlertHandler) Topic() string { return h.TopicName }

func (h *MessageAlertHandler) Handle(ctx context.Context, msg *domain.InboundMessage) error {
	var record alertRecord
	if err := json.Unmarshal(msg.Value, &record); err != nil {
		return fmt.Errorf("decode alert record: %w", err)
	}
	return h.UseCase.Send(ctx, usecase.SendAlertInput{
		Destino: record.Destino,
		MesaKey: record.MesaKey,
		Message: record.Mensaje,
	})
}

var _ port.TopicHandler = (*MessageAlertHandler)(nil)
