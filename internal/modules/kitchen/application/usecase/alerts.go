package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
)

type SendAlertInput struct {
	Destino string
	MesaKey string
	Message string
}

// AlertsUseCase relays operator messages to station terminals. Alerts are not
// stored; terminals that are offline miss them.
type AlertsUseCase struct {
	broadcaster  port.Broadcaster
	destinations *Destinations
	now          func() time.Time
}

func NewAlertsUseCase(broadcaster port.Broadcaster, destinations *Destinations) *AlertsUseCase {
	return &AlertsUseCase{broadcaster: broadcaster, destinations: destinations, now: time.Now}
}

func (uc *AlertsUseCase) Send(ctx context.Context, in SendAlertInput) error {
	message := strings.TrimSpace(in.Message)
	mesaKey := strings.TrimSpace(in.MesaKey)
	if message == "" || mesaKey == "" {
		return fmt.Errorf("%w: mesa_key and mensaje are required", port.ErrInvalidRequest)
	}
	dest, err := uc.destinations.Resolve(in.Destino, true)
	if err != nil {
		return err
	}
	ev := kds.MessageAlert(dest, mesaKey, message)
	ev.SentAt = uc.now()
	slog.Info("kds alert sent", slog.String("destino", dest.String()), slog.String("mesaKey", mesaKey))
	uc.broadcaster.Broadcast(ctx, ev)
	return nil
}
