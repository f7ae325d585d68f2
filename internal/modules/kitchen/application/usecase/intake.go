package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/domain"
)

type IntakeResult struct {
	OrderID   string
	MesaKey   string
	Duplicate bool
}

// IntakeUseCase accepts orders from the point of sale, over HTTP or the broker.
type IntakeUseCase struct {
	store       port.OrderStore
	broadcaster port.Broadcaster
	router      domain.Router
	now         func() time.Time
}

func NewIntakeUseCase(store port.OrderStore, broadcaster port.Broadcaster, router domain.Router) *IntakeUseCase {
	return &IntakeUseCase{store: store, broadcaster: broadcaster, router: router, now: time.Now}
}

// Execute stores the order unless its order_id was seen before. Orders without
// an order_id get a generated one and are never treated as duplicates.
func (uc *IntakeUseCase) Execute(ctx context.Context, in domain.IntakeOrder) (IntakeResult, error) {
	order, err := in.ToOrder(uc.router, uc.now())
	if err != nil {
		return IntakeResult{}, err
	}
	if order.ClientUUID == "" {
		order.ClientUUID = uuid.NewString()
	}
	result := IntakeResult{OrderID: order.ClientUUID, MesaKey: order.MesaKey}

	if err := uc.store.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, port.ErrDuplicateOrder) {
			slog.Info("order intake duplicate", slog.String("orderId", order.ClientUUID), slog.String("mesaKey", order.MesaKey))
			result.Duplicate = true
			return result, nil
		}
		return IntakeResult{}, fmt.Errorf("store order %s: %w", order.ClientUUID, err)
	}

	slog.Info("order intake stored",
		slog.String("orderId", order.ClientUUID),
		slog.String("mesaKey", order.MesaKey),
		slog.Int("items", len(order.Items)),
		slog.Any("destinos", order.Destinations()),
	)
	uc.broadcaster.Broadcast(ctx, kds.OrderChanged(kds.DestinationAll))
	return result, nil
}
