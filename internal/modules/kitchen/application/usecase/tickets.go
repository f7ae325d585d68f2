package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
)

type CompleteTicketInput struct {
	MesaKey string
	Destino string
	// Scope is the destination a station token is bound to; empty for the
	// shared API key.
	Scope string
}

type UpdateNoteInput struct {
	MesaKey    string
	MenuItemID string
	Note       string
}

// TicketsUseCase serves the station endpoints: pending snapshots, completion
// and note edits. Every mutation is followed by a push event so that other
// terminals re-fetch.
type TicketsUseCase struct {
	store        port.OrderStore
	broadcaster  port.Broadcaster
	destinations *Destinations
}

func NewTicketsUseCase(store port.OrderStore, broadcaster port.Broadcaster, destinations *Destinations) *TicketsUseCase {
	return &TicketsUseCase{store: store, broadcaster: broadcaster, destinations: destinations}
}

func (uc *TicketsUseCase) Pending(ctx context.Context, destino string) ([]kds.TicketGroup, error) {
	dest, err := uc.destinations.Resolve(destino, true)
	if err != nil {
		return nil, err
	}
	groups, err := uc.store.PendingTickets(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("list pending %s: %w", dest, err)
	}
	return groups, nil
}

// Complete marks mesaKey ready for destino. Completing an already completed
// or unknown mesa key succeeds, so retries are safe.
func (uc *TicketsUseCase) Complete(ctx context.Context, in CompleteTicketInput) error {
	mesaKey := strings.TrimSpace(in.MesaKey)
	if mesaKey == "" {
		return fmt.Errorf("%w: missing mesa_key", port.ErrInvalidRequest)
	}
	dest, err := uc.destinations.Resolve(in.Destino, true)
	if err != nil {
		return err
	}
	if scope := kds.NormalizeDestination(in.Scope); scope != "" && !scope.IsWildcard() && scope != dest {
		return fmt.Errorf("%w: token for %s cannot complete %s", port.ErrForbidden, scope, dest)
	}

	changed, err := uc.store.MarkReady(ctx, mesaKey, dest)
	if err != nil {
		return fmt.Errorf("complete %s/%s: %w", dest, mesaKey, err)
	}
	slog.Info("ticket completed", slog.String("destino", dest.String()), slog.String("mesaKey", mesaKey), slog.Int("items", changed))
	uc.broadcaster.Broadcast(ctx, kds.OrderChanged(dest))
	return nil
}

func (uc *TicketsUseCase) UpdateNote(ctx context.Context, in UpdateNoteInput) error {
	mesaKey := strings.TrimSpace(in.MesaKey)
	itemID := strings.TrimSpace(in.MenuItemID)
	if mesaKey == "" || itemID == "" {
		return fmt.Errorf("%w: mesa_key and item_id are required", port.ErrInvalidRequest)
	}
	if err := uc.store.UpdateItemNote(ctx, mesaKey, itemID, in.Note); err != nil {
		return fmt.Errorf("update note %s/%s: %w", mesaKey, itemID, err)
	}
	slog.Info("ticket note updated", slog.String("mesaKey", mesaKey), slog.String("itemId", itemID))
	uc.broadcaster.Broadcast(ctx, kds.OrderChanged(kds.DestinationAll))
	return nil
}
