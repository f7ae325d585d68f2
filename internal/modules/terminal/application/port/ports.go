package port

import (
	"context"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/domain"
)

// SnapshotFetcher loads the full pending list of a destination.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, destino kds.Destination) (*kds.Snapshot, error)
}

// CompletionSender asks the server to mark a mesa key ready.
type CompletionSender interface {
	SendCompletion(ctx context.Context, mesaKey string, destino kds.Destination) error
}

// PinGate exchanges a 4-digit PIN for a station grant.
type PinGate interface {
	ValidatePin(ctx context.Context, pin string) (domain.Grant, error)
}

// PushListener receives transport transitions and push events from the
// channel subscription. Calls are made from a single goroutine.
type PushListener interface {
	OnConnect()
	OnDisconnect(err error)
	OnEvent(ev kds.PushEvent)
}

// Presenter renders session state. Implementations must not block.
type Presenter interface {
	ShowSnapshot(snap *kds.Snapshot)
	ShowAlert(alert domain.Alert)
	DismissAlert(id string)
	ShowConnectivity(connected bool)
	ShowCompletion(mesaKey string, state domain.CompletionState, err error)
}
