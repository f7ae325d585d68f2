package port

import (
	"context"
	"errors"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/domain"
)

var (
	ErrUnknownDestination = errors.New("unknown destination")
	ErrInvalidOrder       = domain.ErrInvalidOrder
	ErrInvalidRequest     = errors.New("invalid request")
	ErrDuplicateOrder     = errors.New("duplicate order")
	ErrItemNotFound       = errors.New("pending item not found")
	ErrInvalidPin         = errors.New("invalid pin")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("destination not allowed for credential")
)

// OrderStore keeps active orders and their per-station item states.
type OrderStore interface {
	// CreateOrder stores a new order, or returns ErrDuplicateOrder when an
	// order with the same ClientUUID already exists.
	CreateOrder(ctx context.Context, order domain.Order) error
	// PendingTickets returns the pending ticket groups for destino, oldest first.
	PendingTickets(ctx context.Context, destino kds.Destination) ([]kds.TicketGroup, error)
	// MarkReady marks every pending item of mesaKey for destino as ready and
	// returns how many changed. Unknown mesa keys change nothing.
	MarkReady(ctx context.Context, mesaKey string, destino kds.Destination) (int, error)
	// UpdateItemNote rewrites the note of pending lines of menuItemID under
	// mesaKey, or returns ErrItemNotFound.
	UpdateItemNote(ctx context.Context, mesaKey, menuItemID, note string) error
}
