package infrastructure

import (
	"context"
	"strings"
	"sync"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/domain"
)

// MemoryOrderStore keeps orders in process. Orders with no pending items are
// pruned; their ids are remembered for retention so duplicates are still
// detected, the same window the Redis store keeps finished orders.
type MemoryOrderStore struct {
	mu        sync.Mutex
	orders    []*domain.Order
	seen      map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

// NewMemoryOrderStore remembers finished order ids for retention. A
// non-positive retention falls back to 24h.
func NewMemoryOrderStore(retention time.Duration) *MemoryOrderStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &MemoryOrderStore{seen: make(map[string]time.Time), retention: retention, now: time.Now}
}

func (s *MemoryOrderStore) CreateOrder(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	if _, ok := s.seen[order.ClientUUID]; ok {
		return port.ErrDuplicateOrder
	}
	s.seen[order.ClientUUID] = s.now()
	stored := order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders = append(s.orders, &stored)
	return nil
}

func (s *MemoryOrderStore) PendingTickets(_ context.Context, destino kds.Destination) ([]kds.TicketGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, *o)
	}
	return domain.GroupPending(orders, destino), nil
}

func (s *MemoryOrderStore) MarkReady(_ context.Context, mesaKey string, destino kds.Destination) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for _, o := range s.orders {
		if o.MesaKey == mesaKey {
			changed += o.MarkReady(destino)
		}
	}
	s.pruneLocked()
	return changed, nil
}

func (s *MemoryOrderStore) UpdateItemNote(_ context.Context, mesaKey, menuItemID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for _, o := range s.orders {
		if o.MesaKey == strings.TrimSpace(mesaKey) {
			changed += o.UpdateNote(menuItemID, note)
		}
	}
	if changed == 0 {
		return port.ErrItemNotFound
	}
	return nil
}

func (s *MemoryOrderStore) pruneLocked() {
	kept := s.orders[:0]
	active := make(map[string]struct{}, len(s.orders))
	for _, o := range s.orders {
		if o.HasPending() {
			kept = append(kept, o)
			active[o.ClientUUID] = struct{}{}
		}
	}
	for i := len(kept); i < len(s.orders); i++ {
		s.orders[i] = nil
	}
	s.orders = kept

	cutoff := s.now().Add(-s.retention)
	for id, at := range s.seen {
		if _, open := active[id]; !open && at.Before(cutoff) {
			delete(s.seen, id)
		}
	}
}

var _ port.OrderStore = (*MemoryOrderStore)(nil)
