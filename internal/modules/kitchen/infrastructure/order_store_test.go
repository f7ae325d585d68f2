package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
	"puestitoKds/internal/modules/kitchen/domain"
)

var t0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newRedisStore(t *testing.T) (*RedisOrderStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisOrderStore(client, "test", time.Hour), mr
}

func storesUnderTest(t *testing.T) map[string]port.OrderStore {
	redisStore, _ := newRedisStore(t)
	return map[string]port.OrderStore{
		"memory": NewMemoryOrderStore(time.Hour),
		"redis":  redisStore,
	}
}

func sampleOrder(id, mesa string, openedAt time.Time) domain.Order {
	return domain.Order{
		ClientUUID: id,
		MesaKey:    mesa,
		OpenedAt:   openedAt,
		Items: []domain.OrderItem{
			{MenuItemID: "CAF1", Name: "Café", Quantity: 2, Note: "sin azúcar", Destino: "cocina", Status: domain.ItemPending},
			{MenuItemID: "CER1", Name: "Cerveza", Quantity: 1, Destino: "barra", Status: domain.ItemPending},
		},
	}
}

func TestOrderStoresPendingAndComplete(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.CreateOrder(ctx, sampleOrder("o-2", "7", t0.Add(time.Minute))); err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); err != nil {
				t.Fatalf("create: %v", err)
			}

			groups, err := store.PendingTickets(ctx, "cocina")
			if err != nil {
				t.Fatalf("pending: %v", err)
			}
			if len(groups) != 2 || groups[0].MesaKey != "5" || groups[1].MesaKey != "7" {
				t.Fatalf("expected groups 5 then 7, got %+v", groups)
			}
			if item := groups[0].Items[0]; item.Name != "Café" || item.Quantity != 2 || item.Note != "sin azúcar" {
				t.Fatalf("unexpected item %+v", item)
			}
			if !groups[0].Timestamp.Equal(t0) {
				t.Fatalf("expected timestamp %v, got %v", t0, groups[0].Timestamp)
			}

			changed, err := store.MarkReady(ctx, "5", "cocina")
			if err != nil || changed != 1 {
				t.Fatalf("expected one item marked, got %d (%v)", changed, err)
			}
			changed, err = store.MarkReady(ctx, "5", "cocina")
			if err != nil || changed != 0 {
				t.Fatalf("expected idempotent completion, got %d (%v)", changed, err)
			}
			if changed, err := store.MarkReady(ctx, "nope", "cocina"); err != nil || changed != 0 {
				t.Fatalf("expected unknown mesa to be a no-op, got %d (%v)", changed, err)
			}

			groups, _ = store.PendingTickets(ctx, "cocina")
			if len(groups) != 1 || groups[0].MesaKey != "7" {
				t.Fatalf("expected only mesa 7 pending, got %+v", groups)
			}
			bar, _ := store.PendingTickets(ctx, "barra")
			if len(bar) != 2 {
				t.Fatalf("expected bar tickets untouched, got %+v", bar)
			}
			all, _ := store.PendingTickets(ctx, kds.DestinationAll)
			if len(all) != 2 || len(all[1].Items) != 2 {
				t.Fatalf("expected wildcard to merge stations, got %+v", all)
			}
		})
	}
}

func TestOrderStoresRejectDuplicates(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); !errors.Is(err, port.ErrDuplicateOrder) {
				t.Fatalf("expected ErrDuplicateOrder, got %v", err)
			}

			// still a duplicate after every item was completed
			_, _ = store.MarkReady(ctx, "5", kds.DestinationAll)
			if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); !errors.Is(err, port.ErrDuplicateOrder) {
				t.Fatalf("expected ErrDuplicateOrder after completion, got %v", err)
			}
			groups, _ := store.PendingTickets(ctx, kds.DestinationAll)
			if len(groups) != 0 {
				t.Fatalf("expected no pending groups, got %+v", groups)
			}
		})
	}
}

func TestOrderStoresUpdateNote(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := store.UpdateItemNote(ctx, "5", "caf1", " con leche "); err != nil {
				t.Fatalf("update note: %v", err)
			}
			groups, _ := store.PendingTickets(ctx, "cocina")
			if got := groups[0].Items[0].Note; got != "con leche" {
				t.Fatalf("expected updated note, got %q", got)
			}
			if err := store.UpdateItemNote(ctx, "5", "XXX", "x"); !errors.Is(err, port.ErrItemNotFound) {
				t.Fatalf("expected ErrItemNotFound, got %v", err)
			}
		})
	}
}

func TestRedisOrderStoreExpiresFinishedOrders(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.MarkReady(ctx, "5", kds.DestinationAll); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if ttl := mr.TTL("test:order:o-1"); ttl != time.Hour {
		t.Fatalf("expected retention ttl, got %v", ttl)
	}
	if mr.Exists("test:mesa:5") {
		t.Fatal("expected mesa index to be emptied")
	}

	mr.FastForward(2 * time.Hour)
	if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); err != nil {
		t.Fatalf("expected order id reusable after retention, got %v", err)
	}
}

func TestMemoryOrderStoreForgetsFinishedOrdersAfterRetention(t *testing.T) {
	store := NewMemoryOrderStore(time.Hour)
	now := t0
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateOrder(ctx, sampleOrder("o-2", "7", t0)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.MarkReady(ctx, "5", kds.DestinationAll); err != nil {
		t.Fatalf("mark ready: %v", err)
	}

	now = t0.Add(30 * time.Minute)
	if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); !errors.Is(err, port.ErrDuplicateOrder) {
		t.Fatalf("expected duplicate inside retention, got %v", err)
	}

	now = t0.Add(2 * time.Hour)
	if err := store.CreateOrder(ctx, sampleOrder("o-2", "7", t0)); !errors.Is(err, port.ErrDuplicateOrder) {
		t.Fatalf("expected open order to stay a duplicate, got %v", err)
	}
	if err := store.CreateOrder(ctx, sampleOrder("o-1", "5", t0)); err != nil {
		t.Fatalf("expected order id reusable after retention, got %v", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.seen) != 2 {
		t.Fatalf("expected only live ids remembered, got %d", len(store.seen))
	}
}
