package usecase

import (
	"context"
	"testing"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/domain"
)

func TestSyncControllerCollapsesBurstIntoOneFollowUp(t *testing.T) {
	fetcher := &scriptedFetcher{gate: make(chan struct{}), called: make(chan struct{}, 8)}
	var sunk []*kds.Snapshot
	sc := NewSyncController(context.Background(), fetcher, "cocina", func(s *kds.Snapshot) { sunk = append(sunk, s) })

	if !sc.Trigger() {
		t.Fatal("expected first trigger to start a fetch")
	}
	<-fetcher.called
	for i := 0; i < 5; i++ {
		sc.OnOrderChanged("cocina")
	}
	if !sc.Refreshing() {
		t.Fatal("expected controller to be refreshing")
	}

	fetcher.gate <- struct{}{}
	<-fetcher.called
	fetcher.gate <- struct{}{}
	sc.Wait()

	if got := fetcher.Calls(); got != 2 {
		t.Fatalf("expected exactly one follow-up fetch, got %d fetches", got)
	}
	if len(sunk) != 2 || sc.Refreshing() {
		t.Fatalf("expected two snapshots applied and idle controller, got %d refreshing=%v", len(sunk), sc.Refreshing())
	}
}

func TestSyncControllerFiltersDestination(t *testing.T) {
	fetcher := &scriptedFetcher{}
	sc := NewSyncController(context.Background(), fetcher, "cocina", nil)

	sc.OnOrderChanged("barra")
	sc.Wait()
	if fetcher.Calls() != 0 {
		t.Fatalf("expected no fetch for another station, got %d", fetcher.Calls())
	}

	sc.OnOrderChanged(kds.DestinationAll)
	sc.Wait()
	sc.OnOrderChanged("cocina")
	sc.Wait()
	if fetcher.Calls() != 2 {
		t.Fatalf("expected fetches for wildcard and own station, got %d", fetcher.Calls())
	}
}

func TestSyncControllerKeepsSnapshotOnFailure(t *testing.T) {
	first := mustSnapshot("cocina", "5")
	fetcher := &scriptedFetcher{
		snaps: []*kds.Snapshot{first},
		errs:  []error{nil, domain.ErrTransport},
	}
	sc := NewSyncController(context.Background(), fetcher, "cocina", nil)

	sc.OnConnect()
	sc.Wait()
	sc.OnConnect()
	sc.Wait()

	if sc.Last() != first {
		t.Fatalf("expected previous snapshot kept after failure, got %+v", sc.Last())
	}
	if sc.Fetches() != 2 {
		t.Fatalf("expected two attempts, got %d", sc.Fetches())
	}
}

func TestSyncControllerCafeScenario(t *testing.T) {
	body := []byte(`[{"numero_mesa":"5","timestamp":"2025-03-01T12:00:00Z","items":[{"cantidad":2,"nombre":"Café","notas":"sin azúcar"}]}]`)
	snap, err := kds.DecodeSnapshot("cocina", body, t0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sc := NewSyncController(context.Background(), &scriptedFetcher{snaps: []*kds.Snapshot{snap}}, "cocina", nil)
	sc.OnConnect()
	sc.Wait()

	last := sc.Last()
	if last == nil || last.Len() != 1 {
		t.Fatalf("expected one group, got %+v", last)
	}
	group, ok := last.Lookup("5")
	if !ok || len(group.Items) != 1 || group.Items[0].Quantity != 2 || group.Items[0].Note != "sin azúcar" {
		t.Fatalf("unexpected group %+v", group)
	}
	if got := group.Elapsed(t0.Add(90 * time.Second)); got != 90*time.Second {
		t.Fatalf("expected elapsed 90s, got %v", got)
	}
}

func TestSyncControllerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &scriptedFetcher{gate: make(chan struct{}), called: make(chan struct{}, 4)}
	sc := NewSyncController(ctx, fetcher, "cocina", nil)

	sc.Trigger()
	<-fetcher.called
	sc.Trigger()
	cancel()
	sc.Wait()

	if fetcher.Calls() != 1 {
		t.Fatalf("expected no follow-up after cancel, got %d", fetcher.Calls())
	}
	if sc.Refreshing() {
		t.Fatal("expected controller idle after cancel")
	}
}
