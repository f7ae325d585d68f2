package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/domain"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPresenterRendersSnapshot(t *testing.T) {
	t0 := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	snap, err := kds.NewSnapshot("cocina", []kds.TicketGroup{
		{MesaKey: "5", Timestamp: t0, Items: []kds.TicketItem{{Quantity: 2, Name: "Café", Note: "sin azúcar"}}},
		{MesaKey: "3+4", Timestamp: t0.Add(10 * time.Minute), Items: []kds.TicketItem{{Quantity: 1, Name: "Tacos"}}},
	}, t0)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	var out bytes.Buffer
	p := NewPresenter(&out, "cocina", 15*time.Minute)
	p.now = func() time.Time { return t0.Add(20 * time.Minute) }
	p.ShowSnapshot(snap)

	got := out.String()
	for _, want := range []string{"COCINA | 2 pendientes", "! mesa 5", "20:00  2 uds", "2x Café (sin azúcar)", "  mesa 3+4", "10:00", "1x Tacos"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestPresenterCompletionMessages(t *testing.T) {
	var out bytes.Buffer
	p := NewPresenter(&out, "barra", time.Minute)
	p.ShowCompletion("5", domain.CompletionFailed, errors.New("status 500"))
	if !strings.Contains(out.String(), "listo 5") {
		t.Fatalf("expected retry hint, got %s", out.String())
	}
}

type fakeStation struct {
	mu        sync.Mutex
	completed []string
	refreshes int
	err       error
	done      chan struct{}
}

func (s *fakeStation) Submit(_ context.Context, mesaKey string, report func(error)) bool {
	s.mu.Lock()
	s.completed = append(s.completed, mesaKey)
	s.mu.Unlock()
	go func() {
		report(s.err)
		s.done <- struct{}{}
	}()
	return true
}

func (s *fakeStation) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
}

func TestRunCommands(t *testing.T) {
	station := &fakeStation{done: make(chan struct{}, 1)}
	out := &syncBuffer{}
	input := strings.NewReader("listo 5\n\nrefrescar\nbailar\nsalir\nlisto 9\n")

	err := RunCommands(context.Background(), input, out, station)
	if !errors.Is(err, ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
	<-station.done

	station.mu.Lock()
	defer station.mu.Unlock()
	if len(station.completed) != 1 || station.completed[0] != "5" || station.refreshes != 1 {
		t.Fatalf("unexpected station calls %+v", station)
	}
	if !strings.Contains(out.String(), `comando desconocido "bailar"`) {
		t.Fatalf("expected unknown command notice, got %s", out.String())
	}
}

func TestRunCommandsReportsCompletionInFlight(t *testing.T) {
	station := &fakeStation{done: make(chan struct{}, 1), err: domain.ErrCompletionInFlight}
	out := &syncBuffer{}

	if err := RunCommands(context.Background(), strings.NewReader("listo 7\n"), out, station); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-station.done
	if !strings.Contains(out.String(), "mesa 7: ya se esta enviando") {
		t.Fatalf("expected in-flight notice, got %s", out.String())
	}
}
