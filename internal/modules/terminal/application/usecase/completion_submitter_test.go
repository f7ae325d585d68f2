package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/domain"
)

func TestCompletionSubmitterRefusesWhileInFlight(t *testing.T) {
	sender := &recordingSender{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	sub := NewCompletionSubmitter(sender, "cocina", nil)

	done := make(chan error, 1)
	go func() { done <- sub.Complete(context.Background(), "5") }()
	<-sender.entered

	if state := sub.State("5"); state != domain.CompletionInFlight {
		t.Fatalf("expected in flight, got %s", state)
	}
	if err := sub.Complete(context.Background(), "5"); !errors.Is(err, domain.ErrCompletionInFlight) {
		t.Fatalf("expected ErrCompletionInFlight, got %v", err)
	}

	close(sender.gate)
	if err := <-done; err != nil {
		t.Fatalf("complete: %v", err)
	}
	if calls := sender.Calls(); len(calls) != 1 || calls[0] != "cocina/5" {
		t.Fatalf("expected one request, got %v", calls)
	}
	if state := sub.State("5"); state != domain.CompletionSucceeded {
		t.Fatalf("expected succeeded, got %s", state)
	}
}

func TestCompletionSubmitterRepeatAfterSuccess(t *testing.T) {
	sender := &recordingSender{}
	sub := NewCompletionSubmitter(sender, "cocina", nil)
	for i := 0; i < 2; i++ {
		if err := sub.Complete(context.Background(), "5"); err != nil {
			t.Fatalf("complete #%d: %v", i+1, err)
		}
	}
	if len(sender.Calls()) != 2 {
		t.Fatalf("expected both requests sent, got %v", sender.Calls())
	}
}

func TestCompletionFailureKeepsTicketUntilRefresh(t *testing.T) {
	sender := &recordingSender{err: fmt.Errorf("%w: status 500", domain.ErrProtocol)}
	presenter := &recordingPresenter{}
	fetcher := &scriptedFetcher{snaps: []*kds.Snapshot{
		mustSnapshot("cocina", "5", "7"),
		mustSnapshot("cocina", "7"),
	}}
	session := NewSession(context.Background(), SessionConfig{
		Destino:   "cocina",
		Fetcher:   fetcher,
		Sender:    sender,
		Presenter: presenter,
	})
	defer session.Close()

	session.OnConnect()
	session.sync.Wait()

	err := session.Complete(context.Background(), "5")
	if !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if state := session.CompletionState("5"); state != domain.CompletionFailed {
		t.Fatalf("expected failed state, got %s", state)
	}
	if !session.Snapshot().Contains("5") {
		t.Fatal("expected ticket 5 to stay on screen after a failed completion")
	}

	// manual retry from Failed is allowed
	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()
	if err := session.Complete(context.Background(), "5"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !session.Snapshot().Contains("5") {
		t.Fatal("expected the submitter to leave the snapshot alone")
	}

	session.OnEvent(kds.OrderChanged("cocina"))
	session.sync.Wait()
	if session.Snapshot().Contains("5") {
		t.Fatal("expected refresh to drop ticket 5")
	}
	if state := session.CompletionState("5"); state != domain.CompletionIdle {
		t.Fatalf("expected state forgotten after reconcile, got %s", state)
	}

	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	states := make([]domain.CompletionState, 0, len(presenter.completions))
	for _, n := range presenter.completions {
		states = append(states, n.state)
	}
	want := []domain.CompletionState{domain.CompletionInFlight, domain.CompletionFailed, domain.CompletionInFlight, domain.CompletionSucceeded}
	if fmt.Sprint(states) != fmt.Sprint(want) {
		t.Fatalf("expected states %v, got %v", want, states)
	}
}
