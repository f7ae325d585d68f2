package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

type SessionConfig struct {
	Destino   kds.Destination
	Fetcher   port.SnapshotFetcher
	Sender    port.CompletionSender
	Presenter port.Presenter
	AlertTTL  time.Duration
}

// Session is one station terminal. It owns all per-terminal state and is the
// listener of the push subscription.
type Session struct {
	destino      kds.Destination
	presenter    port.Presenter
	sync         *SyncController
	completions  *CompletionSubmitter
	alerts       *AlertChannel
	connectivity *Connectivity

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

func NewSession(ctx context.Context, cfg SessionConfig) *Session {
	s := &Session{destino: cfg.Destino, presenter: cfg.Presenter}
	s.completions = NewCompletionSubmitter(cfg.Sender, cfg.Destino, cfg.Presenter.ShowCompletion)
	s.sync = NewSyncController(ctx, cfg.Fetcher, cfg.Destino, func(snap *kds.Snapshot) {
		s.completions.Reconcile(snap)
		s.presenter.ShowSnapshot(snap)
	})
	s.alerts = NewAlertChannel(cfg.Destino, cfg.AlertTTL, cfg.Presenter)
	s.connectivity = NewConnectivity(cfg.Presenter.ShowConnectivity)
	s.connectivity.Announce()
	return s
}

func (s *Session) Destino() kds.Destination { return s.destino }

func (s *Session) OnConnect() {
	slog.Info("push channel connected", slog.String("destino", s.destino.String()))
	s.connectivity.Set(true)
	s.sync.OnConnect()
}

// OnDisconnect only flips connectivity; the last snapshot stays on screen.
func (s *Session) OnDisconnect(err error) {
	if s.connectivity.Connected() {
		slog.Warn("push channel disconnected", slog.String("destino", s.destino.String()), slog.Any("error", err))
	}
	s.connectivity.Set(false)
}

func (s *Session) OnEvent(ev kds.PushEvent) {
	switch ev.Kind {
	case kds.PushOrderChanged:
		s.sync.OnOrderChanged(ev.Destino)
	case kds.PushMessageAlert:
		s.alerts.OnMessageAlert(ev)
	default:
		slog.Debug("push event ignored", slog.String("kind", ev.Kind.String()))
	}
}

// Complete submits a completion for a ticket shown on this station.
func (s *Session) Complete(ctx context.Context, mesaKey string) error {
	return s.completions.Complete(ctx, mesaKey)
}

// Submit runs Complete in the background and hands the outcome to report.
// Close waits for every accepted submission; once the session is closed
// nothing is accepted. The request outlives ctx cancellation so a completion
// typed right before quitting still reaches the server.
func (s *Session) Submit(ctx context.Context, mesaKey string, report func(error)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		err := s.completions.Complete(context.WithoutCancel(ctx), mesaKey)
		if report != nil {
			report(err)
		}
	}()
	return true
}

// Refresh forces a snapshot fetch outside of push events.
func (s *Session) Refresh() {
	s.sync.Trigger()
}

func (s *Session) Snapshot() *kds.Snapshot { return s.sync.Last() }

func (s *Session) Connected() bool { return s.connectivity.Connected() }

func (s *Session) CompletionState(mesaKey string) domain.CompletionState {
	return s.completions.State(mesaKey)
}

// Close waits for submitted completions and a running fetch, then drops
// pending alert dismissals.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.pending.Wait()
	s.sync.Wait()
	s.alerts.Close()
}

var _ port.PushListener = (*Session)(nil)
