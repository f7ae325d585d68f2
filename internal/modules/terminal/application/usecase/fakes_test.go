package usecase

import (
	"context"
	"sync"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/domain"
)

// scriptedFetcher returns snapshots in order; the last one repeats. When gate
// is set every call waits for a value on it.
type scriptedFetcher struct {
	mu     sync.Mutex
	calls  int
	snaps  []*kds.Snapshot
	errs   []error
	gate   chan struct{}
	called chan struct{}
}

func (f *scriptedFetcher) FetchSnapshot(ctx context.Context, destino kds.Destination) (*kds.Snapshot, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.mu.Unlock()
	if f.called != nil {
		f.called <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if len(f.snaps) == 0 {
		return mustSnapshot(destino), nil
	}
	if idx >= len(f.snaps) {
		idx = len(f.snaps) - 1
	}
	return f.snaps[idx], nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSender struct {
	mu      sync.Mutex
	calls   []string
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (s *recordingSender) SendCompletion(ctx context.Context, mesaKey string, destino kds.Destination) error {
	s.mu.Lock()
	s.calls = append(s.calls, destino.String()+"/"+mesaKey)
	err := s.err
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return err
}

func (s *recordingSender) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type completionNote struct {
	mesaKey string
	state   domain.CompletionState
	err     error
}

type recordingPresenter struct {
	mu           sync.Mutex
	snapshots    []*kds.Snapshot
	alerts       []domain.Alert
	dismissed    []string
	connectivity []bool
	completions  []completionNote
}

func (p *recordingPresenter) ShowSnapshot(snap *kds.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snap)
}

func (p *recordingPresenter) ShowAlert(alert domain.Alert) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
}

func (p *recordingPresenter) DismissAlert(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dismissed = append(p.dismissed, id)
}

func (p *recordingPresenter) ShowConnectivity(connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectivity = append(p.connectivity, connected)
}

func (p *recordingPresenter) ShowCompletion(mesaKey string, state domain.CompletionState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completions = append(p.completions, completionNote{mesaKey: mesaKey, state: state, err: err})
}

var t0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func mustSnapshot(destino kds.Destination, mesaKeys ...string) *kds.Snapshot {
	groups := make([]kds.TicketGroup, 0, len(mesaKeys))
	for _, key := range mesaKeys {
		groups = append(groups, kds.TicketGroup{
			MesaKey:   key,
			Timestamp: t0,
			Items:     []kds.TicketItem{{Quantity: 1, Name: "Tacos"}},
		})
	}
	snap, err := kds.NewSnapshot(destino, groups, t0)
	if err != nil {
		panic(err)
	}
	return snap
}
