package usecase

import (
	"context"
	"log/slog"
	"sync"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
)

// SyncController keeps the terminal's snapshot in step with the server. At
// most one fetch runs at a time; triggers that arrive meanwhile collapse into
// a single follow-up fetch.
type SyncController struct {
	ctx     context.Context
	fetcher port.SnapshotFetcher
	destino kds.Destination
	sink    func(*kds.Snapshot)

	mu         sync.Mutex
	refreshing bool
	dirty      bool
	last       *kds.Snapshot
	fetches    int
	wg         sync.WaitGroup
}

// NewSyncController fetches within ctx and hands every successful snapshot to
// sink, from the fetching goroutine.
func NewSyncController(ctx context.Context, fetcher port.SnapshotFetcher, destino kds.Destination, sink func(*kds.Snapshot)) *SyncController {
	if sink == nil {
		sink = func(*kds.Snapshot) {}
	}
	return &SyncController{ctx: ctx, fetcher: fetcher, destino: destino, sink: sink}
}

// OnConnect forces a refresh on the initial connection and on every reconnect.
func (s *SyncController) OnConnect() {
	s.Trigger()
}

// OnOrderChanged refreshes when the event concerns this terminal's station.
func (s *SyncController) OnOrderChanged(destino kds.Destination) {
	if !destino.Matches(s.destino) {
		slog.Debug("kds update ignored", slog.String("destino", destino.String()), slog.String("subscribed", s.destino.String()))
		return
	}
	s.Trigger()
}

// Trigger starts a fetch, or marks the running one dirty. It reports whether a
// new fetch was started.
func (s *SyncController) Trigger() bool {
	s.mu.Lock()
	if s.refreshing {
		s.dirty = true
		s.mu.Unlock()
		return false
	}
	s.refreshing = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run()
	return true
}

func (s *SyncController) run() {
	defer s.wg.Done()
	for {
		s.fetchOnce()

		s.mu.Lock()
		if s.dirty && s.ctx.Err() == nil {
			s.dirty = false
			s.mu.Unlock()
			continue
		}
		s.dirty = false
		s.refreshing = false
		s.mu.Unlock()
		return
	}
}

func (s *SyncController) fetchOnce() {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()

	snap, err := s.fetcher.FetchSnapshot(s.ctx, s.destino)
	if err != nil {
		slog.Warn("snapshot refresh failed, keeping previous", slog.String("destino", s.destino.String()), slog.Any("error", err))
		return
	}
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	slog.Debug("snapshot refreshed", slog.String("destino", s.destino.String()), slog.Int("groups", snap.Len()))
	s.sink(snap)
}

// Last returns the most recent successful snapshot, or nil before the first.
func (s *SyncController) Last() *kds.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *SyncController) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing
}

// Fetches counts fetch attempts, successful or not.
func (s *SyncController) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// Wait blocks until no fetch is running.
func (s *SyncController) Wait() {
	s.wg.Wait()
}
