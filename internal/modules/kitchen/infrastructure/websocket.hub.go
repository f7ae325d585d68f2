package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
)

// Hub tracks station connections by destination. Wildcard subscribers sit in
// global and receive every event.
type Hub struct {
	topics  map[kds.Destination]map[*Client]struct{}
	clients map[string]*Client
	global  map[*Client]struct{}
	mu      sync.RWMutex
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		topics:  make(map[kds.Destination]map[*Client]struct{}),
		clients: make(map[string]*Client),
		global:  make(map[*Client]struct{}),
		now:     time.Now,
	}
}

// Attach registers a client under its destination.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.clients[c.sessionID]; ok && existing != c {
		h.detachLocked(existing)
	}
	h.clients[c.sessionID] = c
	if c.destino.IsWildcard() {
		h.global[c] = struct{}{}
	} else {
		if h.topics[c.destino] == nil {
			h.topics[c.destino] = make(map[*Client]struct{})
		}
		h.topics[c.destino][c] = struct{}{}
	}
	slog.Info("ws station attached", slog.String("sessionId", c.sessionID), slog.String("destino", c.destino.String()))
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	if current, ok := h.clients[c.sessionID]; !ok || current != c {
		c.close()
		return
	}
	if subs, ok := h.topics[c.destino]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, c.destino)
		}
	}
	delete(h.global, c)
	delete(h.clients, c.sessionID)
	c.close()
	slog.Info("ws station detached", slog.String("sessionId", c.sessionID), slog.String("destino", c.destino.String()))
}

// Connected returns the number of attached stations.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev to the stations of its destination and to wildcard
// stations. An event for the wildcard reaches everyone. Slow stations whose
// buffer is full are dropped; they re-fetch when they reconnect.
func (h *Hub) Broadcast(_ context.Context, ev kds.PushEvent) {
	at := ev.SentAt
	if at.IsZero() {
		at = h.now()
	}
	env, err := kds.EnvelopeFor(ev, at)
	if err != nil {
		slog.Error("broadcast envelope error", slog.Any("error", err))
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("broadcast marshal error", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	if ev.Destino.IsWildcard() {
		for _, c := range h.clients {
			clients = append(clients, c)
		}
	} else {
		for c := range h.topics[ev.Destino] {
			clients = append(clients, c)
		}
		for c := range h.global {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	slog.Debug("broadcast push event", slog.String("event", env.Event), slog.String("destino", ev.Destino.String()), slog.Int("recipients", len(clients)))
	for _, c := range clients {
		if !c.enqueue(data) {
			slog.Warn("ws send buffer full", slog.String("sessionId", c.sessionID), slog.String("destino", c.destino.String()))
			go h.detachClient(c)
		}
	}
}

var _ port.Broadcaster = (*Hub)(nil)
