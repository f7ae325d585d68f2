package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

// CompletionSubmitter sends completion requests and tracks their state per
// mesa key. It never edits the snapshot; a completed ticket disappears when
// the next refresh no longer lists it.
type CompletionSubmitter struct {
	sender  port.CompletionSender
	destino kds.Destination
	notify  func(mesaKey string, state domain.CompletionState, err error)

	mu     sync.Mutex
	states map[string]domain.CompletionState
}

func NewCompletionSubmitter(sender port.CompletionSender, destino kds.Destination, notify func(string, domain.CompletionState, error)) *CompletionSubmitter {
	if notify == nil {
		notify = func(string, domain.CompletionState, error) {}
	}
	return &CompletionSubmitter{
		sender:  sender,
		destino: destino,
		notify:  notify,
		states:  make(map[string]domain.CompletionState),
	}
}

// Complete requests completion of mesaKey. A key already in flight is refused
// without a request. Failures are returned and leave the key Failed, from
// where the operator may retry.
func (c *CompletionSubmitter) Complete(ctx context.Context, mesaKey string) error {
	mesaKey = strings.TrimSpace(mesaKey)
	if mesaKey == "" {
		return domain.ErrMissingMesaKey
	}

	c.mu.Lock()
	if c.states[mesaKey] == domain.CompletionInFlight {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrCompletionInFlight, mesaKey)
	}
	c.states[mesaKey] = domain.CompletionInFlight
	c.mu.Unlock()
	c.notify(mesaKey, domain.CompletionInFlight, nil)

	err := c.sender.SendCompletion(ctx, mesaKey, c.destino)

	state := domain.CompletionSucceeded
	if err != nil {
		state = domain.CompletionFailed
		slog.Warn("completion failed", slog.String("destino", c.destino.String()), slog.String("mesaKey", mesaKey), slog.Any("error", err))
	} else {
		slog.Info("completion accepted", slog.String("destino", c.destino.String()), slog.String("mesaKey", mesaKey))
	}
	c.mu.Lock()
	c.states[mesaKey] = state
	c.mu.Unlock()
	c.notify(mesaKey, state, err)
	return err
}

func (c *CompletionSubmitter) State(mesaKey string) domain.CompletionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[strings.TrimSpace(mesaKey)]
}

// Reconcile forgets settled keys that the new snapshot no longer lists.
// In-flight keys are kept until their request returns.
func (c *CompletionSubmitter) Reconcile(snap *kds.Snapshot) {
	if snap == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, state := range c.states {
		if state == domain.CompletionInFlight || snap.Contains(key) {
			continue
		}
		delete(c.states, key)
	}
}
