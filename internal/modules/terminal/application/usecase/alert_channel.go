package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

const DefaultAlertTTL = 8 * time.Second

// AlertChannel shows operator messages for this station and dismisses each
// after a fixed time. Alerts are not deduplicated or stored.
type AlertChannel struct {
	destino   kds.Destination
	ttl       time.Duration
	presenter port.Presenter
	now       func() time.Time
	schedule  func(time.Duration, func()) *time.Timer

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewAlertChannel(destino kds.Destination, ttl time.Duration, presenter port.Presenter) *AlertChannel {
	if ttl <= 0 {
		ttl = DefaultAlertTTL
	}
	return &AlertChannel{
		destino:   destino,
		ttl:       ttl,
		presenter: presenter,
		now:       time.Now,
		schedule:  time.AfterFunc,
		timers:    make(map[string]*time.Timer),
	}
}

// OnMessageAlert presents ev when it targets this station or the wildcard.
func (a *AlertChannel) OnMessageAlert(ev kds.PushEvent) (domain.Alert, bool) {
	if ev.Kind != kds.PushMessageAlert || !ev.Destino.Matches(a.destino) {
		return domain.Alert{}, false
	}
	alert := domain.Alert{
		ID:         uuid.NewString(),
		Destino:    ev.Destino,
		MesaKey:    ev.MesaKey,
		Message:    ev.Message,
		ReceivedAt: a.now(),
	}
	slog.Info("kds alert received", slog.String("destino", ev.Destino.String()), slog.String("mesaKey", ev.MesaKey))
	a.presenter.ShowAlert(alert)

	a.mu.Lock()
	a.timers[alert.ID] = a.schedule(a.ttl, func() { a.dismiss(alert.ID) })
	a.mu.Unlock()
	return alert, true
}

func (a *AlertChannel) dismiss(id string) {
	a.mu.Lock()
	_, ok := a.timers[id]
	delete(a.timers, id)
	a.mu.Unlock()
	if ok {
		a.presenter.DismissAlert(id)
	}
}

// Active returns how many alerts are still shown.
func (a *AlertChannel) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.timers)
}

// Close stops pending dismissals.
func (a *AlertChannel) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}
