package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

// Presenter renders the station screen as plain text.
type Presenter struct {
	mu          sync.Mutex
	out         io.Writer
	destino     kds.Destination
	urgentAfter time.Duration
	now         func() time.Time
}

func NewPresenter(out io.Writer, destino kds.Destination, urgentAfter time.Duration) *Presenter {
	return &Presenter{out: out, destino: destino, urgentAfter: urgentAfter, now: time.Now}
}

func (p *Presenter) ShowSnapshot(snap *kds.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	fmt.Fprintf(p.out, "== %s | %d pendientes | %s ==\n", strings.ToUpper(p.destino.String()), snap.Len(), now.Format("15:04:05"))
	for _, g := range snap.Groups {
		marker := " "
		if g.Urgent(now, p.urgentAfter) {
			marker = "!"
		}
		fmt.Fprintf(p.out, "%s mesa %-8s %s  %d uds\n", marker, g.MesaKey, formatElapsed(g.Elapsed(now)), g.TotalQuantity())
		for _, item := range g.Items {
			if item.Note != "" {
				fmt.Fprintf(p.out, "    %dx %s (%s)\n", item.Quantity, item.Name, item.Note)
				continue
			}
			fmt.Fprintf(p.out, "    %dx %s\n", item.Quantity, item.Name)
		}
	}
}

func (p *Presenter) ShowAlert(alert domain.Alert) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, ">> AVISO mesa %s: %s\n", alert.MesaKey, alert.Message)
}

func (p *Presenter) DismissAlert(string) {}

func (p *Presenter) ShowConnectivity(connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if connected {
		fmt.Fprintln(p.out, "-- conectado")
		return
	}
	fmt.Fprintln(p.out, "-- sin conexion, reintentando")
}

func (p *Presenter) ShowCompletion(mesaKey string, state domain.CompletionState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch state {
	case domain.CompletionInFlight:
		fmt.Fprintf(p.out, "-- mesa %s: enviando...\n", mesaKey)
	case domain.CompletionSucceeded:
		fmt.Fprintf(p.out, "-- mesa %s: lista\n", mesaKey)
	case domain.CompletionFailed:
		fmt.Fprintf(p.out, "-- mesa %s: error (%v), escriba 'listo %s' para reintentar\n", mesaKey, err, mesaKey)
	}
}

func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

var _ port.Presenter = (*Presenter)(nil)
