package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"puestitoKds/internal/modules/terminal/application/port"
	"puestitoKds/internal/modules/terminal/domain"
)

const PinLength = 4

// PinPad buffers the digits typed on the station login screen.
type PinPad struct {
	gate port.PinGate

	mu     sync.Mutex
	digits []rune
}

func NewPinPad(gate port.PinGate) *PinPad {
	return &PinPad{gate: gate, digits: make([]rune, 0, PinLength)}
}

// Press appends a digit. Non-digits and presses past four digits are ignored.
func (p *PinPad) Press(r rune) bool {
	if r < '0' || r > '9' {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.digits) >= PinLength {
		return false
	}
	p.digits = append(p.digits, r)
	return true
}

func (p *PinPad) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.digits = p.digits[:0]
}

func (p *PinPad) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.digits)
}

// Masked renders typed digits as "*" and missing ones as "-".
func (p *PinPad) Masked() string {
	n := p.Len()
	return strings.Repeat("*", n) + strings.Repeat("-", PinLength-n)
}

// Submit sends the buffered PIN once four digits are present. A rejected PIN
// clears the buffer; a transport failure keeps it for another attempt.
func (p *PinPad) Submit(ctx context.Context) (domain.Grant, error) {
	p.mu.Lock()
	if len(p.digits) != PinLength {
		p.mu.Unlock()
		return domain.Grant{}, domain.ErrPinIncomplete
	}
	pin := string(p.digits)
	p.mu.Unlock()

	grant, err := p.gate.ValidatePin(ctx, pin)
	switch {
	case err == nil:
		p.Clear()
		return grant, nil
	case errors.Is(err, domain.ErrPinRejected):
		p.Clear()
		return domain.Grant{}, err
	default:
		return domain.Grant{}, err
	}
}

// Enter submits a whole PIN at once. Unlike key presses, nothing is dropped:
// anything but exactly four digits is refused without a request.
func (p *PinPad) Enter(ctx context.Context, pin string) (domain.Grant, error) {
	p.Clear()
	pin = strings.TrimSpace(pin)
	if !domain.IsPin(pin, PinLength) {
		return domain.Grant{}, fmt.Errorf("%w: expected %d digits", domain.ErrPinIncomplete, PinLength)
	}
	for _, r := range pin {
		p.Press(r)
	}
	return p.Submit(ctx)
}
