package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
)

const PinLength = 4

// Grant is handed to a station after a valid PIN.
type Grant struct {
	Destino  kds.Destination
	Redirect string
	Token    string
}

// TokenIssuer mints capability tokens scoped to a destination.
type TokenIssuer interface {
	Enabled() bool
	Issue(destino string) (string, error)
}

type pinEntry struct {
	destino kds.Destination
	hash    []byte
}

// AccessGate maps station PINs to destinations. PINs are only held as bcrypt
// hashes; plain values from configuration are hashed at startup.
type AccessGate struct {
	entries []pinEntry
	tokens  TokenIssuer
}

func NewAccessGate(pins map[string]string, tokens TokenIssuer, cost int) (*AccessGate, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	names := make([]string, 0, len(pins))
	for name := range pins {
		names = append(names, name)
	}
	sort.Strings(names)

	gate := &AccessGate{tokens: tokens}
	for _, name := range names {
		pin := strings.TrimSpace(pins[name])
		hash := []byte(pin)
		if _, err := bcrypt.Cost(hash); err != nil {
			if !isPin(pin) {
				return nil, fmt.Errorf("pin for %s must be %d digits or a bcrypt hash", name, PinLength)
			}
			if hash, err = bcrypt.GenerateFromPassword([]byte(pin), cost); err != nil {
				return nil, fmt.Errorf("hash pin for %s: %w", name, err)
			}
		}
		gate.entries = append(gate.entries, pinEntry{destino: kds.NormalizeDestination(name), hash: hash})
	}
	return gate, nil
}

// Validate exchanges a PIN for a Grant. Malformed and unknown PINs both
// return ErrInvalidPin.
func (g *AccessGate) Validate(pin string) (Grant, error) {
	pin = strings.TrimSpace(pin)
	if !isPin(pin) {
		return Grant{}, port.ErrInvalidPin
	}
	for _, entry := range g.entries {
		err := bcrypt.CompareHashAndPassword(entry.hash, []byte(pin))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			continue
		}
		if err != nil {
			return Grant{}, fmt.Errorf("compare pin for %s: %w", entry.destino, err)
		}

		grant := Grant{Destino: entry.destino, Redirect: "/kds/" + entry.destino.String()}
		if g.tokens != nil && g.tokens.Enabled() {
			token, err := g.tokens.Issue(entry.destino.String())
			if err != nil {
				return Grant{}, fmt.Errorf("issue station token: %w", err)
			}
			grant.Token = token
		}
		slog.Info("station pin accepted", slog.String("destino", entry.destino.String()))
		return grant, nil
	}
	slog.Warn("station pin rejected")
	return Grant{}, port.ErrInvalidPin
}

func isPin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
