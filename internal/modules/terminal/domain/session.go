package domain

import (
	"fmt"
	"strings"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
)

// CompletionState tracks one mesa key's completion request.
type CompletionState int

const (
	CompletionIdle CompletionState = iota
	CompletionInFlight
	CompletionSucceeded
	CompletionFailed
)

func (s CompletionState) String() string {
	switch s {
	case CompletionIdle:
		return "idle"
	case CompletionInFlight:
		return "in_flight"
	case CompletionSucceeded:
		return "succeeded"
	case CompletionFailed:
		return "failed"
	default:
		return fmt.Sprintf("completion_state(%d)", int(s))
	}
}

// Alert is a transient operator message shown on a station.
type Alert struct {
	ID         string
	Destino    kds.Destination
	MesaKey    string
	Message    string
	ReceivedAt time.Time
}

// Grant is the result of a successful PIN exchange.
type Grant struct {
	Destino  kds.Destination
	Redirect string
	Token    string
}

// DestinationFromRedirect extracts the station from a "/kds/{destino}" path.
func DestinationFromRedirect(redirect string) (kds.Destination, error) {
	path := strings.TrimSpace(redirect)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	const prefix = "/kds/"
	idx := strings.LastIndex(path, prefix)
	if idx < 0 {
		return "", fmt.Errorf("%w: redirect %q has no station", ErrProtocol, redirect)
	}
	destino := kds.NormalizeDestination(path[idx+len(prefix):])
	if destino == "" || strings.Contains(destino.String(), "/") {
		return "", fmt.Errorf("%w: redirect %q has no station", ErrProtocol, redirect)
	}
	return destino, nil
}

// IsPin reports whether pin is exactly n ASCII digits.
func IsPin(pin string, n int) bool {
	if len(pin) != n {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
