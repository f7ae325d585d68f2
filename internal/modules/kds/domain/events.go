package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Wire event names shared by the server hub and the terminal subscription.
const (
	EventConnect      = "connect"
	EventKDSUpdate    = "kds_update"
	EventMessageAlert = "kds_message_alert"
	EventPing         = "ping"
	EventPong         = "pong"
)

// PushKind tags the PushEvent union.
type PushKind int

const (
	PushOrderChanged PushKind = iota + 1
	PushMessageAlert
)

func (k PushKind) String() string {
	switch k {
	case PushOrderChanged:
		return "order_changed"
	case PushMessageAlert:
		return "message_alert"
	default:
		return "unknown"
	}
}

// PushEvent carries routing only; a receiver re-fetches to learn new state.
// MesaKey and Message are set for PushMessageAlert.
type PushEvent struct {
	Kind    PushKind
	Destino Destination
	MesaKey string
	Message string
	SentAt  time.Time
}

func OrderChanged(destino Destination) PushEvent {
	return PushEvent{Kind: PushOrderChanged, Destino: destino}
}

func MessageAlert(destino Destination, mesaKey, message string) PushEvent {
	return PushEvent{Kind: PushMessageAlert, Destino: destino, MesaKey: mesaKey, Message: message}
}

// Envelope is one websocket frame.
type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// UpdatePayload is the data of a kds_update frame.
type UpdatePayload struct {
	Destino string `json:"destino"`
}

// AlertPayload is the data of a kds_message_alert frame.
type AlertPayload struct {
	Destino   string `json:"destino"`
	MesaKey   string `json:"mesa_key"`
	Mensaje   string `json:"mensaje"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewEnvelope marshals data into a frame for event.
func NewEnvelope(event string, data any, at time.Time) (Envelope, error) {
	env := Envelope{Event: event, Timestamp: at.UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", event, err)
		}
		env.Data = raw
	}
	return env, nil
}

// EnvelopeFor renders a push event as a frame.
func EnvelopeFor(ev PushEvent, at time.Time) (Envelope, error) {
	switch ev.Kind {
	case PushOrderChanged:
		return NewEnvelope(EventKDSUpdate, UpdatePayload{Destino: ev.Destino.String()}, at)
	case PushMessageAlert:
		return NewEnvelope(EventMessageAlert, AlertPayload{
			Destino:   ev.Destino.String(),
			MesaKey:   ev.MesaKey,
			Mensaje:   ev.Message,
			Timestamp: FormatTimestamp(at),
		}, at)
	default:
		return Envelope{}, fmt.Errorf("unsupported push kind %s", ev.Kind)
	}
}

// ParsePushEvent converts an application frame into a PushEvent. ok is false
// for frames that are not application events (pong, unknown names).
func ParsePushEvent(env Envelope) (PushEvent, bool, error) {
	switch strings.TrimSpace(env.Event) {
	case EventKDSUpdate:
		var payload UpdatePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return PushEvent{}, false, fmt.Errorf("decode %s: %w", EventKDSUpdate, err)
		}
		destino := NormalizeDestination(payload.Destino)
		if destino == "" {
			return PushEvent{}, false, fmt.Errorf("%s without destino", EventKDSUpdate)
		}
		ev := OrderChanged(destino)
		ev.SentAt = env.Timestamp
		return ev, true, nil
	case EventMessageAlert:
		var payload AlertPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return PushEvent{}, false, fmt.Errorf("decode %s: %w", EventMessageAlert, err)
		}
		destino := NormalizeDestination(payload.Destino)
		if destino == "" {
			return PushEvent{}, false, fmt.Errorf("%s without destino", EventMessageAlert)
		}
		ev := MessageAlert(destino, strings.TrimSpace(payload.MesaKey), payload.Mensaje)
		ev.SentAt = env.Timestamp
		if ts, err := ParseTimestamp(payload.Timestamp); err == nil {
			ev.SentAt = ts
		}
		return ev, true, nil
	default:
		return PushEvent{}, false, nil
	}
}
