package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateMesaKey is returned when a payload lists the same mesa key twice.
var ErrDuplicateMesaKey = errors.New("duplicate mesa key in snapshot")

// Snapshot is the full ordered set of ticket groups for a destination. It is
// always replaced wholesale, never patched.
type Snapshot struct {
	Destination Destination
	Groups      []TicketGroup
	FetchedAt   time.Time
	index       map[string]int
}

// NewSnapshot validates groups and builds the mesa key index.
func NewSnapshot(destino Destination, groups []TicketGroup, fetchedAt time.Time) (*Snapshot, error) {
	index := make(map[string]int, len(groups))
	for i, group := range groups {
		if err := group.Validate(); err != nil {
			return nil, err
		}
		if _, dup := index[group.MesaKey]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMesaKey, group.MesaKey)
		}
		index[group.MesaKey] = i
	}
	if groups == nil {
		groups = []TicketGroup{}
	}
	return &Snapshot{Destination: destino, Groups: groups, FetchedAt: fetchedAt, index: index}, nil
}

// Lookup returns the group for mesaKey, if present.
func (s *Snapshot) Lookup(mesaKey string) (TicketGroup, bool) {
	if s == nil {
		return TicketGroup{}, false
	}
	i, ok := s.index[mesaKey]
	if !ok {
		return TicketGroup{}, false
	}
	return s.Groups[i], true
}

// Contains reports whether mesaKey is visible in the snapshot.
func (s *Snapshot) Contains(mesaKey string) bool {
	_, ok := s.Lookup(mesaKey)
	return ok
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Groups)
}

// DecodeSnapshot parses the wire list returned by GET /api/kds-orders/{destino}.
func DecodeSnapshot(destino Destination, data []byte, fetchedAt time.Time) (*Snapshot, error) {
	var wire []wireTicketGroup
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	groups := make([]TicketGroup, 0, len(wire))
	for _, w := range wire {
		group, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return NewSnapshot(destino, groups, fetchedAt)
}

// EncodeGroups renders groups in the wire format.
func EncodeGroups(groups []TicketGroup) ([]byte, error) {
	wire := make([]wireTicketGroup, 0, len(groups))
	for _, g := range groups {
		wire = append(wire, fromDomain(g))
	}
	return json.Marshal(wire)
}

type wireTicketGroup struct {
	NumeroMesa json.RawMessage `json:"numero_mesa"`
	Timestamp  string          `json:"timestamp"`
	Items      []wireItem      `json:"items"`
}

type wireItem struct {
	Cantidad int     `json:"cantidad"`
	Nombre   string  `json:"nombre"`
	Notas    *string `json:"notas"`
}

func (w wireTicketGroup) toDomain() (TicketGroup, error) {
	mesaKey, err := decodeMesaKey(w.NumeroMesa)
	if err != nil {
		return TicketGroup{}, err
	}
	ts, err := ParseTimestamp(w.Timestamp)
	if err != nil {
		return TicketGroup{}, fmt.Errorf("ticket group %s: %w", mesaKey, err)
	}
	items := make([]TicketItem, 0, len(w.Items))
	for _, it := range w.Items {
		item := TicketItem{Quantity: it.Cantidad, Name: it.Nombre}
		if it.Notas != nil {
			item.Note = *it.Notas
		}
		items = append(items, item)
	}
	return TicketGroup{MesaKey: mesaKey, Timestamp: ts, Items: items}, nil
}

func fromDomain(g TicketGroup) wireTicketGroup {
	mesa, _ := json.Marshal(g.MesaKey)
	items := make([]wireItem, 0, len(g.Items))
	for _, it := range g.Items {
		item := wireItem{Cantidad: it.Quantity, Nombre: it.Name}
		if it.Note != "" {
			note := it.Note
			item.Notas = &note
		}
		items = append(items, item)
	}
	return wireTicketGroup{NumeroMesa: mesa, Timestamp: FormatTimestamp(g.Timestamp), Items: items}
}

// numero_mesa is a string for linked tables ("3+5") but plain tables may arrive
// as JSON numbers.
func decodeMesaKey(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("ticket group missing numero_mesa")
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String(), nil
	}
	return "", fmt.Errorf("invalid numero_mesa %s", string(raw))
}
