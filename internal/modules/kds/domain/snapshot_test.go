package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeSnapshotCafeScenario(t *testing.T) {
	payload := []byte(`[{"numero_mesa":"5","timestamp":"2025-03-01T12:00:00Z","items":[{"cantidad":2,"nombre":"Café","notas":"sin azúcar"}]}]`)
	fetchedAt := time.Date(2025, time.March, 1, 12, 7, 0, 0, time.UTC)

	snapshot, err := DecodeSnapshot("cocina", payload, fetchedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Len() != 1 {
		t.Fatalf("expected one group, got %d", snapshot.Len())
	}
	group, ok := snapshot.Lookup("5")
	if !ok {
		t.Fatal("expected mesa 5 in snapshot")
	}
	if len(group.Items) != 1 || group.Items[0].Quantity != 2 || group.Items[0].Name != "Café" || group.Items[0].Note != "sin azúcar" {
		t.Fatalf("unexpected items: %#v", group.Items)
	}
	if got := group.Elapsed(fetchedAt); got != 7*time.Minute {
		t.Fatalf("expected 7m elapsed, got %s", got)
	}
}

func TestDecodeSnapshotAcceptsNumericMesaAndNullNote(t *testing.T) {
	payload := []byte(`[{"numero_mesa":12,"timestamp":"2025-03-01T12:00:00.123456","items":[{"cantidad":1,"nombre":"Taco","notas":null}]}]`)
	snapshot, err := DecodeSnapshot("cocina", payload, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	group, ok := snapshot.Lookup("12")
	if !ok {
		t.Fatal("expected numeric mesa to decode as \"12\"")
	}
	if group.Items[0].Note != "" {
		t.Fatalf("expected empty note, got %q", group.Items[0].Note)
	}
}

func TestDecodeSnapshotRejectsMalformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `<html>`},
		{name: "object instead of list", payload: `{"numero_mesa":"1"}`},
		{name: "bad timestamp", payload: `[{"numero_mesa":"1","timestamp":"yesterday","items":[]}]`},
		{name: "zero quantity", payload: `[{"numero_mesa":"1","timestamp":"2025-03-01T12:00:00Z","items":[{"cantidad":0,"nombre":"Taco"}]}]`},
		{name: "missing mesa", payload: `[{"timestamp":"2025-03-01T12:00:00Z","items":[]}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeSnapshot("cocina", []byte(tc.payload), time.Now()); err == nil {
				t.Fatal("expected decode error")
			}
		})
	}
}

func TestNewSnapshotRejectsDuplicateMesaKey(t *testing.T) {
	ts := time.Now()
	groups := []TicketGroup{
		{MesaKey: "3", Timestamp: ts, Items: []TicketItem{{Quantity: 1, Name: "Agua"}}},
		{MesaKey: "3", Timestamp: ts, Items: []TicketItem{{Quantity: 1, Name: "Cerveza"}}},
	}
	if _, err := NewSnapshot("barra", groups, ts); !errors.Is(err, ErrDuplicateMesaKey) {
		t.Fatalf("expected ErrDuplicateMesaKey, got %v", err)
	}
}

func TestEncodeGroupsMatchesDecode(t *testing.T) {
	ts := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	groups := []TicketGroup{{MesaKey: "3+5", Timestamp: ts, Items: []TicketItem{{Quantity: 3, Name: "Michelada", Note: "sin sal"}}}}
	data, err := EncodeGroups(groups)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	snapshot, err := DecodeSnapshot("barra", data, ts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	group, ok := snapshot.Lookup("3+5")
	if !ok || !group.Timestamp.Equal(ts) || group.Items[0].Note != "sin sal" {
		t.Fatalf("unexpected group after encode: %#v", group)
	}
}

func TestTicketGroupUrgent(t *testing.T) {
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	group := TicketGroup{MesaKey: "1", Timestamp: start}
	if group.Urgent(start.Add(10*time.Minute), 15*time.Minute) {
		t.Fatal("did not expect urgency before threshold")
	}
	if !group.Urgent(start.Add(15*time.Minute), 15*time.Minute) {
		t.Fatal("expected urgency at threshold")
	}
	if group.Urgent(start.Add(time.Hour), 0) {
		t.Fatal("zero threshold disables urgency")
	}
	if group.Elapsed(start.Add(-time.Minute)) != 0 {
		t.Fatal("expected clock skew to clamp at zero")
	}
}
