package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
)

var ErrInvalidOrder = errors.New("invalid order")

// IntakeOrder is the order payload sent by the point of sale.
type IntakeOrder struct {
	OrderID        string          `json:"order_id"`
	NumeroMesa     json.RawMessage `json:"numero_mesa"`
	MesasEnlazadas []any           `json:"mesas_enlazadas,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
	Items          []IntakeItem    `json:"items"`
}

type IntakeItem struct {
	ItemID   string `json:"item_id"`
	Nombre   string `json:"nombre"`
	Cantidad int    `json:"cantidad"`
	Notas    string `json:"notas,omitempty"`
}

// BuildMesaKey joins the main table with its linked tables, sorted, with "+".
// A table without links keeps its own number.
func BuildMesaKey(principal string, linked []string) string {
	principal = strings.TrimSpace(principal)
	if len(linked) == 0 {
		return principal
	}
	all := []string{principal}
	for _, l := range linked {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			all = append(all, trimmed)
		}
	}
	sort.Strings(all)
	return strings.Join(all, "+")
}

// Router assigns each menu item to a station by its id prefix.
type Router struct {
	BeveragePrefixes    []string
	BeverageDestination kds.Destination
	DefaultDestination  kds.Destination
}

func (r Router) Route(menuItemID string) kds.Destination {
	id := strings.ToUpper(strings.TrimSpace(menuItemID))
	for _, prefix := range r.BeveragePrefixes {
		p := strings.ToUpper(strings.TrimSpace(prefix))
		if p != "" && strings.HasPrefix(id, p) {
			return r.BeverageDestination
		}
	}
	return r.DefaultDestination
}

// ToOrder validates the intake payload and builds the stored order. now is used
// when the POS did not send a timestamp.
func (in IntakeOrder) ToOrder(router Router, now time.Time) (Order, error) {
	mesa := scalarString(in.NumeroMesa)
	if mesa == "" {
		return Order{}, fmt.Errorf("%w: missing numero_mesa", ErrInvalidOrder)
	}
	if len(in.Items) == 0 {
		return Order{}, fmt.Errorf("%w: order without items", ErrInvalidOrder)
	}
	linked := make([]string, 0, len(in.MesasEnlazadas))
	for _, l := range in.MesasEnlazadas {
		linked = append(linked, fmt.Sprint(l))
	}

	openedAt := now
	if strings.TrimSpace(in.Timestamp) != "" {
		ts, err := kds.ParseTimestamp(in.Timestamp)
		if err != nil {
			return Order{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
		}
		openedAt = ts
	}

	items := make([]OrderItem, 0, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.ItemID) == "" || strings.TrimSpace(it.Nombre) == "" {
			return Order{}, fmt.Errorf("%w: item %d missing item_id or nombre", ErrInvalidOrder, i)
		}
		if it.Cantidad <= 0 {
			return Order{}, fmt.Errorf("%w: item %d has cantidad %d", ErrInvalidOrder, i, it.Cantidad)
		}
		items = append(items, OrderItem{
			MenuItemID: strings.TrimSpace(it.ItemID),
			Name:       strings.TrimSpace(it.Nombre),
			Quantity:   it.Cantidad,
			Note:       strings.TrimSpace(it.Notas),
			Destino:    router.Route(it.ItemID),
			Status:     ItemPending,
		})
	}

	return Order{
		ClientUUID: strings.TrimSpace(in.OrderID),
		MesaKey:    BuildMesaKey(mesa, linked),
		OpenedAt:   openedAt,
		Items:      items,
	}, nil
}

// Destinations lists the distinct stations an order touches.
func (o Order) Destinations() []kds.Destination {
	seen := make(map[kds.Destination]struct{})
	out := make([]kds.Destination, 0, 2)
	for _, item := range o.Items {
		if _, ok := seen[item.Destino]; ok {
			continue
		}
		seen[item.Destino] = struct{}{}
		out = append(out, item.Destino)
	}
	return out
}

func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
