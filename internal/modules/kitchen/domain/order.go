package domain

import (
	"sort"
	"strings"
	"time"

	kds "puestitoKds/internal/modules/kds/domain"
)

type ItemStatus string

const (
	ItemPending ItemStatus = "pendiente"
	ItemReady   ItemStatus = "listo"
)

// OrderItem is one ordered line, routed to a single destination.
type OrderItem struct {
	MenuItemID string          `json:"item_id"`
	Name       string          `json:"nombre"`
	Quantity   int             `json:"cantidad"`
	Note       string          `json:"notas,omitempty"`
	Destino    kds.Destination `json:"destino"`
	Status     ItemStatus      `json:"estado_item"`
}

// Order is an active order as kept by the order store. ClientUUID is the POS
// order id and doubles as the store identity.
type Order struct {
	ClientUUID string      `json:"client_uuid"`
	MesaKey    string      `json:"mesa_key"`
	OpenedAt   time.Time   `json:"fecha_apertura"`
	Items      []OrderItem `json:"items"`
}

// MarkReady flips every pending item for destino to ready and returns how many
// changed. Items already ready are left alone, so repeated calls are no-ops.
func (o *Order) MarkReady(destino kds.Destination) int {
	changed := 0
	for i := range o.Items {
		item := &o.Items[i]
		if item.Status != ItemPending {
			continue
		}
		if !destino.IsWildcard() && item.Destino != destino {
			continue
		}
		item.Status = ItemReady
		changed++
	}
	return changed
}

// UpdateNote replaces the note of every pending line of menuItemID.
func (o *Order) UpdateNote(menuItemID, note string) int {
	changed := 0
	for i := range o.Items {
		item := &o.Items[i]
		if item.Status != ItemPending || !strings.EqualFold(item.MenuItemID, menuItemID) {
			continue
		}
		item.Note = strings.TrimSpace(note)
		changed++
	}
	return changed
}

// HasPending reports whether any item still waits at a station.
func (o Order) HasPending() bool {
	for _, item := range o.Items {
		if item.Status == ItemPending {
			return true
		}
	}
	return false
}

// GroupPending builds the ticket groups for destino from active orders: pending
// items grouped by mesa key, groups ordered by their oldest order. A wildcard
// destination collects every station's pending items.
func GroupPending(orders []Order, destino kds.Destination) []kds.TicketGroup {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OpenedAt.Before(sorted[j].OpenedAt) })

	groups := make([]kds.TicketGroup, 0)
	index := make(map[string]int)
	for _, order := range sorted {
		for _, item := range order.Items {
			if item.Status != ItemPending {
				continue
			}
			if !destino.IsWildcard() && item.Destino != destino {
				continue
			}
			pos, ok := index[order.MesaKey]
			if !ok {
				pos = len(groups)
				index[order.MesaKey] = pos
				groups = append(groups, kds.TicketGroup{MesaKey: order.MesaKey, Timestamp: order.OpenedAt})
			}
			groups[pos].Items = append(groups[pos].Items, kds.TicketItem{
				Quantity: item.Quantity,
				Name:     item.Name,
				Note:     item.Note,
			})
		}
	}
	return groups
}
