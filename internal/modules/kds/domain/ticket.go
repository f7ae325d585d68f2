package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketItem is one line of a ticket. Note is optional free text.
type TicketItem struct {
	Quantity int
	Name     string
	Note     string
}

// TicketGroup is the unit of display and completion: the pending items of one
// table (or linked tables) for a destination.
type TicketGroup struct {
	MesaKey   string
	Timestamp time.Time
	Items     []TicketItem
}

// Validate checks the invariants a group must satisfy to be displayed.
func (g TicketGroup) Validate() error {
	if strings.TrimSpace(g.MesaKey) == "" {
		return fmt.Errorf("ticket group missing numero_mesa")
	}
	if g.Timestamp.IsZero() {
		return fmt.Errorf("ticket group %s missing timestamp", g.MesaKey)
	}
	for i, item := range g.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("ticket group %s item %d has non-positive cantidad %d", g.MesaKey, i, item.Quantity)
		}
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("ticket group %s item %d missing nombre", g.MesaKey, i)
		}
	}
	return nil
}

// Elapsed returns how long the group has been waiting at now, never negative.
func (g TicketGroup) Elapsed(now time.Time) time.Duration {
	if g.Timestamp.IsZero() {
		return 0
	}
	elapsed := now.Sub(g.Timestamp)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Urgent reports whether the group waited at least threshold. A non-positive
// threshold disables urgency.
func (g TicketGroup) Urgent(now time.Time, threshold time.Duration) bool {
	return threshold > 0 && g.Elapsed(now) >= threshold
}

// TotalQuantity sums the quantities of every item in the group.
func (g TicketGroup) TotalQuantity() int {
	total := 0
	for _, item := range g.Items {
		total += item.Quantity
	}
	return total
}
