package usecase

import (
	"fmt"

	kds "puestitoKds/internal/modules/kds/domain"
	"puestitoKds/internal/modules/kitchen/application/port"
)

// Destinations is the configured set of station identifiers.
type Destinations struct {
	known map[kds.Destination]struct{}
	order []kds.Destination
}

func NewDestinations(names []string) *Destinations {
	d := &Destinations{known: make(map[kds.Destination]struct{}, len(names))}
	for _, name := range names {
		dest := kds.NormalizeDestination(name)
		if dest == "" || dest.IsWildcard() {
			continue
		}
		if _, ok := d.known[dest]; ok {
			continue
		}
		d.known[dest] = struct{}{}
		d.order = append(d.order, dest)
	}
	return d
}

// Resolve normalizes raw and checks it against the configured stations. The
// wildcard is accepted only when allowWildcard is set.
func (d *Destinations) Resolve(raw string, allowWildcard bool) (kds.Destination, error) {
	dest := kds.NormalizeDestination(raw)
	if dest.IsWildcard() && allowWildcard {
		return dest, nil
	}
	if _, ok := d.known[dest]; !ok {
		return "", fmt.Errorf("%w: %q", port.ErrUnknownDestination, raw)
	}
	return dest, nil
}

func (d *Destinations) List() []kds.Destination {
	out := make([]kds.Destination, len(d.order))
	copy(out, d.order)
	return out
}
