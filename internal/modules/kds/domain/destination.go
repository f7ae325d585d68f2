package domain

import "strings"

// Destination names a kitchen station channel such as "cocina" or "barra".
type Destination string

// DestinationAll is the wildcard: a subscriber to it is notified regardless of
// destination, and an event addressed to it reaches every subscriber.
const DestinationAll Destination = "all"

// NormalizeDestination lowercases and trims a raw destination identifier.
func NormalizeDestination(raw string) Destination {
	return Destination(strings.ToLower(strings.TrimSpace(raw)))
}

func (d Destination) String() string { return string(d) }

func (d Destination) IsWildcard() bool { return d == DestinationAll }

// Matches reports whether an event addressed to d concerns a terminal
// subscribed to subscribed.
func (d Destination) Matches(subscribed Destination) bool {
	if d == "" || subscribed == "" {
		return false
	}
	return d == subscribed || d.IsWildcard() || subscribed.IsWildcard()
}
