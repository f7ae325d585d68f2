package usecase

import "sync/atomic"

// Connectivity mirrors the push channel state. Every transition is reported
// immediately.
type Connectivity struct {
	connected atomic.Bool
	notify    func(bool)
}

func NewConnectivity(notify func(bool)) *Connectivity {
	if notify == nil {
		notify = func(bool) {}
	}
	return &Connectivity{notify: notify}
}

func (c *Connectivity) Set(connected bool) {
	if c.connected.Swap(connected) != connected {
		c.notify(connected)
	}
}

// Announce reports the current state without a transition, so a terminal
// whose first dial fails still shows it is offline.
func (c *Connectivity) Announce() {
	c.notify(c.connected.Load())
}

func (c *Connectivity) Connected() bool {
	return c.connected.Load()
}
