package session

import "sync"

// Connectivity is the device's online flag with change notifications.
// It starts online; the embedding application flips it from whatever
// network signal it has (browser events, NetworkMonitor, a CLI flag).
type Connectivity struct {
	mu     sync.Mutex
	online bool
	subs   []func(bool)
}

// NewConnectivity creates a monitor in the online state.
func NewConnectivity() *Connectivity {
	return &Connectivity{online: true}
}

// Online reports the current flag.
func (c *Connectivity) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// SetOnline updates the flag, notifying subscribers only on an actual
// transition.
func (c *Connectivity) SetOnline(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	subs := append([]func(bool){}, c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers a callback invoked on every online/offline
// transition.
func (c *Connectivity) Subscribe(fn func(bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}
