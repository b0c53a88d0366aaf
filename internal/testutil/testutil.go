// Package testutil provides deterministic stand-ins for the service
// layer's clock and id generator, so tests get reproducible timestamps
// and ids without stubbing time.Now or uuid.
package testutil

import (
	"fmt"
	"time"
)

// Clock is a controllable clock. Now returns the current instant;
// Advance moves it forward. Not safe for concurrent use.
type Clock struct {
	now time.Time
}

// NewClock creates a clock pinned to the given instant.
func NewClock(at time.Time) *Clock {
	return &Clock{now: at}
}

// Now returns the clock's current instant.
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

// IDs hands out sequential ids with a fixed prefix: "id-1", "id-2", ...
// Not safe for concurrent use.
type IDs struct {
	prefix string
	next   int
}

// NewIDs creates a generator with the given prefix.
func NewIDs(prefix string) *IDs {
	return &IDs{prefix: prefix}
}

// New returns the next id in sequence.
func (g *IDs) New() string {
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}
