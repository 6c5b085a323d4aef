// Package clock tracks animation time relative to the latest grid rebuild.
package clock

import "time"

// Source returns the current time in milliseconds.
type Source func() float64

// NewWallSource returns a monotonic Source counting milliseconds from the
// moment it was created.
func NewWallSource() Source {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start)) / float64(time.Millisecond)
	}
}

// Clock holds the timestamp of the last reset.
type Clock struct {
	t0      float64
	started bool
}

func (c *Clock) Reset(now float64) {
	c.t0 = now
	c.started = true
}

// Elapsed returns now - t0 in milliseconds, or 0 before the first reset.
func (c *Clock) Elapsed(now float64) float64 {
	if !c.started {
		return 0
	}
	return now - c.t0
}

func (c *Clock) Started() bool { return c.started }
