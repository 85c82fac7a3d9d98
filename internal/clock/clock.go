// Package clock provides the single monotonic time origin shared by the
// queue and scheduler subsystems.
package clock

import "time"

// Clock marks an origin instant; Elapsed reports monotonic time since then.
type Clock struct {
	start time.Time
}

// New returns a Clock whose origin is the current instant.
func New() *Clock {
	return &Clock{start: time.Now()}
}

func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.start)
}

func (c *Clock) Start() time.Time {
	return c.start
}
