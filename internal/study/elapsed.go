package study

import "fmt"

// ElapsedCounter counts whole seconds spent on a card or a deck. It advances
// only through Tick so callers decide the cadence.
type ElapsedCounter struct {
	seconds int
	frozen  bool
}

// Tick advances the counter by one second unless it is frozen.
func (c *ElapsedCounter) Tick() {
	if !c.frozen {
		c.seconds++
	}
}

// Reset sets the counter back to zero and unfreezes it.
func (c *ElapsedCounter) Reset() {
	c.seconds = 0
	c.frozen = false
}

// Freeze stops the counter while keeping its last value.
func (c *ElapsedCounter) Freeze() {
	c.frozen = true
}

// Seconds returns the counted seconds.
func (c *ElapsedCounter) Seconds() int {
	return c.seconds
}

// Frozen reports whether Tick is currently ignored.
func (c *ElapsedCounter) Frozen() bool {
	return c.frozen
}

// FormatElapsed renders seconds as mm:ss. Minutes are not capped at 59.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
