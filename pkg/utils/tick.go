package utils

import (
	"math"
	"sync/atomic"
	"time"
)

// TickClock tracks the server tick counter. The counter only moves forward
// and is advanced by the tick loop; readers never block.
type TickClock struct {
	tick    atomic.Uint64
	tickLen time.Duration
}

// NewTickClock creates a clock with the given tick length
func NewTickClock(tickLen time.Duration) *TickClock {
	return &TickClock{tickLen: tickLen}
}

// Now returns the current tick
func (c *TickClock) Now() uint64 {
	return c.tick.Load()
}

// Advance moves the clock forward one tick and returns the new tick
func (c *TickClock) Advance() uint64 {
	return c.tick.Add(1)
}

// TickLen returns the configured tick length
func (c *TickClock) TickLen() time.Duration {
	return c.tickLen
}

// Elapsed converts a tick delta into wall duration
func (c *TickClock) Elapsed(fromTick, toTick uint64) time.Duration {
	if toTick < fromTick {
		return 0
	}
	return time.Duration(toTick-fromTick) * c.tickLen
}

// DurationToTicks converts a duration into a whole number of ticks,
// rounding up so a cooldown never expires early
func DurationToTicks(d, tickLen time.Duration) uint64 {
	if d <= 0 || tickLen <= 0 {
		return 0
	}
	return uint64(math.Ceil(float64(d) / float64(tickLen)))
}

// SecondsToDuration converts a fractional seconds value from configuration
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
