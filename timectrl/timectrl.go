package timectrl

import (
	"sync"
	"time"
)

// Clock is an interface for reading the current time. Components that time
// their work depend on a Clock rather than calling time.Now directly, so
// tests can control the elapsed time they observe.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Since returns the time elapsed on c since t.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to. It is safe for
// concurrent use.
type ManualClock struct {
	mu          sync.RWMutex
	currentTime time.Time

	// Step, if non-zero, is added to the clock after every Now call.
	Step time.Duration
}

// NewManualClock constructs a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{currentTime: start}
}

// Now returns the current time and then applies Step. Implements Clock.
func (mc *ManualClock) Now() time.Time {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	now := mc.currentTime
	mc.currentTime = now.Add(mc.Step)
	return now
}

// SetTime moves the clock to t.
func (mc *ManualClock) SetTime(t time.Time) {
	mc.mu.Lock()
	mc.currentTime = t
	mc.mu.Unlock()
}

// Advance moves the clock forward by d.
func (mc *ManualClock) Advance(d time.Duration) {
	mc.mu.Lock()
	mc.currentTime = mc.currentTime.Add(d)
	mc.mu.Unlock()
}
