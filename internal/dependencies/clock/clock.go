package clock

import "time"

// Clock is the time source for game timestamps, token issue times and
// idle-game expiry
type Clock interface {
	Now() time.Time
	// Since returns the time elapsed since t
	Since(t time.Time) time.Duration
}

// SystemClock reads the wall clock, always in UTC
type SystemClock struct{}

// New creates a SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time in UTC
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Since returns the wall time elapsed since t
func (c *SystemClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
