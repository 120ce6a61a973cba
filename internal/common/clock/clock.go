package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/KirkDiggler/spinwin/internal/common/clock Clock
type Clock interface {
	Now() time.Time

	// AfterFunc runs f once on its own goroutine after d has elapsed.
	// There is no way to stop it.
	AfterFunc(d time.Duration, f func())
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on a wall-clock timer
func (c *DefaultClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
