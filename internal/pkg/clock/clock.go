// Package clock abstracts time so business logic can be tested against a
// deterministic clock instead of time.Now.
package clock

import "time"

// Clocker reads the current time.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock backed by the system time.
type TimeClocker struct{}

// New returns the production clock.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Static is a fixed clock for tests.
type Static struct {
	T time.Time
}

// Now returns the configured time.
func (s *Static) Now() time.Time {
	return s.T
}
