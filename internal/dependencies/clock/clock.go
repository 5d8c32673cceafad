// Package clock abstracts wall time so room and match timestamps can be
// pinned in tests.
package clock

import "time"

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock
type Func func() time.Time

// Now calls f
func (f Func) Now() time.Time {
	return f()
}

// UTC reads the system clock in UTC
var UTC Clock = Func(func() time.Time { return time.Now().UTC() })
