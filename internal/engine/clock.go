package engine

import "time"

// Clock supplies the wall-clock time stamped on progress, certificates and
// awards. Tests inject a fixed clock (testutil.FixedClock).
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
