package storage

import "time"

// SetClock replaces the archive clock in tests.
func SetClock(a *Archive, now func() time.Time) {
	a.now = now
}
