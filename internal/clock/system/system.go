// Package system provides the wall clock used for job timestamps and result names.
package system

import "time"

// Clock implements contact.Clock in UTC.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
