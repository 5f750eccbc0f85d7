// Package timeutil provides calendar helpers bound to the service timezone.
// Credential dates are calendar dates, so "today" must be evaluated in the
// timezone the community lives in, not in UTC.
package timeutil

import (
	"sync"
	"time"
)

// FormatDate is the layout of calendar dates in requests and responses.
const FormatDate = "2006-01-02"

var (
	mu       sync.RWMutex
	location = time.UTC
)

// SetLocation changes the service timezone.
func SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	mu.Lock()
	location = loc
	mu.Unlock()
}

// LoadLocation loads an IANA zone name and makes it the service timezone.
func LoadLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	SetLocation(loc)
	return nil
}

// Location returns the service timezone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return location
}

// Now returns the current time in the service timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, time.UTC)
}

// FormatDateStr formats t as YYYY-MM-DD.
func FormatDateStr(t time.Time) string {
	return t.Format(FormatDate)
}

// YearRange returns [start of year, start of next year) in the service
// timezone.
func YearRange(year int) (from, to time.Time) {
	loc := Location()
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(1, 0, 0)
}
