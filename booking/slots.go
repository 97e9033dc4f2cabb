// Package booking holds the pure scheduling rules of the reservation core:
// the per-table slot catalog, occupancy overlap and the search tolerance band.
package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the wire format of reservation dates.
const DateLayout = "2006-01-02"

var (
	ErrMalformedTime = errors.New("time must be HH:MM (24-hour)")
	ErrMalformedDate = errors.New("date must be YYYY-MM-DD")
)

var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// TimeOfDay is a wall-clock time in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a strict HH:MM value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := hhmm.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%q: %w", s, ErrMalformedTime)
	}
	h := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	mm := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	return TimeOfDay(h*60 + mm), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add shifts t by d. The result is not wrapped at midnight.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrMalformedDate)
	}
	return d, nil
}

// NominalSlots returns the ordered, de-duplicated slot times configured for
// a table. Malformed entries are skipped, never fatal.
func NominalSlots(times []string) []TimeOfDay {
	slots := make([]TimeOfDay, 0, len(times))
	seen := make(map[TimeOfDay]bool, len(times))
	for _, raw := range times {
		t, err := ParseTimeOfDay(strings.TrimSpace(raw))
		if err != nil || seen[t] {
			continue
		}
		seen[t] = true
		slots = append(slots, t)
	}
	return slots
}

// ValidateSlots rejects any malformed entry; used on the write path.
func ValidateSlots(times []string) error {
	if len(times) == 0 {
		return errors.New("at least one available time is required")
	}
	for _, raw := range times {
		if _, err := ParseTimeOfDay(strings.TrimSpace(raw)); err != nil {
			return err
		}
	}
	return nil
}

// Offers reports whether t is one of the nominal slots.
func Offers(slots []TimeOfDay, t TimeOfDay) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}
