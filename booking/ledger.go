package booking

import "time"

// OccupancyWindow is how long a confirmed reservation blocks its table.
const OccupancyWindow = time.Hour

// Interval is a half-open [Start, End) span of minutes on one date.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Occupancy returns the window blocked by a reservation starting at start.
func Occupancy(start TimeOfDay) Interval {
	return Interval{Start: start, End: start.Add(OccupancyWindow)}
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// intervals (a.End == b.Start) do not.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// HasConflict reports whether a reservation starting at requested would
// overlap any of the existing starts on the same table and date.
func HasConflict(existing []TimeOfDay, requested TimeOfDay) bool {
	want := Occupancy(requested)
	for _, start := range existing {
		if want.Overlaps(Occupancy(start)) {
			return true
		}
	}
	return false
}
