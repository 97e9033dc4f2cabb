package booking

import "time"

// SearchTolerance is the half-width of the band around a searched time.
const SearchTolerance = 30 * time.Minute

// WithinTolerance reports whether slot lies in [target-30m, target+30m].
// The band does not wrap past midnight.
func WithinTolerance(slot, target TimeOfDay) bool {
	return slot >= target.Add(-SearchTolerance) && slot <= target.Add(SearchTolerance)
}

// MatchingSlots filters slots to those inside the tolerance band, keeping order.
func MatchingSlots(slots []TimeOfDay, target TimeOfDay) []TimeOfDay {
	var out []TimeOfDay
	for _, s := range slots {
		if WithinTolerance(s, target) {
			out = append(out, s)
		}
	}
	return out
}
