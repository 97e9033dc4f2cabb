package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithinTolerance(t *testing.T) {
	target := at("18:15")

	assert.True(t, WithinTolerance(at("18:00"), target))
	assert.True(t, WithinTolerance(at("17:45"), target), "lower bound is inclusive")
	assert.True(t, WithinTolerance(at("18:45"), target), "upper bound is inclusive")
	assert.False(t, WithinTolerance(at("17:44"), target))
	assert.False(t, WithinTolerance(at("19:00"), target))
}

func TestWithinTolerance_DoesNotWrapMidnight(t *testing.T) {
	assert.False(t, WithinTolerance(at("00:05"), at("23:50")))
	assert.True(t, WithinTolerance(at("23:30"), at("23:50")))
	assert.False(t, WithinTolerance(at("23:50"), at("00:10")))
}

func TestMatchingSlots(t *testing.T) {
	slots := NominalSlots([]string{"18:00", "19:00"})
	assert.Equal(t, []TimeOfDay{at("18:00")}, MatchingSlots(slots, at("18:15")))
	assert.Empty(t, MatchingSlots(slots, at("12:00")))
}
