package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"18:00", 18 * 60, false},
		{"23:59", 23*60 + 59, false},
		{"9:00", 0, true},
		{"24:00", 0, true},
		{"18:60", 0, true},
		{"18:00:00", 0, true},
		{" 18:00", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", d.Format(DateLayout))

	for _, bad := range []string{"2025-6-1", "06/01/2025", "2025-02-30", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrMalformedDate, bad)
	}
}

func TestNominalSlots_SkipsMalformedAndKeepsOrder(t *testing.T) {
	slots := NominalSlots([]string{"19:00", "bogus", " 18:00 ", "7pm", "19:00", "25:00", "20:30"})

	assert.Equal(t, []TimeOfDay{19 * 60, 18 * 60, 20*60 + 30}, slots)
	assert.True(t, Offers(slots, 18*60))
	assert.False(t, Offers(slots, 18*60+30))
}

func TestNominalSlots_Empty(t *testing.T) {
	assert.Empty(t, NominalSlots(nil))
	assert.Empty(t, NominalSlots([]string{"nope"}))
}

func TestValidateSlots(t *testing.T) {
	assert.NoError(t, ValidateSlots([]string{"18:00", "19:30"}))
	assert.Error(t, ValidateSlots(nil))
	assert.ErrorIs(t, ValidateSlots([]string{"18:00", "6pm"}), ErrMalformedTime)
}
