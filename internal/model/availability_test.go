package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"00:00:00", 0},
		{"09:30:00", 9*time.Hour + 30*time.Minute},
		{"23:59:59", 23*time.Hour + 59*time.Minute + 59*time.Second},
		{"23:59:59.999999", 24*time.Hour - time.Microsecond},
		{"12:00:00.5", 12*time.Hour + 500*time.Millisecond},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "24:00:00", "12:60:00", "12:00:60", "-1:00:00"} {
		_, err := ParseTimeOfDay(in)
		assert.Error(t, err, in)
	}
}

func TestFormatTimeOfDay(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatTimeOfDay(0))
	assert.Equal(t, "09:30:00", FormatTimeOfDay(9*time.Hour+30*time.Minute))
	assert.Equal(t, "23:59:59.999999", FormatTimeOfDay(EndOfDay))
	assert.Equal(t, "12:00:00.5", FormatTimeOfDay(12*time.Hour+500*time.Millisecond))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{
		0,
		9*time.Hour + 30*time.Minute,
		13*time.Hour + 45*time.Minute + 12*time.Second,
		EndOfDay,
	} {
		got, err := ParseTimeOfDay(FormatTimeOfDay(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, Monday, WeekdayIndex(time.Monday))
	assert.Equal(t, Wednesday, WeekdayIndex(time.Wednesday))
	assert.Equal(t, Saturday, WeekdayIndex(time.Saturday))
	assert.Equal(t, Sunday, WeekdayIndex(time.Sunday))
}

func TestEffectiveEnd(t *testing.T) {
	open := AvailabilitySlot{StartTime: 20 * time.Hour, EndTime: 0}
	assert.Equal(t, EndOfDay, open.EffectiveEnd())

	closed := AvailabilitySlot{StartTime: 9 * time.Hour, EndTime: 18 * time.Hour}
	assert.Equal(t, 18*time.Hour, closed.EffectiveEnd())
}
