package model

import (
	"fmt"
	"strings"
	"time"
)

// Day-of-week numbering used by availability_slots.day_of_week.
// 0 is Monday, 6 is Sunday.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// EndOfDay is the effective end of a slot whose end_time is stored as
// midnight (00:00:00).  Midnight-as-end is a sentinel meaning "open until
// the end of the day"; 23:59:59.999999 is the latest representable instant
// at the microsecond precision of the TIME(6) columns.
const EndOfDay = 24*time.Hour - time.Microsecond

// AvailabilitySlot is one recurring weekly window during which an
// auditorium may be booked.  Rows live in the `availability_slots` table.
// Start and end are times of day carried as offsets from midnight; an end
// of exactly zero is the midnight sentinel (see EndOfDay).
//
// Multiple slots per (auditorium, day) are allowed but must not overlap;
// the availability service enforces that on create and update.
type AvailabilitySlot struct {
	ID           uint64        // availability_slots.id
	AuditoriumID uint64        // availability_slots.auditorium_id
	DayOfWeek    int           // availability_slots.day_of_week (0=Monday..6=Sunday)
	StartTime    time.Duration // availability_slots.start_time, offset from midnight
	EndTime      time.Duration // availability_slots.end_time, offset from midnight; 0 = until end of day
}

// EffectiveEnd returns the slot's end with the midnight sentinel resolved:
// an EndTime of zero maps to EndOfDay, anything else is returned as is.
func (s AvailabilitySlot) EffectiveEnd() time.Duration {
	if s.EndTime == 0 {
		return EndOfDay
	}
	return s.EndTime
}

// WeekdayIndex converts a time.Weekday (Sunday=0) into the Monday=0
// numbering used by the availability schedule.
func WeekdayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// ParseTimeOfDay parses a MySQL TIME(6) literal of the form
// "HH:MM:SS[.ffffff]" into an offset from midnight.  "24:00:00" is not a
// valid value; midnight-as-end is stored as "00:00:00".
func ParseTimeOfDay(s string) (time.Duration, error) {
	var h, m int
	var sec float64
	if _, err := fmt.Sscanf(s, "%d:%d:%f", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	d := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
	// Round to microseconds, the precision of the TIME(6) columns.
	return d.Round(time.Microsecond), nil
}

// FormatTimeOfDay renders an offset from midnight as "HH:MM:SS" or
// "HH:MM:SS.ffffff" when sub-second precision is present.  It is the
// inverse of ParseTimeOfDay and is used both for SQL parameters and for
// human-readable error messages.
func FormatTimeOfDay(d time.Duration) string {
	if d < 0 || d >= 24*time.Hour {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	us := (d % time.Second) / time.Microsecond
	if us == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	out := fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, us)
	return strings.TrimRight(out, "0")
}
