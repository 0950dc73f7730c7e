// Package service implements the booking engine and the availability
// schedule management on top of the repository layer.  All failures a
// caller can correct are surfaced as the typed errors in this file;
// anything else is wrapped and treated as an internal error by handlers.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/cherry4xo/booker/internal/model"
)

// ErrForbidden is returned when the acting user is neither the owner of
// the booking nor a moderator.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidRange is returned when a requested interval has end <= start.
var ErrInvalidRange = errors.New("end time must be after start time")

// NotFoundError reports an absent entity.  Resource is a lower-case noun
// ("auditorium", "booking", ...).
type NotFoundError struct {
	Resource string
	ID       uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// UnavailableError reports that a requested booking range is not fully
// covered by the auditorium's availability schedule.  Date names the first
// offending calendar day; From and To bound the uncovered window on that
// day as offsets from midnight.  When NoSchedule is set the auditorium has
// no slots at all for that day of week.
type UnavailableError struct {
	Auditorium string        // identifier of the auditorium (or its id when unresolvable)
	Date       time.Time     // first day with a coverage gap
	From       time.Duration // start of the uncovered window
	To         time.Duration // end of the uncovered window
	NoSchedule bool          // true when the day has no slots at all
}

func (e *UnavailableError) Error() string {
	day := e.Date.Format("Monday, 2006-01-02")
	if e.NoSchedule {
		return fmt.Sprintf("auditorium %q is unavailable: no availability schedule for %s", e.Auditorium, day)
	}
	return fmt.Sprintf("auditorium %q is unavailable on %s between %s and %s",
		e.Auditorium, day, model.FormatTimeOfDay(e.From), model.FormatTimeOfDay(e.To))
}

// ConflictError reports that a requested booking interval overlaps an
// existing booking for the same auditorium.
type ConflictError struct {
	Auditorium string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("requested time slot for auditorium %q conflicts with an existing booking", e.Auditorium)
}

// SlotConflictError reports that an availability slot being created or
// updated overlaps another slot of the same auditorium on the same day.
type SlotConflictError struct {
	AuditoriumID uint64
	DayOfWeek    int
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("availability slot overlaps an existing slot of auditorium %d on day %d",
		e.AuditoriumID, e.DayOfWeek)
}
