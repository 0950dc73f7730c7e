package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/repository"
)

// Actor identifies the authenticated user performing an operation.  The
// ID and Role come from the verified access token.
type Actor struct {
	ID   uint64
	Role string
}

// IsModerator reports whether the actor holds the moderator role.
func (a Actor) IsModerator() bool { return a.Role == model.RoleModerator }

// AuditoriumStore is the auditorium lookup the engine depends on.
type AuditoriumStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Auditorium, error)
}

// SlotStore yields the recurring weekly schedule of an auditorium.  The
// returned slice must be ordered ascending by start time; the coverage
// merge relies on that ordering.
type SlotStore interface {
	ListByAuditoriumDay(ctx context.Context, auditoriumID uint64, dayOfWeek int) ([]model.AvailabilitySlot, error)
}

// BookingStore is the booking ledger the engine reads and writes.
type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	ExistsOverlap(ctx context.Context, auditoriumID uint64, start, end time.Time, excludeID uint64) (bool, error)
	Create(ctx context.Context, b *model.Booking) error
	Update(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id uint64) (bool, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
	ListIntersecting(ctx context.Context, auditoriumID uint64, from, until time.Time) ([]model.Booking, error)
}

// BookingService orchestrates booking creation, mutation and queries.
// Every write is preceded by the two validation passes: schedule coverage
// and overlap detection.  Validation and write are not wrapped in a
// spanning transaction; between the overlap check and the insert a
// concurrent request can pass its own check, which keeps the engine
// optimistic by construction.
type BookingService struct {
	auditoriums AuditoriumStore
	slots       SlotStore
	bookings    BookingStore
}

func NewBookingService(a AuditoriumStore, s SlotStore, b BookingStore) *BookingService {
	return &BookingService{auditoriums: a, slots: s, bookings: b}
}

// CreateBookingInput carries the caller-supplied fields for a new booking.
type CreateBookingInput struct {
	AuditoriumID uint64
	Start        time.Time
	End          time.Time
	Title        *string
}

// BookingPatch carries a partial update.  Nil fields are left untouched
// ("exclude-unset" semantics); there is no way to reset Title to null
// through this operation.
type BookingPatch struct {
	AuditoriumID *uint64
	Start        *time.Time
	End          *time.Time
	Title        *string
}

// ListBookingsFilter restricts ListBookings.  StartDate and EndDate are
// inclusive calendar dates; they are expanded to start-of-day and
// end-of-day before querying.
type ListBookingsFilter struct {
	AuditoriumID *uint64
	BrokerID     *uint64
	StartDate    *time.Time
	EndDate      *time.Time
}

// CreateBooking validates and persists a new booking owned by the actor.
// The auditorium must exist, the interval must be covered by the weekly
// schedule, and it must not overlap any existing booking.  Nothing is
// written when any validation fails.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput, actor Actor) (*model.Booking, error) {
	aud, err := s.getAuditorium(ctx, in.AuditoriumID)
	if err != nil {
		return nil, err
	}
	start, end := in.Start.UTC(), in.End.UTC()
	if err := s.CheckAvailability(ctx, aud.ID, start, end); err != nil {
		return nil, err
	}
	if err := s.ensureNoOverlap(ctx, aud, start, end, 0); err != nil {
		return nil, err
	}
	b := &model.Booking{
		AuditoriumID: aud.ID,
		BrokerID:     actor.ID,
		StartTime:    start,
		EndTime:      end,
		Title:        in.Title,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return b, nil
}

// UpdateBooking applies a partial update to an existing booking.  The
// actor must be the owning broker or a moderator; that check runs before
// any other validation.  Coverage and overlap are re-checked against the
// effective final values, with the booking itself excluded from the
// conflict set so a no-op patch never conflicts with itself.
func (s *BookingService) UpdateBooking(ctx context.Context, id uint64, patch BookingPatch, actor Actor) (*model.Booking, error) {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.BrokerID != actor.ID && !actor.IsModerator() {
		return nil, ErrForbidden
	}

	// Effective values: supplied field, or the stored one when omitted.
	auditoriumID := b.AuditoriumID
	if patch.AuditoriumID != nil {
		auditoriumID = *patch.AuditoriumID
	}
	start, end := b.StartTime, b.EndTime
	if patch.Start != nil {
		start = patch.Start.UTC()
	}
	if patch.End != nil {
		end = patch.End.UTC()
	}

	aud, err := s.getAuditorium(ctx, auditoriumID)
	if err != nil {
		return nil, err
	}
	if err := s.CheckAvailability(ctx, aud.ID, start, end); err != nil {
		return nil, err
	}
	if err := s.ensureNoOverlap(ctx, aud, start, end, b.ID); err != nil {
		return nil, err
	}

	b.AuditoriumID = aud.ID
	b.StartTime = start
	b.EndTime = end
	if patch.Title != nil {
		b.Title = patch.Title
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return b, nil
}

// DeleteBooking removes a booking.  It returns false (and no error) when
// the booking does not exist, letting the handler answer 404.  Deletion
// requires no re-validation since removing a booking cannot violate
// coverage or overlap invariants.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint64, actor Actor) (bool, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load booking: %w", err)
	}
	if b.BrokerID != actor.ID && !actor.IsModerator() {
		return false, ErrForbidden
	}
	ok, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete booking: %w", err)
	}
	return ok, nil
}

// GetBooking fetches one booking.  Non-moderators may only see their own.
func (s *BookingService) GetBooking(ctx context.Context, id uint64, actor Actor) (*model.Booking, error) {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.BrokerID != actor.ID && !actor.IsModerator() {
		return nil, ErrForbidden
	}
	return b, nil
}

// ListBookings returns bookings matching the filter.  Non-moderators are
// restricted to their own bookings: requesting another user's bookings is
// forbidden and an omitted broker filter is pinned to the actor.
func (s *BookingService) ListBookings(ctx context.Context, f ListBookingsFilter, actor Actor) ([]model.Booking, error) {
	if !actor.IsModerator() {
		if f.BrokerID != nil && *f.BrokerID != actor.ID {
			return nil, ErrForbidden
		}
		own := actor.ID
		f.BrokerID = &own
	}
	rf := repository.BookingFilter{
		AuditoriumID: f.AuditoriumID,
		BrokerID:     f.BrokerID,
	}
	if f.StartDate != nil {
		from := startOfDay(f.StartDate.UTC())
		rf.From = &from
	}
	if f.EndDate != nil {
		until := startOfDay(f.EndDate.UTC()).Add(model.EndOfDay)
		rf.Until = &until
	}
	out, err := s.bookings.List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// Calendar returns the bookings of one auditorium intersecting the
// inclusive [from, until] date range, for the public calendar view.
func (s *BookingService) Calendar(ctx context.Context, auditoriumID uint64, from, until time.Time) ([]model.Booking, error) {
	if _, err := s.getAuditorium(ctx, auditoriumID); err != nil {
		return nil, err
	}
	lo := startOfDay(from.UTC())
	hi := startOfDay(until.UTC()).Add(model.EndOfDay)
	out, err := s.bookings.ListIntersecting(ctx, auditoriumID, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("list calendar bookings: %w", err)
	}
	return out, nil
}

// CheckAvailability verifies that [start, end) lies entirely within the
// auditorium's recurring weekly schedule.  The range may span several
// calendar days; each day's sub-segment must be covered by the union of
// that day-of-week's slots.
//
// The scan walks the range day by day.  For the day under the cursor the
// needed window is [time-of-day of the cursor, time-of-day of
// min(end, next midnight)].  When the segment runs up to the next
// midnight the booking needs coverage only up to the end of the day, so
// the comparison bound becomes 23:59:59.999999 rather than a true 24:00.
// Slots for each day of week are fetched once and cached for the
// duration of the call.
func (s *BookingService) CheckAvailability(ctx context.Context, auditoriumID uint64, start, end time.Time) error {
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return ErrInvalidRange
	}

	cache := make(map[int][]model.AvailabilitySlot, 2)
	cursor := start
	for cursor.Before(end) {
		dayStart := startOfDay(cursor)
		nextMidnight := dayStart.Add(24 * time.Hour)
		segEnd := end
		if nextMidnight.Before(end) {
			segEnd = nextMidnight
		}
		segFrom := cursor.Sub(dayStart)
		segTo := segEnd.Sub(dayStart)
		if segEnd.Equal(nextMidnight) {
			// The segment lands exactly on the next midnight: coverage is
			// needed up to the end of this day, not at midnight itself.
			segTo = model.EndOfDay
		}

		day := model.WeekdayIndex(dayStart.Weekday())
		slots, ok := cache[day]
		if !ok {
			var err error
			slots, err = s.slots.ListByAuditoriumDay(ctx, auditoriumID, day)
			if err != nil {
				return fmt.Errorf("load availability slots: %w", err)
			}
			cache[day] = slots
		}
		if len(slots) == 0 {
			return s.unavailable(ctx, auditoriumID, dayStart, segFrom, segTo, true)
		}

		if segFrom == 0 && segTo == 0 {
			// Zero-length touch of midnight; trivially covered.
			cursor = segEnd
			continue
		}

		// Interval-coverage merge over the slots, ascending by start time.
		coveredUntil := segFrom
		covered := false
		for _, sl := range slots {
			if sl.StartTime > coveredUntil {
				// Gap before this slot; later slots start even further
				// right and cannot close it.
				break
			}
			if eff := sl.EffectiveEnd(); eff > coveredUntil {
				coveredUntil = eff
			}
			if coveredUntil >= segTo {
				covered = true
				break
			}
		}
		if !covered {
			return s.unavailable(ctx, auditoriumID, dayStart, coveredUntil, segTo, false)
		}

		cursor = segEnd
	}
	return nil
}

// ensureNoOverlap rejects [start, end) when any other booking of the
// auditorium intersects it.  Half-open semantics: a booking ending exactly
// when another starts is not a conflict.
func (s *BookingService) ensureNoOverlap(ctx context.Context, aud *model.Auditorium, start, end time.Time, excludeID uint64) error {
	exists, err := s.bookings.ExistsOverlap(ctx, aud.ID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("check booking overlap: %w", err)
	}
	if exists {
		return &ConflictError{Auditorium: aud.Identifier}
	}
	return nil
}

func (s *BookingService) getAuditorium(ctx context.Context, id uint64) (*model.Auditorium, error) {
	aud, err := s.auditoriums.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return nil, &NotFoundError{Resource: "auditorium", ID: id}
		}
		return nil, fmt.Errorf("load auditorium: %w", err)
	}
	return aud, nil
}

func (s *BookingService) getBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: id}
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

// unavailable builds the coverage-failure error, resolving the auditorium
// identifier best-effort for the message.
func (s *BookingService) unavailable(ctx context.Context, auditoriumID uint64, date time.Time, from, to time.Duration, noSchedule bool) error {
	ident := strconv.FormatUint(auditoriumID, 10)
	if aud, err := s.auditoriums.GetByID(ctx, auditoriumID); err == nil {
		ident = aud.Identifier
	}
	return &UnavailableError{
		Auditorium: ident,
		Date:       date,
		From:       from,
		To:         to,
		NoSchedule: noSchedule,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
