package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/repository"
)

// ----- in-memory fakes -----

type fakeAuditoriums struct {
	byID map[uint64]*model.Auditorium
}

func (f *fakeAuditoriums) GetByID(_ context.Context, id uint64) (*model.Auditorium, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrAuditoriumNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeSlots struct {
	slots []model.AvailabilitySlot
}

func (f *fakeSlots) ListByAuditoriumDay(_ context.Context, auditoriumID uint64, day int) ([]model.AvailabilitySlot, error) {
	var out []model.AvailabilitySlot
	for _, s := range f.slots {
		if s.AuditoriumID == auditoriumID && s.DayOfWeek == day {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

type fakeBookings struct {
	nextID   uint64
	bookings map[uint64]*model.Booking
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{nextID: 1, bookings: map[uint64]*model.Booking{}}
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ExistsOverlap(_ context.Context, auditoriumID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	for _, b := range f.bookings {
		if b.AuditoriumID != auditoriumID || b.ID == excludeID {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	b.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookings) Update(_ context.Context, b *model.Booking) error {
	if _, ok := f.bookings[b.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookings) Delete(_ context.Context, id uint64) (bool, error) {
	if _, ok := f.bookings[id]; !ok {
		return false, nil
	}
	delete(f.bookings, id)
	return true, nil
}

func (f *fakeBookings) List(_ context.Context, fl repository.BookingFilter) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if fl.AuditoriumID != nil && b.AuditoriumID != *fl.AuditoriumID {
			continue
		}
		if fl.BrokerID != nil && b.BrokerID != *fl.BrokerID {
			continue
		}
		if fl.From != nil && b.StartTime.Before(*fl.From) {
			continue
		}
		if fl.Until != nil && b.EndTime.After(*fl.Until) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeBookings) ListIntersecting(_ context.Context, auditoriumID uint64, from, until time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if b.AuditoriumID != auditoriumID {
			continue
		}
		if b.StartTime.Before(until) && b.EndTime.After(from) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// ----- fixture -----

const room101 = uint64(1)

var (
	booker    = Actor{ID: 10, Role: model.RoleBooker}
	otherUser = Actor{ID: 20, Role: model.RoleBooker}
	moderator = Actor{ID: 30, Role: model.RoleModerator}
)

// newEngine builds a BookingService over "Room 101" with the given
// weekly schedule.
func newEngine(slots ...model.AvailabilitySlot) (*BookingService, *fakeBookings) {
	auds := &fakeAuditoriums{byID: map[uint64]*model.Auditorium{
		room101: {ID: room101, Identifier: "Room 101", Capacity: 30},
	}}
	for i := range slots {
		slots[i].ID = uint64(i + 1)
		slots[i].AuditoriumID = room101
	}
	bookings := newFakeBookings()
	return NewBookingService(auds, &fakeSlots{slots: slots}, bookings), bookings
}

// mondaySchedule is Room 101 open Monday 09:00-18:00.
func mondaySchedule() model.AvailabilitySlot {
	return model.AvailabilitySlot{
		DayOfWeek: model.Monday,
		StartTime: 9 * time.Hour,
		EndTime:   18 * time.Hour,
	}
}

// monday returns 2026-01-05 (a Monday) at the given hour/minute UTC.
func monday(hour, min int) time.Time {
	return time.Date(2026, 1, 5, hour, min, 0, 0, time.UTC)
}

// ----- coverage -----

func TestCreateBookingWithinSchedule(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())

	b, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(10, 0),
		End:          monday(11, 0),
	}, booker)
	require.NoError(t, err)
	assert.Equal(t, booker.ID, b.BrokerID)
	assert.Equal(t, room101, b.AuditoriumID)
	assert.NotZero(t, b.ID)
}

func TestCreateBookingOutsideSchedule(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(18, 0),
		End:          monday(19, 0),
	}, booker)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Room 101", unavailable.Auditorium)
	assert.False(t, unavailable.NoSchedule)
	assert.Equal(t, 5, unavailable.Date.Day())
}

func TestCreateBookingNoScheduleForDay(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())

	// Tuesday has no slots at all.
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(10, 0).AddDate(0, 0, 1),
		End:          monday(11, 0).AddDate(0, 0, 1),
	}, booker)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.True(t, unavailable.NoSchedule)
}

func TestCreateBookingGapBetweenSlots(t *testing.T) {
	svc, _ := newEngine(
		model.AvailabilitySlot{DayOfWeek: model.Monday, StartTime: 9 * time.Hour, EndTime: 12 * time.Hour},
		model.AvailabilitySlot{DayOfWeek: model.Monday, StartTime: 13 * time.Hour, EndTime: 18 * time.Hour},
	)

	// 11:00-14:00 crosses the 12:00-13:00 gap.
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(11, 0),
		End:          monday(14, 0),
	}, booker)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 12*time.Hour, unavailable.From)
	assert.Equal(t, 14*time.Hour, unavailable.To)

	// Each half on its own is fine.
	_, err = svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101, Start: monday(11, 0), End: monday(12, 0),
	}, booker)
	require.NoError(t, err)
	_, err = svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101, Start: monday(13, 0), End: monday(14, 0),
	}, booker)
	require.NoError(t, err)
}

func TestCreateBookingContiguousSlotsMerge(t *testing.T) {
	svc, _ := newEngine(
		model.AvailabilitySlot{DayOfWeek: model.Monday, StartTime: 9 * time.Hour, EndTime: 12 * time.Hour},
		model.AvailabilitySlot{DayOfWeek: model.Monday, StartTime: 12 * time.Hour, EndTime: 18 * time.Hour},
	)

	// Back-to-back slots act as one continuous window.
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(11, 0),
		End:          monday(14, 0),
	}, booker)
	require.NoError(t, err)
}

func TestCreateBookingUntilMidnightSentinel(t *testing.T) {
	// Open Monday from 20:00 until end of day (end_time stored as 00:00).
	svc, _ := newEngine(model.AvailabilitySlot{
		DayOfWeek: model.Monday, StartTime: 20 * time.Hour, EndTime: 0,
	})

	// Ends exactly at the next midnight: covered by the sentinel.
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(22, 0),
		End:          monday(0, 0).AddDate(0, 0, 1),
	}, booker)
	require.NoError(t, err)
}

func TestCreateBookingSpanningDays(t *testing.T) {
	svc, _ := newEngine(
		model.AvailabilitySlot{DayOfWeek: model.Monday, StartTime: 20 * time.Hour, EndTime: 0},
		model.AvailabilitySlot{DayOfWeek: model.Tuesday, StartTime: 0, EndTime: 2 * time.Hour},
	)

	// Monday 22:00 through Tuesday 02:00 needs both days covered.
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(22, 0),
		End:          monday(2, 0).AddDate(0, 0, 1),
	}, booker)
	require.NoError(t, err)

	// One minute further runs past the Tuesday slot.
	_, err = svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(22, 0),
		End:          monday(2, 1).AddDate(0, 0, 1),
	}, booker)
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestCreateBookingInvalidRange(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(11, 0),
		End:          monday(10, 0),
	}, booker)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(11, 0),
		End:          monday(11, 0),
	}, booker)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCreateBookingUnknownAuditorium(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		AuditoriumID: 99,
		Start:        monday(10, 0),
		End:          monday(11, 0),
	}, booker)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "auditorium", notFound.Resource)
	assert.Equal(t, uint64(99), notFound.ID)
}

// ----- overlap -----

func TestCreateBookingOverlapConflict(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 30), End: monday(11, 30),
	}, otherUser)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Room 101", conflict.Auditorium)
}

func TestCreateBookingBackToBackNoConflict(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	// Half-open intervals: ending exactly when another starts is fine.
	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(11, 0), End: monday(12, 0),
	}, otherUser)
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(9, 0), End: monday(10, 0),
	}, otherUser)
	require.NoError(t, err)
}

// ----- update -----

func TestUpdateBookingSelfExcluded(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	// A no-op patch must not conflict with the booking itself.
	got, err := svc.UpdateBooking(ctx, b.ID, BookingPatch{}, booker)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(monday(10, 0)))

	// Shifting within the window works too.
	newEnd := monday(11, 30)
	got, err = svc.UpdateBooking(ctx, b.ID, BookingPatch{End: &newEnd}, booker)
	require.NoError(t, err)
	assert.True(t, got.EndTime.Equal(newEnd))
}

func TestUpdateBookingConflictWithOther(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	b1, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(11, 0), End: monday(12, 0),
	}, otherUser)
	require.NoError(t, err)

	newEnd := monday(11, 30)
	_, err = svc.UpdateBooking(ctx, b1.ID, BookingPatch{End: &newEnd}, booker)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestUpdateBookingAuthorization(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	title := "retro"
	_, err = svc.UpdateBooking(ctx, b.ID, BookingPatch{Title: &title}, otherUser)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.UpdateBooking(ctx, b.ID, BookingPatch{Title: &title}, moderator)
	require.NoError(t, err)
	require.NotNil(t, got.Title)
	assert.Equal(t, "retro", *got.Title)
	// Moderator edits do not change ownership.
	assert.Equal(t, booker.ID, got.BrokerID)
}

func TestUpdateBookingNotFound(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())

	_, err := svc.UpdateBooking(context.Background(), 42, BookingPatch{}, booker)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "booking", notFound.Resource)
}

// ----- delete / get -----

func TestDeleteBooking(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	_, err = svc.DeleteBooking(ctx, b.ID, otherUser)
	assert.ErrorIs(t, err, ErrForbidden)

	ok, err := svc.DeleteBooking(ctx, b.ID, booker)
	require.NoError(t, err)
	assert.True(t, ok)

	// Already gone: no error, just "not deleted".
	ok, err = svc.DeleteBooking(ctx, b.ID, booker)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteBookingAsModerator(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	ok, err := svc.DeleteBooking(ctx, b.ID, moderator)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetBookingVisibility(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	got, err := svc.GetBooking(ctx, b.ID, booker)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.GetBooking(ctx, b.ID, otherUser)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetBooking(ctx, b.ID, moderator)
	require.NoError(t, err)
}

// ----- list / calendar -----

func TestListBookingsPinsOwnerForBookers(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(11, 0), End: monday(12, 0),
	}, otherUser)
	require.NoError(t, err)

	// A booker with no broker filter sees only their own bookings.
	out, err := svc.ListBookings(ctx, ListBookingsFilter{}, booker)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, booker.ID, out[0].BrokerID)

	// Asking for someone else's bookings is forbidden.
	foreign := otherUser.ID
	_, err = svc.ListBookings(ctx, ListBookingsFilter{BrokerID: &foreign}, booker)
	assert.ErrorIs(t, err, ErrForbidden)

	// Moderators see everything.
	out, err = svc.ListBookings(ctx, ListBookingsFilter{}, moderator)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestListBookingsDateFilter(t *testing.T) {
	svc, _ := newEngine(
		mondaySchedule(),
		model.AvailabilitySlot{DayOfWeek: model.Tuesday, StartTime: 9 * time.Hour, EndTime: 18 * time.Hour},
	)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101,
		Start:        monday(10, 0).AddDate(0, 0, 1),
		End:          monday(11, 0).AddDate(0, 0, 1),
	}, booker)
	require.NoError(t, err)

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	out, err := svc.ListBookings(ctx, ListBookingsFilter{StartDate: &day, EndDate: &day}, booker)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].StartTime.Day())
}

func TestCalendar(t *testing.T) {
	svc, _ := newEngine(mondaySchedule())
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		AuditoriumID: room101, Start: monday(10, 0), End: monday(11, 0),
	}, booker)
	require.NoError(t, err)

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	out, err := svc.Calendar(ctx, room101, day, day)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	before := day.AddDate(0, 0, -7)
	out, err = svc.Calendar(ctx, room101, before, before)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = svc.Calendar(ctx, 99, day, day)
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
