package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/repository"
)

type fakeSlotCRUD struct {
	nextID uint64
	slots  map[uint64]*model.AvailabilitySlot
}

func newFakeSlotCRUD() *fakeSlotCRUD {
	return &fakeSlotCRUD{nextID: 1, slots: map[uint64]*model.AvailabilitySlot{}}
}

func (f *fakeSlotCRUD) Create(_ context.Context, s *model.AvailabilitySlot) error {
	s.ID = f.nextID
	f.nextID++
	cp := *s
	f.slots[s.ID] = &cp
	return nil
}

func (f *fakeSlotCRUD) GetByID(_ context.Context, id uint64) (*model.AvailabilitySlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlotCRUD) ListByAuditoriumDay(_ context.Context, auditoriumID uint64, day int) ([]model.AvailabilitySlot, error) {
	var out []model.AvailabilitySlot
	for _, s := range f.slots {
		if s.AuditoriumID == auditoriumID && s.DayOfWeek == day {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeSlotCRUD) ListByAuditorium(_ context.Context, auditoriumID uint64) ([]model.AvailabilitySlot, error) {
	var out []model.AvailabilitySlot
	for _, s := range f.slots {
		if s.AuditoriumID == auditoriumID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (f *fakeSlotCRUD) Update(_ context.Context, s *model.AvailabilitySlot) error {
	if _, ok := f.slots[s.ID]; !ok {
		return repository.ErrSlotNotFound
	}
	cp := *s
	f.slots[s.ID] = &cp
	return nil
}

func (f *fakeSlotCRUD) Delete(_ context.Context, id uint64) error {
	if _, ok := f.slots[id]; !ok {
		return repository.ErrSlotNotFound
	}
	delete(f.slots, id)
	return nil
}

func newAvailabilityFixture() *AvailabilityService {
	auds := &fakeAuditoriums{byID: map[uint64]*model.Auditorium{
		room101: {ID: room101, Identifier: "Room 101", Capacity: 30},
	}}
	return NewAvailabilityService(auds, newFakeSlotCRUD())
}

func TestCreateSlot(t *testing.T) {
	svc := newAvailabilityFixture()

	slot, err := svc.CreateSlot(context.Background(), SlotInput{
		AuditoriumID: room101,
		DayOfWeek:    model.Monday,
		Start:        9 * time.Hour,
		End:          18 * time.Hour,
	})
	require.NoError(t, err)
	assert.NotZero(t, slot.ID)
	assert.Equal(t, 18*time.Hour, slot.EffectiveEnd())
}

func TestCreateSlotUnknownAuditorium(t *testing.T) {
	svc := newAvailabilityFixture()

	_, err := svc.CreateSlot(context.Background(), SlotInput{
		AuditoriumID: 99,
		DayOfWeek:    model.Monday,
		Start:        9 * time.Hour,
		End:          18 * time.Hour,
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "auditorium", notFound.Resource)
}

func TestCreateSlotOverlap(t *testing.T) {
	svc := newAvailabilityFixture()
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 9 * time.Hour, End: 12 * time.Hour,
	})
	require.NoError(t, err)

	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 11 * time.Hour, End: 13 * time.Hour,
	})
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, room101, conflict.AuditoriumID)
	assert.Equal(t, model.Monday, conflict.DayOfWeek)

	// Back-to-back is fine (half-open intervals).
	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 12 * time.Hour, End: 14 * time.Hour,
	})
	require.NoError(t, err)

	// Same window on another day is fine too.
	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Tuesday,
		Start: 9 * time.Hour, End: 12 * time.Hour,
	})
	require.NoError(t, err)
}

func TestCreateSlotMidnightSentinelOverlap(t *testing.T) {
	svc := newAvailabilityFixture()
	ctx := context.Background()

	// 20:00 until end of day (sentinel).
	_, err := svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Friday,
		Start: 20 * time.Hour, End: 0,
	})
	require.NoError(t, err)

	// Anything later that evening collides with the open-ended slot.
	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Friday,
		Start: 22 * time.Hour, End: 23 * time.Hour,
	})
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)

	// Earlier in the day does not.
	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Friday,
		Start: 9 * time.Hour, End: 20 * time.Hour,
	})
	require.NoError(t, err)
}

func TestCreateSlotValidation(t *testing.T) {
	svc := newAvailabilityFixture()
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: 7,
		Start: 9 * time.Hour, End: 18 * time.Hour,
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 18 * time.Hour, End: 9 * time.Hour,
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 25 * time.Hour, End: 26 * time.Hour,
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestUpdateSlotSelfExcluded(t *testing.T) {
	svc := newAvailabilityFixture()
	ctx := context.Background()

	slot, err := svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 9 * time.Hour, End: 12 * time.Hour,
	})
	require.NoError(t, err)

	// Extending the slot must not conflict with its own stored row.
	end := 13 * time.Hour
	got, err := svc.UpdateSlot(ctx, slot.ID, SlotPatch{End: &end})
	require.NoError(t, err)
	assert.Equal(t, 13*time.Hour, got.EndTime)
}

func TestUpdateSlotConflictWithOther(t *testing.T) {
	svc := newAvailabilityFixture()
	ctx := context.Background()

	s1, err := svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 9 * time.Hour, End: 12 * time.Hour,
	})
	require.NoError(t, err)
	_, err = svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 12 * time.Hour, End: 14 * time.Hour,
	})
	require.NoError(t, err)

	end := 13 * time.Hour
	_, err = svc.UpdateSlot(ctx, s1.ID, SlotPatch{End: &end})
	var conflict *SlotConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestDeleteSlot(t *testing.T) {
	svc := newAvailabilityFixture()
	ctx := context.Background()

	slot, err := svc.CreateSlot(ctx, SlotInput{
		AuditoriumID: room101, DayOfWeek: model.Monday,
		Start: 9 * time.Hour, End: 12 * time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSlot(ctx, slot.ID))

	var notFound *NotFoundError
	err = svc.DeleteSlot(ctx, slot.ID)
	require.ErrorAs(t, err, &notFound)
}
