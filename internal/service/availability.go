package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/repository"
)

// SlotCRUDStore is the persistence surface the availability service needs.
type SlotCRUDStore interface {
	Create(ctx context.Context, s *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id uint64) (*model.AvailabilitySlot, error)
	ListByAuditoriumDay(ctx context.Context, auditoriumID uint64, dayOfWeek int) ([]model.AvailabilitySlot, error)
	ListByAuditorium(ctx context.Context, auditoriumID uint64) ([]model.AvailabilitySlot, error)
	Update(ctx context.Context, s *model.AvailabilitySlot) error
	Delete(ctx context.Context, id uint64) error
}

// AvailabilityService manages the recurring weekly schedule.  Slots for
// one (auditorium, day) may not overlap each other; that invariant is
// enforced here on create and update so the coverage checker can merge
// slots without deduplication.  Role checks are left to the router: slot
// writes are only reachable through moderator routes.
type AvailabilityService struct {
	auditoriums AuditoriumStore
	slots       SlotCRUDStore
}

func NewAvailabilityService(a AuditoriumStore, s SlotCRUDStore) *AvailabilityService {
	return &AvailabilityService{auditoriums: a, slots: s}
}

// SlotInput carries the fields for a new availability slot.  An End of
// exactly zero is the midnight sentinel ("until end of day").
type SlotInput struct {
	AuditoriumID uint64
	DayOfWeek    int
	Start        time.Duration
	End          time.Duration
}

// SlotPatch carries a partial slot update; nil fields are left untouched.
type SlotPatch struct {
	DayOfWeek *int
	Start     *time.Duration
	End       *time.Duration
}

// CreateSlot validates and persists a new slot for an existing auditorium.
func (s *AvailabilityService) CreateSlot(ctx context.Context, in SlotInput) (*model.AvailabilitySlot, error) {
	if err := validateSlotRange(in.DayOfWeek, in.Start, in.End); err != nil {
		return nil, err
	}
	if _, err := s.auditoriums.GetByID(ctx, in.AuditoriumID); err != nil {
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return nil, &NotFoundError{Resource: "auditorium", ID: in.AuditoriumID}
		}
		return nil, fmt.Errorf("load auditorium: %w", err)
	}
	if err := s.checkSlotOverlap(ctx, in.AuditoriumID, in.DayOfWeek, in.Start, in.End, 0); err != nil {
		return nil, err
	}
	slot := &model.AvailabilitySlot{
		AuditoriumID: in.AuditoriumID,
		DayOfWeek:    in.DayOfWeek,
		StartTime:    in.Start,
		EndTime:      in.End,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return slot, nil
}

// UpdateSlot applies a partial update, re-running the overlap check with
// the effective final values and the slot itself excluded.
func (s *AvailabilityService) UpdateSlot(ctx context.Context, id uint64, patch SlotPatch) (*model.AvailabilitySlot, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	day := slot.DayOfWeek
	if patch.DayOfWeek != nil {
		day = *patch.DayOfWeek
	}
	start, end := slot.StartTime, slot.EndTime
	if patch.Start != nil {
		start = *patch.Start
	}
	if patch.End != nil {
		end = *patch.End
	}
	if err := validateSlotRange(day, start, end); err != nil {
		return nil, err
	}
	if err := s.checkSlotOverlap(ctx, slot.AuditoriumID, day, start, end, slot.ID); err != nil {
		return nil, err
	}
	slot.DayOfWeek = day
	slot.StartTime = start
	slot.EndTime = end
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}
	return slot, nil
}

// GetSlot fetches one slot by id.
func (s *AvailabilityService) GetSlot(ctx context.Context, id uint64) (*model.AvailabilitySlot, error) {
	return s.getSlot(ctx, id)
}

// ListSlots returns the weekly schedule of one auditorium.
func (s *AvailabilityService) ListSlots(ctx context.Context, auditoriumID uint64) ([]model.AvailabilitySlot, error) {
	if _, err := s.auditoriums.GetByID(ctx, auditoriumID); err != nil {
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return nil, &NotFoundError{Resource: "auditorium", ID: auditoriumID}
		}
		return nil, fmt.Errorf("load auditorium: %w", err)
	}
	out, err := s.slots.ListByAuditorium(ctx, auditoriumID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

// DeleteSlot removes a slot permanently.
func (s *AvailabilityService) DeleteSlot(ctx context.Context, id uint64) error {
	if err := s.slots.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return &NotFoundError{Resource: "availability slot", ID: id}
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

func (s *AvailabilityService) getSlot(ctx context.Context, id uint64) (*model.AvailabilitySlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return nil, &NotFoundError{Resource: "availability slot", ID: id}
		}
		return nil, fmt.Errorf("load slot: %w", err)
	}
	return slot, nil
}

// checkSlotOverlap rejects [start, end) when another slot of the same
// auditorium and day intersects it.  Half-open comparison with the
// midnight sentinel resolved on both sides, so back-to-back slots are
// allowed and a slot ending "at midnight" conflicts with anything later
// that day.
func (s *AvailabilityService) checkSlotOverlap(ctx context.Context, auditoriumID uint64, day int, start, end time.Duration, excludeID uint64) error {
	existing, err := s.slots.ListByAuditoriumDay(ctx, auditoriumID, day)
	if err != nil {
		return fmt.Errorf("load availability slots: %w", err)
	}
	effEnd := end
	if end == 0 {
		effEnd = model.EndOfDay
	}
	for _, sl := range existing {
		if sl.ID == excludeID {
			continue
		}
		if sl.StartTime < effEnd && sl.EffectiveEnd() > start {
			return &SlotConflictError{AuditoriumID: auditoriumID, DayOfWeek: day}
		}
	}
	return nil
}

// validateSlotRange checks day-of-week bounds and the time ordering
// invariant: end strictly after start, except the midnight sentinel.
func validateSlotRange(day int, start, end time.Duration) error {
	if day < model.Monday || day > model.Sunday {
		return fmt.Errorf("%w: day of week must be between 0 and 6", ErrInvalidRange)
	}
	if start < 0 || start >= 24*time.Hour || end < 0 || end >= 24*time.Hour {
		return fmt.Errorf("%w: time of day out of range", ErrInvalidRange)
	}
	if end != 0 && end <= start {
		return ErrInvalidRange
	}
	return nil
}
