package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cherry4xo/booker/internal/model"
)

// AvailabilityRepo provides persistence for the `availability_slots` table.
// TIME(6) columns are transferred as "HH:MM:SS[.ffffff]" strings and
// converted to time-of-day offsets at the repository boundary, so the rest
// of the code only ever sees time.Duration values.
type AvailabilityRepo struct{ db *sql.DB }

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// Create inserts a slot and populates the generated ID.
func (r *AvailabilityRepo) Create(ctx context.Context, s *model.AvailabilitySlot) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO availability_slots (auditorium_id, day_of_week, start_time, end_time) VALUES (?,?,?,?)",
		s.AuditoriumID, s.DayOfWeek,
		model.FormatTimeOfDay(s.StartTime), model.FormatTimeOfDay(s.EndTime))
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a slot by id, returning ErrSlotNotFound when absent.
func (r *AvailabilityRepo) GetByID(ctx context.Context, id uint64) (*model.AvailabilitySlot, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, auditorium_id, day_of_week, start_time, end_time FROM availability_slots WHERE id=?", id)
	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByAuditoriumDay returns the slots of one auditorium for one day of
// the week, ordered ascending by start time.  The ordering is relied upon
// by the coverage merge in the booking service.
func (r *AvailabilityRepo) ListByAuditoriumDay(ctx context.Context, auditoriumID uint64, dayOfWeek int) ([]model.AvailabilitySlot, error) {
	return r.list(ctx,
		`SELECT id, auditorium_id, day_of_week, start_time, end_time
         FROM availability_slots
         WHERE auditorium_id=? AND day_of_week=?
         ORDER BY start_time`, auditoriumID, dayOfWeek)
}

// ListByAuditorium returns the full weekly schedule of one auditorium,
// ordered by day then start time.
func (r *AvailabilityRepo) ListByAuditorium(ctx context.Context, auditoriumID uint64) ([]model.AvailabilitySlot, error) {
	return r.list(ctx,
		`SELECT id, auditorium_id, day_of_week, start_time, end_time
         FROM availability_slots
         WHERE auditorium_id=?
         ORDER BY day_of_week, start_time`, auditoriumID)
}

// Update rewrites day and time range of an existing slot.
func (r *AvailabilityRepo) Update(ctx context.Context, s *model.AvailabilitySlot) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE availability_slots SET day_of_week=?, start_time=?, end_time=? WHERE id=?",
		s.DayOfWeek, model.FormatTimeOfDay(s.StartTime), model.FormatTimeOfDay(s.EndTime), s.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM availability_slots WHERE id=?", s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSlotNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a slot permanently.
func (r *AvailabilityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM availability_slots WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *AvailabilityRepo) list(ctx context.Context, q string, args ...any) ([]model.AvailabilitySlot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AvailabilitySlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSlot(s rowScanner) (model.AvailabilitySlot, error) {
	var (
		slot       model.AvailabilitySlot
		start, end string
	)
	if err := s.Scan(&slot.ID, &slot.AuditoriumID, &slot.DayOfWeek, &start, &end); err != nil {
		return model.AvailabilitySlot{}, err
	}
	var err error
	if slot.StartTime, err = model.ParseTimeOfDay(start); err != nil {
		return model.AvailabilitySlot{}, err
	}
	if slot.EndTime, err = model.ParseTimeOfDay(end); err != nil {
		return model.AvailabilitySlot{}, err
	}
	return slot, nil
}
