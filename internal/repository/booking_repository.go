package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cherry4xo/booker/internal/model"
)

// BookingRepo provides persistence for the `bookings` table, the booking
// ledger of the system.  All timestamps are stored and compared in UTC;
// the DSN opens the connection with loc=UTC so DATETIME(6) values scan
// into UTC time.Time values.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, auditorium_id, broker_id, start_time, end_time, title, created_at, updated_at"

// BookingFilter restricts List results.  Nil fields are ignored; set
// fields are AND-combined.  From/Until are full timestamps: callers
// expand inclusive date bounds to start-of-day and end-of-day themselves.
type BookingFilter struct {
	AuditoriumID *uint64    // only bookings for this auditorium
	BrokerID     *uint64    // only bookings owned by this user
	From         *time.Time // only bookings with start_time >= From
	Until        *time.Time // only bookings with end_time <= Until
}

// Create inserts a booking and populates the generated ID plus the
// database-assigned created_at/updated_at timestamps.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO bookings (auditorium_id, broker_id, start_time, end_time, title) VALUES (?,?,?,?,?)",
		b.AuditoriumID, b.BrokerID, b.StartTime, b.EndTime, b.Title)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate timestamp defaults.
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM bookings WHERE id=?", b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID fetches a booking by id, returning ErrBookingNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ExistsOverlap reports whether any booking for the auditorium intersects
// the half-open interval [start, end).  Two intervals overlap iff
// existing.start < end AND existing.end > start; strict inequalities let
// back-to-back bookings coexist.  When excludeID is non-zero that booking
// is left out of the conflict set, which makes self-updates possible.
func (r *BookingRepo) ExistsOverlap(ctx context.Context, auditoriumID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(
        SELECT 1 FROM bookings
        WHERE auditorium_id = ? AND start_time < ? AND end_time > ? AND id <> ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, auditoriumID, end, start, excludeID).Scan(&exists)
	return exists, err
}

// Update rewrites the mutable fields of a booking (auditorium, interval,
// title) and refreshes UpdatedAt from the database.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET auditorium_id=?, start_time=?, end_time=?, title=? WHERE id=?",
		b.AuditoriumID, b.StartTime, b.EndTime, b.Title, b.ID)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM bookings WHERE id=?", b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	return err
}

// Delete removes a booking permanently.  It reports whether a row was
// actually deleted so callers can translate absence into a 404.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns bookings matching the filter, ordered by start time.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	q := "SELECT " + bookingColumns + " FROM bookings WHERE 1=1"
	args := make([]any, 0, 4)
	if f.AuditoriumID != nil {
		q += " AND auditorium_id = ?"
		args = append(args, *f.AuditoriumID)
	}
	if f.BrokerID != nil {
		q += " AND broker_id = ?"
		args = append(args, *f.BrokerID)
	}
	if f.From != nil {
		q += " AND start_time >= ?"
		args = append(args, *f.From)
	}
	if f.Until != nil {
		q += " AND end_time <= ?"
		args = append(args, *f.Until)
	}
	q += " ORDER BY start_time"
	return r.list(ctx, q, args...)
}

// ListIntersecting returns the bookings of one auditorium that share at
// least one instant with [from, until], ordered by start time.  Used by
// the public calendar view.
func (r *BookingRepo) ListIntersecting(ctx context.Context, auditoriumID uint64, from, until time.Time) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+` FROM bookings
         WHERE auditorium_id = ? AND start_time < ? AND end_time > ?
         ORDER BY start_time`, auditoriumID, until, from)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b     model.Booking
		title sql.NullString
	)
	err := s.Scan(&b.ID, &b.AuditoriumID, &b.BrokerID, &b.StartTime, &b.EndTime, &title, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if title.Valid {
		v := title.String
		b.Title = &v
	}
	return b, nil
}
