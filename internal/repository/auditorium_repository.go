package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cherry4xo/booker/internal/model"
)

// AuditoriumRepo provides CRUD operations for the `auditoriums` table and
// its equipment associations.
type AuditoriumRepo struct{ db *sql.DB }

func NewAuditoriumRepo(db *sql.DB) *AuditoriumRepo { return &AuditoriumRepo{db: db} }

// Create inserts a new auditorium and populates the generated ID.  A
// duplicate identifier yields ErrDuplicate.
func (r *AuditoriumRepo) Create(ctx context.Context, a *model.Auditorium) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO auditoriums (identifier, capacity, description) VALUES (?,?,?)",
		a.Identifier, a.Capacity, a.Description)
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
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an auditorium with its equipment set attached.  It
// returns ErrAuditoriumNotFound when no row exists.
func (r *AuditoriumRepo) GetByID(ctx context.Context, id uint64) (*model.Auditorium, error) {
	var (
		a    model.Auditorium
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, identifier, capacity, description FROM auditoriums WHERE id=?", id).
		Scan(&a.ID, &a.Identifier, &a.Capacity, &desc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuditoriumNotFound
		}
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		a.Description = &v
	}
	eq, err := r.equipmentFor(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Equipment = eq
	return &a, nil
}

// List returns all auditoriums ordered by identifier, without equipment.
func (r *AuditoriumRepo) List(ctx context.Context) ([]model.Auditorium, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, identifier, capacity, description FROM auditoriums ORDER BY identifier")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Auditorium
	for rows.Next() {
		var (
			a    model.Auditorium
			desc sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Identifier, &a.Capacity, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			a.Description = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update rewrites identifier, capacity and description.  Returns
// ErrAuditoriumNotFound when the row is absent and ErrDuplicate on an
// identifier collision.
func (r *AuditoriumRepo) Update(ctx context.Context, a *model.Auditorium) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE auditoriums SET identifier=?, capacity=?, description=? WHERE id=?",
		a.Identifier, a.Capacity, a.Description, a.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM auditoriums WHERE id=?", a.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAuditoriumNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes an auditorium permanently.  Slots, bookings and join
// rows are removed by ON DELETE CASCADE.
func (r *AuditoriumRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM auditoriums WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAuditoriumNotFound
	}
	return nil
}

// AttachEquipment links a piece of equipment to an auditorium.  Attaching
// the same pair twice is a no-op thanks to INSERT IGNORE.
func (r *AuditoriumRepo) AttachEquipment(ctx context.Context, auditoriumID, equipmentID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO auditorium_equipment (auditorium_id, equipment_id) VALUES (?,?)",
		auditoriumID, equipmentID)
	return err
}

// DetachEquipment removes the link between an auditorium and equipment.
func (r *AuditoriumRepo) DetachEquipment(ctx context.Context, auditoriumID, equipmentID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM auditorium_equipment WHERE auditorium_id=? AND equipment_id=?",
		auditoriumID, equipmentID)
	return err
}

func (r *AuditoriumRepo) equipmentFor(ctx context.Context, auditoriumID uint64) ([]model.Equipment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.name, e.description
         FROM equipment e
         JOIN auditorium_equipment ae ON ae.equipment_id = e.id
         WHERE ae.auditorium_id = ?
         ORDER BY e.name`, auditoriumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Equipment
	for rows.Next() {
		var (
			e    model.Equipment
			desc sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			e.Description = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
