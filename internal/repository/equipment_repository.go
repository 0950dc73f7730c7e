package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cherry4xo/booker/internal/model"
)

// EquipmentRepo provides CRUD operations for the `equipment` table.
type EquipmentRepo struct{ db *sql.DB }

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

// Create inserts a new piece of equipment and populates the generated ID.
// Duplicate names yield ErrDuplicate.
func (r *EquipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO equipment (name, description) VALUES (?,?)",
		e.Name, e.Description)
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
	e.ID = uint64(id)
	return nil
}

// GetByID fetches equipment by id, returning ErrEquipmentNotFound when absent.
func (r *EquipmentRepo) GetByID(ctx context.Context, id uint64) (*model.Equipment, error) {
	var (
		e    model.Equipment
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description FROM equipment WHERE id=?", id).
		Scan(&e.ID, &e.Name, &desc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		e.Description = &v
	}
	return &e, nil
}

// List returns all equipment ordered by name.
func (r *EquipmentRepo) List(ctx context.Context) ([]model.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description FROM equipment ORDER BY name")
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

// Update rewrites name and description of an existing row.  Returns
// ErrEquipmentNotFound when the row is absent and ErrDuplicate when the
// new name collides with another row.
func (r *EquipmentRepo) Update(ctx context.Context, e *model.Equipment) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE equipment SET name=?, description=? WHERE id=?",
		e.Name, e.Description, e.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows affected may also mean a no-op update; verify existence.
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM equipment WHERE id=?", e.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEquipmentNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes equipment permanently.  Join-table rows are removed by
// the ON DELETE CASCADE of auditorium_equipment.
func (r *EquipmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM equipment WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEquipmentNotFound
	}
	return nil
}
