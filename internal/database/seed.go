package database

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/utils"
)

// EnsureDefaultModerator creates the bootstrap moderator account if no
// user with the given email exists yet.  The step is idempotent: on every
// start it either finds the account (and promotes it if its role was
// downgraded by hand) or inserts it.  It runs before the HTTP server
// accepts traffic so there is always at least one moderator able to
// manage auditoriums and schedules.
func EnsureDefaultModerator(ctx context.Context, db *sql.DB, email, password string, bcryptCost int) error {
	if email == "" || password == "" {
		return errors.New("default moderator email/password must not be empty")
	}
	var (
		id   uint64
		role string
	)
	err := db.QueryRowContext(ctx, "SELECT id, role FROM users WHERE email=? LIMIT 1", email).
		Scan(&id, &role)
	switch {
	case err == nil:
		if role != model.RoleModerator {
			if _, err := db.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", model.RoleModerator, id); err != nil {
				return err
			}
			log.Printf("seed: promoted existing user %s to moderator", email)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		hash, err := utils.HashPassword(password, bcryptCost)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
			email, hash, model.RoleModerator); err != nil {
			return err
		}
		log.Printf("seed: created default moderator %s", email)
		return nil
	default:
		return err
	}
}
