// Package repository contains the data access layer.  Each repository
// wraps a *sql.DB and exposes typed queries for one table.  Sentinel
// errors defined here let the service and handler layers distinguish
// failure scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// Not-found sentinels, one per entity.  Repositories translate
// sql.ErrNoRows into these so callers never touch driver errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEquipmentNotFound  = errors.New("equipment not found")
	ErrAuditoriumNotFound = errors.New("auditorium not found")
	ErrSlotNotFound       = errors.New("availability slot not found")
	ErrBookingNotFound    = errors.New("booking not found")
)

// ErrDuplicate is returned when an insert or update violates a unique
// constraint (duplicate email, equipment name or auditorium identifier).
// Handlers translate it into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate value")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062).  The error text is matched so the package does not depend
// on the driver type directly.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
